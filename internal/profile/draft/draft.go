// Package draft implements the profile edit state machine. A profile is shown
// read-only (Viewing), copied into an editable Draft (Editing) and reconciled
// with the marketplace API on submit (Submitting). All state changes go
// through Reduce; the Controller adds the remote calls around it.
package draft

import (
	"errors"
	"slices"
	"strings"

	"github.com/janisto/provider-profile/internal/profile"
	"github.com/janisto/provider-profile/internal/profile/gallery"
	"github.com/janisto/provider-profile/internal/profile/hours"
	"github.com/janisto/provider-profile/internal/profile/services"
	"github.com/janisto/provider-profile/internal/profile/validate"
)

// Phase is the state machine position.
type Phase int

const (
	Viewing Phase = iota
	Editing
	Submitting
)

func (p Phase) String() string {
	switch p {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	default:
		return "viewing"
	}
}

// Draft field keys not shared with the validate package.
const (
	FieldBusinessAddress     = "businessAddress"
	FieldBusinessDescription = "description"
)

// Error map keys and prefixes used by the draft beyond plain field names.
const (
	KeyServices      = services.KeyEmpty
	KeyImages        = "images"
	KeySocialPrefix  = "social."
	KeyHoursPrefix   = "hours."
	msgServicesFix   = "Some services are incomplete"
	msgUploadPending = "Wait for image uploads to finish"
	msgWrongPassword = "Current password is incorrect"
)

var (
	// ErrNotLoaded is returned when editing starts before a profile was fetched.
	ErrNotLoaded = errors.New("profile not loaded")
	// ErrNotEditing is returned for draft actions outside Editing.
	ErrNotEditing = errors.New("profile is not being edited")
	// ErrLocked is returned for edits while a submission is in flight.
	ErrLocked = errors.New("profile is locked while saving")
	// ErrSubmitInProgress is returned for a second submit.
	ErrSubmitInProgress = errors.New("profile submission already in progress")
	// ErrClosed is returned once the controller has been closed.
	ErrClosed = errors.New("profile controller closed")
	// ErrUnknownField is returned for a field or platform the draft does not have.
	ErrUnknownField = errors.New("unknown profile field")
	// ErrStaleUpload is returned when an upload completes for a placeholder
	// that no longer exists.
	ErrStaleUpload = errors.New("upload placeholder no longer exists")
	// ErrPasswordRejected wraps a failed current-password check.
	ErrPasswordRejected = errors.New("current password rejected")
)

// Draft is the editable copy of a profile.
type Draft struct {
	Identity     profile.Identity
	Business     profile.Business
	Services     services.List
	Hours        profile.Week
	SocialLinks  profile.SocialLinks
	Gallery      gallery.Gallery
	ShowPassword bool
	Password     profile.PasswordChange
	Errors       profile.Errors
}

// State is everything the profile screen renders.
type State struct {
	Phase    Phase
	Snapshot *profile.Snapshot
	Draft    *Draft
	Catalog  *profile.Catalog
	Towns    []string
}

// NewState returns an empty Viewing state validating towns against towns.
func NewState(towns []string) State {
	if len(towns) == 0 {
		towns = validate.DefaultTowns
	}
	return State{Phase: Viewing, Towns: slices.Clone(towns)}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Snapshot = s.Snapshot.Clone()
	out.Draft = s.Draft.clone()
	out.Towns = slices.Clone(s.Towns)
	if s.Catalog != nil {
		c := profile.Catalog{
			Services:   slices.Clone(s.Catalog.Services),
			Categories: slices.Clone(s.Catalog.Categories),
		}
		out.Catalog = &c
	}
	return out
}

func (d *Draft) clone() *Draft {
	if d == nil {
		return nil
	}
	out := *d
	out.Services = d.Services.Clone()
	out.Hours = d.Hours.Clone()
	out.SocialLinks = d.SocialLinks.Clone()
	out.Gallery = d.Gallery.Clone()
	out.Errors = d.Errors.Clone()
	return &out
}

func newDraft(s *profile.Snapshot) *Draft {
	return &Draft{
		Identity:    s.Identity,
		Business:    s.Business,
		Services:    services.FromEntries(s.Services),
		Hours:       s.OperatingHours.Clone(),
		SocialLinks: s.SocialLinks.Clone(),
		Gallery:     gallery.FromPaths(s.Images),
		Errors:      profile.Errors{},
	}
}

// refresh replaces the error at key with the fresh result for that key.
func (d *Draft) refresh(key string, fresh profile.Errors, freshKey string) {
	if msg, ok := fresh[freshKey]; ok {
		d.Errors[key] = msg
		return
	}
	delete(d.Errors, key)
}

func (d *Draft) clearPassword() {
	d.Password = profile.PasswordChange{}
	for _, k := range []string{validate.FieldOldPassword, validate.FieldNewPassword, validate.FieldConfirmPassword} {
		delete(d.Errors, k)
	}
}

// validateForSubmit runs every validator and commits the service list. The
// returned draft carries the fresh error map.
func validateForSubmit(d *Draft, towns []string) (*Draft, profile.Errors) {
	out := d.clone()
	errs := profile.Errors{}
	merge := func(prefix string, m profile.Errors) {
		for k, v := range m {
			errs[prefix+k] = v
		}
	}
	merge("", validate.Identity(out.Identity))
	merge("", validate.Business(out.Business, towns))
	merge(KeySocialPrefix, validate.SocialLinks(out.SocialLinks))
	if out.ShowPassword {
		merge("", validate.PasswordChange(out.Password))
	}
	merge(KeyHoursPrefix, hours.Validate(out.Hours))

	list, _, serr := out.Services.Commit()
	out.Services = list
	if len(serr) > 0 {
		if empty, ok := serr[services.KeyEmpty]; ok {
			errs[KeyServices] = empty[services.KeyEmpty]
		} else {
			errs[KeyServices] = msgServicesFix
		}
	}
	if out.Gallery.Uploading() {
		errs[KeyImages] = msgUploadPending
	}
	out.Errors = errs
	return out, errs
}

// buildUpdate turns a validated draft into the combined update payload.
func buildUpdate(d *Draft) profile.UpdateRequest {
	req := profile.UpdateRequest{
		Identity: profile.Identity{
			Name:  strings.TrimSpace(d.Identity.Name),
			Email: strings.TrimSpace(d.Identity.Email),
			Phone: strings.TrimSpace(d.Identity.Phone),
		},
		Business:       d.Business,
		OperatingHours: hours.Normalize(d.Hours),
		SocialLinks:    profile.SocialLinks{},
		Images:         d.Gallery.Paths(),
	}
	if d.ShowPassword {
		req.Password = d.Password.NewPassword
	}
	for _, e := range d.Services.Merged() {
		req.Services = append(req.Services, profile.ServicePayload{
			ID:          e.ID,
			Name:        strings.TrimSpace(e.Name),
			Category:    e.Category,
			Price:       validate.ParsePrice(e.Price),
			PriceType:   strings.TrimSpace(e.PriceType),
			Description: e.Description,
			IsCustom:    e.IsCustom,
		})
	}
	for p, v := range d.SocialLinks.Clone() {
		if v = strings.TrimSpace(v); v != "" {
			req.SocialLinks[p] = v
		}
	}
	return req
}
