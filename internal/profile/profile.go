// Package profile holds the client-side domain types shared by the draft
// controller and its sub-models: the server snapshot, the editable draft
// sections, the update payload and the remote collaborator contract.
package profile

import (
	"context"
	"io"
)

// Price types accepted for a service entry.
const (
	PriceTypeHourly  = "hourly"
	PriceTypeOnceOff = "once-off"
)

// Weekday identifies one of the seven fixed operating-hours keys.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists every weekday in display order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Valid reports whether d is one of the seven weekdays.
func (d Weekday) Valid() bool {
	for _, w := range Weekdays {
		if w == d {
			return true
		}
	}
	return false
}

// Social platforms a provider can link to.
const (
	PlatformWebsite   = "website"
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformLinkedIn  = "linkedin"
	PlatformTwitter   = "twitter"
	PlatformTikTok    = "tiktok"
)

// Platforms lists the supported social platforms.
var Platforms = []string{
	PlatformWebsite,
	PlatformFacebook,
	PlatformInstagram,
	PlatformLinkedIn,
	PlatformTwitter,
	PlatformTikTok,
}

// Identity holds the personal fields of a profile.
type Identity struct {
	Name  string
	Email string
	Phone string
}

// Business holds the business fields of the complete profile sub-document.
type Business struct {
	BusinessAddress   string
	Town              string
	YearsOfExperience string
	Description       string
}

// ServiceEntry is one service offered by a provider. An empty ID means the
// entry has not been persisted yet.
type ServiceEntry struct {
	ID          string
	Name        string
	Category    string
	Price       string
	PriceType   string
	Description string
	IsCustom    bool
}

// DayHours is the opening state of a single weekday. A closed day never
// carries times.
type DayHours struct {
	IsClosed bool
	Start    *string
	End      *string
}

// Week maps every weekday to its hours.
type Week map[Weekday]DayHours

// SocialLinks maps a platform name to a URL.
type SocialLinks map[string]string

// PasswordChange is the optional password sub-form.
type PasswordChange struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

// Errors maps a field key to a human-readable message. An empty map is valid.
type Errors map[string]string

// Snapshot is the last-fetched, server-authoritative profile.
type Snapshot struct {
	ID             string
	Identity       Identity
	Business       Business
	Services       []ServiceEntry
	OperatingHours Week
	SocialLinks    SocialLinks
	Images         []string
}

// ServicePayload is a service entry as transmitted in an update.
type ServicePayload struct {
	ID          string
	Name        string
	Category    string
	Price       float64
	PriceType   string
	Description string
	IsCustom    bool
}

// UpdateRequest is the combined profile update carrying every section.
// Password is set only when a verified password change is part of the submit.
type UpdateRequest struct {
	Identity       Identity
	Password       string
	Business       Business
	Services       []ServicePayload
	OperatingHours Week
	SocialLinks    SocialLinks
	Images         []string
}

// CatalogService is a predefined service offered in the picker.
type CatalogService struct {
	ID       string
	Name     string
	Category string
}

// Catalog lists the predefined services and the categories usable for
// custom services.
type Catalog struct {
	Services   []CatalogService
	Categories []string
}

// ImageUpload is the binary payload of a freshly picked image.
type ImageUpload struct {
	URI         string
	ContentType string
	Body        io.Reader
}

// Remote is the marketplace API as seen by the draft controller.
type Remote interface {
	FetchProfile(ctx context.Context) (*Snapshot, error)
	UpdateProfile(ctx context.Context, req UpdateRequest) (*Snapshot, error)
	VerifyPassword(ctx context.Context, email, oldPassword string) error
	DeleteService(ctx context.Context, serviceID string) error
	AddImage(ctx context.Context, img ImageUpload) (string, error)
	DeleteImage(ctx context.Context, path string) error
	FetchCatalog(ctx context.Context) (*Catalog, error)
}

// NewWeek returns a week with every day open and no times set.
func NewWeek() Week {
	w := make(Week, len(Weekdays))
	for _, d := range Weekdays {
		w[d] = DayHours{}
	}
	return w
}

// Clone returns a deep copy of w that always contains all seven weekdays.
func (w Week) Clone() Week {
	out := NewWeek()
	for d, h := range w {
		if !d.Valid() {
			continue
		}
		out[d] = h.clone()
	}
	return out
}

func (h DayHours) clone() DayHours {
	out := DayHours{IsClosed: h.IsClosed}
	if h.Start != nil {
		s := *h.Start
		out.Start = &s
	}
	if h.End != nil {
		e := *h.End
		out.End = &e
	}
	return out
}

// Clone returns a copy of the links restricted to supported platforms.
func (l SocialLinks) Clone() SocialLinks {
	out := make(SocialLinks, len(Platforms))
	for _, p := range Platforms {
		if v, ok := l[p]; ok {
			out[p] = v
		}
	}
	return out
}

// Clone returns a copy of e.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Services = append([]ServiceEntry(nil), s.Services...)
	out.OperatingHours = s.OperatingHours.Clone()
	out.SocialLinks = s.SocialLinks.Clone()
	out.Images = append([]string(nil), s.Images...)
	return &out
}

// StringPtr returns a pointer to a copy of v.
func StringPtr(v string) *string {
	return &v
}
