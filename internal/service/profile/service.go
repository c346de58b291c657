package profile

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	applog "github.com/janisto/provider-profile/internal/platform/logging"
)

// Service errors
var (
	ErrNotFound         = errors.New("profile not found")
	ErrAlreadyExists    = errors.New("profile already exists")
	ErrServiceNotFound  = errors.New("service not found")
	ErrImageNotFound    = errors.New("image not found")
	ErrDuplicateService = errors.New("service already offered")
	ErrInvalidPassword  = errors.New("password does not match")
)

// Complete is the business sub-document of a provider profile.
type Complete struct {
	BusinessAddress   string
	Town              string
	YearsOfExperience string
	Description       string
}

// Offering is one service a provider sells.
type Offering struct {
	ID          string
	Name        string
	Category    string
	Price       float64
	PriceType   string
	Description string
	IsCustom    bool
}

// Day is the opening state of one weekday. Start and End are "HH:MM".
type Day struct {
	IsClosed bool
	Start    string
	End      string
}

// Profile represents stored provider profile data.
type Profile struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Complete       Complete
	Services       []Offering
	OperatingHours map[string]Day
	SocialLinks    map[string]string
	Images         []string
	PasswordHash   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateParams for registering a provider profile.
type CreateParams struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// UpdateParams replaces every editable section of a profile. An empty
// Password keeps the current one.
type UpdateParams struct {
	Name           string
	Email          string
	Phone          string
	Password       string
	Complete       Complete
	Services       []Offering
	OperatingHours map[string]Day
	SocialLinks    map[string]string
	Images         []string
}

// Service defines provider profile operations.
//
// Implementations must normalize input data:
//   - Email: lowercase and trim whitespace
//   - Phone and Name: trim whitespace
//   - Services without an ID get a fresh one
type Service interface {
	Create(ctx context.Context, userID string, params CreateParams) (*Profile, error)
	Get(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, userID string, params UpdateParams) (*Profile, error)
	VerifyPassword(ctx context.Context, userID, email, password string) error
	DeleteService(ctx context.Context, userID, serviceID string) error
	AddImage(ctx context.Context, userID, path string) (*Profile, error)
	RemoveImage(ctx context.Context, userID, path string) (*Profile, error)
}

// categorizeError converts errors to audit-safe categories.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrServiceNotFound):
		return "service_not_found"
	case errors.Is(err, ErrImageNotFound):
		return "image_not_found"
	case errors.Is(err, ErrDuplicateService):
		return "duplicate_service"
	case errors.Is(err, ErrInvalidPassword):
		return "invalid_password"
	default:
		return "internal_error"
	}
}

// audit records the outcome of a profile mutation.
func audit(ctx context.Context, action, userID, resourceType, resourceID string, err error) {
	ev := applog.AuditEvent{
		Action:       action,
		UserID:       userID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Result:       applog.AuditSuccess,
	}
	if err != nil {
		ev.Result = applog.AuditFailure
		ev.Details = map[string]any{"error": categorizeError(err)}
	}
	applog.LogAuditEvent(ctx, ev)
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(b), nil
}

// checkPassword compares the stored account against the claimed email and
// password. Every mismatch reports ErrInvalidPassword.
func checkPassword(p *Profile, email, password string) error {
	if p.PasswordHash == "" || normalizeEmail(email) != p.Email {
		return ErrInvalidPassword
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return ErrInvalidPassword
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func newProfile(userID string, params CreateParams, now time.Time) (*Profile, error) {
	p := &Profile{
		ID:             userID,
		Name:           strings.TrimSpace(params.Name),
		Email:          normalizeEmail(params.Email),
		Phone:          strings.TrimSpace(params.Phone),
		Services:       []Offering{},
		OperatingHours: map[string]Day{},
		SocialLinks:    map[string]string{},
		Images:         []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if params.Password != "" {
		hash, err := hashPassword(params.Password)
		if err != nil {
			return nil, err
		}
		p.PasswordHash = hash
	}
	return p, nil
}

// applyUpdate replaces the editable sections of p with params.
func applyUpdate(p *Profile, params UpdateParams, now time.Time) error {
	services, err := normalizeOfferings(params.Services)
	if err != nil {
		return err
	}
	if params.Password != "" {
		hash, err := hashPassword(params.Password)
		if err != nil {
			return err
		}
		p.PasswordHash = hash
	}

	p.Name = strings.TrimSpace(params.Name)
	p.Email = normalizeEmail(params.Email)
	p.Phone = strings.TrimSpace(params.Phone)
	p.Complete = Complete{
		BusinessAddress:   strings.TrimSpace(params.Complete.BusinessAddress),
		Town:              strings.TrimSpace(params.Complete.Town),
		YearsOfExperience: strings.TrimSpace(params.Complete.YearsOfExperience),
		Description:       strings.TrimSpace(params.Complete.Description),
	}
	p.Services = services
	p.OperatingHours = normalizeHours(params.OperatingHours)
	p.SocialLinks = normalizeLinks(params.SocialLinks)
	p.Images = uniqueStrings(params.Images)
	p.UpdatedAt = now
	return nil
}

// normalizeOfferings assigns IDs to new entries and rejects two predefined
// entries with the same name and category.
func normalizeOfferings(in []Offering) ([]Offering, error) {
	out := make([]Offering, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, o := range in {
		o.Name = strings.TrimSpace(o.Name)
		o.Category = strings.TrimSpace(o.Category)
		o.Description = strings.TrimSpace(o.Description)
		if !o.IsCustom {
			key := strings.ToLower(o.Name) + "\x00" + strings.ToLower(o.Category)
			if _, dup := seen[key]; dup {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateService, o.Name)
			}
			seen[key] = struct{}{}
		}
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		out = append(out, o)
	}
	return out, nil
}

func normalizeHours(in map[string]Day) map[string]Day {
	out := make(map[string]Day, len(in))
	for day, h := range in {
		if h.IsClosed {
			h.Start, h.End = "", ""
		}
		out[day] = h
	}
	return out
}

func normalizeLinks(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func removeOffering(p *Profile, serviceID string) error {
	i := slices.IndexFunc(p.Services, func(o Offering) bool { return o.ID == serviceID })
	if i < 0 {
		return ErrServiceNotFound
	}
	p.Services = slices.Delete(p.Services, i, i+1)
	return nil
}

func removeImagePath(p *Profile, path string) error {
	i := slices.Index(p.Images, path)
	if i < 0 {
		return ErrImageNotFound
	}
	p.Images = slices.Delete(p.Images, i, i+1)
	return nil
}

// clone returns a deep copy so callers never share slices or maps with a
// store.
func (p *Profile) clone() *Profile {
	if p == nil {
		return nil
	}
	out := *p
	out.Services = slices.Clone(p.Services)
	out.OperatingHours = maps.Clone(p.OperatingHours)
	out.SocialLinks = maps.Clone(p.SocialLinks)
	out.Images = slices.Clone(p.Images)
	if out.Services == nil {
		out.Services = []Offering{}
	}
	if out.OperatingHours == nil {
		out.OperatingHours = map[string]Day{}
	}
	if out.SocialLinks == nil {
		out.SocialLinks = map[string]string{}
	}
	if out.Images == nil {
		out.Images = []string{}
	}
	return &out
}
