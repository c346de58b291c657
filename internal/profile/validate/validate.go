// Package validate contains side-effect-free validators for the editable
// profile sections. Each validator returns a field-keyed error map; an empty
// map signals validity.
package validate

import (
	"math"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/janisto/provider-profile/internal/profile"
)

// Field keys used in error maps.
const (
	FieldName              = "name"
	FieldEmail             = "email"
	FieldPhone             = "phone"
	FieldOldPassword       = "oldPassword"
	FieldNewPassword       = "newPassword"
	FieldConfirmPassword   = "confirmPassword"
	FieldTown              = "town"
	FieldYearsOfExperience = "yearsOfExperience"
	FieldCategory          = "category"
	FieldPrice             = "price"
	FieldPriceType         = "priceType"
	FieldDescription       = "description"
)

// MsgRequired is the message for a missing service field.
const MsgRequired = "Required"

// MinPasswordLength is the minimum length of a new password.
const MinPasswordLength = 8

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// DefaultTowns is the enumerated list of towns a business can be located in.
var DefaultTowns = []string{
	"Bloemfontein",
	"Cape Town",
	"Durban",
	"East London",
	"Gqeberha",
	"Johannesburg",
	"Kimberley",
	"Mbombela",
	"Pietermaritzburg",
	"Polokwane",
	"Pretoria",
	"Rustenburg",
}

// Identity validates name, email and phone.
func Identity(id profile.Identity) profile.Errors {
	errs := profile.Errors{}
	if strings.TrimSpace(id.Name) == "" {
		errs[FieldName] = "Name is required"
	}
	email := strings.TrimSpace(id.Email)
	switch {
	case email == "":
		errs[FieldEmail] = "Email is required"
	case !emailRe.MatchString(email):
		errs[FieldEmail] = "Invalid email format"
	}
	if strings.TrimSpace(id.Phone) == "" {
		errs[FieldPhone] = "Phone is required"
	}
	return errs
}

// PasswordChange validates the password sub-form. Call it only while the
// sub-form is active.
func PasswordChange(pc profile.PasswordChange) profile.Errors {
	errs := profile.Errors{}
	if pc.OldPassword == "" {
		errs[FieldOldPassword] = "Current password is required"
	}
	switch {
	case pc.NewPassword == "":
		errs[FieldNewPassword] = "New password is required"
	case !StrongPassword(pc.NewPassword):
		errs[FieldNewPassword] = "Password must be at least 8 characters and contain an uppercase letter and a number"
	}
	if pc.ConfirmPassword != pc.NewPassword {
		errs[FieldConfirmPassword] = "Passwords do not match"
	}
	return errs
}

// StrongPassword reports whether p satisfies the password policy.
func StrongPassword(p string) bool {
	if len([]rune(p)) < MinPasswordLength {
		return false
	}
	var upper, digit bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && digit
}

// Service validates one service entry. Name, price and price type are always
// required; description is required for custom entries.
func Service(e profile.ServiceEntry) profile.Errors {
	errs := profile.Errors{}
	if strings.TrimSpace(e.Name) == "" {
		errs[FieldName] = MsgRequired
	}
	if strings.TrimSpace(e.Price) == "" {
		errs[FieldPrice] = MsgRequired
	}
	switch strings.TrimSpace(e.PriceType) {
	case "":
		errs[FieldPriceType] = MsgRequired
	case profile.PriceTypeHourly, profile.PriceTypeOnceOff:
	default:
		errs[FieldPriceType] = "Must be hourly or once-off"
	}
	if e.IsCustom && strings.TrimSpace(e.Description) == "" {
		errs[FieldDescription] = MsgRequired
	}
	return errs
}

// Business validates the business section against the allowed towns. Empty
// optional fields are accepted.
func Business(b profile.Business, towns []string) profile.Errors {
	errs := profile.Errors{}
	if town := strings.TrimSpace(b.Town); town != "" && !slices.Contains(towns, town) {
		errs[FieldTown] = "Select a valid town"
	}
	if years := strings.TrimSpace(b.YearsOfExperience); years != "" {
		n, err := strconv.Atoi(years)
		if err != nil || n < 0 {
			errs[FieldYearsOfExperience] = "Must be a whole number"
		}
	}
	return errs
}

// SocialLinks validates that every non-empty link is an absolute http(s) URL.
// Keys in the returned map are the platform names.
func SocialLinks(links profile.SocialLinks) profile.Errors {
	errs := profile.Errors{}
	for platform, raw := range links {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !slices.Contains(profile.Platforms, platform) {
			errs[platform] = "Unsupported platform"
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs[platform] = "Enter a valid URL"
		}
	}
	return errs
}

// ParsePrice coerces a price string to a number. Non-numeric input yields 0.
func ParsePrice(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
