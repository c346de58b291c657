package validate

import (
	"testing"

	"github.com/janisto/provider-profile/internal/profile"
)

func TestIdentity(t *testing.T) {
	tests := []struct {
		name string
		in   profile.Identity
		want profile.Errors
	}{
		{
			name: "valid",
			in:   profile.Identity{Name: "Thandi", Email: "thandi@example.com", Phone: "0821234567"},
			want: profile.Errors{},
		},
		{
			name: "all blank",
			in:   profile.Identity{Name: "  ", Email: "", Phone: " "},
			want: profile.Errors{
				FieldName:  "Name is required",
				FieldEmail: "Email is required",
				FieldPhone: "Phone is required",
			},
		},
		{
			name: "bad email",
			in:   profile.Identity{Name: "Thandi", Email: "thandi@example", Phone: "082"},
			want: profile.Errors{FieldEmail: "Invalid email format"},
		},
		{
			name: "email with spaces",
			in:   profile.Identity{Name: "Thandi", Email: "th andi@example.com", Phone: "082"},
			want: profile.Errors{FieldEmail: "Invalid email format"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertErrors(t, Identity(tt.in), tt.want)
		})
	}
}

func TestPasswordChange(t *testing.T) {
	tests := []struct {
		name string
		in   profile.PasswordChange
		want profile.Errors
	}{
		{
			name: "valid",
			in:   profile.PasswordChange{OldPassword: "old", NewPassword: "Secret123", ConfirmPassword: "Secret123"},
			want: profile.Errors{},
		},
		{
			name: "empty",
			in:   profile.PasswordChange{},
			want: profile.Errors{
				FieldOldPassword: "Current password is required",
				FieldNewPassword: "New password is required",
			},
		},
		{
			name: "weak and mismatched",
			in:   profile.PasswordChange{OldPassword: "old", NewPassword: "secret", ConfirmPassword: "Secret"},
			want: profile.Errors{
				FieldNewPassword:     "Password must be at least 8 characters and contain an uppercase letter and a number",
				FieldConfirmPassword: "Passwords do not match",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertErrors(t, PasswordChange(tt.in), tt.want)
		})
	}
}

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Secret123", true},
		{"Abcdefg1", true},
		{"Abcdef1", false},
		{"secret123", false},
		{"SECRETABC", false},
		{"", false},
		{"Ünïcödé9", true},
	}
	for _, tt := range tests {
		if got := StrongPassword(tt.in); got != tt.want {
			t.Errorf("StrongPassword(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestService(t *testing.T) {
	tests := []struct {
		name string
		in   profile.ServiceEntry
		want profile.Errors
	}{
		{
			name: "predefined",
			in:   profile.ServiceEntry{Name: "Cleaning", Price: "150", PriceType: profile.PriceTypeHourly},
			want: profile.Errors{},
		},
		{
			name: "empty",
			in:   profile.ServiceEntry{},
			want: profile.Errors{
				FieldName:      MsgRequired,
				FieldPrice:     MsgRequired,
				FieldPriceType: MsgRequired,
			},
		},
		{
			name: "unknown price type",
			in:   profile.ServiceEntry{Name: "Cleaning", Price: "150", PriceType: "weekly"},
			want: profile.Errors{FieldPriceType: "Must be hourly or once-off"},
		},
		{
			name: "custom without description",
			in:   profile.ServiceEntry{Name: "Pool", Price: "80", PriceType: profile.PriceTypeOnceOff, IsCustom: true},
			want: profile.Errors{FieldDescription: MsgRequired},
		},
		{
			name: "custom with description",
			in: profile.ServiceEntry{
				Name: "Pool", Price: "80", PriceType: profile.PriceTypeOnceOff,
				Description: "Weekly pool cleaning", IsCustom: true,
			},
			want: profile.Errors{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertErrors(t, Service(tt.in), tt.want)
		})
	}
}

func TestBusiness(t *testing.T) {
	tests := []struct {
		name string
		in   profile.Business
		want profile.Errors
	}{
		{name: "empty is valid", in: profile.Business{}, want: profile.Errors{}},
		{name: "known town", in: profile.Business{Town: "Durban", YearsOfExperience: "5"}, want: profile.Errors{}},
		{name: "unknown town", in: profile.Business{Town: "Atlantis"}, want: profile.Errors{FieldTown: "Select a valid town"}},
		{
			name: "bad years",
			in:   profile.Business{YearsOfExperience: "five"},
			want: profile.Errors{FieldYearsOfExperience: "Must be a whole number"},
		},
		{
			name: "negative years",
			in:   profile.Business{YearsOfExperience: "-1"},
			want: profile.Errors{FieldYearsOfExperience: "Must be a whole number"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertErrors(t, Business(tt.in, DefaultTowns), tt.want)
		})
	}
}

func TestSocialLinks(t *testing.T) {
	links := profile.SocialLinks{
		profile.PlatformWebsite:   "https://example.com",
		profile.PlatformFacebook:  "facebook.com/thandi",
		profile.PlatformInstagram: "",
		"myspace":                 "https://myspace.com/x",
	}
	want := profile.Errors{
		profile.PlatformFacebook: "Enter a valid URL",
		"myspace":                "Unsupported platform",
	}
	assertErrors(t, SocialLinks(links), want)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"150", 150},
		{" 99.5 ", 99.5},
		{"", 0},
		{"abc", 0},
		{"-5", 0},
		{"NaN", 0},
		{"Inf", 0},
	}
	for _, tt := range tests {
		if got := ParsePrice(tt.in); got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func assertErrors(t *testing.T, got, want profile.Errors) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d errors %v, got %d: %v", len(want), want, len(got), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: expected %q, got %q", k, v, got[k])
		}
	}
}
