package profile

import (
	"github.com/janisto/provider-profile/internal/platform/timeutil"
)

// Complete is the business section of a provider profile.
type Complete struct {
	BusinessAddress   string `json:"businessAddress"   maxLength:"200" doc:"Street address of the business" example:"Main Street 1"`
	Town              string `json:"town"              maxLength:"100" doc:"Town the provider works in"     example:"Helsinki"`
	YearsOfExperience string `json:"yearsOfExperience" maxLength:"3"   doc:"Years in the trade"             example:"5"`
	Description       string `json:"description"       maxLength:"2000" doc:"Free-form business description" example:"Family owned cleaning company"`
}

// Service is one offering of a provider.
type Service struct {
	ID          string  `json:"id,omitempty"          doc:"Server-assigned identifier"        example:"6f1c2d8e-3b1a-4c55-9d1e-2f4b7a9c0e11"`
	Name        string  `json:"name"                  minLength:"1" maxLength:"100" doc:"Service name" example:"Home cleaning"`
	Category    string  `json:"category"              maxLength:"100" doc:"Catalog category"   example:"Cleaning"`
	Price       float64 `json:"price"                 minimum:"0"   doc:"Price in euros"        example:"45"`
	PriceType   string  `json:"priceType"             enum:"hourly,once-off" doc:"Pricing unit" example:"hourly"`
	Description string  `json:"description,omitempty" maxLength:"1000" doc:"Required for custom services" example:"Deep cleaning of kitchens"`
	IsCustom    bool    `json:"isCustom"              doc:"True when not picked from the catalog" example:"false"`
}

// Day is the opening state of one weekday.
type Day struct {
	IsClosed bool    `json:"isClosed"        doc:"Closed all day"      example:"false"`
	Start    *string `json:"start,omitempty" pattern:"^([01][0-9]|2[0-3]):[0-5][0-9]$" doc:"Opening time (HH:MM)" example:"08:00"`
	End      *string `json:"end,omitempty"   pattern:"^([01][0-9]|2[0-3]):[0-5][0-9]$" doc:"Closing time (HH:MM)" example:"16:00"`
}

// Profile represents a provider profile response.
type Profile struct {
	ID              string            `json:"id"              doc:"Unique identifier"        example:"user-123"`
	Name            string            `json:"name"            doc:"Display name"             example:"Jane Provider"`
	Email           string            `json:"email"           doc:"Email address"            example:"jane@example.com"`
	Phone           string            `json:"phone"           doc:"Phone number"             example:"+358401234567"`
	CompleteProfile Complete          `json:"completeProfile" doc:"Business details"`
	Services        []Service         `json:"services"        doc:"Offered services"`
	OperatingHours  map[string]Day    `json:"operatingHours"  doc:"Opening hours keyed by weekday"`
	SocialLinks     map[string]string `json:"socialLinks"     doc:"Social media links keyed by platform"`
	Images          []string          `json:"images"          doc:"Gallery image paths"`
	CreatedAt       timeutil.Time     `json:"createdAt"       doc:"Creation timestamp"       example:"2024-01-15T10:30:00.000Z"`
	UpdatedAt       timeutil.Time     `json:"updatedAt"       doc:"Last update timestamp"    example:"2024-01-15T10:30:00.000Z"`
}

// Image identifies a stored gallery image.
type Image struct {
	Path string `json:"path" doc:"Host-relative image path" example:"uploads/user-123/6f1c2d8e.jpg"`
}
