package profile

// ProfileCreateInput for POST /profile
type ProfileCreateInput struct {
	Body struct {
		Name     string `json:"name"     minLength:"1" maxLength:"100" required:"true" doc:"Display name"  example:"Jane Provider"`
		Email    string `json:"email"    format:"email"                required:"true" doc:"Email address" example:"jane@example.com"`
		Phone    string `json:"phone"    maxLength:"32"                                doc:"Phone number"  example:"+358401234567"`
		Password string `json:"password" minLength:"8" maxLength:"72"  required:"true" doc:"Login password" example:"Secret123"`
	}
}

// ProfileGetInput for GET /profile (no body needed)
type ProfileGetInput struct{}

// ProfileUpdateInput for PUT /profile. Every section is replaced.
type ProfileUpdateInput struct {
	Body struct {
		Name            string            `json:"name"               minLength:"1" maxLength:"100" required:"true" doc:"Display name"  example:"Jane Provider"`
		Email           string            `json:"email"              format:"email"                required:"true" doc:"Email address" example:"jane@example.com"`
		Phone           string            `json:"phone"              maxLength:"32"                                doc:"Phone number"  example:"+358401234567"`
		Password        string            `json:"password,omitempty" maxLength:"72" doc:"New password; omitted keeps the current one"`
		CompleteProfile Complete          `json:"completeProfile"    doc:"Business details"`
		Services        []Service         `json:"services"           maxItems:"100" doc:"Offered services"`
		OperatingHours  map[string]Day    `json:"operatingHours"     doc:"Opening hours keyed by weekday"`
		SocialLinks     map[string]string `json:"socialLinks"        doc:"Social media links keyed by platform"`
		Images          []string          `json:"images"             maxItems:"50" doc:"Gallery image paths"`
	}
}

// VerifyPasswordInput for POST /auth/verify-password
type VerifyPasswordInput struct {
	Body struct {
		Email       string `json:"email"       format:"email" required:"true" doc:"Account email"    example:"jane@example.com"`
		OldPassword string `json:"oldPassword" minLength:"1"  required:"true" doc:"Current password" example:"Secret123"`
	}
}

// ServiceDeleteInput for DELETE /profile/services/{id}
type ServiceDeleteInput struct {
	ID string `path:"id" minLength:"1" doc:"Service identifier" example:"6f1c2d8e-3b1a-4c55-9d1e-2f4b7a9c0e11"`
}

// ImageUploadInput for POST /profile/images. The body is the raw image.
type ImageUploadInput struct {
	ContentType string `header:"Content-Type" doc:"Image media type" example:"image/jpeg"`
	RawBody     []byte `contentType:"image/*"`
}

// ImageDeleteInput for DELETE /profile/images
type ImageDeleteInput struct {
	Path string `query:"path" required:"true" minLength:"1" doc:"Image path returned by upload" example:"uploads/user-123/6f1c2d8e.jpg"`
}
