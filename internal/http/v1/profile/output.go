package profile

// ProfileCreateOutput for POST /profile (201 Created)
type ProfileCreateOutput struct {
	Location string `header:"Location" doc:"URL of created profile"`
	Body     Profile
}

// ProfileGetOutput for GET /profile
type ProfileGetOutput struct {
	Body Profile
}

// ProfileUpdateOutput for PUT /profile
type ProfileUpdateOutput struct {
	Body Profile
}

// ImageUploadOutput for POST /profile/images (201 Created)
type ImageUploadOutput struct {
	Body Image
}
