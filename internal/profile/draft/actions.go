package draft

import (
	"github.com/janisto/provider-profile/internal/profile"
	"github.com/janisto/provider-profile/internal/profile/gallery"
	"github.com/janisto/provider-profile/internal/profile/hours"
)

// Action is a typed state transition applied by Reduce.
type Action interface {
	isAction()
}

// Lifecycle actions.
type (
	// Hydrate installs a freshly fetched snapshot. While Editing it also
	// replaces the draft.
	Hydrate struct{ Snapshot *profile.Snapshot }
	// StartEdit copies the snapshot into a new draft.
	StartEdit struct{}
	// CancelEdit discards the draft.
	CancelEdit struct{}
	// BeginSubmit validates the draft and locks it.
	BeginSubmit struct{}
	// AbortSubmit unlocks the draft, adding Errors to its error map.
	AbortSubmit struct{ Errors profile.Errors }
	// FinishSubmit installs the reconciled snapshot and drops the draft.
	FinishSubmit struct{ Snapshot *profile.Snapshot }
	// CatalogLoaded stores the predefined service catalog.
	CatalogLoaded struct{ Catalog *profile.Catalog }
)

// Field actions.
type (
	// SetField sets an identity or business field.
	SetField struct {
		Field string
		Value string
	}
	SetSocialLink struct {
		Platform string
		URL      string
	}
	ToggleDayClosed struct{ Day profile.Weekday }
	SetDayTime      struct {
		Day   profile.Weekday
		Field hours.Field
		Value string
	}
)

// Service actions.
type (
	AddPredefinedService struct{ Service profile.CatalogService }
	AddCustomService     struct{ Category string }
	UpdateService        struct {
		Index    int
		Field    string
		Value    string
		IsCustom bool
	}
	RemoveService struct {
		Index    int
		IsCustom bool
	}
	// RestoreService re-inserts an entry whose remote delete failed.
	RestoreService struct {
		Index    int
		IsCustom bool
		Entry    profile.ServiceEntry
	}
	CommitServices struct{}
)

// Password actions.
type (
	// ShowPasswordFields toggles the password sub-form. Hiding it clears it.
	ShowPasswordFields struct{ Show bool }
	SetPasswordField   struct {
		Field string
		Value string
	}
	ClearPassword struct{}
)

// Gallery actions.
type (
	UploadImageStart struct {
		LocalID string
		URI     string
	}
	UploadImageSuccess struct {
		LocalID string
		Path    string
	}
	UploadImageFail struct{ LocalID string }
	DeleteImage     struct{ Index int }
	// RestoreImage undoes a DeleteImage whose remote delete failed.
	RestoreImage struct{ Deletion gallery.Deletion }
	// ConfirmImageDeletion drops a path from the pending deletions.
	ConfirmImageDeletion struct{ Path string }
	MoveCursor           struct{ Delta int }
)

func (Hydrate) isAction()              {}
func (StartEdit) isAction()            {}
func (CancelEdit) isAction()           {}
func (BeginSubmit) isAction()          {}
func (AbortSubmit) isAction()          {}
func (FinishSubmit) isAction()         {}
func (CatalogLoaded) isAction()        {}
func (SetField) isAction()             {}
func (SetSocialLink) isAction()        {}
func (ToggleDayClosed) isAction()      {}
func (SetDayTime) isAction()           {}
func (AddPredefinedService) isAction() {}
func (AddCustomService) isAction()     {}
func (UpdateService) isAction()        {}
func (RemoveService) isAction()        {}
func (RestoreService) isAction()       {}
func (CommitServices) isAction()       {}
func (ShowPasswordFields) isAction()   {}
func (SetPasswordField) isAction()     {}
func (ClearPassword) isAction()        {}
func (UploadImageStart) isAction()     {}
func (UploadImageSuccess) isAction()   {}
func (UploadImageFail) isAction()      {}
func (DeleteImage) isAction()          {}
func (RestoreImage) isAction()         {}
func (ConfirmImageDeletion) isAction() {}
func (MoveCursor) isAction()           {}
