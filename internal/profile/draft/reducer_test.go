package draft

import (
	"errors"
	"slices"
	"testing"

	"github.com/janisto/provider-profile/internal/profile"
	"github.com/janisto/provider-profile/internal/profile/gallery"
	"github.com/janisto/provider-profile/internal/profile/hours"
	"github.com/janisto/provider-profile/internal/profile/validate"
)

func testSnapshot() *profile.Snapshot {
	week := profile.NewWeek()
	week[profile.Monday] = profile.DayHours{Start: profile.StringPtr("09:00"), End: profile.StringPtr("17:00")}
	return &profile.Snapshot{
		ID:       "user-1",
		Identity: profile.Identity{Name: "Thandi Mokoena", Email: "thandi@example.com", Phone: "0821234567"},
		Business: profile.Business{Town: "Durban", YearsOfExperience: "5"},
		Services: []profile.ServiceEntry{
			{ID: "svc-1", Name: "Cleaning", Category: "Home", Price: "150", PriceType: profile.PriceTypeHourly},
		},
		OperatingHours: week,
		SocialLinks:    profile.SocialLinks{profile.PlatformWebsite: "https://example.com"},
		Images:         []string{"uploads/a.jpg", "uploads/b.jpg"},
	}
}

func mustReduce(t *testing.T, s State, a Action) State {
	t.Helper()
	out, err := Reduce(s, a)
	if err != nil {
		t.Fatalf("reduce %T: %v", a, err)
	}
	return out
}

func editingState(t *testing.T) State {
	t.Helper()
	s := mustReduce(t, NewState(nil), Hydrate{Snapshot: testSnapshot()})
	return mustReduce(t, s, StartEdit{})
}

func TestStartEditRequiresSnapshot(t *testing.T) {
	_, err := Reduce(NewState(nil), StartEdit{})
	if !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

func TestStartEditCopiesSnapshot(t *testing.T) {
	s := editingState(t)
	if s.Phase != Editing {
		t.Fatalf("expected editing, got %s", s.Phase)
	}
	if s.Draft.Identity.Name != "Thandi Mokoena" {
		t.Fatalf("unexpected identity: %+v", s.Draft.Identity)
	}
	if !s.Draft.Services.Saved || len(s.Draft.Services.Predefined) != 1 {
		t.Fatalf("unexpected services: %+v", s.Draft.Services)
	}
	if s.Draft.Gallery.Len() != 2 {
		t.Fatalf("expected 2 images, got %d", s.Draft.Gallery.Len())
	}
}

func TestDraftActionsRequireEditing(t *testing.T) {
	viewing := mustReduce(t, NewState(nil), Hydrate{Snapshot: testSnapshot()})
	if _, err := Reduce(viewing, SetField{Field: validate.FieldName, Value: "x"}); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}

	submitting := mustReduce(t, editingState(t), BeginSubmit{})
	if submitting.Phase != Submitting {
		t.Fatalf("expected submitting, got %s", submitting.Phase)
	}
	if _, err := Reduce(submitting, SetField{Field: validate.FieldName, Value: "x"}); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, err := Reduce(submitting, BeginSubmit{}); !errors.Is(err, ErrSubmitInProgress) {
		t.Fatalf("expected ErrSubmitInProgress, got %v", err)
	}
	if _, err := Reduce(submitting, Hydrate{Snapshot: testSnapshot()}); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked for hydrate, got %v", err)
	}
	if _, err := Reduce(submitting, ClearPassword{}); err != nil {
		t.Fatalf("expected clear password to be allowed while submitting, got %v", err)
	}
}

func TestReduceDoesNotModifyInput(t *testing.T) {
	s := editingState(t)
	_ = mustReduce(t, s, SetField{Field: validate.FieldName, Value: "Changed"})
	_ = mustReduce(t, s, ToggleDayClosed{Day: profile.Monday})
	_ = mustReduce(t, s, DeleteImage{Index: 0})

	if s.Draft.Identity.Name != "Thandi Mokoena" {
		t.Fatalf("input identity changed: %+v", s.Draft.Identity)
	}
	if s.Draft.Hours[profile.Monday].IsClosed {
		t.Fatal("input hours changed")
	}
	if s.Draft.Gallery.Len() != 2 {
		t.Fatal("input gallery changed")
	}
}

func TestToggleMondayClosedClearsTimes(t *testing.T) {
	s := mustReduce(t, editingState(t), ToggleDayClosed{Day: profile.Monday})

	got := s.Draft.Hours[profile.Monday]
	if !got.IsClosed || got.Start != nil || got.End != nil {
		t.Fatalf("expected closed day without times, got %+v", got)
	}

	s = mustReduce(t, s, SetDayTime{Day: profile.Monday, Field: hours.FieldStart, Value: "08:00"})
	if s.Draft.Hours[profile.Monday].Start != nil {
		t.Fatal("expected time on closed day to be ignored")
	}
}

func TestSetDayTimeValidatesEagerly(t *testing.T) {
	s := mustReduce(t, editingState(t), SetDayTime{Day: profile.Monday, Field: hours.FieldEnd, Value: "08:00"})
	if _, ok := s.Draft.Errors["hours.Monday"]; !ok {
		t.Fatalf("expected hours error, got %v", s.Draft.Errors)
	}
	s = mustReduce(t, s, SetDayTime{Day: profile.Monday, Field: hours.FieldEnd, Value: "18:00"})
	if _, ok := s.Draft.Errors["hours.Monday"]; ok {
		t.Fatalf("expected hours error cleared, got %v", s.Draft.Errors)
	}
}

func TestSetFieldValidatesEagerly(t *testing.T) {
	s := mustReduce(t, editingState(t), SetField{Field: validate.FieldEmail, Value: "not-an-email"})
	if s.Draft.Errors[validate.FieldEmail] != "Invalid email format" {
		t.Fatalf("unexpected errors: %v", s.Draft.Errors)
	}
	if _, ok := s.Draft.Errors[validate.FieldName]; ok {
		t.Fatal("expected only the edited field to be validated")
	}
	s = mustReduce(t, s, SetField{Field: validate.FieldEmail, Value: "new@example.com"})
	if len(s.Draft.Errors) != 0 {
		t.Fatalf("expected errors cleared, got %v", s.Draft.Errors)
	}

	s = mustReduce(t, s, SetField{Field: validate.FieldTown, Value: "Atlantis"})
	if s.Draft.Errors[validate.FieldTown] != "Select a valid town" {
		t.Fatalf("unexpected town error: %v", s.Draft.Errors)
	}

	if _, err := Reduce(s, SetField{Field: "favouriteColour", Value: "blue"}); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestSetSocialLink(t *testing.T) {
	s := mustReduce(t, editingState(t), SetSocialLink{Platform: profile.PlatformInstagram, URL: "instagram"})
	if s.Draft.Errors["social.instagram"] != "Enter a valid URL" {
		t.Fatalf("unexpected errors: %v", s.Draft.Errors)
	}
	if _, err := Reduce(s, SetSocialLink{Platform: "myspace", URL: "https://myspace.com/x"}); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestAddPredefinedDuplicateIsConflict(t *testing.T) {
	s := editingState(t)
	before := s.Draft.Services.Len()

	out, err := Reduce(s, AddPredefinedService{Service: profile.CatalogService{ID: "cat-1", Name: "Cleaning", Category: "Home"}})
	if !errors.Is(err, profile.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if out.Draft.Services.Len() != before {
		t.Fatalf("expected %d services, got %d", before, out.Draft.Services.Len())
	}

	out = mustReduce(t, s, AddPredefinedService{Service: profile.CatalogService{ID: "cat-2", Name: "Ironing", Category: "Home"}})
	if out.Draft.Services.Len() != before+1 || out.Draft.Services.Saved {
		t.Fatalf("unexpected services after add: %+v", out.Draft.Services)
	}
	if out.Draft.Services.Predefined[1].ID != "" {
		t.Fatal("expected new entry to have no persisted id")
	}
}

func TestCommitServicesReportsErrors(t *testing.T) {
	s := mustReduce(t, editingState(t), AddPredefinedService{Service: profile.CatalogService{Name: "Ironing", Category: "Home"}})

	out, err := Reduce(s, CommitServices{})
	var ve *profile.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if out.Draft.Services.Saved {
		t.Fatal("expected services not saved")
	}
	entry := out.Draft.Services.Errors["predefined_1"]
	if entry[validate.FieldPrice] != validate.MsgRequired || entry[validate.FieldPriceType] != validate.MsgRequired {
		t.Fatalf("unexpected entry errors: %v", out.Draft.Services.Errors)
	}
}

func TestUpdateServiceClearsServicesErrorOnceFixed(t *testing.T) {
	s := mustReduce(t, editingState(t), AddPredefinedService{Service: profile.CatalogService{Name: "Ironing", Category: "Home"}})
	s, _ = Reduce(s, CommitServices{})
	if s.Draft.Errors[KeyServices] != msgServicesFix {
		t.Fatalf("expected services error, got %v", s.Draft.Errors)
	}

	s = mustReduce(t, s, UpdateService{Index: 1, Field: validate.FieldPrice, Value: "80"})
	if _, ok := s.Draft.Errors[KeyServices]; !ok {
		t.Fatalf("expected services error while price type missing, got %v", s.Draft.Errors)
	}

	s = mustReduce(t, s, UpdateService{Index: 1, Field: validate.FieldPriceType, Value: profile.PriceTypeOnceOff})
	if _, ok := s.Draft.Errors[KeyServices]; ok {
		t.Fatalf("expected services error cleared, got %v", s.Draft.Errors)
	}
	if len(s.Draft.Services.Errors) != 0 {
		t.Fatalf("expected no entry errors, got %v", s.Draft.Services.Errors)
	}
}

func TestRemoveAndRestoreService(t *testing.T) {
	s := editingState(t)
	entry := s.Draft.Services.Predefined[0]

	removed := mustReduce(t, s, RemoveService{Index: 0})
	if removed.Draft.Services.Len() != 0 {
		t.Fatalf("expected no services, got %d", removed.Draft.Services.Len())
	}
	restored := mustReduce(t, removed, RestoreService{Index: 0, Entry: entry})
	if got := restored.Draft.Services.Predefined; len(got) != 1 || got[0] != entry {
		t.Fatalf("expected entry restored, got %+v", got)
	}
}

func TestPasswordFields(t *testing.T) {
	s := editingState(t)
	if _, err := Reduce(s, SetPasswordField{Field: validate.FieldNewPassword, Value: "x"}); !errors.Is(err, ErrPasswordHidden) {
		t.Fatalf("expected ErrPasswordHidden, got %v", err)
	}

	s = mustReduce(t, s, ShowPasswordFields{Show: true})
	s = mustReduce(t, s, SetPasswordField{Field: validate.FieldNewPassword, Value: "Secret123"})
	s = mustReduce(t, s, SetPasswordField{Field: validate.FieldConfirmPassword, Value: "Secret124"})
	if s.Draft.Errors[validate.FieldConfirmPassword] != "Passwords do not match" {
		t.Fatalf("unexpected errors: %v", s.Draft.Errors)
	}
	s = mustReduce(t, s, SetPasswordField{Field: validate.FieldNewPassword, Value: "Secret124"})
	if _, ok := s.Draft.Errors[validate.FieldConfirmPassword]; ok {
		t.Fatalf("expected confirm error cleared, got %v", s.Draft.Errors)
	}

	s = mustReduce(t, s, ShowPasswordFields{Show: false})
	if s.Draft.Password != (profile.PasswordChange{}) {
		t.Fatalf("expected password form cleared, got %+v", s.Draft.Password)
	}
}

func TestBeginSubmitPasswordMismatchStaysEditing(t *testing.T) {
	s := mustReduce(t, editingState(t), ShowPasswordFields{Show: true})
	s = mustReduce(t, s, SetPasswordField{Field: validate.FieldOldPassword, Value: "OldSecret1"})
	s = mustReduce(t, s, SetPasswordField{Field: validate.FieldNewPassword, Value: "NewSecret1"})
	s = mustReduce(t, s, SetPasswordField{Field: validate.FieldConfirmPassword, Value: "NewSecret2"})

	out, err := Reduce(s, BeginSubmit{})
	if !errors.Is(err, profile.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if out.Phase != Editing {
		t.Fatalf("expected editing, got %s", out.Phase)
	}
	if out.Draft.Errors[validate.FieldConfirmPassword] != "Passwords do not match" {
		t.Fatalf("unexpected errors: %v", out.Draft.Errors)
	}
}

func TestBeginSubmitRejectsPendingUploads(t *testing.T) {
	s := mustReduce(t, editingState(t), UploadImageStart{LocalID: "local-1", URI: "file:///tmp/c.jpg"})
	out, err := Reduce(s, BeginSubmit{})
	if !errors.Is(err, profile.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if out.Draft.Errors[KeyImages] == "" {
		t.Fatalf("expected images error, got %v", out.Draft.Errors)
	}
	out = mustReduce(t, out, UploadImageSuccess{LocalID: "local-1", Path: "/uploads/c.jpg"})
	if _, ok := out.Draft.Errors[KeyImages]; ok {
		t.Fatal("expected images error cleared once uploads settle")
	}
}

func TestUploadFailureRemovesPlaceholder(t *testing.T) {
	s := editingState(t)
	before := s.Draft.Gallery.Len()

	s = mustReduce(t, s, UploadImageStart{LocalID: "local-1", URI: "file:///tmp/c.jpg"})
	s = mustReduce(t, s, UploadImageFail{LocalID: "local-1"})

	if s.Draft.Gallery.Len() != before {
		t.Fatalf("expected %d images, got %d", before, s.Draft.Gallery.Len())
	}
	for _, img := range s.Draft.Gallery.Images {
		if img.URI == "file:///tmp/c.jpg" {
			t.Fatal("expected no reference to the failed upload")
		}
	}
}

func TestUploadCompletionAfterCancelIsStale(t *testing.T) {
	s := mustReduce(t, editingState(t), UploadImageStart{LocalID: "local-1", URI: "file:///tmp/c.jpg"})
	s = mustReduce(t, s, CancelEdit{})
	if _, err := Reduce(s, UploadImageSuccess{LocalID: "local-1", Path: "uploads/c.jpg"}); !errors.Is(err, ErrStaleUpload) {
		t.Fatalf("expected ErrStaleUpload, got %v", err)
	}
}

func TestDeleteFirstRemoteImage(t *testing.T) {
	s := editingState(t)
	s.Draft.Gallery = gallery.FromPaths([]string{"remoteA", "remoteB"})

	s = mustReduce(t, s, DeleteImage{Index: 0})

	if got := s.Draft.Gallery.Paths(); !slices.Equal(got, []string{"remoteB"}) {
		t.Fatalf("unexpected gallery: %v", got)
	}
	if got := s.Draft.Gallery.PendingPaths(); !slices.Equal(got, []string{"remoteA"}) {
		t.Fatalf("unexpected pending deletions: %v", got)
	}
	if s.Draft.Gallery.Cursor != 0 {
		t.Fatalf("expected cursor 0, got %d", s.Draft.Gallery.Cursor)
	}
}

func TestBuildUpdate(t *testing.T) {
	s := editingState(t)
	s = mustReduce(t, s, UpdateService{Index: 0, Field: validate.FieldPrice, Value: "abc"})
	s = mustReduce(t, s, ToggleDayClosed{Day: profile.Monday})
	s = mustReduce(t, s, SetSocialLink{Platform: profile.PlatformFacebook, URL: "  "})
	s.Draft.Gallery = gallery.FromPaths([]string{`https://cdn.example.com/uploads\a.jpg`})

	req := buildUpdate(s.Draft)

	if req.Services[0].Price != 0 || req.Services[0].ID != "svc-1" {
		t.Fatalf("unexpected service payload: %+v", req.Services[0])
	}
	if h := req.OperatingHours[profile.Monday]; !h.IsClosed || h.Start != nil {
		t.Fatalf("unexpected monday hours: %+v", h)
	}
	if len(req.OperatingHours) != len(profile.Weekdays) {
		t.Fatalf("expected all weekdays, got %d", len(req.OperatingHours))
	}
	if _, ok := req.SocialLinks[profile.PlatformFacebook]; ok {
		t.Fatal("expected blank link to be dropped")
	}
	if !slices.Equal(req.Images, []string{"uploads/a.jpg"}) {
		t.Fatalf("unexpected images: %v", req.Images)
	}
	if req.Password != "" {
		t.Fatal("expected no password without an active change")
	}
}

func TestFinishSubmitInstallsSnapshot(t *testing.T) {
	s := mustReduce(t, editingState(t), BeginSubmit{})
	next := testSnapshot()
	next.Identity.Name = "Updated"

	s = mustReduce(t, s, FinishSubmit{Snapshot: next})
	if s.Phase != Viewing || s.Draft != nil {
		t.Fatalf("expected viewing without draft, got %s %+v", s.Phase, s.Draft)
	}
	if s.Snapshot.Identity.Name != "Updated" {
		t.Fatalf("unexpected snapshot: %+v", s.Snapshot.Identity)
	}
}

func TestAbortSubmitKeepsDraft(t *testing.T) {
	s := mustReduce(t, editingState(t), SetField{Field: validate.FieldName, Value: "Changed"})
	s = mustReduce(t, s, BeginSubmit{})
	s = mustReduce(t, s, AbortSubmit{Errors: profile.Errors{validate.FieldOldPassword: msgWrongPassword}})

	if s.Phase != Editing || s.Draft.Identity.Name != "Changed" {
		t.Fatalf("expected draft preserved, got %s %+v", s.Phase, s.Draft.Identity)
	}
	if s.Draft.Errors[validate.FieldOldPassword] != msgWrongPassword {
		t.Fatalf("unexpected errors: %v", s.Draft.Errors)
	}
}
