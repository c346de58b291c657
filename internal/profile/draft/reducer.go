package draft

import (
	"errors"
	"fmt"
	"slices"

	"github.com/janisto/provider-profile/internal/profile"
	"github.com/janisto/provider-profile/internal/profile/hours"
	"github.com/janisto/provider-profile/internal/profile/validate"
)

// ErrPasswordHidden is returned when a password field is set while the
// password sub-form is hidden.
var ErrPasswordHidden = errors.New("password fields are hidden")

// Reduce applies a to s and returns the next state. s is never modified. On
// error the input state is returned unchanged, except for validation failures
// which return the state carrying the fresh error map.
func Reduce(s State, a Action) (State, error) {
	switch a := a.(type) {
	case Hydrate:
		return reduceHydrate(s, a)
	case StartEdit:
		return reduceStartEdit(s)
	case CancelEdit:
		return reduceCancelEdit(s)
	case BeginSubmit:
		return reduceBeginSubmit(s)
	case AbortSubmit:
		return reduceAbortSubmit(s, a)
	case FinishSubmit:
		return reduceFinishSubmit(s, a)
	case CatalogLoaded:
		out := s.Clone()
		out.Catalog = nil
		if a.Catalog != nil {
			c := profile.Catalog{
				Services:   slices.Clone(a.Catalog.Services),
				Categories: slices.Clone(a.Catalog.Categories),
			}
			out.Catalog = &c
		}
		return out, nil
	}

	if err := checkEditable(s, a); err != nil {
		return s, err
	}
	out := s.Clone()
	if err := applyDraft(out.Draft, a, s.Towns); err != nil {
		var ve *profile.ValidationError
		if errors.As(err, &ve) {
			return out, err
		}
		return s, err
	}
	return out, nil
}

func reduceHydrate(s State, a Hydrate) (State, error) {
	if a.Snapshot == nil {
		return s, ErrNotLoaded
	}
	if s.Phase == Submitting {
		return s, ErrLocked
	}
	out := s.Clone()
	out.Snapshot = a.Snapshot.Clone()
	if out.Phase == Editing {
		out.Draft = newDraft(out.Snapshot)
	}
	return out, nil
}

func reduceStartEdit(s State) (State, error) {
	switch s.Phase {
	case Editing:
		return s, nil
	case Submitting:
		return s, ErrLocked
	}
	if s.Snapshot == nil {
		return s, ErrNotLoaded
	}
	out := s.Clone()
	out.Phase = Editing
	out.Draft = newDraft(out.Snapshot)
	return out, nil
}

func reduceCancelEdit(s State) (State, error) {
	switch s.Phase {
	case Viewing:
		return s, nil
	case Submitting:
		return s, ErrLocked
	}
	out := s.Clone()
	out.Phase = Viewing
	out.Draft = nil
	return out, nil
}

func reduceBeginSubmit(s State) (State, error) {
	switch s.Phase {
	case Submitting:
		return s, ErrSubmitInProgress
	case Viewing:
		return s, ErrNotEditing
	}
	out := s.Clone()
	d, errs := validateForSubmit(out.Draft, s.Towns)
	out.Draft = d
	if len(errs) > 0 {
		return out, &profile.ValidationError{Fields: errs.Clone()}
	}
	out.Phase = Submitting
	return out, nil
}

func reduceAbortSubmit(s State, a AbortSubmit) (State, error) {
	if s.Phase != Submitting {
		return s, ErrNotEditing
	}
	out := s.Clone()
	out.Phase = Editing
	for k, v := range a.Errors {
		out.Draft.Errors[k] = v
	}
	return out, nil
}

func reduceFinishSubmit(s State, a FinishSubmit) (State, error) {
	if s.Phase != Submitting {
		return s, ErrNotEditing
	}
	out := s.Clone()
	if a.Snapshot != nil {
		out.Snapshot = a.Snapshot.Clone()
	}
	out.Phase = Viewing
	out.Draft = nil
	return out, nil
}

// checkEditable guards draft actions. Reconciliation steps of a submission
// are the only draft actions accepted while Submitting.
func checkEditable(s State, a Action) error {
	switch s.Phase {
	case Editing:
		return nil
	case Submitting:
		switch a.(type) {
		case RestoreImage, ConfirmImageDeletion, ClearPassword:
			return nil
		}
		return ErrLocked
	}
	switch a.(type) {
	case UploadImageSuccess, UploadImageFail:
		return ErrStaleUpload
	}
	return ErrNotEditing
}

func applyDraft(d *Draft, a Action, towns []string) error {
	switch a := a.(type) {
	case SetField:
		return setField(d, a, towns)

	case SetSocialLink:
		if !slices.Contains(profile.Platforms, a.Platform) {
			return fmt.Errorf("%w: %q", ErrUnknownField, a.Platform)
		}
		d.SocialLinks[a.Platform] = a.URL
		d.refresh(KeySocialPrefix+a.Platform, validate.SocialLinks(profile.SocialLinks{a.Platform: a.URL}), a.Platform)

	case ToggleDayClosed:
		if !a.Day.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownField, a.Day)
		}
		d.Hours = hours.ToggleClosed(d.Hours, a.Day)
		d.refresh(KeyHoursPrefix+string(a.Day), hours.Validate(d.Hours), string(a.Day))

	case SetDayTime:
		if !a.Day.Valid() || (a.Field != hours.FieldStart && a.Field != hours.FieldEnd) {
			return fmt.Errorf("%w: %s %s", ErrUnknownField, a.Day, a.Field)
		}
		d.Hours = hours.SetTime(d.Hours, a.Day, a.Field, a.Value)
		d.refresh(KeyHoursPrefix+string(a.Day), hours.Validate(d.Hours), string(a.Day))

	case AddPredefinedService:
		list, err := d.Services.AddPredefined(profile.ServiceEntry{Name: a.Service.Name, Category: a.Service.Category})
		if err != nil {
			return err
		}
		d.Services = list
		delete(d.Errors, KeyServices)

	case AddCustomService:
		d.Services = d.Services.AddCustom(a.Category)
		delete(d.Errors, KeyServices)

	case UpdateService:
		list, err := d.Services.Update(a.Index, a.Field, a.Value, a.IsCustom)
		if err != nil {
			return err
		}
		d.Services = list
		if len(list.Validate()) == 0 {
			delete(d.Errors, KeyServices)
		}

	case RemoveService:
		list, _, err := d.Services.Remove(a.Index, a.IsCustom)
		if err != nil {
			return err
		}
		d.Services = list

	case RestoreService:
		d.Services = d.Services.Insert(a.Index, a.IsCustom, a.Entry)

	case CommitServices:
		list, _, errs := d.Services.Commit()
		d.Services = list
		if len(errs) == 0 {
			delete(d.Errors, KeyServices)
			return nil
		}
		d.Errors[KeyServices] = msgServicesFix
		fields := profile.Errors{KeyServices: msgServicesFix}
		if empty, ok := errs[KeyServices]; ok {
			d.Errors[KeyServices] = empty[KeyServices]
			fields[KeyServices] = empty[KeyServices]
		}
		return &profile.ValidationError{Fields: fields}

	case ShowPasswordFields:
		d.ShowPassword = a.Show
		if !a.Show {
			d.clearPassword()
		}

	case SetPasswordField:
		return setPasswordField(d, a)

	case ClearPassword:
		d.ShowPassword = false
		d.clearPassword()

	case UploadImageStart:
		d.Gallery = d.Gallery.AddLocal(a.LocalID, a.URI)

	case UploadImageSuccess:
		g, ok := d.Gallery.ResolveUpload(a.LocalID, a.Path)
		if !ok {
			return ErrStaleUpload
		}
		d.Gallery = g
		if !g.Uploading() {
			delete(d.Errors, KeyImages)
		}

	case UploadImageFail:
		g, ok := d.Gallery.FailUpload(a.LocalID)
		if !ok {
			return ErrStaleUpload
		}
		d.Gallery = g
		if !g.Uploading() {
			delete(d.Errors, KeyImages)
		}

	case DeleteImage:
		g, _, err := d.Gallery.Delete(a.Index)
		if err != nil {
			return err
		}
		d.Gallery = g

	case RestoreImage:
		d.Gallery = d.Gallery.Restore(a.Deletion)

	case ConfirmImageDeletion:
		d.Gallery = d.Gallery.ConfirmDeletion(a.Path)

	case MoveCursor:
		d.Gallery = d.Gallery.MoveCursor(a.Delta)

	default:
		return fmt.Errorf("unsupported action %T", a)
	}
	return nil
}

func setField(d *Draft, a SetField, towns []string) error {
	switch a.Field {
	case validate.FieldName:
		d.Identity.Name = a.Value
	case validate.FieldEmail:
		d.Identity.Email = a.Value
	case validate.FieldPhone:
		d.Identity.Phone = a.Value
	case FieldBusinessAddress:
		d.Business.BusinessAddress = a.Value
		return nil
	case FieldBusinessDescription:
		d.Business.Description = a.Value
		return nil
	case validate.FieldTown:
		d.Business.Town = a.Value
		d.refresh(a.Field, validate.Business(d.Business, towns), a.Field)
		return nil
	case validate.FieldYearsOfExperience:
		d.Business.YearsOfExperience = a.Value
		d.refresh(a.Field, validate.Business(d.Business, towns), a.Field)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, a.Field)
	}
	d.refresh(a.Field, validate.Identity(d.Identity), a.Field)
	return nil
}

func setPasswordField(d *Draft, a SetPasswordField) error {
	if !d.ShowPassword {
		return ErrPasswordHidden
	}
	switch a.Field {
	case validate.FieldOldPassword:
		d.Password.OldPassword = a.Value
	case validate.FieldNewPassword:
		d.Password.NewPassword = a.Value
	case validate.FieldConfirmPassword:
		d.Password.ConfirmPassword = a.Value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, a.Field)
	}
	fresh := validate.PasswordChange(d.Password)
	d.refresh(a.Field, fresh, a.Field)
	if a.Field == validate.FieldNewPassword && d.Password.ConfirmPassword != "" {
		d.refresh(validate.FieldConfirmPassword, fresh, validate.FieldConfirmPassword)
	}
	return nil
}
