package profile

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/janisto/provider-profile/internal/platform/auth"
	applog "github.com/janisto/provider-profile/internal/platform/logging"
	"github.com/janisto/provider-profile/internal/platform/timeutil"
	"github.com/janisto/provider-profile/internal/service/images"
	profilesvc "github.com/janisto/provider-profile/internal/service/profile"
)

var bearerAuth = []map[string][]string{
	{"bearerAuth": {}},
}

// Register registers profile, password and gallery endpoints. towns
// restricts completeProfile.town when non-empty.
func Register(api huma.API, svc profilesvc.Service, imgs *images.Service, towns []string) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-profile",
		Method:        http.MethodPost,
		Path:          "/profile",
		Summary:       "Register provider profile",
		Description:   "Creates the profile and login password for the authenticated provider.",
		Tags:          []string{"Profile"},
		DefaultStatus: http.StatusCreated,
		Security:      bearerAuth,
	}, func(ctx context.Context, input *ProfileCreateInput) (*ProfileCreateOutput, error) {
		user, err := auth.RequireUser(ctx)
		if err != nil {
			return nil, err
		}

		profile, err := svc.Create(ctx, user.UID, profilesvc.CreateParams{
			Name:     input.Body.Name,
			Email:    input.Body.Email,
			Phone:    input.Body.Phone,
			Password: input.Body.Password,
		})
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &ProfileCreateOutput{
			Location: "/v1/profile",
			Body:     toHTTPProfile(profile),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-profile",
		Method:      http.MethodGet,
		Path:        "/profile",
		Summary:     "Get current provider's profile",
		Description: "Retrieves the profile for the authenticated provider.",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, _ *ProfileGetInput) (*ProfileGetOutput, error) {
		user, err := auth.RequireUser(ctx)
		if err != nil {
			return nil, err
		}

		profile, err := svc.Get(ctx, user.UID)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &ProfileGetOutput{Body: toHTTPProfile(profile)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPut,
		Path:        "/profile",
		Summary:     "Replace current provider's profile",
		Description: "Replaces every editable section of the profile. An omitted password keeps the current one.",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, input *ProfileUpdateInput) (*ProfileUpdateOutput, error) {
		user, err := auth.RequireUser(ctx)
		if err != nil {
			return nil, err
		}
		if err := checkUpdate(user.UID, input, towns); err != nil {
			return nil, err
		}

		profile, err := svc.Update(ctx, user.UID, toUpdateParams(input))
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &ProfileUpdateOutput{Body: toHTTPProfile(profile)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "verify-password",
		Method:        http.MethodPost,
		Path:          "/auth/verify-password",
		Summary:       "Verify current password",
		Description:   "Checks the provider's current password before a password change.",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearerAuth,
	}, func(ctx context.Context, input *VerifyPasswordInput) (*struct{}, error) {
		user, err := auth.RequireUser(ctx)
		if err != nil {
			return nil, err
		}
		if err := svc.VerifyPassword(ctx, user.UID, input.Body.Email, input.Body.OldPassword); err != nil {
			return nil, mapServiceError(err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-service",
		Method:        http.MethodDelete,
		Path:          "/profile/services/{id}",
		Summary:       "Remove an offered service",
		Description:   "Removes one persisted service from the provider's profile.",
		Tags:          []string{"Profile"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearerAuth,
	}, func(ctx context.Context, input *ServiceDeleteInput) (*struct{}, error) {
		user, err := auth.RequireUser(ctx)
		if err != nil {
			return nil, err
		}
		if err := svc.DeleteService(ctx, user.UID, input.ID); err != nil {
			return nil, mapServiceError(err)
		}
		return nil, nil
	})

	registerImages(api, svc, imgs)
}

// checkUpdate enforces rules the schema cannot express.
func checkUpdate(userID string, input *ProfileUpdateInput, towns []string) error {
	var details []error
	if town := input.Body.CompleteProfile.Town; town != "" && len(towns) > 0 && !slices.Contains(towns, town) {
		details = append(details, &huma.ErrorDetail{
			Message:  "unknown town",
			Location: "body.completeProfile.town",
			Value:    town,
		})
	}
	for i, svc := range input.Body.Services {
		if svc.IsCustom && strings.TrimSpace(svc.Description) == "" {
			details = append(details, &huma.ErrorDetail{
				Message:  "custom services require a description",
				Location: "body.services[" + strconv.Itoa(i) + "].description",
			})
		}
	}
	for day, hours := range input.Body.OperatingHours {
		if !hours.IsClosed && (hours.Start == nil || hours.End == nil) {
			details = append(details, &huma.ErrorDetail{
				Message:  "open days require start and end",
				Location: "body.operatingHours." + day,
			})
		}
	}
	for i, p := range input.Body.Images {
		if !images.Owns(userID, p) {
			details = append(details, &huma.ErrorDetail{
				Message:  "image does not belong to the provider",
				Location: "body.images[" + strconv.Itoa(i) + "]",
				Value:    p,
			})
		}
	}
	if len(details) > 0 {
		return huma.Error422UnprocessableEntity("validation failed", details...)
	}
	return nil
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, profilesvc.ErrNotFound):
		return huma.Error404NotFound("profile not found")
	case errors.Is(err, profilesvc.ErrAlreadyExists):
		return huma.Error409Conflict("profile already exists")
	case errors.Is(err, profilesvc.ErrDuplicateService):
		return huma.Error409Conflict("service already offered")
	case errors.Is(err, profilesvc.ErrServiceNotFound):
		return huma.Error404NotFound("service not found")
	case errors.Is(err, profilesvc.ErrImageNotFound):
		return huma.Error404NotFound("image not found")
	case errors.Is(err, profilesvc.ErrInvalidPassword):
		return huma.Error403Forbidden("password does not match")
	default:
		return huma.Error500InternalServerError("internal error")
	}
}

func toUpdateParams(input *ProfileUpdateInput) profilesvc.UpdateParams {
	b := input.Body
	params := profilesvc.UpdateParams{
		Name:           b.Name,
		Email:          b.Email,
		Phone:          b.Phone,
		Password:       b.Password,
		Complete:       profilesvc.Complete(b.CompleteProfile),
		Services:       make([]profilesvc.Offering, 0, len(b.Services)),
		OperatingHours: make(map[string]profilesvc.Day, len(b.OperatingHours)),
		SocialLinks:    b.SocialLinks,
		Images:         b.Images,
	}
	for _, s := range b.Services {
		params.Services = append(params.Services, profilesvc.Offering(s))
	}
	for day, h := range b.OperatingHours {
		d := profilesvc.Day{IsClosed: h.IsClosed}
		if h.Start != nil {
			d.Start = *h.Start
		}
		if h.End != nil {
			d.End = *h.End
		}
		params.OperatingHours[day] = d
	}
	return params
}

func toHTTPProfile(p *profilesvc.Profile) Profile {
	out := Profile{
		ID:              p.ID,
		Name:            p.Name,
		Email:           p.Email,
		Phone:           p.Phone,
		CompleteProfile: Complete(p.Complete),
		Services:        make([]Service, 0, len(p.Services)),
		OperatingHours:  make(map[string]Day, len(p.OperatingHours)),
		SocialLinks:     p.SocialLinks,
		Images:          p.Images,
		CreatedAt:       timeutil.NewTime(p.CreatedAt),
		UpdatedAt:       timeutil.NewTime(p.UpdatedAt),
	}
	for _, s := range p.Services {
		out.Services = append(out.Services, Service(s))
	}
	for day, d := range p.OperatingHours {
		h := Day{IsClosed: d.IsClosed}
		if !d.IsClosed {
			start, end := d.Start, d.End
			h.Start, h.End = &start, &end
		}
		out.OperatingHours[day] = h
	}
	if out.SocialLinks == nil {
		out.SocialLinks = map[string]string{}
	}
	if out.Images == nil {
		out.Images = []string{}
	}
	return out
}

func logImageCleanup(ctx context.Context, key string, err error) {
	applog.LogWarn(ctx, "image cleanup failed",
		zap.String("key", key),
		zap.Error(err),
	)
}
