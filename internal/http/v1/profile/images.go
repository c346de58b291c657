package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/provider-profile/internal/platform/auth"
	"github.com/janisto/provider-profile/internal/service/images"
	profilesvc "github.com/janisto/provider-profile/internal/service/profile"
)

func registerImages(api huma.API, svc profilesvc.Service, imgs *images.Service) {
	huma.Register(api, huma.Operation{
		OperationID:   "upload-image",
		Method:        http.MethodPost,
		Path:          "/profile/images",
		Summary:       "Upload gallery image",
		Description:   "Stores the raw request body as a gallery image and appends it to the profile.",
		Tags:          []string{"Gallery"},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  bodyLimit(imgs.MaxSizeBytes()),
		Security:      bearerAuth,
	}, func(ctx context.Context, input *ImageUploadInput) (*ImageUploadOutput, error) {
		user, err := auth.RequireUser(ctx)
		if err != nil {
			return nil, err
		}

		key, err := imgs.Upload(ctx, user.UID, input.ContentType, input.RawBody)
		if err != nil {
			return nil, mapImageError(err)
		}
		if _, err := svc.AddImage(ctx, user.UID, key); err != nil {
			if delErr := imgs.Delete(context.WithoutCancel(ctx), user.UID, key); delErr != nil {
				logImageCleanup(ctx, key, delErr)
			}
			return nil, mapServiceError(err)
		}
		return &ImageUploadOutput{Body: Image{Path: key}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-image",
		Method:        http.MethodDelete,
		Path:          "/profile/images",
		Summary:       "Delete gallery image",
		Description:   "Removes the image from the profile and from storage.",
		Tags:          []string{"Gallery"},
		DefaultStatus: http.StatusNoContent,
		Security:      bearerAuth,
	}, func(ctx context.Context, input *ImageDeleteInput) (*struct{}, error) {
		user, err := auth.RequireUser(ctx)
		if err != nil {
			return nil, err
		}
		if !images.Owns(user.UID, input.Path) {
			return nil, mapImageError(images.ErrForbidden)
		}

		_, err = svc.RemoveImage(ctx, user.UID, input.Path)
		referenced := err == nil
		if err != nil && !errors.Is(err, profilesvc.ErrImageNotFound) {
			return nil, mapServiceError(err)
		}

		switch err := imgs.Delete(ctx, user.UID, input.Path); {
		case err == nil:
		case errors.Is(err, images.ErrNotFound):
			if !referenced {
				return nil, mapImageError(err)
			}
		default:
			if !referenced {
				return nil, mapImageError(err)
			}
			logImageCleanup(ctx, input.Path, err)
		}
		return nil, nil
	})
}

// bodyLimit leaves room for an image of exactly maxImage bytes; Huma rejects
// bodies that reach its limit.
func bodyLimit(maxImage int64) int64 {
	if maxImage <= 0 {
		return 0
	}
	return maxImage + 1
}

func mapImageError(err error) error {
	switch {
	case errors.Is(err, images.ErrEmpty):
		return huma.Error422UnprocessableEntity("image body is empty")
	case errors.Is(err, images.ErrTooLarge):
		return huma.NewError(http.StatusRequestEntityTooLarge, "image too large")
	case errors.Is(err, images.ErrUnsupportedType):
		return huma.NewError(http.StatusUnsupportedMediaType, "image content type not allowed")
	case errors.Is(err, images.ErrForbidden):
		return huma.Error403Forbidden("image belongs to another provider")
	case errors.Is(err, images.ErrNotFound):
		return huma.Error404NotFound("image not found")
	default:
		return huma.Error500InternalServerError("internal error")
	}
}
