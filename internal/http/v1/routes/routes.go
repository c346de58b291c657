package routes

import (
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/provider-profile/internal/http/v1/catalog"
	"github.com/janisto/provider-profile/internal/http/v1/profile"
	"github.com/janisto/provider-profile/internal/platform/auth"
	catalogsvc "github.com/janisto/provider-profile/internal/service/catalog"
	"github.com/janisto/provider-profile/internal/service/images"
	profilesvc "github.com/janisto/provider-profile/internal/service/profile"
)

// Register wires all v1 routes into the provided API router.
func Register(
	api huma.API,
	verifier auth.Verifier,
	profileService profilesvc.Service,
	imageService *images.Service,
	catalogService catalogsvc.Service,
	towns []string,
) {
	api.UseMiddleware(auth.NewAuthMiddleware(api, verifier))

	profile.Register(api, profileService, imageService, towns)
	catalog.Register(api, catalogService, apiPrefix(api))
}

func apiPrefix(api huma.API) string {
	for _, s := range api.OpenAPI().Servers {
		if u, err := url.Parse(s.URL); err == nil && u.Path != "" {
			return u.Path
		}
	}
	return ""
}
