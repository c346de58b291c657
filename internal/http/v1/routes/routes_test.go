package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"

	"github.com/janisto/provider-profile/internal/platform/auth"
	catalogsvc "github.com/janisto/provider-profile/internal/service/catalog"
	"github.com/janisto/provider-profile/internal/service/images"
	profilesvc "github.com/janisto/provider-profile/internal/service/profile"
)

func newTestRouter(verifier auth.Verifier) chi.Router {
	router := chi.NewRouter()
	router.Route("/v1", func(r chi.Router) {
		cfg := huma.DefaultConfig("RoutesTest", "test")
		cfg.Servers = []*huma.Server{{URL: "/v1"}}
		api := humachi.New(r, cfg)
		Register(api, verifier,
			profilesvc.NewMemoryStore(),
			images.NewService(images.NewMemoryStorage(), images.Policy{
				MaxSizeBytes:        1 << 20,
				AllowedContentTypes: []string{"image/png"},
			}),
			catalogsvc.NewDefault(),
			nil,
		)
	})
	return router
}

func TestCatalogIsPublic(t *testing.T) {
	verifier := &auth.MockVerifier{User: auth.TestUser()}
	rec := httptest.NewRecorder()
	newTestRouter(verifier).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/catalog?limit=1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if link := rec.Header().Get("Link"); !strings.HasPrefix(link, "</v1/catalog?") {
		t.Errorf("expected prefixed next link, got %q", link)
	}
	if verifier.Calls() != 0 {
		t.Error("catalog must not require a token")
	}
}

func TestProfileRequiresToken(t *testing.T) {
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/v1/profile"},
		{http.MethodPut, "/v1/profile"},
		{http.MethodPost, "/v1/auth/verify-password"},
		{http.MethodDelete, "/v1/profile/services/abc"},
		{http.MethodPost, "/v1/profile/images"},
		{http.MethodDelete, "/v1/profile/images?path=x"},
	} {
		rec := httptest.NewRecorder()
		router := newTestRouter(&auth.MockVerifier{User: auth.TestUser()})
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestProfileNotFoundBeforeRegistration(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	newTestRouter(&auth.MockVerifier{User: auth.TestUser()}).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
