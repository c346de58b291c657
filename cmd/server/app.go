package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/provider-profile/internal/http/health"
	"github.com/janisto/provider-profile/internal/http/v1/routes"
	"github.com/janisto/provider-profile/internal/platform/auth"
	"github.com/janisto/provider-profile/internal/platform/config"
	"github.com/janisto/provider-profile/internal/platform/firebase"
	applog "github.com/janisto/provider-profile/internal/platform/logging"
	appmiddleware "github.com/janisto/provider-profile/internal/platform/middleware"
	"github.com/janisto/provider-profile/internal/platform/respond"
	catalogsvc "github.com/janisto/provider-profile/internal/service/catalog"
	"github.com/janisto/provider-profile/internal/service/images"
	profilesvc "github.com/janisto/provider-profile/internal/service/profile"
)

const apiPrefix = "/v1"

// backends are the collaborators selected by configuration.
type backends struct {
	verifier auth.Verifier
	profiles profilesvc.Service
	images   *images.Service
	catalog  catalogsvc.Service
	checks   map[string]health.Check
	close    func() error
}

func newBackends(ctx context.Context, cfg *config.Server) (*backends, error) {
	clients, err := firebase.NewClients(ctx, cfg.Firebase, firebase.Needs{
		Auth:      cfg.Firebase.VerifyTokens,
		Firestore: cfg.Store.Backend == config.BackendFirestore,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing firebase: %w", err)
	}

	b := &backends{
		catalog: catalogsvc.NewDefault(),
		checks:  map[string]health.Check{},
		close:   clients.Close,
	}

	if clients.Auth != nil {
		b.verifier = auth.NewFirebaseVerifier(clients.Auth)
	} else {
		applog.LogWarn(ctx, "token verification disabled, accepting development tokens")
		b.verifier = auth.DevVerifier{}
	}

	if clients.Firestore != nil {
		store := profilesvc.NewFirestoreStore(clients.Firestore)
		b.profiles = store
		b.checks["profiles"] = store.Ping
	} else {
		b.profiles = profilesvc.NewMemoryStore()
	}

	var storage images.Storage
	switch cfg.Images.Backend {
	case config.BackendMinIO:
		minioStorage, err := images.NewMinIOStorage(ctx, images.MinIOConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			return nil, errors.Join(fmt.Errorf("initializing image storage: %w", err), clients.Close())
		}
		storage = minioStorage
		b.checks["images"] = minioStorage.Ping
	default:
		storage = images.NewMemoryStorage()
	}
	b.images = images.NewService(storage, images.Policy{
		MaxSizeBytes:        cfg.Images.MaxSizeBytes,
		AllowedContentTypes: cfg.Images.AllowedContentTypes,
	})

	applog.LogInfo(ctx, "backends ready",
		zap.String("store", cfg.Store.Backend),
		zap.String("images", cfg.Images.Backend),
		zap.Bool("verifyTokens", cfg.Firebase.VerifyTokens),
	)
	return b, nil
}

func newRouter(cfg *config.Server, b *backends) http.Handler {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(apiPrefix+"/api-docs"),
		appmiddleware.Vary(),
		appmiddleware.CORS(cfg.CORSOrigins...),
		appmiddleware.RequestID(),
		// Trusts X-Forwarded-For; deploy behind a proxy that sets it.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(requestLimit(cfg.Images.MaxSizeBytes)),
		applog.RequestLogger(cfg.Firebase.ProjectID),
		applog.AccessLogger("/health"),
		respond.Recoverer(),
	)

	router.Get("/health", health.Handler(b.checks))

	router.Route(apiPrefix, func(r chi.Router) {
		api := humachi.New(r, apiConfig())
		routes.Register(api, b.verifier, b.profiles, b.images, b.catalog, cfg.Towns)
	})
	return router
}

func apiConfig() huma.Config {
	cfg := huma.DefaultConfig("Provider Profile API", Version)
	cfg.DocsPath = "/api-docs"
	cfg.Servers = []*huma.Server{{URL: apiPrefix}}
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "Firebase ID token",
		},
	}
	cfg.OnAddOperation = append(cfg.OnAddOperation, addCBORContent)
	return cfg
}

// addCBORContent documents application/cbor next to every JSON body.
func addCBORContent(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil {
		if c, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = c
		}
	}
	for _, resp := range op.Responses {
		if c, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = c
		}
	}
}

// requestLimit caps request bodies at 1 MB or one image plus headroom.
func requestLimit(maxImage int64) int64 {
	return max(1<<20, maxImage+64<<10)
}
