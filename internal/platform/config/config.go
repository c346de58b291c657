// Package config loads server and client settings from the environment.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Backend names accepted by STORE_BACKEND and IMAGE_BACKEND.
const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendMinIO     = "minio"
)

// Server is the configuration of cmd/server.
type Server struct {
	Port        string   `env:"PORT" env-default:"8080"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	Towns       []string `env:"TOWNS" env-separator:","`

	Firebase Firebase
	Store    Store
	Images   Images
	MinIO    MinIO
}

// Firebase identifies the project used for auth and Firestore.
type Firebase struct {
	ProjectID       string `env:"FIREBASE_PROJECT_ID"`
	CredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	// VerifyTokens disables the Firebase verifier when false. Only for local
	// runs against the memory backend.
	VerifyTokens bool `env:"FIREBASE_VERIFY_TOKENS" env-default:"true"`
}

// Store selects the profile store backend.
type Store struct {
	Backend string `env:"STORE_BACKEND" env-default:"memory"`
}

// Images configures image uploads.
type Images struct {
	Backend             string   `env:"IMAGE_BACKEND" env-default:"memory"`
	MaxSizeBytes        int64    `env:"MAX_IMAGE_BYTES" env-default:"5242880"`
	AllowedContentTypes []string `env:"IMAGE_CONTENT_TYPES" env-separator:"," env-default:"image/jpeg,image/png,image/webp"`
}

// MinIO holds the S3-compatible object store settings.
type MinIO struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET" env-default:"profile-images"`
	UseSSL    bool   `env:"MINIO_USE_SSL" env-default:"false"`
}

// Client is the configuration of the draft controller's API client.
type Client struct {
	BaseURL string        `env:"PROFILE_API_URL" env-default:"http://localhost:8080"`
	Timeout time.Duration `env:"PROFILE_API_TIMEOUT" env-default:"15s"`
	Towns   []string      `env:"TOWNS" env-separator:","`
}

// LoadServer reads Server from the environment and validates it.
func LoadServer() (*Server, error) {
	var cfg Server
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading server config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadClient reads Client from the environment and validates it.
func LoadClient() (*Client, error) {
	var cfg Client
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading client config: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Towns = trimAll(cfg.Towns)
	if cfg.BaseURL == "" {
		return nil, errors.New("PROFILE_API_URL is required")
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("PROFILE_API_TIMEOUT must be > 0")
	}
	return &cfg, nil
}

// Addr returns the listen address.
func (c *Server) Addr() string {
	return ":" + c.Port
}

func (c *Server) normalize() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	c.Images.Backend = strings.ToLower(strings.TrimSpace(c.Images.Backend))
	c.CORSOrigins = trimAll(c.CORSOrigins)
	c.Towns = trimAll(c.Towns)
	c.Images.AllowedContentTypes = trimAll(c.Images.AllowedContentTypes)
}

// Validate checks cross-field constraints cleanenv cannot express.
func (c *Server) Validate() error {
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return errors.New("PORT must be a valid TCP port (1..65535)")
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendFirestore:
		if c.Firebase.ProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required for the firestore backend")
		}
	default:
		return fmt.Errorf("STORE_BACKEND %q is not supported", c.Store.Backend)
	}

	switch c.Images.Backend {
	case BackendMemory:
	case BackendMinIO:
		if c.MinIO.Endpoint == "" || c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "" || c.MinIO.Bucket == "" {
			return errors.New("MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY and MINIO_BUCKET are required for the minio backend")
		}
	default:
		return fmt.Errorf("IMAGE_BACKEND %q is not supported", c.Images.Backend)
	}

	if c.Firebase.VerifyTokens && c.Firebase.ProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required when FIREBASE_VERIFY_TOKENS is set")
	}
	if c.Images.MaxSizeBytes <= 0 {
		return errors.New("MAX_IMAGE_BYTES must be > 0")
	}
	if len(c.Images.AllowedContentTypes) == 0 {
		return errors.New("IMAGE_CONTENT_TYPES must not be empty")
	}
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
