// Package images stores provider gallery images.
package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Service errors
var (
	ErrEmpty              = errors.New("image is empty")
	ErrTooLarge           = errors.New("image too large")
	ErrUnsupportedType    = errors.New("image content type not allowed")
	ErrNotFound           = errors.New("image not found")
	ErrForbidden          = errors.New("image belongs to another user")
	errMissingStorageConf = errors.New("image storage is not configured")
)

const keyPrefix = "uploads"

// Storage is a flat object store addressed by key.
type Storage interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Remove(ctx context.Context, key string) error
}

// Policy bounds accepted uploads.
type Policy struct {
	MaxSizeBytes        int64
	AllowedContentTypes []string
}

// Service validates uploads and stores them under a per-user prefix.
type Service struct {
	storage Storage
	policy  Policy
	newID   func() string
}

// NewService creates an image service over storage.
func NewService(storage Storage, policy Policy) *Service {
	return &Service{storage: storage, policy: policy, newID: uuid.NewString}
}

// Upload validates data and stores it. It returns the key the profile
// refers to the image by.
func (s *Service) Upload(ctx context.Context, userID, contentType string, data []byte) (string, error) {
	if s.storage == nil {
		return "", errMissingStorageConf
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if s.policy.MaxSizeBytes > 0 && int64(len(data)) > s.policy.MaxSizeBytes {
		return "", ErrTooLarge
	}
	contentType = normalizeContentType(contentType)
	if !slices.Contains(s.policy.AllowedContentTypes, contentType) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	key := path.Join(keyPrefix, userID, s.newID()+extension(contentType))
	if err := s.storage.Put(ctx, key, contentType, bytes.Clone(data)); err != nil {
		return "", fmt.Errorf("storing image: %w", err)
	}
	return key, nil
}

// MaxSizeBytes reports the largest accepted upload.
func (s *Service) MaxSizeBytes() int64 {
	return s.policy.MaxSizeBytes
}

// Delete removes an image owned by userID.
func (s *Service) Delete(ctx context.Context, userID, key string) error {
	if s.storage == nil {
		return errMissingStorageConf
	}
	if !Owns(userID, key) {
		return ErrForbidden
	}
	return s.storage.Remove(ctx, key)
}

// Owns reports whether key lies under userID's upload prefix.
func Owns(userID, key string) bool {
	if userID == "" || strings.Contains(key, "..") {
		return false
	}
	return strings.HasPrefix(key, keyPrefix+"/"+userID+"/")
}

func normalizeContentType(ct string) string {
	ct, _, _ = strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}

func extension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}
