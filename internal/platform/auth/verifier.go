// Package auth authenticates marketplace providers from bearer tokens.
package auth

import (
	"context"
	"errors"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
)

// User is an authenticated provider.
type User struct {
	UID           string
	Email         string
	EmailVerified bool
}

// Authentication failures.
var (
	ErrNoToken      = errors.New("missing authorization header")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
	ErrUserDisabled = errors.New("user disabled")

	// ErrCertificateFetch is a transient failure to load signing keys. It
	// maps to 503 rather than 401.
	ErrCertificateFetch = errors.New("failed to fetch certificates")
)

// Verifier validates a bearer token and returns its user.
type Verifier interface {
	Verify(ctx context.Context, token string) (*User, error)
}

// FirebaseVerifier verifies Firebase ID tokens and checks revocation.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier creates a verifier over a Firebase auth client.
func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*User, error) {
	token, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, classifyFirebaseError(err)
	}

	email, _ := token.Claims["email"].(string)
	verified, _ := token.Claims["email_verified"].(bool)
	return &User{UID: token.UID, Email: email, EmailVerified: verified}, nil
}

func classifyFirebaseError(err error) error {
	switch {
	case fbauth.IsCertificateFetchFailed(err):
		return ErrCertificateFetch
	case fbauth.IsIDTokenExpired(err):
		return ErrTokenExpired
	case fbauth.IsIDTokenRevoked(err):
		return ErrTokenRevoked
	case fbauth.IsUserDisabled(err):
		return ErrUserDisabled
	default:
		return ErrInvalidToken
	}
}

// DevVerifier trusts the token as "<uid>" or "<uid>:<email>". It exists for
// local runs without Firebase and must never be used in production.
type DevVerifier struct{}

func (DevVerifier) Verify(_ context.Context, token string) (*User, error) {
	uid, email, _ := strings.Cut(strings.TrimSpace(token), ":")
	if uid == "" || strings.ContainsAny(uid, "/ ") {
		return nil, ErrInvalidToken
	}
	return &User{UID: uid, Email: email, EmailVerified: email != ""}, nil
}

// ExtractBearerToken extracts the token from an Authorization header.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}

// Compile-time interface checks
var (
	_ Verifier = (*FirebaseVerifier)(nil)
	_ Verifier = DevVerifier{}
)
