// Package testutil wires integration tests to the Firebase emulators and a
// local MinIO server. Tests skip when a backend is not reachable.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"testing"
	"time"
)

const (
	AuthEmulatorHost      = "127.0.0.1:7110"
	FirestoreEmulatorHost = "127.0.0.1:7130"
	ProjectID             = "demo-test-project"
	fakeAPIKey            = "fake-api-key" //nolint:gosec // Test-only fake key for emulator

	// MinIO defaults match `minio server` with its stock root credentials.
	defaultMinIOEndpoint = "127.0.0.1:9000"
	defaultMinIOUser     = "minioadmin"
	defaultMinIOPassword = "minioadmin" //nolint:gosec // Test-only default credential
)

func reachable(host string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// SkipIfFirestoreUnavailable skips the test unless the Firestore emulator is
// running, then points the SDK at it.
func SkipIfFirestoreUnavailable(t *testing.T) {
	t.Helper()
	if !reachable(FirestoreEmulatorHost) {
		t.Skip("Firestore emulator not available")
	}
	t.Setenv("FIRESTORE_EMULATOR_HOST", FirestoreEmulatorHost)
}

// SkipIfAuthUnavailable skips the test unless the Auth emulator is running,
// then points the SDK at it.
func SkipIfAuthUnavailable(t *testing.T) {
	t.Helper()
	if !reachable(AuthEmulatorHost) {
		t.Skip("Auth emulator not available")
	}
	t.Setenv("FIREBASE_AUTH_EMULATOR_HOST", AuthEmulatorHost)
}

func emulatorDelete(t *testing.T, url string) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("emulator reset failed: %v", err)
	}
	_ = resp.Body.Close()
}

// ClearFirestore removes all documents from the Firestore emulator.
func ClearFirestore(t *testing.T) {
	t.Helper()
	emulatorDelete(t, fmt.Sprintf("http://%s/emulator/v1/projects/%s/databases/(default)/documents",
		FirestoreEmulatorHost, ProjectID))
}

// ClearAccounts removes all users from the Auth emulator.
func ClearAccounts(t *testing.T) {
	t.Helper()
	emulatorDelete(t, fmt.Sprintf("http://%s/emulator/v1/projects/%s/accounts", AuthEmulatorHost, ProjectID))
}

// SignUpResponse from the Auth emulator.
type SignUpResponse struct {
	IDToken string `json:"idToken"`
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

// CreateTestUser signs a user up in the Auth emulator and returns its ID
// token.
func CreateTestUser(t *testing.T, email, password string) *SignUpResponse {
	t.Helper()
	url := fmt.Sprintf("http://%s/identitytoolkit.googleapis.com/v1/accounts:signUp?key=%s",
		AuthEmulatorHost, fakeAPIKey)

	body, _ := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var result SignUpResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return &result
}

// MinIOEnv holds connection settings for a test MinIO server.
type MinIOEnv struct {
	Endpoint  string
	AccessKey string
	SecretKey string
}

// SkipIfMinIOUnavailable skips the test unless a MinIO server answers at
// MINIO_TEST_ENDPOINT (default 127.0.0.1:9000).
func SkipIfMinIOUnavailable(t *testing.T) MinIOEnv {
	t.Helper()
	env := MinIOEnv{
		Endpoint:  envOr("MINIO_TEST_ENDPOINT", defaultMinIOEndpoint),
		AccessKey: envOr("MINIO_TEST_ACCESS_KEY", defaultMinIOUser),
		SecretKey: envOr("MINIO_TEST_SECRET_KEY", defaultMinIOPassword),
	}
	if !reachable(env.Endpoint) {
		t.Skip("MinIO not available")
	}
	return env
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
