package auth

import (
	"context"
	"sync/atomic"
)

// MockVerifier provides fake token verification for tests.
type MockVerifier struct {
	User  *User
	Error error

	calls atomic.Int32
}

// Verify returns the configured user or error.
func (m *MockVerifier) Verify(_ context.Context, _ string) (*User, error) {
	m.calls.Add(1)
	if m.Error != nil {
		return nil, m.Error
	}
	return m.User, nil
}

// Calls reports how many tokens were verified.
func (m *MockVerifier) Calls() int {
	return int(m.calls.Load())
}

// TestUser returns a standard test provider.
func TestUser() *User {
	return &User{
		UID:           "test-user-123",
		Email:         "provider@example.com",
		EmailVerified: true,
	}
}

// Compile-time interface check
var _ Verifier = (*MockVerifier)(nil)
