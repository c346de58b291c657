// Package session holds the bearer token of the signed-in user.
package session

import (
	"strings"
	"sync"
)

// Store gives read and write access to the process-wide bearer token.
type Store interface {
	Get() string
	Set(token string)
	Clear()
}

// Memory is an in-process Store safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	token string
}

// NewMemory creates a Memory store seeded with token (may be empty).
func NewMemory(token string) *Memory {
	return &Memory{token: strings.TrimSpace(token)}
}

// Get returns the current token or "" when signed out.
func (m *Memory) Get() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Set replaces the token.
func (m *Memory) Set(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = strings.TrimSpace(token)
}

// Clear signs the session out.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
}

// Compile-time interface check
var _ Store = (*Memory)(nil)
