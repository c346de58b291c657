package profile

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Service in process memory. It backs local runs and
// unit tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*Profile),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) Create(ctx context.Context, userID string, params CreateParams) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.profiles[userID]; exists {
		audit(ctx, "create", userID, "profile", userID, ErrAlreadyExists)
		return nil, ErrAlreadyExists
	}
	p, err := newProfile(userID, params, m.now())
	if err != nil {
		audit(ctx, "create", userID, "profile", userID, err)
		return nil, err
	}
	m.profiles[userID] = p
	audit(ctx, "create", userID, "profile", userID, nil)
	return p.clone(), nil
}

func (m *MemoryStore) Get(ctx context.Context, userID string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, exists := m.profiles[userID]
	if !exists {
		return nil, ErrNotFound
	}
	return p.clone(), nil
}

func (m *MemoryStore) Update(ctx context.Context, userID string, params UpdateParams) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, exists := m.profiles[userID]
	if !exists {
		audit(ctx, "update", userID, "profile", userID, ErrNotFound)
		return nil, ErrNotFound
	}
	next := p.clone()
	if err := applyUpdate(next, params, m.now()); err != nil {
		audit(ctx, "update", userID, "profile", userID, err)
		return nil, err
	}
	m.profiles[userID] = next
	audit(ctx, "update", userID, "profile", userID, nil)
	return next.clone(), nil
}

func (m *MemoryStore) VerifyPassword(ctx context.Context, userID, email, password string) error {
	m.mu.RLock()
	p, exists := m.profiles[userID]
	m.mu.RUnlock()

	var err error
	if !exists {
		err = ErrNotFound
	} else {
		err = checkPassword(p, email, password)
	}
	audit(ctx, "verify_password", userID, "profile", userID, err)
	return err
}

func (m *MemoryStore) DeleteService(ctx context.Context, userID, serviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.mutate(userID, func(p *Profile) error { return removeOffering(p, serviceID) })
	audit(ctx, "delete", userID, "service", serviceID, err)
	return err
}

func (m *MemoryStore) AddImage(ctx context.Context, userID, path string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.mutate(userID, func(p *Profile) error {
		p.Images = uniqueStrings(append(p.Images, path))
		return nil
	})
	audit(ctx, "create", userID, "image", path, err)
	if err != nil {
		return nil, err
	}
	return m.profiles[userID].clone(), nil
}

func (m *MemoryStore) RemoveImage(ctx context.Context, userID, path string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.mutate(userID, func(p *Profile) error { return removeImagePath(p, path) })
	audit(ctx, "delete", userID, "image", path, err)
	if err != nil {
		return nil, err
	}
	return m.profiles[userID].clone(), nil
}

// mutate applies fn to a copy of the stored profile and commits it on
// success. Callers hold m.mu.
func (m *MemoryStore) mutate(userID string, fn func(*Profile) error) error {
	p, exists := m.profiles[userID]
	if !exists {
		return ErrNotFound
	}
	next := p.clone()
	if err := fn(next); err != nil {
		return err
	}
	next.UpdatedAt = m.now()
	m.profiles[userID] = next
	return nil
}

// Clear removes all profiles (useful for test cleanup).
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = make(map[string]*Profile)
}

// Compile-time interface check
var _ Service = (*MemoryStore)(nil)
