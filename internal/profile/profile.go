// Package profile manages the authenticated user's editable profile
// fields with optimistic updates: changes are applied in memory first,
// then persisted, and rolled back to the prior snapshot if the durable
// write fails.
package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sakhareritesh/dashboard/internal/store"
)

// Update holds the fields a user may change. Nil means "leave as is".
type Update struct {
	Name   *string
	Avatar *string
}

// UpdateResult reports the outcome of an optimistic update. On rollback
// Previous is the snapshot that was restored.
type UpdateResult struct {
	Profile    *store.Profile
	Previous   *store.Profile
	RolledBack bool
}

// Manager owns the in-memory profile mirror and its durable copy.
type Manager struct {
	store store.Store

	mu      sync.Mutex
	current *store.Profile
}

// NewManager creates a profile manager over the given store.
func NewManager(st store.Store) *Manager {
	return &Manager{store: st}
}

// Load reads the stored profile into memory. A missing profile is not
// an error; Current simply stays nil until the first update.
func (m *Manager) Load(ctx context.Context) error {
	p, err := m.store.GetProfile(ctx)
	if errors.Is(err, store.ErrProfileNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.current = p
	m.mu.Unlock()
	return nil
}

// Current returns a copy of the in-memory profile, or nil.
func (m *Manager) Current() *store.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	p := *m.current
	return &p
}

// UpdateProfile applies upd optimistically and persists it. If the
// durable write fails the in-memory state is restored from the snapshot
// taken before the update and the result reports the rollback.
func (m *Manager) UpdateProfile(ctx context.Context, upd Update) (UpdateResult, error) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return UpdateResult{}, fmt.Errorf("update profile: %w", store.ErrProfileNotFound)
	}

	previous := *m.current

	next := previous
	if upd.Name != nil && *upd.Name != "" {
		next.Name = *upd.Name
	}
	if upd.Avatar != nil && *upd.Avatar != "" {
		next.Avatar = *upd.Avatar
	}
	m.current = &next
	m.mu.Unlock()

	if err := m.store.SaveProfile(ctx, &next); err != nil {
		m.mu.Lock()
		restored := previous
		m.current = &restored
		m.mu.Unlock()
		return UpdateResult{Previous: &previous, RolledBack: true},
			fmt.Errorf("save profile: %w", err)
	}

	return UpdateResult{Profile: &next, Previous: &previous}, nil
}

// CreateProfile seeds the profile after signup.
func (m *Manager) CreateProfile(ctx context.Context, p *store.Profile) error {
	if err := m.store.SaveProfile(ctx, p); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	m.mu.Lock()
	stored := *p
	m.current = &stored
	m.mu.Unlock()
	return nil
}
