// internal/store/memory.go
//
// In-memory registry of live game sessions for the HTTP host.
//
// Characteristics:
//   - Holds games.Variant values keyed by session ID (see NewID).
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Delete closes the variant, which stops any running ticker.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/robalobadob/arcade/internal/games"
	"github.com/robalobadob/arcade/internal/metrics"
)

// ErrNotFound is returned for an unknown session ID.
var ErrNotFound = errors.New("session not found")

// Store keeps live sessions for the host.
type Store interface {
	// Save registers v under id, replacing any session already there.
	Save(ctx context.Context, id string, v games.Variant) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (games.Variant, error)

	// Delete closes and forgets a session.
	Delete(ctx context.Context, id string) error

	// Len reports how many sessions are held.
	Len() int
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]games.Variant
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]games.Variant)}
}

func (m *memory) Save(ctx context.Context, id string, v games.Variant) error {
	if id == "" {
		return errors.New("empty session id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = v
	metrics.SessionsActive.Set(float64(len(m.sessions)))
	return nil
}

// NewID returns a fresh random session ID.
func NewID() string { return uuid.NewString() }

func (m *memory) Get(ctx context.Context, id string) (games.Variant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.sessions[id]; ok {
		return v, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	v, ok := m.sessions[id]
	delete(m.sessions, id)
	metrics.SessionsActive.Set(float64(len(m.sessions)))
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	v.Close()
	return nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
