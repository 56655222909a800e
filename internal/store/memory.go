// internal/store/memory.go
//
// In-memory implementation of game.SessionStore.
// Holds at most one active round per chat; nothing survives a restart.
//
// Characteristics:
//   - Stores *game.Session values keyed by chat ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Get returns a copy, so callers cannot mutate stored state behind the lock.
//   - Update is an atomic read-modify-write, so concurrent guesses for the
//     same chat never lose an increment.

package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/robalobadob/guessbot/internal/game"
)

// ErrNotFound is returned for chats without a session.
// It matches game.ErrNoActiveSession under errors.Is.
var ErrNotFound = fmt.Errorf("session not found: %w", game.ErrNoActiveSession)

// Store defines the session persistence interface.
// Implementations may be backed by memory (this package), Redis, SQL, etc.
type Store interface {
	game.SessionStore

	// Len reports the number of chats with a session.
	Len(ctx context.Context) int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex            // guards sessions map
	sessions map[int64]*game.Session // keyed by chat ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[int64]*game.Session)}
}

// Get returns a copy of the chat's session or ErrNotFound.
func (m *memory) Get(ctx context.Context, chatID int64) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[chatID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, ErrNotFound
}

// Set stores s for chatID, overwriting any existing session.
func (m *memory) Set(ctx context.Context, chatID int64, s *game.Session) error {
	if s == nil {
		return fmt.Errorf("set chat %d: nil session", chatID)
	}
	cp := *s
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[chatID] = &cp
	return nil
}

// Update applies fn to the stored session while holding the write lock.
// If fn returns an error the session is left as it was before the call.
func (m *memory) Update(ctx context.Context, chatID int64, fn func(*game.Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[chatID]
	if !ok {
		return ErrNotFound
	}
	work := *s
	if err := fn(&work); err != nil {
		return err
	}
	*s = work
	return nil
}

// Len reports how many chats currently have a session.
func (m *memory) Len(ctx context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
