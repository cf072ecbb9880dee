// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Used when no Redis address is configured, and in tests.
//
// Characteristics:
//   - Stores sessions as JSON keyed by ID, so every Get returns a private copy
//     and a caller never shares state with another request (same as Redis).
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Entries idle for longer than the TTL are treated as missing and swept on Save.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ashkam58/pythongrade3/internal/session"
)

// ErrNotFound is returned by Get for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Store defines the persistence interface for learner sessions.
// Implementations are backed by memory (this file) or Redis (redis.go).
type Store interface {
	// Save persists or updates a session and refreshes its TTL.
	Save(ctx context.Context, s *session.Session) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*session.Session, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}

type memEntry struct {
	data    []byte
	expires time.Time
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]memEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore constructs an in-memory Store. A ttl of zero keeps sessions
// until the process exits.
func NewMemoryStore(ttl time.Duration) Store {
	return &memory{sessions: make(map[string]memEntry), ttl: ttl, now: time.Now}
}

func (m *memory) Save(ctx context.Context, s *session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	var exp time.Time
	if m.ttl > 0 {
		exp = now.Add(m.ttl)
		for id, e := range m.sessions {
			if now.After(e.expires) {
				delete(m.sessions, id)
			}
		}
	}
	m.sessions[s.ID] = memEntry{data: data, expires: exp}
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || (!e.expires.IsZero() && m.now().After(e.expires)) {
		return nil, ErrNotFound
	}
	var s session.Session
	if err := json.Unmarshal(e.data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
