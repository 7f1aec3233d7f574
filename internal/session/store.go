package session

import (
	"context"
	"sync"
	"time"
)

// Store persists conversation state between turns.
type Store interface {
	// Load returns the state for key or ErrNotFound.
	Load(ctx context.Context, key string) (*State, error)
	// Save stores st under st.Key. A ttl of zero keeps it until deleted.
	Save(ctx context.Context, st *State, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type memoryEntry struct {
	state   *State
	expires time.Time
}

// MemoryStore is an in-process Store with lazy TTL expiry.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Load(_ context.Context, key string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, ErrNotFound
	}
	return e.state.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, st *State, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{state: st.Clone()}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[st.Key] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len returns the number of stored states, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryStore) Close() error { return nil }
