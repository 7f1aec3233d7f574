package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jayphen/taskvoice/internal/logging"
)

// DefaultTTL is how long an idle conversation is remembered.
const DefaultTTL = 30 * time.Minute

// Manager drives the load/commit lifecycle of conversation state over a Store.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewManager wraps store. A non-positive ttl selects DefaultTTL.
func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

// TTL returns the idle expiry applied on Commit.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Begin loads the state for a conversation, creating it on first use.
func (m *Manager) Begin(ctx context.Context, userID, sessionID string) (*State, error) {
	key := Key(userID, sessionID)
	st, err := m.store.Load(ctx, key)
	switch {
	case err == nil:
		return st, nil
	case errors.Is(err, ErrNotFound):
		logging.WithSessionID(sessionID).WithUserID(userID).Debug("starting conversation")
		return New(userID, sessionID), nil
	default:
		return nil, fmt.Errorf("failed to load session %s: %w", key, err)
	}
}

// Commit records a completed turn and saves the state.
func (m *Manager) Commit(ctx context.Context, st *State) error {
	st.Turns++
	st.UpdatedAt = m.now()
	if err := m.store.Save(ctx, st, m.ttl); err != nil {
		return fmt.Errorf("failed to save session %s: %w", st.Key, err)
	}
	return nil
}

// End forgets a conversation.
func (m *Manager) End(ctx context.Context, st *State) error {
	if err := m.store.Delete(ctx, st.Key); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", st.Key, err)
	}
	logging.WithSessionID(st.SessionID).WithField("turns", st.Turns).Debug("conversation ended")
	return nil
}

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}
