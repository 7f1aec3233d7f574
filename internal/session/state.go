// Package session holds the conversation state carried between voice turns.
//
// A State is an explicit value: the voice handler loads it at the start of a
// turn, mutates it, and commits it back through a Store. Nothing here is
// process-global, so concurrent conversations never share state.
package session

import (
	"errors"
	"maps"
	"time"
)

// ErrNotFound is returned by Store.Load when no state exists for a key.
var ErrNotFound = errors.New("session state not found")

// State is the per-conversation memory of the voice handler.
type State struct {
	Key       string `json:"key"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`

	// LastTaskID is the task the previous turn acted on; pronouns resolve to it.
	LastTaskID   string `json:"last_task_id,omitempty"`
	LastTaskName string `json:"last_task_name,omitempty"`

	// PendingIntent is set while waiting for the user to name a task.
	PendingIntent string            `json:"pending_intent,omitempty"`
	PendingSlots  map[string]string `json:"pending_slots,omitempty"`

	Turns     int       `json:"turns"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key builds the store key for a user's conversation. Sessions without a user
// (anonymous test clients) are keyed by session alone.
func Key(userID, sessionID string) string {
	if userID == "" {
		return sessionID
	}
	if sessionID == "" {
		return userID
	}
	return userID + ":" + sessionID
}

// New returns an empty state for a conversation.
func New(userID, sessionID string) *State {
	return &State{
		Key:       Key(userID, sessionID),
		UserID:    userID,
		SessionID: sessionID,
	}
}

// Remember records the task the current turn acted on.
func (s *State) Remember(id, name string) {
	s.LastTaskID = id
	s.LastTaskName = name
}

// Forget clears the remembered task, e.g. after it was deleted.
func (s *State) Forget() {
	s.LastTaskID = ""
	s.LastTaskName = ""
}

// SetPending parks an intent that is waiting for a task phrase.
func (s *State) SetPending(intent string, slots map[string]string) {
	s.PendingIntent = intent
	s.PendingSlots = maps.Clone(slots)
}

// ClearPending drops any parked intent.
func (s *State) ClearPending() {
	s.PendingIntent = ""
	s.PendingSlots = nil
}

// HasPending reports whether a clarification is outstanding.
func (s *State) HasPending() bool {
	return s.PendingIntent != ""
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.PendingSlots = maps.Clone(s.PendingSlots)
	return &c
}
