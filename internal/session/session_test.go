package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	tests := []struct {
		user, session, want string
	}{
		{"u1", "s1", "u1:s1"},
		{"", "s1", "s1"},
		{"u1", "", "u1"},
	}
	for _, tt := range tests {
		if got := Key(tt.user, tt.session); got != tt.want {
			t.Errorf("Key(%q, %q) = %q, want %q", tt.user, tt.session, got, tt.want)
		}
	}
}

func TestStatePending(t *testing.T) {
	st := New("u1", "s1")
	if st.HasPending() {
		t.Fatal("new state should have nothing pending")
	}

	slots := map[string]string{"status": "done"}
	st.SetPending("UpdateTaskIntent", slots)
	slots["status"] = "changed"
	if !st.HasPending() || st.PendingSlots["status"] != "done" {
		t.Errorf("SetPending should copy slots, got %v", st.PendingSlots)
	}

	st.ClearPending()
	if st.HasPending() || st.PendingSlots != nil {
		t.Errorf("ClearPending left %q %v", st.PendingIntent, st.PendingSlots)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if _, err := store.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load(missing) error = %v, want ErrNotFound", err)
	}

	st := New("u1", "s1")
	st.Remember("mem-1", "Buy milk")
	st.SetPending("CompleteTaskIntent", map[string]string{"task": "it"})
	if err := store.Save(ctx, st, time.Minute); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	st.PendingSlots["task"] = "mutated"
	got, err := store.Load(ctx, st.Key)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.LastTaskID != "mem-1" || got.PendingSlots["task"] != "it" {
		t.Errorf("Load() = %+v, want stored copy", got)
	}

	now = now.Add(time.Minute)
	if _, err := store.Load(ctx, st.Key); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() after ttl error = %v, want ErrNotFound", err)
	}
	if store.Len() != 0 {
		t.Errorf("expired entry not evicted, Len() = %d", store.Len())
	}

	if err := store.Save(ctx, st, 0); err != nil {
		t.Fatal(err)
	}
	now = now.Add(24 * time.Hour)
	if _, err := store.Load(ctx, st.Key); err != nil {
		t.Errorf("zero ttl should not expire: %v", err)
	}
	if err := store.Delete(ctx, st.Key); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(ctx, st.Key); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() after delete error = %v, want ErrNotFound", err)
	}
}

type failingStore struct{ MemoryStore }

func (*failingStore) Load(context.Context, string) (*State, error) {
	return nil, errors.New("connection refused")
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store, 0)
	if m.TTL() != DefaultTTL {
		t.Errorf("TTL() = %v, want %v", m.TTL(), DefaultTTL)
	}
	fixed := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	st, err := m.Begin(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if st.Turns != 0 || st.Key != "u1:s1" {
		t.Errorf("Begin() = %+v, want fresh state", st)
	}

	st.Remember("mem-2", "Quarterly report")
	if err := m.Commit(ctx, st); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	again, err := m.Begin(ctx, "u1", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if again.Turns != 1 || again.LastTaskID != "mem-2" || !again.UpdatedAt.Equal(fixed) {
		t.Errorf("Begin() after commit = %+v", again)
	}

	if err := m.End(ctx, again); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("End() left %d entries", store.Len())
	}
}

func TestManagerBeginPropagatesStoreErrors(t *testing.T) {
	m := NewManager(&failingStore{}, time.Minute)
	if _, err := m.Begin(context.Background(), "u1", "s1"); err == nil {
		t.Fatal("expected error from failing store")
	}
}
