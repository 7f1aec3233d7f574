package tasksource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Jayphen/taskvoice/internal/interpret"
)

// fakeDocDB is a minimal in-memory document database API.
type fakeDocDB struct {
	mu       sync.Mutex
	pages    []*remotePage
	nextID   int
	pageSize int
	token    string
}

func (f *fakeDocDB) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.token != "" && r.Header.Get("Authorization") != "Bearer "+f.token {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/query"):
		var body struct {
			StartCursor string `json:"start_cursor"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		start := 0
		if body.StartCursor != "" {
			fmt.Sscanf(body.StartCursor, "%d", &start)
		}
		end := min(start+f.pageSize, len(f.pages))
		resp := remoteQueryResponse{}
		for _, p := range f.pages[start:end] {
			resp.Results = append(resp.Results, *p)
		}
		if end < len(f.pages) {
			resp.HasMore = true
			resp.NextCursor = fmt.Sprintf("%d", end)
		}
		_ = json.NewEncoder(w).Encode(resp)

	case r.Method == http.MethodPost && r.URL.Path == "/pages":
		var body struct {
			Properties map[string]string `json:"properties"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.nextID++
		page := &remotePage{
			ID:          fmt.Sprintf("page-%d", f.nextID),
			CreatedTime: "2026-10-19T12:00:00Z",
			Properties:  body.Properties,
		}
		f.pages = append(f.pages, page)
		_ = json.NewEncoder(w).Encode(page)

	case strings.HasPrefix(r.URL.Path, "/pages/"):
		page := f.find(strings.TrimPrefix(r.URL.Path, "/pages/"))
		if page == nil {
			http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
			return
		}
		if r.Method == http.MethodPatch {
			var body struct {
				Archived   bool              `json:"archived"`
				Properties map[string]string `json:"properties"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Archived {
				page.Archived = true
			}
			for k, v := range body.Properties {
				page.Properties[k] = v
			}
		}
		_ = json.NewEncoder(w).Encode(page)

	default:
		http.Error(w, `{"message":"bad route"}`, http.StatusBadRequest)
	}
}

func (f *fakeDocDB) find(id string) *remotePage {
	for _, p := range f.pages {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func newTestRemote(t *testing.T, handler http.Handler) *RemoteSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	src, err := NewRemoteSource(RemoteConfig{URL: srv.URL, DatabaseID: "db1", Token: "secret"})
	if err != nil {
		t.Fatalf("NewRemoteSource() error = %v", err)
	}
	src.loc = time.UTC
	src.sleep = func(context.Context, time.Duration) error { return nil }
	return src
}

func TestRemoteSourceCRUD(t *testing.T) {
	ctx := context.Background()
	db := &fakeDocDB{pageSize: 2, token: "secret"}
	src := newTestRemote(t, db)

	titles := []string{"Pay rent", "Quarterly report", "Buy milk"}
	for _, title := range titles {
		if _, err := src.CreateTask(ctx, NewTask{Title: title}); err != nil {
			t.Fatalf("CreateTask(%q) error = %v", title, err)
		}
	}

	tasks, err := src.ListTasks(ctx, nil)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	assertTitles(t, tasks, titles)

	due := time.Date(2026, time.October, 21, 0, 0, 0, 0, time.UTC)
	done := interpret.StatusDone
	if err := src.UpdateTask(ctx, "page-2", TaskUpdate{Status: &done, Due: &due}); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	got, err := src.GetTask(ctx, "page-2")
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.Status != interpret.StatusDone {
		t.Errorf("Status = %q, want done", got.Status)
	}
	if got.Due == nil || !got.Due.Equal(due) {
		t.Errorf("Due = %v, want %v", got.Due, due)
	}

	if err := src.DeleteTask(ctx, "page-1"); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := src.GetTask(ctx, "page-1"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("GetTask() archived error = %v, want ErrTaskNotFound", err)
	}
	if _, err := src.GetTask(ctx, "page-99"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("GetTask() missing error = %v, want ErrTaskNotFound", err)
	}

	tasks, err = src.ListTasks(ctx, &TaskFilter{Status: []interpret.Status{interpret.StatusToDo}})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	assertTitles(t, tasks, []string{"Buy milk"})
}

func TestRemoteSourceRetries(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "2")
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(remoteQueryResponse{})
	})
	src := newTestRemote(t, handler)

	var waits []time.Duration
	src.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	if _, err := src.ListTasks(context.Background(), nil); err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if len(waits) != 2 || waits[0] != 2*time.Second {
		t.Errorf("waits = %v, want two waits of 2s", waits)
	}
}

func TestRemoteSourceGivesUp(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusBadGateway)
	})
	src := newTestRemote(t, handler)

	_, err := src.ListTasks(context.Background(), nil)
	var remoteErr *remoteError
	if !errors.As(err, &remoteErr) || remoteErr.Status != http.StatusBadGateway {
		t.Fatalf("ListTasks() error = %v, want remoteError 502", err)
	}
	if calls.Load() != remoteMaxRetries+1 {
		t.Errorf("calls = %d, want %d", calls.Load(), remoteMaxRetries+1)
	}
}

func TestRemoteSourceDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad", http.StatusBadRequest)
	})
	src := newTestRemote(t, handler)

	if _, err := src.ListTasks(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestBackoff(t *testing.T) {
	if got := backoff(0); got != remoteBaseBackoff {
		t.Errorf("backoff(0) = %v, want %v", got, remoteBaseBackoff)
	}
	if got := backoff(10); got != remoteMaxBackoff {
		t.Errorf("backoff(10) = %v, want %v", got, remoteMaxBackoff)
	}
	if got := retryAfter("3"); got != 3*time.Second {
		t.Errorf("retryAfter(3) = %v", got)
	}
	if got := retryAfter("3600"); got != remoteMaxBackoff {
		t.Errorf("retryAfter(3600) = %v, want cap", got)
	}
	if got := retryAfter("soon"); got != 0 {
		t.Errorf("retryAfter(soon) = %v, want 0", got)
	}
}

func TestNewRemoteSourceValidates(t *testing.T) {
	if _, err := NewRemoteSource(RemoteConfig{URL: "http://x"}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}
