package tasksource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Jayphen/taskvoice/internal/interpret"
	"github.com/Jayphen/taskvoice/internal/logging"
)

const (
	remoteMaxRetries  = 3
	remoteBaseBackoff = 500 * time.Millisecond
	remoteMaxBackoff  = 8 * time.Second
	remotePageSize    = 100
)

// Property names used on remote pages.
const (
	propName     = "Name"
	propNotes    = "Notes"
	propStatus   = "Status"
	propPriority = "Priority"
	propCategory = "Category"
	propDue      = "Due"
)

// RemoteSource implements TaskSource against an HTTP document-database API
// where each task is a page in a database:
//
//	POST  {url}/databases/{id}/query
//	GET   {url}/pages/{id}
//	POST  {url}/pages
//	PATCH {url}/pages/{id}
//
// Rate limiting (429) and server errors are retried with exponential
// backoff, honoring Retry-After.
type RemoteSource struct {
	baseURL    string
	databaseID string
	token      string
	client     *http.Client
	loc        *time.Location
	sleep      func(ctx context.Context, d time.Duration) error
	info       SourceInfo
}

// RemoteConfig holds configuration for the remote source.
type RemoteConfig struct {
	URL        string // API base URL
	DatabaseID string // Database holding the task pages
	Token      string // Bearer token (or read from TASKVOICE_REMOTE_TOKEN env var)
	Timeout    time.Duration
}

type remotePage struct {
	ID             string            `json:"id"`
	Archived       bool              `json:"archived"`
	CreatedTime    string            `json:"created_time,omitempty"`
	LastEditedTime string            `json:"last_edited_time,omitempty"`
	Properties     map[string]string `json:"properties"`
}

type remoteQueryResponse struct {
	Results    []remotePage `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor string       `json:"next_cursor"`
}

type remoteError struct {
	Status  int
	Message string
}

func (e *remoteError) Error() string {
	return fmt.Sprintf("remote API returned status %d: %s", e.Status, e.Message)
}

// NewRemoteSource creates a new remote source.
func NewRemoteSource(config RemoteConfig) (*RemoteSource, error) {
	token := config.Token
	if token == "" {
		token = os.Getenv("TASKVOICE_REMOTE_TOKEN")
	}
	if config.URL == "" || config.DatabaseID == "" {
		return nil, fmt.Errorf("%w: remote requires 'url' and 'database' parameters", ErrInvalidConfig)
	}
	if _, err := url.Parse(config.URL); err != nil {
		return nil, fmt.Errorf("%w: bad url: %v", ErrInvalidConfig, err)
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &RemoteSource{
		baseURL:    strings.TrimRight(config.URL, "/"),
		databaseID: config.DatabaseID,
		token:      token,
		client: &http.Client{
			Timeout: timeout,
		},
		loc:   time.Local,
		sleep: sleepContext,
		info: SourceInfo{
			Type:        SourceTypeRemote,
			Name:        "remote",
			Description: "Remote document database",
			Config: Metadata{
				"url":      config.URL,
				"database": config.DatabaseID,
			},
		},
	}, nil
}

// Info returns metadata about this source.
func (r *RemoteSource) Info() SourceInfo {
	return r.info
}

// ListTasks queries the database, following pagination cursors.
func (r *RemoteSource) ListTasks(ctx context.Context, filter *TaskFilter) ([]Task, error) {
	var tasks []Task
	cursor := ""
	for {
		body := map[string]interface{}{"page_size": remotePageSize}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		var resp remoteQueryResponse
		if err := r.do(ctx, http.MethodPost, "/databases/"+url.PathEscape(r.databaseID)+"/query", body, &resp); err != nil {
			return nil, err
		}
		for _, page := range resp.Results {
			if page.Archived {
				continue
			}
			tasks = append(tasks, r.convertPage(page))
		}
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return filter.apply(tasks), nil
}

// GetTask retrieves one page.
func (r *RemoteSource) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var page remotePage
	if err := r.do(ctx, http.MethodGet, "/pages/"+url.PathEscape(taskID), nil, &page); err != nil {
		return nil, err
	}
	if page.Archived {
		return nil, ErrTaskNotFound
	}
	task := r.convertPage(page)
	return &task, nil
}

// CreateTask creates a page in the database.
func (r *RemoteSource) CreateTask(ctx context.Context, nt NewTask) (*Task, error) {
	if strings.TrimSpace(nt.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	nt = nt.withDefaults()

	props := map[string]string{
		propName:     strings.TrimSpace(nt.Title),
		propStatus:   string(nt.Status),
		propPriority: string(nt.Priority),
		propCategory: string(nt.Category),
	}
	if nt.Description != "" {
		props[propNotes] = nt.Description
	}
	if nt.Due != nil {
		props[propDue] = formatDue(nt.Due)
	}
	body := map[string]interface{}{
		"parent":     map[string]string{"database_id": r.databaseID},
		"properties": props,
	}

	var page remotePage
	if err := r.do(ctx, http.MethodPost, "/pages", body, &page); err != nil {
		return nil, err
	}
	task := r.convertPage(page)
	return &task, nil
}

// UpdateTask patches the changed properties.
func (r *RemoteSource) UpdateTask(ctx context.Context, taskID string, update TaskUpdate) error {
	props := map[string]string{}
	if update.Title != nil {
		props[propName] = *update.Title
	}
	if update.Description != nil {
		props[propNotes] = *update.Description
	}
	if update.Status != nil {
		props[propStatus] = string(*update.Status)
	}
	if update.Priority != nil {
		props[propPriority] = string(*update.Priority)
	}
	if update.Category != nil {
		props[propCategory] = string(*update.Category)
	}
	if update.ClearDue {
		props[propDue] = ""
	}
	if update.Due != nil {
		props[propDue] = formatDue(update.Due)
	}
	if len(props) == 0 {
		return nil
	}
	return r.do(ctx, http.MethodPatch, "/pages/"+url.PathEscape(taskID), map[string]interface{}{"properties": props}, nil)
}

// DeleteTask archives the page.
func (r *RemoteSource) DeleteTask(ctx context.Context, taskID string) error {
	return r.do(ctx, http.MethodPatch, "/pages/"+url.PathEscape(taskID), map[string]interface{}{"archived": true}, nil)
}

// Close cleans up resources.
func (r *RemoteSource) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

// do sends one API call, retrying on 429 and 5xx.
func (r *RemoteSource) do(ctx context.Context, method, path string, reqBody interface{}, out interface{}) error {
	var payload []byte
	if reqBody != nil {
		var err error
		if payload, err = json.Marshal(reqBody); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		body, wait, err := r.send(ctx, method, path, payload)
		if err == nil {
			if out == nil || len(body) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("failed to parse remote response: %w", err)
			}
			return nil
		}
		if wait < 0 || attempt >= remoteMaxRetries {
			return err
		}
		if wait == 0 {
			wait = backoff(attempt)
		}
		logging.WithFields(map[string]interface{}{
			"source":  "remote",
			"attempt": attempt + 1,
			"wait":    wait.String(),
		}).WithError(err).Debug("Retrying remote request")
		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// send performs a single request. wait is negative when the failure is not
// retryable, zero for default backoff, or the server's Retry-After.
func (r *RemoteSource) send(ctx context.Context, method, path string, payload []byte) ([]byte, time.Duration, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return nil, -1, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, -1, ctx.Err()
		}
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, 0, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, -1, ErrTaskNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, retryAfter(resp.Header.Get("Retry-After")), &remoteError{Status: resp.StatusCode, Message: string(body)}
	default:
		return nil, -1, &remoteError{Status: resp.StatusCode, Message: string(body)}
	}
}

// retryAfter parses a Retry-After header in seconds or HTTP-date form.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs >= 0 {
		return min(time.Duration(secs)*time.Second, remoteMaxBackoff)
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return min(d, remoteMaxBackoff)
		}
	}
	return 0
}

func backoff(attempt int) time.Duration {
	d := remoteBaseBackoff << attempt
	return min(d, remoteMaxBackoff)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// convertPage converts a remote page to a normalized Task.
func (r *RemoteSource) convertPage(page remotePage) Task {
	props := page.Properties
	status, ok := interpret.NormalizeStatus(props[propStatus])
	if !ok {
		status = interpret.StatusToDo
	}
	task := Task{
		ID:          page.ID,
		Title:       props[propName],
		Description: props[propNotes],
		Status:      status,
		Priority:    interpret.NormalizePriority(props[propPriority]),
		Category:    interpret.NormalizeCategory(props[propCategory]),
		Source:      SourceTypeRemote,
		SourceID:    page.ID,
		SourceMeta: Metadata{
			"database": r.databaseID,
		},
	}
	if due, err := parseDue(props[propDue], r.loc); err == nil {
		task.Due = due
	}
	if t, err := time.Parse(time.RFC3339, page.CreatedTime); err == nil {
		task.CreatedAt = &t
	}
	if t, err := time.Parse(time.RFC3339, page.LastEditedTime); err == nil {
		task.UpdatedAt = &t
	}
	return task
}
