package tasksource

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/Jayphen/taskvoice/internal/interpret"
)

const docstoreIDPrefix = "tsk_"

// docMeta is the YAML frontmatter of a task document.
type docMeta struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Status    string `yaml:"status"`
	Priority  string `yaml:"priority"`
	Category  string `yaml:"category"`
	Due       string `yaml:"due,omitempty"`
	CreatedAt string `yaml:"created_at,omitempty"`
	UpdatedAt string `yaml:"updated_at,omitempty"`
}

// DocstoreSource stores one markdown document per task in a directory.
// Each document has YAML frontmatter followed by the task description.
type DocstoreSource struct {
	dir     string
	loc     *time.Location
	mu      sync.RWMutex
	entropy io.Reader
	now     func() time.Time
	info    SourceInfo
}

// NewDocstoreSource opens (and creates if needed) a task directory.
func NewDocstoreSource(dir string) (*DocstoreSource, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create docstore: %w", err)
	}
	return &DocstoreSource{
		dir:     absDir,
		loc:     time.Local,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
		info: SourceInfo{
			Type:        SourceTypeDocstore,
			Name:        filepath.Base(absDir),
			Description: fmt.Sprintf("Task documents in %s", absDir),
			Config: Metadata{
				"path": absDir,
			},
		},
	}, nil
}

// Info returns metadata about this source.
func (d *DocstoreSource) Info() SourceInfo {
	return d.info
}

// ListTasks reads every task document, oldest first.
func (d *DocstoreSource) ListTasks(ctx context.Context, filter *TaskFilter) ([]Task, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read docstore: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), docstoreIDPrefix) || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		names = append(names, e.Name())
	}
	// ULIDs sort by creation time.
	sort.Strings(names)

	var tasks []Task
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		task, err := d.readTask(filepath.Join(d.dir, name))
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return filter.apply(tasks), nil
}

// GetTask reads one task document.
func (d *DocstoreSource) GetTask(ctx context.Context, taskID string) (*Task, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	path, err := d.pathFor(taskID)
	if err != nil {
		return nil, err
	}
	return d.readTask(path)
}

// CreateTask writes a new document with a fresh ULID.
func (d *DocstoreSource) CreateTask(ctx context.Context, nt NewTask) (*Task, error) {
	if strings.TrimSpace(nt.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	nt = nt.withDefaults()

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	id, err := ulid.New(ulid.Timestamp(now), d.entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}
	task := &Task{
		ID:          docstoreIDPrefix + id.String(),
		Title:       strings.TrimSpace(nt.Title),
		Description: nt.Description,
		Status:      nt.Status,
		Priority:    nt.Priority,
		Category:    nt.Category,
		Due:         nt.Due,
		Source:      SourceTypeDocstore,
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}
	task.SourceID = task.ID
	if err := d.writeTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask rewrites a document with the update applied.
func (d *DocstoreSource) UpdateTask(ctx context.Context, taskID string, update TaskUpdate) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	path, err := d.pathFor(taskID)
	if err != nil {
		return err
	}
	task, err := d.readTask(path)
	if err != nil {
		return err
	}
	update.applyTo(task)
	now := d.now()
	task.UpdatedAt = &now
	return d.writeTask(task)
}

// DeleteTask removes a document.
func (d *DocstoreSource) DeleteTask(ctx context.Context, taskID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	path, err := d.pathFor(taskID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Close is a no-op.
func (d *DocstoreSource) Close() error {
	return nil
}

func (d *DocstoreSource) pathFor(taskID string) (string, error) {
	if !strings.HasPrefix(taskID, docstoreIDPrefix) {
		return "", ErrTaskNotFound
	}
	if _, err := ulid.ParseStrict(strings.TrimPrefix(taskID, docstoreIDPrefix)); err != nil {
		return "", ErrTaskNotFound
	}
	path := filepath.Join(d.dir, taskID+".md")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrTaskNotFound
		}
		return "", err
	}
	return path, nil
}

func (d *DocstoreSource) readTask(path string) (*Task, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	meta, body, err := parseFrontmatter(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	status, ok := interpret.NormalizeStatus(meta.Status)
	if !ok {
		status = interpret.StatusToDo
	}
	due, err := parseDue(meta.Due, d.loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	task := &Task{
		ID:          meta.ID,
		Title:       meta.Title,
		Description: strings.TrimSpace(body),
		Status:      status,
		Priority:    interpret.NormalizePriority(meta.Priority),
		Category:    interpret.NormalizeCategory(meta.Category),
		Due:         due,
		Source:      SourceTypeDocstore,
		SourceID:    meta.ID,
		SourceMeta:  Metadata{"path": path},
	}
	if t, err := time.Parse(time.RFC3339, meta.CreatedAt); err == nil {
		task.CreatedAt = &t
	}
	if t, err := time.Parse(time.RFC3339, meta.UpdatedAt); err == nil {
		task.UpdatedAt = &t
	}
	return task, nil
}

func (d *DocstoreSource) writeTask(task *Task) error {
	meta := docMeta{
		ID:       task.ID,
		Title:    task.Title,
		Status:   string(task.Status),
		Priority: string(task.Priority),
		Category: string(task.Category),
		Due:      formatDue(task.Due),
	}
	if task.CreatedAt != nil {
		meta.CreatedAt = task.CreatedAt.Format(time.RFC3339)
	}
	if task.UpdatedAt != nil {
		meta.UpdatedAt = task.UpdatedAt.Format(time.RFC3339)
	}
	yamlBytes, err := yaml.Marshal(&meta)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(yamlBytes)
	buf.WriteString("---\n\n")
	if strings.TrimSpace(task.Description) != "" {
		buf.WriteString(strings.TrimRight(task.Description, "\n"))
		buf.WriteString("\n")
	}
	path := filepath.Join(d.dir, task.ID+".md")
	if err := atomicWriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write task: %w", err)
	}
	return nil
}

func parseFrontmatter(b []byte) (*docMeta, string, error) {
	s := strings.ReplaceAll(string(b), "\r\n", "\n")
	if !strings.HasPrefix(s, "---\n") {
		return nil, "", fmt.Errorf("%w: missing frontmatter", ErrInvalidTask)
	}
	parts := strings.SplitN(s, "\n---\n", 2)
	if len(parts) != 2 {
		return nil, "", fmt.Errorf("%w: invalid frontmatter delimiters", ErrInvalidTask)
	}
	var meta docMeta
	if err := yaml.Unmarshal([]byte(strings.TrimPrefix(parts[0], "---\n")), &meta); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	if meta.ID == "" {
		return nil, "", fmt.Errorf("%w: missing id", ErrInvalidTask)
	}
	return &meta, parts[1], nil
}
