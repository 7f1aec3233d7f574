package tasksource

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Jayphen/taskvoice/internal/interpret"
)

// TodolistSource implements TaskSource for markdown checkbox files:
//
//	- [ ] Buy milk due:2026-10-20
//	- [~] Quarterly report @work !high
//	- [x] Call the dentist
//
// IDs are derived from line numbers, so deleting a line renumbers the
// tasks below it.
type TodolistSource struct {
	filePath string
	loc      *time.Location
	mu       sync.RWMutex
	info     SourceInfo
}

var todoLineRegex = regexp.MustCompile(`^(\s*)(?:[-*]\s+)?\[([ xX~])\]\s*(.+)$`)

// NewTodolistSource creates a todolist source, creating the file if missing.
func NewTodolistSource(filePath string) (*TodolistSource, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		if err := atomicWriteFile(absPath, nil, 0o644); err != nil {
			return nil, fmt.Errorf("failed to create todolist: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("todolist file not accessible: %w", err)
	}

	return &TodolistSource{
		filePath: absPath,
		loc:      time.Local,
		info: SourceInfo{
			Type:        SourceTypeTodolist,
			Name:        filepath.Base(absPath),
			Description: fmt.Sprintf("Todolist file: %s", absPath),
			Config: Metadata{
				"path": absPath,
			},
		},
	}, nil
}

// Info returns metadata about this source.
func (t *TodolistSource) Info() SourceInfo {
	return t.info
}

// ListTasks returns tasks from the todolist file.
func (t *TodolistSource) ListTasks(ctx context.Context, filter *TaskFilter) ([]Task, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	lines, err := t.readLines()
	if err != nil {
		return nil, err
	}
	var tasks []Task
	for i, line := range lines {
		if task, ok := t.parseLine(line, i+1); ok {
			tasks = append(tasks, task)
		}
	}
	return filter.apply(tasks), nil
}

// GetTask retrieves a specific task by ID.
func (t *TodolistSource) GetTask(ctx context.Context, taskID string) (*Task, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	lines, err := t.readLines()
	if err != nil {
		return nil, err
	}
	idx, err := t.lineIndex(lines, taskID)
	if err != nil {
		return nil, err
	}
	task, _ := t.parseLine(lines[idx], idx+1)
	return &task, nil
}

// CreateTask appends a task line to the file.
func (t *TodolistSource) CreateTask(ctx context.Context, nt NewTask) (*Task, error) {
	if strings.TrimSpace(nt.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	nt = nt.withDefaults()

	t.mu.Lock()
	defer t.mu.Unlock()

	lines, err := t.readLines()
	if err != nil {
		return nil, err
	}
	task := Task{
		Title:       strings.TrimSpace(nt.Title),
		Status:      nt.Status,
		Priority:    nt.Priority,
		Category:    nt.Category,
		Due:         nt.Due,
		Description: nt.Description,
	}
	lines = append(lines, formatTodoLine("", task))
	if err := t.writeLines(lines); err != nil {
		return nil, err
	}
	created, _ := t.parseLine(lines[len(lines)-1], len(lines))
	return &created, nil
}

// UpdateTask rewrites the task's line in place.
func (t *TodolistSource) UpdateTask(ctx context.Context, taskID string, update TaskUpdate) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	lines, err := t.readLines()
	if err != nil {
		return err
	}
	idx, err := t.lineIndex(lines, taskID)
	if err != nil {
		return err
	}
	task, _ := t.parseLine(lines[idx], idx+1)
	update.applyTo(&task)
	indent := todoLineRegex.FindStringSubmatch(lines[idx])[1]
	lines[idx] = formatTodoLine(indent, task)
	return t.writeLines(lines)
}

// DeleteTask removes the task's line.
func (t *TodolistSource) DeleteTask(ctx context.Context, taskID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	lines, err := t.readLines()
	if err != nil {
		return err
	}
	idx, err := t.lineIndex(lines, taskID)
	if err != nil {
		return err
	}
	lines = append(lines[:idx], lines[idx+1:]...)
	return t.writeLines(lines)
}

// Close cleans up resources (no-op for todolist).
func (t *TodolistSource) Close() error {
	return nil
}

func (t *TodolistSource) taskID(lineNum int) string {
	return fmt.Sprintf("todo-%s-%d", filepath.Base(t.filePath), lineNum)
}

func (t *TodolistSource) lineIndex(lines []string, taskID string) (int, error) {
	for i, line := range lines {
		if t.taskID(i+1) == taskID && todoLineRegex.MatchString(line) {
			return i, nil
		}
	}
	return -1, ErrTaskNotFound
}

func (t *TodolistSource) readLines() ([]string, error) {
	content, err := os.ReadFile(t.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read todolist: %w", err)
	}
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading todolist: %w", err)
	}
	return lines, nil
}

func (t *TodolistSource) writeLines(lines []string) error {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	if err := atomicWriteFile(t.filePath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write todolist: %w", err)
	}
	return nil
}

// parseLine reads one checkbox line and its inline markers.
func (t *TodolistSource) parseLine(line string, lineNum int) (Task, bool) {
	m := todoLineRegex.FindStringSubmatch(line)
	if m == nil {
		return Task{}, false
	}

	task := Task{
		ID:       t.taskID(lineNum),
		Status:   checkboxStatus(m[2]),
		Priority: interpret.PriorityNormal,
		Category: interpret.CategoryPersonal,
		Source:   SourceTypeTodolist,
		SourceID: fmt.Sprintf("%d", lineNum),
		SourceMeta: Metadata{
			"line":     lineNum,
			"filePath": t.filePath,
			"rawLine":  line,
		},
	}

	var words []string
	for _, w := range strings.Fields(m[3]) {
		switch {
		case len(w) > 1 && w[0] == '@':
			if c, ok := interpret.ParseCategory(w[1:]); ok {
				task.Category = c
				continue
			}
			words = append(words, w)
		case len(w) > 1 && w[0] == '!':
			if p, ok := interpret.ParsePriority(w[1:]); ok {
				task.Priority = p
				continue
			}
			words = append(words, w)
		case strings.HasPrefix(w, "due:"):
			if due, err := parseDue(strings.TrimPrefix(w, "due:"), t.loc); err == nil && due != nil {
				task.Due = due
				continue
			}
			words = append(words, w)
		default:
			words = append(words, w)
		}
	}
	task.Title = strings.Join(words, " ")
	return task, true
}

func checkboxStatus(mark string) interpret.Status {
	switch mark {
	case "x", "X":
		return interpret.StatusDone
	case "~":
		return interpret.StatusInProcess
	default:
		return interpret.StatusToDo
	}
}

func checkboxMark(s interpret.Status) string {
	switch s {
	case interpret.StatusDone:
		return "x"
	case interpret.StatusInProcess:
		return "~"
	default:
		return " "
	}
}

func formatTodoLine(indent string, task Task) string {
	var b strings.Builder
	b.WriteString(indent)
	b.WriteString("- [")
	b.WriteString(checkboxMark(task.Status))
	b.WriteString("] ")
	b.WriteString(task.Title)
	if task.Category != "" && task.Category != interpret.CategoryPersonal {
		b.WriteString(" @" + string(task.Category))
	}
	if task.Priority != "" && task.Priority != interpret.PriorityNormal {
		b.WriteString(" !" + string(task.Priority))
	}
	if task.Due != nil {
		b.WriteString(" due:" + formatDue(task.Due))
	}
	return b.String()
}
