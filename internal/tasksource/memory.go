package tasksource

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemorySource keeps tasks in process memory. Tasks are listed in
// creation order.
type MemorySource struct {
	mu     sync.RWMutex
	tasks  map[string]*Task
	order  []string
	nextID int
	now    func() time.Time
	info   SourceInfo
}

// NewMemorySource creates an empty in-memory source seeded with tasks.
func NewMemorySource(seed ...NewTask) *MemorySource {
	m := &MemorySource{
		tasks: make(map[string]*Task),
		now:   time.Now,
		info: SourceInfo{
			Type:        SourceTypeMemory,
			Name:        "memory",
			Description: "In-memory task list",
			Config:      Metadata{},
		},
	}
	for _, t := range seed {
		_, _ = m.CreateTask(context.Background(), t)
	}
	return m
}

// Info returns metadata about this source.
func (m *MemorySource) Info() SourceInfo {
	return m.info
}

// ListTasks returns tasks matching the filter.
func (m *MemorySource) ListTasks(ctx context.Context, filter *TaskFilter) ([]Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tasks := make([]Task, 0, len(m.order))
	for _, id := range m.order {
		tasks = append(tasks, *m.tasks[id])
	}
	return filter.apply(tasks), nil
}

// GetTask retrieves a specific task by ID.
func (m *MemorySource) GetTask(ctx context.Context, taskID string) (*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

// CreateTask stores a new task with a sequential ID.
func (m *MemorySource) CreateTask(ctx context.Context, nt NewTask) (*Task, error) {
	if nt.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	nt = nt.withDefaults()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := fmt.Sprintf("mem-%d", m.nextID)
	now := m.now()
	t := &Task{
		ID:          id,
		Title:       nt.Title,
		Description: nt.Description,
		Status:      nt.Status,
		Priority:    nt.Priority,
		Category:    nt.Category,
		Due:         nt.Due,
		Source:      SourceTypeMemory,
		SourceID:    id,
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}
	m.tasks[id] = t
	m.order = append(m.order, id)

	copied := *t
	return &copied, nil
}

// UpdateTask applies update to the stored task.
func (m *MemorySource) UpdateTask(ctx context.Context, taskID string, update TaskUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	update.applyTo(t)
	now := m.now()
	t.UpdatedAt = &now
	return nil
}

// DeleteTask removes a task.
func (m *MemorySource) DeleteTask(ctx context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[taskID]; !ok {
		return ErrTaskNotFound
	}
	delete(m.tasks, taskID)
	for i, id := range m.order {
		if id == taskID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Close is a no-op.
func (m *MemorySource) Close() error {
	return nil
}
