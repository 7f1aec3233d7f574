package tasksource

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jayphen/taskvoice/internal/logging"
)

// TaskSource is the interface that all task stores must implement.
// The voice handler reads candidates from it and writes results back
// without knowing which store is behind it.
type TaskSource interface {
	// Info returns metadata about this task source.
	Info() SourceInfo

	// ListTasks returns tasks matching the filter.
	// If filter is nil, returns all tasks.
	ListTasks(ctx context.Context, filter *TaskFilter) ([]Task, error)

	// GetTask retrieves a specific task by ID.
	GetTask(ctx context.Context, taskID string) (*Task, error)

	// CreateTask stores a new task and returns it with its assigned ID.
	CreateTask(ctx context.Context, task NewTask) (*Task, error)

	// UpdateTask applies the given changes to a task.
	UpdateTask(ctx context.Context, taskID string, update TaskUpdate) error

	// DeleteTask removes a task.
	DeleteTask(ctx context.Context, taskID string) error

	// Close cleans up any resources held by this source.
	Close() error
}

// MultiSource allows combining multiple task sources into one.
// New tasks go to the first source.
type MultiSource struct {
	sources []TaskSource
}

// NewMultiSource creates a new multi-source aggregator.
func NewMultiSource(sources ...TaskSource) *MultiSource {
	return &MultiSource{
		sources: sources,
	}
}

// Info returns combined metadata about all sources.
func (m *MultiSource) Info() SourceInfo {
	names := make([]string, len(m.sources))
	for i, s := range m.sources {
		names[i] = s.Info().Name
	}
	return SourceInfo{
		Type:        "multi",
		Name:        "Multi-Source Aggregator",
		Description: "Combines multiple task sources",
		Config:      Metadata{"sources": names},
	}
}

// ListTasks returns tasks from all sources. A failing source is logged and
// skipped unless every source fails.
func (m *MultiSource) ListTasks(ctx context.Context, filter *TaskFilter) ([]Task, error) {
	var allTasks []Task
	var errs []error

	for _, source := range m.sources {
		tasks, err := source.ListTasks(ctx, filter)
		if err != nil {
			logging.WithField("source", source.Info().Name).WithError(err).Warn("Failed to list tasks")
			errs = append(errs, err)
			continue
		}
		allTasks = append(allTasks, tasks...)
	}

	if len(m.sources) > 0 && len(errs) == len(m.sources) {
		return nil, fmt.Errorf("all sources failed: %w", errors.Join(errs...))
	}

	return filter.limit(allTasks), nil
}

// GetTask tries to find the task in any source.
func (m *MultiSource) GetTask(ctx context.Context, taskID string) (*Task, error) {
	_, task, err := m.owner(ctx, taskID)
	return task, err
}

// CreateTask creates the task in the first source.
func (m *MultiSource) CreateTask(ctx context.Context, task NewTask) (*Task, error) {
	if len(m.sources) == 0 {
		return nil, ErrSourceNotFound
	}
	return m.sources[0].CreateTask(ctx, task)
}

// UpdateTask updates the task in the source that holds it.
func (m *MultiSource) UpdateTask(ctx context.Context, taskID string, update TaskUpdate) error {
	source, _, err := m.owner(ctx, taskID)
	if err != nil {
		return err
	}
	return source.UpdateTask(ctx, taskID, update)
}

// DeleteTask deletes the task from the source that holds it.
func (m *MultiSource) DeleteTask(ctx context.Context, taskID string) error {
	source, _, err := m.owner(ctx, taskID)
	if err != nil {
		return err
	}
	return source.DeleteTask(ctx, taskID)
}

// owner finds the source holding taskID.
func (m *MultiSource) owner(ctx context.Context, taskID string) (TaskSource, *Task, error) {
	for _, source := range m.sources {
		task, err := source.GetTask(ctx, taskID)
		if err == nil && task != nil {
			return source, task, nil
		}
		if err != nil && !errors.Is(err, ErrTaskNotFound) {
			logging.WithField("source", source.Info().Name).WithError(err).Debug("Lookup failed")
		}
	}
	return nil, nil, ErrTaskNotFound
}

// Close closes all sources and returns the first error.
func (m *MultiSource) Close() error {
	var first error
	for _, source := range m.sources {
		if err := source.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// AddSource adds a new task source to the multi-source.
func (m *MultiSource) AddSource(source TaskSource) {
	m.sources = append(m.sources, source)
}

// Sources returns all registered sources.
func (m *MultiSource) Sources() []TaskSource {
	return m.sources
}
