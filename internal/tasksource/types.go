// Package tasksource provides interfaces and types for the stores that hold
// voice-managed tasks.
package tasksource

import (
	"time"

	"github.com/Jayphen/taskvoice/internal/interpret"
)

// SourceType identifies which store the task lives in.
type SourceType string

const (
	SourceTypeMemory   SourceType = "memory"   // In-process map
	SourceTypeTodolist SourceType = "todolist" // Markdown checkbox file
	SourceTypeDocstore SourceType = "docstore" // One markdown file per task
	SourceTypePostgres SourceType = "postgres" // PostgreSQL table
	SourceTypeRemote   SourceType = "remote"   // HTTP document-database API
)

// Task represents a normalized task from any source.
type Task struct {
	// Core fields
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Status      interpret.Status   `json:"status"`
	Priority    interpret.Priority `json:"priority"`
	Category    interpret.Category `json:"category"`
	Due         *time.Time         `json:"due,omitempty"`

	// Source tracking
	Source     SourceType `json:"source"`
	SourceID   string     `json:"sourceId"`
	SourceMeta Metadata   `json:"sourceMeta,omitempty"`

	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Candidate returns the read-only view the resolver works on.
func (t Task) Candidate() interpret.CandidateTask {
	return interpret.CandidateTask{
		ID:       t.ID,
		Name:     t.Title,
		Status:   t.Status,
		Priority: t.Priority,
		Category: t.Category,
		Due:      t.Due,
	}
}

// Candidates converts tasks to resolver candidates, preserving order.
func Candidates(tasks []Task) []interpret.CandidateTask {
	out := make([]interpret.CandidateTask, len(tasks))
	for i, t := range tasks {
		out[i] = t.Candidate()
	}
	return out
}

// Metadata stores source-specific data.
type Metadata map[string]interface{}

// TaskFilter specifies criteria for listing tasks.
type TaskFilter struct {
	Status   []interpret.Status   `json:"status,omitempty"`   // Any of
	Priority []interpret.Priority `json:"priority,omitempty"` // Any of
	Category []interpret.Category `json:"category,omitempty"` // Any of
	Limit    int                  `json:"limit,omitempty"`    // Max tasks to return
}

// Matches reports whether task passes the filter. A nil filter matches all.
func (f *TaskFilter) Matches(task Task) bool {
	if f == nil {
		return true
	}
	if len(f.Status) > 0 && !contains(f.Status, task.Status) {
		return false
	}
	if len(f.Priority) > 0 && !contains(f.Priority, task.Priority) {
		return false
	}
	if len(f.Category) > 0 && !contains(f.Category, task.Category) {
		return false
	}
	return true
}

// apply filters tasks and enforces the limit.
func (f *TaskFilter) apply(tasks []Task) []Task {
	var out []Task
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return f.limit(out)
}

func (f *TaskFilter) limit(tasks []Task) []Task {
	if f != nil && f.Limit > 0 && len(tasks) > f.Limit {
		return tasks[:f.Limit]
	}
	return tasks
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// NewTask describes a task to create. Zero enum values take the defaults
// to do, normal and personal.
type NewTask struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Status      interpret.Status   `json:"status,omitempty"`
	Priority    interpret.Priority `json:"priority,omitempty"`
	Category    interpret.Category `json:"category,omitempty"`
	Due         *time.Time         `json:"due,omitempty"`
}

// FromAttributes builds a NewTask from interpreted creation attributes.
func FromAttributes(attrs interpret.TaskAttributes) NewTask {
	return NewTask{
		Title:    attrs.TaskName,
		Status:   attrs.Status,
		Priority: attrs.Priority,
		Category: attrs.Category,
		Due:      attrs.Due,
	}
}

// withDefaults fills zero enum values.
func (n NewTask) withDefaults() NewTask {
	if !n.Status.Valid() {
		n.Status = interpret.StatusToDo
	}
	if n.Priority == "" {
		n.Priority = interpret.PriorityNormal
	}
	if n.Category == "" {
		n.Category = interpret.CategoryPersonal
	}
	return n
}

// TaskUpdate contains fields to update on a task.
type TaskUpdate struct {
	Title       *string             `json:"title,omitempty"`
	Description *string             `json:"description,omitempty"`
	Status      *interpret.Status   `json:"status,omitempty"`
	Priority    *interpret.Priority `json:"priority,omitempty"`
	Category    *interpret.Category `json:"category,omitempty"`
	Due         *time.Time          `json:"due,omitempty"`
	ClearDue    bool                `json:"clearDue,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil &&
		u.Priority == nil && u.Category == nil && u.Due == nil && !u.ClearDue
}

// applyTo mutates task with the update.
func (u TaskUpdate) applyTo(task *Task) {
	if u.Title != nil {
		task.Title = *u.Title
	}
	if u.Description != nil {
		task.Description = *u.Description
	}
	if u.Status != nil {
		task.Status = *u.Status
	}
	if u.Priority != nil {
		task.Priority = *u.Priority
	}
	if u.Category != nil {
		task.Category = *u.Category
	}
	if u.ClearDue {
		task.Due = nil
	}
	if u.Due != nil {
		due := *u.Due
		task.Due = &due
	}
}

// StatusUpdate is shorthand for an update that only changes status.
func StatusUpdate(s interpret.Status) TaskUpdate {
	return TaskUpdate{Status: &s}
}

// SourceInfo provides metadata about a task source.
type SourceInfo struct {
	Type        SourceType `json:"type"`
	Name        string     `json:"name"`        // Display name
	Description string     `json:"description"` // What this source provides
	Config      Metadata   `json:"config"`      // Source-specific config
}
