package interpret

import (
	"strings"
	"time"
)

// Status is the workflow state of a task.
type Status string

const (
	StatusToDo      Status = "to_do"
	StatusInProcess Status = "in_process"
	StatusDone      Status = "done"
)

// Statuses lists the known statuses in cycle order.
var Statuses = []Status{StatusToDo, StatusInProcess, StatusDone}

// Next returns the status that follows s in the implicit cycle
// to do -> in progress -> done -> to do. Unknown statuses move to in progress.
func (s Status) Next() Status {
	switch s {
	case StatusToDo:
		return StatusInProcess
	case StatusInProcess:
		return StatusDone
	case StatusDone:
		return StatusToDo
	default:
		return StatusInProcess
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusToDo, StatusInProcess, StatusDone:
		return true
	}
	return false
}

// Label returns the spoken form of the status.
func (s Status) Label() string {
	switch s {
	case StatusToDo:
		return "to do"
	case StatusInProcess:
		return "in progress"
	case StatusDone:
		return "done"
	default:
		return string(s)
	}
}

// NormalizeStatus maps a store or slot value onto a Status.
func NormalizeStatus(v string) (Status, bool) {
	key := strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(v, "_", " "))), " ")
	switch key {
	case "to do", "todo", "to-do", "open", "pending", "not started":
		return StatusToDo, true
	case "in progress", "in-progress", "in process", "in-process", "doing", "started", "working":
		return StatusInProcess, true
	case "done", "complete", "completed", "finished":
		return StatusDone, true
	}
	return "", false
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// NormalizePriority maps legacy and mixed-case values onto the closed set.
// Anything unrecognized becomes PriorityNormal.
func NormalizePriority(v string) Priority {
	p, _ := ParsePriority(v)
	return p
}

// ParsePriority is NormalizePriority that also reports whether v was a
// recognized priority word.
func ParsePriority(v string) (Priority, bool) {
	switch strings.TrimSpace(strings.ToLower(v)) {
	case "low", "l", "minor", "p3", "p4", "someday":
		return PriorityLow, true
	case "high", "h", "urgent", "u", "critical", "important", "asap", "p0", "p1":
		return PriorityHigh, true
	case "normal", "n", "medium", "med", "m", "p2":
		return PriorityNormal, true
	default:
		return PriorityNormal, false
	}
}

// Category groups tasks by area of life.
type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
)

// NormalizeCategory maps an open category string onto the closed set.
// Anything unrecognized becomes CategoryPersonal.
func NormalizeCategory(v string) Category {
	c, _ := ParseCategory(v)
	return c
}

// ParseCategory is NormalizeCategory that also reports whether v was a
// recognized category word.
func ParseCategory(v string) (Category, bool) {
	switch strings.TrimSpace(strings.ToLower(v)) {
	case "work", "job", "office", "business", "professional", "career", "client":
		return CategoryWork, true
	case "personal", "home", "private", "life":
		return CategoryPersonal, true
	default:
		return CategoryPersonal, false
	}
}

// TaskAttributes is the structured result of interpreting a creation
// or update utterance.
type TaskAttributes struct {
	TaskName    string     `json:"task_name"`
	CleanedName string     `json:"cleaned_name"`
	Due         *time.Time `json:"due,omitempty"`
	Status      Status     `json:"status"`
	Category    Category   `json:"category"`
	Priority    Priority   `json:"priority"`
}

// CandidateTask is a read-only view of an existing task supplied by the caller.
type CandidateTask struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Status   Status     `json:"status"`
	Priority Priority   `json:"priority"`
	Category Category   `json:"category"`
	Due      *time.Time `json:"due,omitempty"`
}

// MatchTier identifies which level of the resolver cascade produced a match.
type MatchTier string

const (
	TierNone      MatchTier = ""
	TierExact     MatchTier = "exact"
	TierStemmed   MatchTier = "stemmed"
	TierBagOfWord MatchTier = "bag_of_words"
	TierPartial   MatchTier = "partial"
	TierFuzzy     MatchTier = "fuzzy"
	TierSubstring MatchTier = "substring"
)

// MatchResult holds at most one resolved task.
type MatchResult struct {
	Task *CandidateTask `json:"task,omitempty"`
	Tier MatchTier      `json:"tier,omitempty"`
}

// Found reports whether a task was resolved.
func (m MatchResult) Found() bool {
	return m.Task != nil
}
