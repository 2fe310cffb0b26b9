// Package task provides the maintenance task domain model.
package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyTitle is returned when a task is created without a title.
var ErrEmptyTitle = errors.New("task title must not be empty")

// Priority indicates how urgent a task is.
type Priority string

// Priority constants.
const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// IsValid checks if the priority is a known valid priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// ParsePriority converts a priority name into a Priority.
// Unknown names map to PriorityMedium.
func ParsePriority(name string) Priority {
	p := Priority(strings.ToLower(strings.TrimSpace(name)))
	if !p.IsValid() {
		return PriorityMedium
	}
	return p
}

// Task is a unit of maintenance work described by free-text requirements.
// Status, ExecutionCount and LastExecutedAt are mutated only through the
// repository by the orchestrator and executor; everything else is fixed at
// creation time.
type Task struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Objective      string    `json:"objective"`
	Requirements   []string  `json:"requirements"`
	Constraints    []string  `json:"constraints,omitempty"`
	Priority       Priority  `json:"priority"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	LastExecutedAt time.Time `json:"last_executed_at,omitempty"`
	ExecutionCount int       `json:"execution_count"`
}

// New creates a pending Task with a generated ID.
func New(title, objective string, requirements []string, opts ...Option) (*Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}

	t := &Task{
		ID:           uuid.New().String(),
		Title:        title,
		Objective:    objective,
		Requirements: append([]string(nil), requirements...),
		Priority:     PriorityMedium,
		Status:       StatusPending,
		CreatedAt:    time.Now().UTC(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Option configures a Task at creation time.
type Option func(*Task)

// WithPriority sets the task priority.
func WithPriority(p Priority) Option {
	return func(t *Task) {
		if p.IsValid() {
			t.Priority = p
		}
	}
}

// WithConstraints sets the task constraints.
func WithConstraints(constraints []string) Option {
	return func(t *Task) {
		t.Constraints = append([]string(nil), constraints...)
	}
}

// StatusSnapshot is the caller-visible view of a task's progress.
type StatusSnapshot struct {
	TaskID         string    `json:"task_id"`
	Status         Status    `json:"status"`
	LastExecutedAt time.Time `json:"last_executed_at,omitempty"`
	ExecutionCount int       `json:"execution_count"`
}

// Snapshot returns the caller-visible progress view of the task.
func (t *Task) Snapshot() StatusSnapshot {
	return StatusSnapshot{
		TaskID:         t.ID,
		Status:         t.Status,
		LastExecutedAt: t.LastExecutedAt,
		ExecutionCount: t.ExecutionCount,
	}
}
