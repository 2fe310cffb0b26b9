package task

import (
	"context"
	"errors"
	"time"
)

// ErrTaskNotFound is returned when a task id is unknown to the repository.
var ErrTaskNotFound = errors.New("task not found")

// Repository provides task persistence operations.
// Any store satisfying these operations is acceptable; the engine ships a
// SQLite adapter and an in-memory adapter for tests.
type Repository interface {
	CreateTask(ctx context.Context, t *Task) error
	GetTask(ctx context.Context, id string) (*Task, error)
	ListTasks(ctx context.Context) ([]*Task, error)

	// UpdateTaskStatus persists a status change together with the execution
	// bookkeeping fields. Writes for one task id are serialized behind that
	// task's execution lock by the orchestrator.
	UpdateTaskStatus(ctx context.Context, id string, status Status, executionCount int, lastExecutedAt time.Time) error
}
