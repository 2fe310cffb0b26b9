package task

import "fmt"

// Status represents a task's lifecycle state.
type Status string

// Status constants.
const (
	// StatusPending indicates the task has never been scheduled.
	StatusPending Status = "pending"
	// StatusRunning indicates an execution is in flight.
	StatusRunning Status = "running"
	// StatusCompleted indicates the last execution succeeded.
	StatusCompleted Status = "completed"
	// StatusFailed indicates the last execution failed.
	StatusFailed Status = "failed"
)

// IsValid checks if the status is a known valid status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status is a terminal execution outcome.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether the lifecycle permits moving to next.
// Scheduling moves pending, completed or failed tasks to running; a finished
// execution moves running to completed or failed. There is no way back to
// pending: a failed task must be rescheduled, which produces a fresh
// execution record under the same task id.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusRunning
	case StatusRunning:
		return next == StatusCompleted || next == StatusFailed
	case StatusCompleted, StatusFailed:
		return next == StatusRunning
	default:
		return false
	}
}

// TransitionError describes a rejected status transition.
type TransitionError struct {
	TaskID string
	From   Status
	To     Status
}

// Error returns the formatted error message.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("task %q: cannot transition from %s to %s", e.TaskID, e.From, e.To)
}

// ValidateTransition returns a TransitionError if the move is not permitted.
func ValidateTransition(taskID string, from, to Status) error {
	if !from.CanTransitionTo(to) {
		return &TransitionError{TaskID: taskID, From: from, To: to}
	}
	return nil
}
