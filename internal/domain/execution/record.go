// Package execution runs plans step by step and records the outcome.
package execution

import (
	"time"

	"github.com/google/uuid"
)

// LogEntry is one timestamped line in an execution's narrative log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	StepID    string    `json:"step_id,omitempty"`
	Message   string    `json:"message"`
}

// Change describes one externally observable effect of a mutating step.
type Change struct {
	StepID     string `json:"step_id"`
	Kind       string `json:"kind"`
	Target     string `json:"target"`
	Detail     string `json:"detail,omitempty"`
	SnapshotID string `json:"snapshot_id,omitempty"`
}

// Record is the persisted outcome of one attempt to run a Plan.
// Records are append-only: one per execution attempt, never mutated after
// finalization.
type Record struct {
	ExecutionID   string     `json:"execution_id"`
	TaskID        string     `json:"task_id"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    time.Time  `json:"finished_at,omitempty"`
	Success       bool       `json:"success"`
	ResultPayload string     `json:"result_payload,omitempty"`
	ChangesMade   []Change   `json:"changes_made"`
	Log           []LogEntry `json:"log"`
}

// NewRecord creates an in-progress Record for the given task.
func NewRecord(taskID string) *Record {
	return &Record{
		ExecutionID: uuid.New().String(),
		TaskID:      taskID,
		StartedAt:   time.Now().UTC(),
		ChangesMade: make([]Change, 0),
		Log:         make([]LogEntry, 0),
	}
}

// AppendLog adds a timestamped log entry.
func (r *Record) AppendLog(stepID, message string) {
	r.Log = append(r.Log, LogEntry{
		Timestamp: time.Now().UTC(),
		StepID:    stepID,
		Message:   message,
	})
}

// AppendChange adds a change entry.
func (r *Record) AppendChange(c Change) {
	r.ChangesMade = append(r.ChangesMade, c)
}

// Finalize marks the record finished with the given outcome.
func (r *Record) Finalize(success bool, payload string) {
	r.FinishedAt = time.Now().UTC()
	r.Success = success
	r.ResultPayload = payload
}
