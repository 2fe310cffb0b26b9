package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/casaops/taskwright/internal/domain/plan"
	"github.com/casaops/taskwright/internal/domain/task"
	"github.com/casaops/taskwright/internal/ports"
)

// Store is the slice of the persistent store the executor needs to
// finalize an execution.
type Store interface {
	GetTask(ctx context.Context, id string) (*task.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status task.Status, executionCount int, lastExecutedAt time.Time) error
	AppendExecutionRecord(ctx context.Context, rec *Record) error
	GetExecutionHistory(ctx context.Context, taskID string) ([]*Record, error)
}

// Result is the caller-visible outcome of one execution attempt.
// Err carries the first step failure; infrastructure failures are returned
// through Execute's error instead.
type Result struct {
	ExecutionID string
	Success     bool
	Changes     []Change
	Log         []LogEntry
	Err         error
}

// Executor runs a plan's steps strictly sequentially, halting on the
// first failure, and persists an execution record before updating the
// task's status.
type Executor struct {
	store   Store
	runners *Runners
	logger  ports.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(store Store, runners *Runners, logger ports.Logger) *Executor {
	return &Executor{
		store:   store,
		runners: runners,
		logger:  logger,
	}
}

// Execute runs all steps of the plan in order.
//
// Steps after the first failure are never invoked: later steps may depend
// on ordering guarantees established by earlier ones, backup-before-modify
// in particular. A step failure is reported through Result.Err; the
// returned error is non-nil only when persisting the record or the task
// status fails.
func (e *Executor) Execute(ctx context.Context, p *plan.Plan) (Result, error) {
	record := NewRecord(p.TaskID())
	record.AppendLog("", fmt.Sprintf("execution %s started: %s", record.ExecutionID, p.Objective()))

	e.logger.Info(ctx, "execution started",
		ports.F("task_id", p.TaskID()),
		ports.F("execution_id", record.ExecutionID),
		ports.F("steps", p.Len()))

	var stepErr *StepFailure

	for i, step := range p.Steps() {
		outcome, err := e.runners.Run(ctx, step)
		if err != nil {
			stepErr = &StepFailure{
				StepID:      step.ID(),
				Kind:        string(step.Kind()),
				Description: step.Describe(),
				Reason:      err.Error(),
				Underlying:  err,
			}
			record.AppendLog(step.ID(), fmt.Sprintf("step %d/%d failed: %s", i+1, p.Len(), err))
			e.logger.Warn(ctx, "step failed",
				ports.F("task_id", p.TaskID()),
				ports.F("step_id", step.ID()),
				ports.F("kind", string(step.Kind())),
				ports.F("reason", err.Error()))
			break
		}

		record.AppendLog(step.ID(), fmt.Sprintf("step %d/%d ok: %s", i+1, p.Len(), outcome.Message))
		if outcome.Change != nil {
			record.AppendChange(*outcome.Change)
		}
	}

	success := stepErr == nil
	payload := fmt.Sprintf("%d/%d steps succeeded", len(record.Log)-1, p.Len())
	if stepErr != nil {
		payload = fmt.Sprintf("failed at step %q: %s", stepErr.Description, stepErr.Reason)
	}
	record.Finalize(success, payload)

	if err := e.finalize(ctx, record); err != nil {
		return e.result(record, stepErr), err
	}

	e.logger.Info(ctx, "execution finished",
		ports.F("task_id", p.TaskID()),
		ports.F("execution_id", record.ExecutionID),
		ports.F("success", success))

	return e.result(record, stepErr), nil
}

// finalize persists the record and moves the task to its terminal status.
// The record is written first so a finished run always has a matching
// record even if the status write fails.
func (e *Executor) finalize(ctx context.Context, record *Record) error {
	if err := e.store.AppendExecutionRecord(ctx, record); err != nil {
		return &InfraError{Op: "append execution record", Underlying: err}
	}

	t, err := e.store.GetTask(ctx, record.TaskID)
	if err != nil {
		return &InfraError{Op: "load task for finalize", Underlying: err}
	}

	status := task.StatusCompleted
	if !record.Success {
		status = task.StatusFailed
	}

	if err := e.store.UpdateTaskStatus(ctx, t.ID, status, t.ExecutionCount+1, record.FinishedAt); err != nil {
		return &InfraError{Op: "update task status", Underlying: err}
	}

	return nil
}

func (e *Executor) result(record *Record, stepErr *StepFailure) Result {
	res := Result{
		ExecutionID: record.ExecutionID,
		Success:     record.Success,
		Changes:     record.ChangesMade,
		Log:         record.Log,
	}
	if stepErr != nil {
		res.Err = stepErr
	}
	return res
}
