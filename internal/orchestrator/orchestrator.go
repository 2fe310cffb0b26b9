// Package orchestrator decouples task execution from the request that
// triggered it.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/casaops/taskwright/internal/domain/execution"
	"github.com/casaops/taskwright/internal/domain/plan"
	"github.com/casaops/taskwright/internal/domain/task"
	"github.com/casaops/taskwright/internal/ports"
)

// ErrAlreadyRunning is returned when the task id already has an execution
// in flight. The conflict is rejected synchronously, before any executor
// runs.
var ErrAlreadyRunning = errors.New("task already has an execution in flight")

// Runner executes a plan. Satisfied by *execution.Executor.
type Runner interface {
	Execute(ctx context.Context, p *plan.Plan) (execution.Result, error)
}

// Orchestrator schedules plan executions in the background and propagates
// terminal status into the task record.
//
// One goroutine runs per scheduled task; distinct tasks may run
// concurrently, but a given task id never has two executions in flight:
// the in-flight set and all status writes for a task are serialized behind
// the orchestrator's lock.
type Orchestrator struct {
	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup

	repo   task.Repository
	runner Runner
	logger ports.Logger
}

// New creates an Orchestrator.
func New(repo task.Repository, runner Runner, logger ports.Logger) *Orchestrator {
	return &Orchestrator{
		inflight: make(map[string]struct{}),
		repo:     repo,
		runner:   runner,
		logger:   logger,
	}
}

// Schedule starts executing the plan for the task in the background and
// returns immediately. Callers observe progress by polling task status.
//
// Scheduling an already-running task id fails with ErrAlreadyRunning; a
// task in any other state is moved to running before the goroutine
// launches, so a second Schedule racing this one cannot win.
func (o *Orchestrator) Schedule(ctx context.Context, taskID string, p *plan.Plan) error {
	if p.TaskID() != taskID {
		return fmt.Errorf("plan belongs to task %q, not %q", p.TaskID(), taskID)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.inflight[taskID]; ok {
		return ErrAlreadyRunning
	}

	t, err := o.repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	if err := task.ValidateTransition(t.ID, t.Status, task.StatusRunning); err != nil {
		return err
	}

	if err := o.repo.UpdateTaskStatus(ctx, t.ID, task.StatusRunning, t.ExecutionCount, t.LastExecutedAt); err != nil {
		return err
	}

	o.inflight[taskID] = struct{}{}
	o.wg.Add(1)

	// The execution must outlive the scheduling request.
	runCtx := context.WithoutCancel(ctx)
	go o.run(runCtx, taskID, p)

	return nil
}

// run executes the plan and releases the task's in-flight slot.
func (o *Orchestrator) run(ctx context.Context, taskID string, p *plan.Plan) {
	defer o.wg.Done()
	defer func() {
		o.mu.Lock()
		delete(o.inflight, taskID)
		o.mu.Unlock()
	}()

	result, err := o.runner.Execute(ctx, p)
	if err != nil {
		// Persistence failed at finalize time; the task may be stuck in
		// running. Nothing to do here but make the failure loud.
		o.logger.Error(ctx, "execution finalize failed",
			ports.F("task_id", taskID),
			ports.F("error", err.Error()))
		return
	}

	if result.Err != nil {
		o.logger.Warn(ctx, "execution failed",
			ports.F("task_id", taskID),
			ports.F("execution_id", result.ExecutionID),
			ports.F("error", result.Err.Error()))
	}
}

// Running reports whether the task id currently has an execution in flight.
func (o *Orchestrator) Running(taskID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.inflight[taskID]
	return ok
}

// Wait blocks until all in-flight executions finish. Used on shutdown and
// in tests.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}
