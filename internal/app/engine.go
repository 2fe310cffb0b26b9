// Package app wires the task engine together behind a single facade.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/casaops/taskwright/internal/domain/backup"
	"github.com/casaops/taskwright/internal/domain/execution"
	"github.com/casaops/taskwright/internal/domain/plan"
	"github.com/casaops/taskwright/internal/domain/task"
	"github.com/casaops/taskwright/internal/orchestrator"
	"github.com/casaops/taskwright/internal/ports"
)

// ErrExecutionNotFound is returned when an execution id is not part of the
// task's history.
var ErrExecutionNotFound = errors.New("execution not found")

// ErrRollbackWhileRunning is returned when a rollback is requested for a
// task that currently has an execution in flight.
var ErrRollbackWhileRunning = errors.New("cannot roll back a running task")

// Store is the persistence surface the engine needs: task CRUD plus
// execution history.
type Store interface {
	task.Repository
	execution.Store
}

// Engine is the application facade over the plan generator, orchestrator,
// executor and stores.
type Engine struct {
	store     Store
	backups   backup.Store
	fs        ports.FileSystem
	generator *plan.Generator
	orch      *orchestrator.Orchestrator
	logger    ports.Logger
}

// New creates an Engine wired to the given collaborators.
func New(store Store, backups backup.Store, commands ports.CommandRunner, fs ports.FileSystem, logger ports.Logger, commandTimeout time.Duration) *Engine {
	runners := execution.NewRunners(commands, fs, backups)
	if commandTimeout > 0 {
		runners = runners.WithTimeout(commandTimeout)
	}
	executor := execution.NewExecutor(store, runners, logger)

	return &Engine{
		store:     store,
		backups:   backups,
		fs:        fs,
		generator: plan.NewGenerator(),
		orch:      orchestrator.New(store, executor, logger),
		logger:    logger,
	}
}

// CreateTask creates and persists a pending task.
func (e *Engine) CreateTask(ctx context.Context, title, objective string, requirements []string, opts ...task.Option) (*task.Task, error) {
	t, err := task.New(title, objective, requirements, opts...)
	if err != nil {
		return nil, err
	}
	if err := e.store.CreateTask(ctx, t); err != nil {
		return nil, err
	}
	e.logger.Info(ctx, "task created", ports.F("task_id", t.ID), ports.F("title", t.Title))
	return t, nil
}

// ImportTasks loads task definitions from a TOML file and persists them.
func (e *Engine) ImportTasks(ctx context.Context, path string) ([]*task.Task, error) {
	defs, err := task.LoadDefinitions(path)
	if err != nil {
		return nil, err
	}

	tasks := make([]*task.Task, 0, len(defs))
	for _, def := range defs {
		t, err := def.ToTask()
		if err != nil {
			return nil, err
		}
		if err := e.store.CreateTask(ctx, t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	e.logger.Info(ctx, "tasks imported", ports.F("path", path), ports.F("count", len(tasks)))
	return tasks, nil
}

// ListTasks returns all known tasks.
func (e *Engine) ListTasks(ctx context.Context) ([]*task.Task, error) {
	return e.store.ListTasks(ctx)
}

// GetTask returns a task by id.
func (e *Engine) GetTask(ctx context.Context, taskID string) (*task.Task, error) {
	return e.store.GetTask(ctx, taskID)
}

// CreatePlan generates a plan from the task's requirements.
func (e *Engine) CreatePlan(ctx context.Context, taskID string) (*plan.Plan, error) {
	t, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return e.generator.Generate(t), nil
}

// ScheduleExecution schedules the plan for background execution and
// returns immediately.
func (e *Engine) ScheduleExecution(ctx context.Context, taskID string, p *plan.Plan) error {
	return e.orch.Schedule(ctx, taskID, p)
}

// GetTaskStatus returns the caller-visible progress view of the task.
func (e *Engine) GetTaskStatus(ctx context.Context, taskID string) (task.StatusSnapshot, error) {
	t, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return task.StatusSnapshot{}, err
	}
	return t.Snapshot(), nil
}

// GetExecutionHistory returns all execution records for the task.
func (e *Engine) GetExecutionHistory(ctx context.Context, taskID string) ([]*execution.Record, error) {
	return e.store.GetExecutionHistory(ctx, taskID)
}

// RollbackReport summarizes a rollback request.
type RollbackReport struct {
	ExecutionID string   `json:"execution_id"`
	Restored    []string `json:"restored"`
}

// Rollback restores the snapshots taken by the given execution's backup
// steps. Rollback is always an explicit caller decision; it never happens
// automatically on failure.
func (e *Engine) Rollback(ctx context.Context, taskID, executionID string) (*RollbackReport, error) {
	if e.orch.Running(taskID) {
		return nil, ErrRollbackWhileRunning
	}

	history, err := e.store.GetExecutionHistory(ctx, taskID)
	if err != nil {
		return nil, err
	}

	var record *execution.Record
	for _, rec := range history {
		if rec.ExecutionID == executionID {
			record = rec
			break
		}
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s", ErrExecutionNotFound, executionID)
	}

	report := &RollbackReport{ExecutionID: executionID, Restored: make([]string, 0)}

	for _, change := range record.ChangesMade {
		if change.SnapshotID == "" {
			continue
		}

		content, err := e.backups.Get(ctx, change.SnapshotID)
		if err != nil {
			return report, fmt.Errorf("load snapshot %s for %s: %w", change.SnapshotID, change.Target, err)
		}
		if err := e.fs.WriteFile(change.Target, content, 0o644); err != nil {
			return report, fmt.Errorf("restore %s: %w", change.Target, err)
		}

		report.Restored = append(report.Restored, change.Target)
		e.logger.Info(ctx, "restored file from snapshot",
			ports.F("task_id", taskID),
			ports.F("path", change.Target),
			ports.F("snapshot_id", change.SnapshotID))
	}

	return report, nil
}

// PruneBackups removes snapshots older than the retention window. Wired
// as the janitor's sweep handler.
func (e *Engine) PruneBackups(ctx context.Context, retention time.Duration) (int, error) {
	return e.backups.Prune(ctx, retention)
}

// Wait blocks until all in-flight executions finish.
func (e *Engine) Wait() {
	e.orch.Wait()
}
