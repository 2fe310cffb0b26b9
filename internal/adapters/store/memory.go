// Package store provides persistence adapters for tasks and execution
// history.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/casaops/taskwright/internal/domain/execution"
	"github.com/casaops/taskwright/internal/domain/task"
)

// Memory is an in-memory store. It implements both task.Repository and
// execution.Store and is primarily used in tests.
type Memory struct {
	mu      sync.RWMutex
	tasks   map[string]task.Task
	records map[string][]execution.Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tasks:   make(map[string]task.Task),
		records: make(map[string][]execution.Record),
	}
}

// CreateTask stores a new task.
func (m *Memory) CreateTask(_ context.Context, t *task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = cloneTask(t)
	return nil
}

// GetTask returns a task by id.
func (m *Memory) GetTask(_ context.Context, id string) (*task.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	out := cloneTask(&t)
	return &out, nil
}

// ListTasks returns all tasks ordered by creation time.
func (m *Memory) ListTasks(_ context.Context) ([]*task.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*task.Task, 0, len(m.tasks))
	for id := range m.tasks {
		t := cloneTask(ptr(m.tasks[id]))
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// UpdateTaskStatus persists a status change with execution bookkeeping.
func (m *Memory) UpdateTaskStatus(_ context.Context, id string, status task.Status, executionCount int, lastExecutedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return task.ErrTaskNotFound
	}
	t.Status = status
	t.ExecutionCount = executionCount
	t.LastExecutedAt = lastExecutedAt
	m.tasks[id] = t
	return nil
}

// AppendExecutionRecord appends a record to the task's history.
func (m *Memory) AppendExecutionRecord(_ context.Context, rec *execution.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.TaskID] = append(m.records[rec.TaskID], cloneRecord(rec))
	return nil
}

// GetExecutionHistory returns all records for the task, oldest first.
func (m *Memory) GetExecutionHistory(_ context.Context, taskID string) ([]*execution.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := m.records[taskID]
	out := make([]*execution.Record, 0, len(recs))
	for i := range recs {
		r := cloneRecord(&recs[i])
		out = append(out, &r)
	}
	return out, nil
}

func cloneTask(t *task.Task) task.Task {
	out := *t
	out.Requirements = append([]string(nil), t.Requirements...)
	out.Constraints = append([]string(nil), t.Constraints...)
	return out
}

func cloneRecord(r *execution.Record) execution.Record {
	out := *r
	out.ChangesMade = append([]execution.Change(nil), r.ChangesMade...)
	out.Log = append([]execution.LogEntry(nil), r.Log...)
	return out
}

func ptr[T any](v T) *T { return &v }

// Ensure Memory satisfies both store interfaces.
var (
	_ task.Repository = (*Memory)(nil)
	_ execution.Store = (*Memory)(nil)
)
