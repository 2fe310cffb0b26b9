package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// Pure-Go SQLite driver, registered as "sqlite".
	_ "github.com/glebarez/go-sqlite"

	"github.com/casaops/taskwright/internal/domain/execution"
	"github.com/casaops/taskwright/internal/domain/task"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	objective        TEXT NOT NULL DEFAULT '',
	requirements     TEXT NOT NULL DEFAULT '[]',
	constraints      TEXT NOT NULL DEFAULT '[]',
	priority         TEXT NOT NULL DEFAULT 'medium',
	status           TEXT NOT NULL DEFAULT 'pending',
	created_at       TEXT NOT NULL,
	last_executed_at TEXT NOT NULL DEFAULT '',
	execution_count  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS executions (
	execution_id   TEXT PRIMARY KEY,
	task_id        TEXT NOT NULL,
	started_at     TEXT NOT NULL,
	finished_at    TEXT NOT NULL DEFAULT '',
	success        INTEGER NOT NULL DEFAULT 0,
	result_payload TEXT NOT NULL DEFAULT '',
	changes_made   TEXT NOT NULL DEFAULT '[]',
	log            TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_executions_task_id ON executions(task_id);
`

// SQLite persists tasks and execution history in a single SQLite file, so
// task history survives process restarts. It implements both
// task.Repository and execution.Store.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and if needed initializes) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}

	// The driver is not safe for concurrent writes on one connection pool
	// without serialization; a single connection keeps writes ordered.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize task store schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateTask stores a new task.
func (s *SQLite) CreateTask(ctx context.Context, t *task.Task) error {
	requirements, err := json.Marshal(t.Requirements)
	if err != nil {
		return err
	}
	constraints, err := json.Marshal(t.Constraints)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, objective, requirements, constraints, priority, status, created_at, last_executed_at, execution_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Objective, string(requirements), string(constraints),
		string(t.Priority), string(t.Status), formatTime(t.CreatedAt),
		formatTime(t.LastExecutedAt), t.ExecutionCount)
	if err != nil {
		return fmt.Errorf("create task %q: %w", t.ID, err)
	}
	return nil
}

// GetTask returns a task by id.
func (s *SQLite) GetTask(ctx context.Context, id string) (*task.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, objective, requirements, constraints, priority, status, created_at, last_executed_at, execution_count
		 FROM tasks WHERE id = ?`, id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task %q: %w", id, err)
	}
	return t, nil
}

// ListTasks returns all tasks ordered by creation time.
func (s *SQLite) ListTasks(ctx context.Context) ([]*task.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, objective, requirements, constraints, priority, status, created_at, last_executed_at, execution_count
		 FROM tasks ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTaskStatus persists a status change with execution bookkeeping.
func (s *SQLite) UpdateTaskStatus(ctx context.Context, id string, status task.Status, executionCount int, lastExecutedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, execution_count = ?, last_executed_at = ? WHERE id = ?`,
		string(status), executionCount, formatTime(lastExecutedAt), id)
	if err != nil {
		return fmt.Errorf("update task %q status: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// AppendExecutionRecord appends a record to the task's history.
func (s *SQLite) AppendExecutionRecord(ctx context.Context, rec *execution.Record) error {
	changes, err := json.Marshal(rec.ChangesMade)
	if err != nil {
		return err
	}
	log, err := json.Marshal(rec.Log)
	if err != nil {
		return err
	}

	success := 0
	if rec.Success {
		success = 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO executions (execution_id, task_id, started_at, finished_at, success, result_payload, changes_made, log)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ExecutionID, rec.TaskID, formatTime(rec.StartedAt), formatTime(rec.FinishedAt),
		success, rec.ResultPayload, string(changes), string(log))
	if err != nil {
		return fmt.Errorf("append execution record %q: %w", rec.ExecutionID, err)
	}
	return nil
}

// GetExecutionHistory returns all records for the task, oldest first.
func (s *SQLite) GetExecutionHistory(ctx context.Context, taskID string) ([]*execution.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT execution_id, task_id, started_at, finished_at, success, result_payload, changes_made, log
		 FROM executions WHERE task_id = ? ORDER BY started_at`, taskID)
	if err != nil {
		return nil, fmt.Errorf("get execution history for %q: %w", taskID, err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]*execution.Record, 0)
	for rows.Next() {
		var (
			rec        execution.Record
			startedAt  string
			finishedAt string
			success    int
			changes    string
			log        string
		)
		if err := rows.Scan(&rec.ExecutionID, &rec.TaskID, &startedAt, &finishedAt,
			&success, &rec.ResultPayload, &changes, &log); err != nil {
			return nil, fmt.Errorf("get execution history for %q: %w", taskID, err)
		}

		rec.StartedAt = parseTime(startedAt)
		rec.FinishedAt = parseTime(finishedAt)
		rec.Success = success != 0

		if err := json.Unmarshal([]byte(changes), &rec.ChangesMade); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(log), &rec.Log); err != nil {
			return nil, err
		}

		records = append(records, &rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*task.Task, error) {
	var (
		t              task.Task
		requirements   string
		constraints    string
		priority       string
		status         string
		createdAt      string
		lastExecutedAt string
	)

	if err := row.Scan(&t.ID, &t.Title, &t.Objective, &requirements, &constraints,
		&priority, &status, &createdAt, &lastExecutedAt, &t.ExecutionCount); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(requirements), &t.Requirements); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(constraints), &t.Constraints); err != nil {
		return nil, err
	}

	t.Priority = task.Priority(priority)
	t.Status = task.Status(status)
	t.CreatedAt = parseTime(createdAt)
	t.LastExecutedAt = parseTime(lastExecutedAt)

	return &t, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Ensure SQLite satisfies both store interfaces.
var (
	_ task.Repository = (*SQLite)(nil)
	_ execution.Store = (*SQLite)(nil)
)
