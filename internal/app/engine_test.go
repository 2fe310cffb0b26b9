package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casaops/taskwright/internal/adapters/logging"
	"github.com/casaops/taskwright/internal/adapters/store"
	"github.com/casaops/taskwright/internal/domain/plan"
	"github.com/casaops/taskwright/internal/domain/task"
	"github.com/casaops/taskwright/internal/ports"
	"github.com/casaops/taskwright/internal/testutil/mocks"
)

type engineFixture struct {
	engine   *Engine
	store    *store.Memory
	commands *mocks.CommandRunner
	fs       *mocks.FileSystem
	backups  *mocks.BackupStore
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	mem := store.NewMemory()
	commands := mocks.NewCommandRunner()
	fs := mocks.NewFileSystem()
	backups := mocks.NewBackupStore()

	return &engineFixture{
		engine:   New(mem, backups, commands, fs, logging.NewNopLogger(), 0),
		store:    mem,
		commands: commands,
		fs:       fs,
		backups:  backups,
	}
}

// waitTerminal polls until the task leaves running, the way a CLI caller
// observes completion.
func (f *engineFixture) waitTerminal(t *testing.T, taskID string) task.StatusSnapshot {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		snapshot, err := f.engine.GetTaskStatus(context.Background(), taskID)
		require.NoError(t, err)
		if snapshot.Status.IsTerminal() {
			return snapshot
		}
		select {
		case <-deadline:
			t.Fatalf("task %s never reached a terminal status", taskID)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestEngine_CreateTask(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t)

	tsk, err := f.engine.CreateTask(context.Background(), "restart backend", "objective",
		[]string{"Execute systemctl restart hearth"}, task.WithPriority(task.PriorityHigh))
	require.NoError(t, err)

	got, err := f.engine.GetTask(context.Background(), tsk.ID)
	require.NoError(t, err)
	assert.Equal(t, task.PriorityHigh, got.Priority)
	assert.Equal(t, task.StatusPending, got.Status)
}

func TestEngine_CreateTask_EmptyTitle(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t)

	_, err := f.engine.CreateTask(context.Background(), "", "objective", nil)
	assert.ErrorIs(t, err, task.ErrEmptyTitle)
}

func TestEngine_ImportTasks(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t)

	path := filepath.Join(t.TempDir(), "tasks.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[task]]
title = "Rotate backend logs"
objective = "Keep the log volume under control"
priority = "low"
requirements = ["Execute logrotate /etc/logrotate.d/hearth"]
`), 0o644))

	tasks, err := f.engine.ImportTasks(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	listed, err := f.engine.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestEngine_CreatePlan(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t)

	tsk, err := f.engine.CreateTask(context.Background(), "write marker", "objective",
		[]string{"Create file /tmp/out.txt with OK"})
	require.NoError(t, err)

	p, err := f.engine.CreatePlan(context.Background(), tsk.ID)
	require.NoError(t, err)

	require.Equal(t, 1, p.Len())
	assert.Equal(t, plan.KindFileCreate, p.Steps()[0].Kind())

	_, err = f.engine.CreatePlan(context.Background(), "missing")
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestEngine_ScheduleAndComplete(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t)
	f.commands.AddShellResult("systemctl restart hearth", ports.CommandResult{ExitCode: 0})

	tsk, err := f.engine.CreateTask(context.Background(), "restart backend", "objective",
		[]string{"Execute systemctl restart hearth"})
	require.NoError(t, err)

	p, err := f.engine.CreatePlan(context.Background(), tsk.ID)
	require.NoError(t, err)
	require.NoError(t, f.engine.ScheduleExecution(context.Background(), tsk.ID, p))

	snapshot := f.waitTerminal(t, tsk.ID)
	assert.Equal(t, task.StatusCompleted, snapshot.Status)
	assert.Equal(t, 1, snapshot.ExecutionCount)

	records, err := f.engine.GetExecutionHistory(context.Background(), tsk.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Success)
}

func TestEngine_FailedRunLeavesPartialChanges(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t)
	f.commands.AddShellResult("test -f /tmp/expected.txt", ports.CommandResult{ExitCode: 1})

	tsk, err := f.engine.CreateTask(context.Background(), "write then verify", "objective",
		[]string{
			"Create file /tmp/out.txt with OK",
			"Verify the result by running test -f /tmp/expected.txt",
		})
	require.NoError(t, err)

	p, err := f.engine.CreatePlan(context.Background(), tsk.ID)
	require.NoError(t, err)
	require.NoError(t, f.engine.ScheduleExecution(context.Background(), tsk.ID, p))

	snapshot := f.waitTerminal(t, tsk.ID)
	assert.Equal(t, task.StatusFailed, snapshot.Status)

	records, err := f.engine.GetExecutionHistory(context.Background(), tsk.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Success)
	require.Len(t, records[0].ChangesMade, 1, "the file created before the failed check stays recorded")

	data, err := f.fs.ReadFile("/tmp/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "OK", string(data))
}

func TestEngine_Rollback(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t)
	f.fs.AddFile("/etc/hearth/config.yaml", []byte("log_level: info\n"))

	tsk, err := f.engine.CreateTask(context.Background(), "bump log level", "objective",
		[]string{
			"Backup /etc/hearth/config.yaml",
			"Update /etc/hearth/config.yaml replace log_level: info with log_level: debug",
		})
	require.NoError(t, err)

	p, err := f.engine.CreatePlan(context.Background(), tsk.ID)
	require.NoError(t, err)
	require.True(t, p.RollbackEnabled())
	require.NoError(t, f.engine.ScheduleExecution(context.Background(), tsk.ID, p))
	f.waitTerminal(t, tsk.ID)

	modified, err := f.fs.ReadFile("/etc/hearth/config.yaml")
	require.NoError(t, err)
	require.Equal(t, "log_level: debug\n", string(modified))

	records, err := f.engine.GetExecutionHistory(context.Background(), tsk.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)

	report, err := f.engine.Rollback(context.Background(), tsk.ID, records[0].ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/etc/hearth/config.yaml"}, report.Restored)

	restored, err := f.fs.ReadFile("/etc/hearth/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "log_level: info\n", string(restored))
}

func TestEngine_Rollback_NoBackups(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t)
	f.commands.AddShellResult("echo ok", ports.CommandResult{ExitCode: 0})

	tsk, err := f.engine.CreateTask(context.Background(), "echo", "objective",
		[]string{"Execute echo ok"})
	require.NoError(t, err)

	p, err := f.engine.CreatePlan(context.Background(), tsk.ID)
	require.NoError(t, err)
	require.NoError(t, f.engine.ScheduleExecution(context.Background(), tsk.ID, p))
	f.waitTerminal(t, tsk.ID)

	records, err := f.engine.GetExecutionHistory(context.Background(), tsk.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)

	report, err := f.engine.Rollback(context.Background(), tsk.ID, records[0].ExecutionID)
	require.NoError(t, err)
	assert.Empty(t, report.Restored)
}

func TestEngine_Rollback_UnknownExecution(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t)

	tsk, err := f.engine.CreateTask(context.Background(), "idle", "objective", nil)
	require.NoError(t, err)

	_, err = f.engine.Rollback(context.Background(), tsk.ID, "ghost-execution")
	assert.ErrorIs(t, err, ErrExecutionNotFound)
}

func TestEngine_RescheduleFailedTask(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t)
	f.commands.AddShellResult("flaky-command", ports.CommandResult{ExitCode: 1, Stderr: "transient"})

	tsk, err := f.engine.CreateTask(context.Background(), "flaky", "objective",
		[]string{"Execute flaky-command"})
	require.NoError(t, err)

	p, err := f.engine.CreatePlan(context.Background(), tsk.ID)
	require.NoError(t, err)
	require.NoError(t, f.engine.ScheduleExecution(context.Background(), tsk.ID, p))
	first := f.waitTerminal(t, tsk.ID)
	require.Equal(t, task.StatusFailed, first.Status)

	// The command recovers; rescheduling the same task produces a second
	// record under the same task id.
	f.commands.AddShellResult("flaky-command", ports.CommandResult{ExitCode: 0})
	p, err = f.engine.CreatePlan(context.Background(), tsk.ID)
	require.NoError(t, err)
	require.NoError(t, f.engine.ScheduleExecution(context.Background(), tsk.ID, p))
	second := f.waitTerminal(t, tsk.ID)

	assert.Equal(t, task.StatusCompleted, second.Status)
	assert.Equal(t, 2, second.ExecutionCount)

	records, err := f.engine.GetExecutionHistory(context.Background(), tsk.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestEngine_PruneBackups(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t)

	_, err := f.backups.Save(context.Background(), "/etc/a.yaml", []byte("x"))
	require.NoError(t, err)

	removed, err := f.engine.PruneBackups(context.Background(), time.Nanosecond)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Zero(t, f.backups.Len())
}
