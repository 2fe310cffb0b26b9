package execution

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/casaops/taskwright/internal/domain/backup"
	"github.com/casaops/taskwright/internal/domain/plan"
	"github.com/casaops/taskwright/internal/ports"
)

// DefaultCommandTimeout bounds shell and test steps when no explicit
// timeout is configured.
const DefaultCommandTimeout = 60 * time.Second

// Outcome is what a step-runner reports on success: a log message and,
// for mutating steps, the change that was made.
type Outcome struct {
	Message string
	Change  *Change
}

// Runners dispatches steps to their kind-specific runner. Every runner
// catches local errors and returns them as values; nothing here panics on
// an I/O or process failure.
type Runners struct {
	commands ports.CommandRunner
	fs       ports.FileSystem
	backups  backup.Store
	timeout  time.Duration
}

// NewRunners creates the step-runner dispatch table.
func NewRunners(commands ports.CommandRunner, fs ports.FileSystem, backups backup.Store) *Runners {
	return &Runners{
		commands: commands,
		fs:       fs,
		backups:  backups,
		timeout:  DefaultCommandTimeout,
	}
}

// WithTimeout returns Runners with the command timeout set.
func (r *Runners) WithTimeout(d time.Duration) *Runners {
	return &Runners{
		commands: r.commands,
		fs:       r.fs,
		backups:  r.backups,
		timeout:  d,
	}
}

// Run executes a single step and returns its outcome.
func (r *Runners) Run(ctx context.Context, step plan.Step) (Outcome, error) {
	switch s := step.(type) {
	case plan.ShellStep:
		return r.runCommand(ctx, s.Command(), "command")
	case plan.TestStep:
		return r.runCommand(ctx, s.Command(), "test")
	case plan.FileCreateStep:
		return r.runFileCreate(s)
	case plan.FileModifyStep:
		return r.runFileModify(s)
	case plan.BackupStep:
		return r.runBackup(ctx, s)
	default:
		// The union is closed; an unknown step type is a programming error.
		return Outcome{}, fmt.Errorf("unknown step kind %q", step.Kind())
	}
}

// runCommand handles shell and test steps. Both spawn a process through
// the command runner with a hard wall-clock timeout; a timeout becomes a
// typed failure rather than a hang.
func (r *Runners) runCommand(ctx context.Context, command, label string) (Outcome, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.commands.Run(runCtx, "sh", "-c", command)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Outcome{}, fmt.Errorf("%s timed out after %s", label, r.timeout)
		}
		return Outcome{}, fmt.Errorf("%s could not be started: %w", label, err)
	}

	if !result.Success() {
		reason := strings.TrimSpace(result.Stderr)
		if reason == "" {
			reason = strings.TrimSpace(result.Stdout)
		}
		if reason == "" {
			reason = "no output"
		}
		return Outcome{}, fmt.Errorf("%s exited with code %d: %s", label, result.ExitCode, reason)
	}

	msg := fmt.Sprintf("%s succeeded: %s", label, command)
	if out := strings.TrimSpace(result.Stdout); out != "" {
		msg = fmt.Sprintf("%s\n%s", msg, out)
	}
	return Outcome{Message: msg}, nil
}

func (r *Runners) runFileCreate(s plan.FileCreateStep) (Outcome, error) {
	path := ports.ExpandPath(s.Path())

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := r.fs.MkdirAll(dir, 0o755); err != nil {
			return Outcome{}, fmt.Errorf("create parent directories for %s: %w", path, err)
		}
	}

	if err := r.fs.WriteFile(path, []byte(s.Content()), 0o644); err != nil {
		return Outcome{}, fmt.Errorf("write %s: %w", path, err)
	}

	return Outcome{
		Message: fmt.Sprintf("created file %s (%d bytes)", path, len(s.Content())),
		Change: &Change{
			StepID: s.ID(),
			Kind:   string(plan.KindFileCreate),
			Target: path,
			Detail: fmt.Sprintf("wrote %d bytes", len(s.Content())),
		},
	}, nil
}

func (r *Runners) runFileModify(s plan.FileModifyStep) (Outcome, error) {
	path := ports.ExpandPath(s.Path())

	data, err := r.fs.ReadFile(path)
	if err != nil {
		return Outcome{}, fmt.Errorf("read %s: %w", path, err)
	}

	content := string(data)
	detail := ""
	if s.Match() != "" && strings.Contains(content, s.Match()) {
		content = strings.ReplaceAll(content, s.Match(), s.Replacement())
		detail = fmt.Sprintf("replaced %q", s.Match())
	} else {
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		content += s.Replacement()
		detail = "appended content"
	}

	if err := r.fs.WriteFile(path, []byte(content), 0o644); err != nil {
		return Outcome{}, fmt.Errorf("write %s: %w", path, err)
	}

	return Outcome{
		Message: fmt.Sprintf("modified file %s: %s", path, detail),
		Change: &Change{
			StepID: s.ID(),
			Kind:   string(plan.KindFileModify),
			Target: path,
			Detail: detail,
		},
	}, nil
}

func (r *Runners) runBackup(ctx context.Context, s plan.BackupStep) (Outcome, error) {
	source := ports.ExpandPath(s.Source())

	content, err := r.fs.ReadFile(source)
	if err != nil {
		return Outcome{}, fmt.Errorf("read backup source %s: %w", source, err)
	}

	snap, err := r.backups.Save(ctx, source, content)
	if err != nil {
		return Outcome{}, fmt.Errorf("save snapshot of %s: %w", source, err)
	}

	return Outcome{
		Message: fmt.Sprintf("backed up %s (snapshot %s)", source, snap.ID),
		Change: &Change{
			StepID:     s.ID(),
			Kind:       string(plan.KindBackup),
			Target:     source,
			Detail:     fmt.Sprintf("snapshot taken at %s", snap.CreatedAt.Format(time.RFC3339)),
			SnapshotID: snap.ID,
		},
	}, nil
}
