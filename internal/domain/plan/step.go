// Package plan provides typed maintenance steps and the generator that
// derives them from free-text task requirements.
package plan

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind identifies a step variant.
type Kind string

// Step kind constants. The set is closed: the executor dispatches on it
// exhaustively and an unknown kind is a programming error.
const (
	KindShell      Kind = "shell"
	KindFileCreate Kind = "file_create"
	KindFileModify Kind = "file_modify"
	KindTest       Kind = "test"
	KindBackup     Kind = "backup"
)

// IsValid checks if the kind is a known valid kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindShell, KindFileCreate, KindFileModify, KindTest, KindBackup:
		return true
	default:
		return false
	}
}

// Mutating reports whether steps of this kind have externally observable
// effects that should contribute a change entry on success.
func (k Kind) Mutating() bool {
	switch k {
	case KindFileCreate, KindFileModify, KindBackup:
		return true
	default:
		return false
	}
}

// Step is a single typed unit of work inside a Plan.
// Steps are immutable value objects owned by their Plan.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() string

	// Kind returns the step variant.
	Kind() Kind

	// Describe returns a human-readable description of the step.
	Describe() string

	// isStep keeps the union closed to this package.
	isStep()
}

type stepBase struct {
	id          string
	description string
}

func newStepBase(description string) stepBase {
	return stepBase{
		id:          uuid.New().String(),
		description: description,
	}
}

// ID returns the unique identifier for this step.
func (b stepBase) ID() string { return b.id }

// Describe returns the human-readable description of the step.
func (b stepBase) Describe() string { return b.description }

func (stepBase) isStep() {}

// ShellStep runs a shell command.
type ShellStep struct {
	stepBase
	command string
}

// NewShellStep creates a ShellStep.
func NewShellStep(command, description string) ShellStep {
	if description == "" {
		description = fmt.Sprintf("Run command: %s", command)
	}
	return ShellStep{stepBase: newStepBase(description), command: command}
}

// Kind returns KindShell.
func (s ShellStep) Kind() Kind { return KindShell }

// Command returns the shell command to run.
func (s ShellStep) Command() string { return s.command }

// FileCreateStep writes a file, creating parent directories as needed.
// Overwriting an existing file is fine; the step is idempotent.
type FileCreateStep struct {
	stepBase
	path    string
	content string
}

// NewFileCreateStep creates a FileCreateStep.
func NewFileCreateStep(path, content, description string) FileCreateStep {
	if description == "" {
		description = fmt.Sprintf("Create file %s", path)
	}
	return FileCreateStep{stepBase: newStepBase(description), path: path, content: content}
}

// Kind returns KindFileCreate.
func (s FileCreateStep) Kind() Kind { return KindFileCreate }

// Path returns the target file path.
func (s FileCreateStep) Path() string { return s.path }

// Content returns the file content to write.
func (s FileCreateStep) Content() string { return s.content }

// FileModifyStep replaces a literal substring in an existing file, or
// appends the replacement when no match is given.
type FileModifyStep struct {
	stepBase
	path        string
	match       string
	replacement string
}

// NewFileModifyStep creates a FileModifyStep.
func NewFileModifyStep(path, match, replacement, description string) FileModifyStep {
	if description == "" {
		description = fmt.Sprintf("Modify file %s", path)
	}
	return FileModifyStep{
		stepBase:    newStepBase(description),
		path:        path,
		match:       match,
		replacement: replacement,
	}
}

// Kind returns KindFileModify.
func (s FileModifyStep) Kind() Kind { return KindFileModify }

// Path returns the target file path.
func (s FileModifyStep) Path() string { return s.path }

// Match returns the literal substring to replace. Empty means append.
func (s FileModifyStep) Match() string { return s.match }

// Replacement returns the text substituted or appended.
func (s FileModifyStep) Replacement() string { return s.replacement }

// TestStep runs an assertion command. A non-zero exit is authoritative:
// it fails the whole plan even if prior mutating steps succeeded.
type TestStep struct {
	stepBase
	command string
}

// NewTestStep creates a TestStep.
func NewTestStep(command, description string) TestStep {
	if description == "" {
		description = fmt.Sprintf("Verify: %s", command)
	}
	return TestStep{stepBase: newStepBase(description), command: command}
}

// Kind returns KindTest.
func (s TestStep) Kind() Kind { return KindTest }

// Command returns the assertion command to run.
func (s TestStep) Command() string { return s.command }

// BackupStep snapshots a file into the backup store before later steps
// touch it.
type BackupStep struct {
	stepBase
	source string
}

// NewBackupStep creates a BackupStep.
func NewBackupStep(source, description string) BackupStep {
	if description == "" {
		description = fmt.Sprintf("Back up %s", source)
	}
	return BackupStep{stepBase: newStepBase(description), source: source}
}

// Kind returns KindBackup.
func (s BackupStep) Kind() Kind { return KindBackup }

// Source returns the path to snapshot.
func (s BackupStep) Source() string { return s.source }
