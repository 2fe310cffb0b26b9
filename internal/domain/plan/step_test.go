package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_IsValid(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{KindShell, KindFileCreate, KindFileModify, KindTest, KindBackup} {
		assert.True(t, k.IsValid(), "kind %q", k)
	}
	assert.False(t, Kind("reboot").IsValid())
	assert.False(t, Kind("").IsValid())
}

func TestKind_Mutating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind     Kind
		mutating bool
	}{
		{kind: KindShell, mutating: false},
		{kind: KindFileCreate, mutating: true},
		{kind: KindFileModify, mutating: true},
		{kind: KindTest, mutating: false},
		{kind: KindBackup, mutating: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.mutating, tt.kind.Mutating())
		})
	}
}

func TestSteps_DefaultDescriptions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Run command: ls", NewShellStep("ls", "").Describe())
	assert.Equal(t, "Create file /tmp/a", NewFileCreateStep("/tmp/a", "x", "").Describe())
	assert.Equal(t, "Modify file /tmp/a", NewFileModifyStep("/tmp/a", "x", "y", "").Describe())
	assert.Equal(t, "Verify: ls", NewTestStep("ls", "").Describe())
	assert.Equal(t, "Back up /tmp/a", NewBackupStep("/tmp/a", "").Describe())
}

func TestSteps_ExplicitDescriptionWins(t *testing.T) {
	t.Parallel()

	s := NewShellStep("ls", "list the directory")
	assert.Equal(t, "list the directory", s.Describe())
}

func TestSteps_UniqueIDs(t *testing.T) {
	t.Parallel()

	a := NewShellStep("ls", "")
	b := NewShellStep("ls", "")

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestPlan_StepsReturnsCopy(t *testing.T) {
	t.Parallel()

	p := NewPlan("task-1", "obj", []Step{NewShellStep("ls", "")}, nil, false)

	steps := p.Steps()
	steps[0] = NewShellStep("rm -rf /", "")

	assert.Equal(t, "ls", p.Steps()[0].(ShellStep).Command())
}
