package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tsk, err := New("restart backend", "get the backend responsive again",
		[]string{"Execute systemctl restart hearth-backend"})
	require.NoError(t, err)

	assert.NotEmpty(t, tsk.ID)
	assert.Equal(t, "restart backend", tsk.Title)
	assert.Equal(t, "get the backend responsive again", tsk.Objective)
	assert.Equal(t, StatusPending, tsk.Status)
	assert.Equal(t, PriorityMedium, tsk.Priority)
	assert.Zero(t, tsk.ExecutionCount)
	assert.False(t, tsk.CreatedAt.IsZero())
}

func TestNew_EmptyTitle(t *testing.T) {
	t.Parallel()

	tests := []string{"", "   ", "\t\n"}
	for _, title := range tests {
		_, err := New(title, "objective", nil)
		assert.ErrorIs(t, err, ErrEmptyTitle, "title %q", title)
	}
}

func TestNew_Options(t *testing.T) {
	t.Parallel()

	tsk, err := New("title", "objective", nil,
		WithPriority(PriorityCritical),
		WithConstraints([]string{"do not reboot the host"}),
	)
	require.NoError(t, err)

	assert.Equal(t, PriorityCritical, tsk.Priority)
	assert.Equal(t, []string{"do not reboot the host"}, tsk.Constraints)
}

func TestWithPriority_InvalidIgnored(t *testing.T) {
	t.Parallel()

	tsk, err := New("title", "objective", nil, WithPriority(Priority("urgent")))
	require.NoError(t, err)

	assert.Equal(t, PriorityMedium, tsk.Priority)
}

func TestNew_CopiesRequirements(t *testing.T) {
	t.Parallel()

	reqs := []string{"Execute ls"}
	tsk, err := New("title", "objective", reqs)
	require.NoError(t, err)

	reqs[0] = "Execute rm -rf /"
	assert.Equal(t, "Execute ls", tsk.Requirements[0])
}

func TestParsePriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected Priority
	}{
		{input: "low", expected: PriorityLow},
		{input: "HIGH", expected: PriorityHigh},
		{input: " critical ", expected: PriorityCritical},
		{input: "urgent", expected: PriorityMedium},
		{input: "", expected: PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ParsePriority(tt.input))
		})
	}
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	tsk, err := New("title", "objective", nil)
	require.NoError(t, err)
	tsk.Status = StatusCompleted
	tsk.ExecutionCount = 3

	snap := tsk.Snapshot()

	assert.Equal(t, tsk.ID, snap.TaskID)
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 3, snap.ExecutionCount)
}
