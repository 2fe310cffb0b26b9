package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealRunner_CapturesStdout(t *testing.T) {
	t.Parallel()

	runner := NewRealRunner()

	result, err := runner.Run(context.Background(), "sh", "-c", "echo hello")
	require.NoError(t, err)

	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Empty(t, result.Stderr)
	assert.True(t, result.Success())
}

func TestRealRunner_CapturesStderr(t *testing.T) {
	t.Parallel()

	runner := NewRealRunner()

	result, err := runner.Run(context.Background(), "sh", "-c", "echo oops >&2")
	require.NoError(t, err)

	assert.Equal(t, "oops\n", result.Stderr)
	assert.Empty(t, result.Stdout)
}

func TestRealRunner_NonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()

	runner := NewRealRunner()

	result, err := runner.Run(context.Background(), "sh", "-c", "exit 3")
	require.NoError(t, err, "a non-zero exit is a result, not an error")

	assert.Equal(t, 3, result.ExitCode)
	assert.False(t, result.Success())
}

func TestRealRunner_MissingBinary(t *testing.T) {
	t.Parallel()

	runner := NewRealRunner()

	_, err := runner.Run(context.Background(), "definitely-not-a-binary-2c7f")
	assert.Error(t, err)
}

func TestRealRunner_ContextTimeout(t *testing.T) {
	t.Parallel()

	runner := NewRealRunner()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := runner.Run(ctx, "sh", "-c", "sleep 5")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
