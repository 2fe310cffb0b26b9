package logging

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casaops/taskwright/internal/ports"
)

func TestConsoleLogger_TextOutput(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	logger := NewConsoleLogger(WithOutput(&buf), WithTimestamp(false))

	logger.Info(context.Background(), "task created", ports.F("task_id", "t-1"))

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "task created")
	assert.Contains(t, out, "task_id=t-1")
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	logger := NewConsoleLogger(WithOutput(&buf), WithTimestamp(false), WithLevel(ports.LevelWarn))

	logger.Debug(context.Background(), "too quiet")
	logger.Info(context.Background(), "still too quiet")
	logger.Warn(context.Background(), "loud enough")
	logger.Error(context.Background(), "definitely loud")

	out := buf.String()
	assert.NotContains(t, out, "too quiet")
	assert.Contains(t, out, "loud enough")
	assert.Contains(t, out, "definitely loud")
}

func TestConsoleLogger_SetLevel(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	logger := NewConsoleLogger(WithOutput(&buf), WithTimestamp(false))

	assert.Equal(t, ports.LevelInfo, logger.Level())

	logger.SetLevel(ports.LevelDebug)
	logger.Debug(context.Background(), "now visible")

	assert.Contains(t, buf.String(), "now visible")
}

func TestConsoleLogger_JSONOutput(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	logger := NewConsoleLogger(WithOutput(&buf), WithTimestamp(false), WithJSONFormat(true))

	logger.Info(context.Background(), "execution finished", ports.F("success", true))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(buf.String()), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "execution finished", entry["msg"])
	assert.Equal(t, true, entry["success"])
}

func TestConsoleLogger_WithFields(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	logger := NewConsoleLogger(WithOutput(&buf), WithTimestamp(false))

	child := logger.With(ports.F("task_id", "t-1"))
	child.Info(context.Background(), "step ok", ports.F("step", 2))

	out := buf.String()
	assert.Contains(t, out, "task_id=t-1")
	assert.Contains(t, out, "step=2")

	buf.Reset()
	logger.Info(context.Background(), "plain")
	assert.NotContains(t, buf.String(), "task_id", "With must not mutate the parent logger")
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	logger := NewNopLogger()

	// Must be safe to call with anything and return itself from With.
	logger.Info(context.Background(), "ignored", ports.F("k", "v"))
	assert.Equal(t, ports.Logger(logger), logger.With(ports.F("k", "v")))
}
