package agent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(interval time.Duration) Config {
	return Config{Interval: interval, BackupRetention: 24 * time.Hour}
}

func TestNewJanitor_InvalidInterval(t *testing.T) {
	t.Parallel()

	_, err := NewJanitor(Config{Interval: 0})
	assert.Error(t, err)

	_, err = NewJanitor(Config{Interval: -time.Second})
	assert.Error(t, err)
}

func TestJanitor_StartAndStop(t *testing.T) {
	t.Parallel()

	j, err := NewJanitor(testConfig(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StateStopped, j.State())

	require.NoError(t, j.Start(context.Background()))

	require.Eventually(t, func() bool {
		return j.State() == StateRunning
	}, 2*time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, j.Stop(stopCtx))
	assert.Equal(t, StateStopped, j.State())
}

func TestJanitor_StopWithoutStart(t *testing.T) {
	t.Parallel()

	j, err := NewJanitor(testConfig(time.Hour))
	require.NoError(t, err)

	assert.NoError(t, j.Stop(context.Background()))
}

func TestJanitor_SweepInvokesHandler(t *testing.T) {
	t.Parallel()

	j, err := NewJanitor(testConfig(20 * time.Millisecond))
	require.NoError(t, err)

	var sweeps atomic.Int32
	var gotRetention atomic.Int64
	j.SetSweepHandler(func(_ context.Context, retention time.Duration) (*SweepResult, error) {
		sweeps.Add(1)
		gotRetention.Store(int64(retention))
		return &SweepResult{SnapshotsPruned: 2}, nil
	})

	require.NoError(t, j.Start(context.Background()))
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = j.Stop(stopCtx)
	}()

	require.Eventually(t, func() bool {
		return sweeps.Load() >= 1
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, int64(24*time.Hour), gotRetention.Load())

	require.Eventually(t, func() bool {
		return j.Status().SweepCount >= 1
	}, 2*time.Second, 10*time.Millisecond)

	status := j.Status()
	assert.False(t, status.LastSweep.IsZero())
	assert.Zero(t, status.ErrorCount)
}

func TestJanitor_HandlerErrorEntersErrorState(t *testing.T) {
	t.Parallel()

	j, err := NewJanitor(testConfig(20 * time.Millisecond))
	require.NoError(t, err)

	j.SetSweepHandler(func(context.Context, time.Duration) (*SweepResult, error) {
		return nil, errors.New("backup store offline")
	})

	require.NoError(t, j.Start(context.Background()))
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = j.Stop(stopCtx)
	}()

	require.Eventually(t, func() bool {
		return j.State() == StateError
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return j.Status().ErrorCount >= 1
	}, 2*time.Second, 10*time.Millisecond)

	j.Recover()

	require.Eventually(t, func() bool {
		return j.State() == StateRunning
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRuntimeContext(t *testing.T) {
	t.Parallel()

	runtime := NewRuntimeContext(testConfig(time.Minute))

	runtime.RecordStart()
	runtime.RecordSweep(&SweepResult{SnapshotsPruned: 3})
	runtime.RecordError(errors.New("boom"))

	ctx := runtime.GetContext()
	assert.False(t, ctx.StartedAt.IsZero())
	assert.Equal(t, 1, ctx.SweepCount)
	assert.Equal(t, 1, ctx.ErrorCount)
	assert.EqualError(t, ctx.LastError, "boom")
	require.NotNil(t, ctx.LastResult)
	assert.Equal(t, 3, ctx.LastResult.SnapshotsPruned)
}
