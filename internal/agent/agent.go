// Package agent provides the background janitor that prunes expired
// backups on a schedule.
package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/statekit"
)

// State represents the janitor's current state.
type State string

const (
	// StateStopped indicates the janitor is not running.
	StateStopped State = "stopped"
	// StateStarting indicates the janitor is initializing.
	StateStarting State = "starting"
	// StateRunning indicates the janitor is waiting for the next sweep.
	StateRunning State = "running"
	// StateSweeping indicates a sweep cycle is in progress.
	StateSweeping State = "sweeping"
	// StateStopping indicates the janitor is shutting down.
	StateStopping State = "stopping"
	// StateError indicates the janitor encountered an error.
	StateError State = "error"
)

// Event types for the janitor state machine.
const (
	EventStart         = "START"
	EventStarted       = "STARTED"
	EventTick          = "TICK"
	EventSweepComplete = "SWEEP_COMPLETE"
	EventStop          = "STOP"
	EventError         = "ERROR"
	EventRecover       = "RECOVER"
)

// Config holds janitor scheduling parameters.
type Config struct {
	// Interval is the time between sweep cycles.
	Interval time.Duration
	// BackupRetention is how long snapshots are kept before pruning.
	BackupRetention time.Duration
}

// SweepResult summarizes one sweep cycle.
type SweepResult struct {
	SnapshotsPruned int
	Duration        time.Duration
}

// Context holds the runtime context for the janitor state machine.
type Context struct {
	Config     Config
	StartedAt  time.Time
	LastSweep  time.Time
	SweepCount int
	ErrorCount int
	LastError  error
	LastResult *SweepResult
}

// RuntimeContext wraps Context with thread-safe access.
type RuntimeContext struct {
	mu  sync.RWMutex
	ctx Context
}

// NewRuntimeContext creates a runtime context with the given configuration.
func NewRuntimeContext(cfg Config) *RuntimeContext {
	return &RuntimeContext{ctx: Context{Config: cfg}}
}

// RecordStart records the janitor start time.
func (c *RuntimeContext) RecordStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx.StartedAt = time.Now()
}

// RecordSweep records a completed sweep cycle.
func (c *RuntimeContext) RecordSweep(result *SweepResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx.LastSweep = time.Now()
	c.ctx.SweepCount++
	c.ctx.LastResult = result
}

// RecordError records an error occurrence.
func (c *RuntimeContext) RecordError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx.ErrorCount++
	c.ctx.LastError = err
}

// GetContext returns a copy of the current context.
func (c *RuntimeContext) GetContext() Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ctx
}

// Status is a snapshot of the janitor's status.
type Status struct {
	State      State     `json:"state"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	LastSweep  time.Time `json:"last_sweep,omitempty"`
	SweepCount int       `json:"sweep_count"`
	ErrorCount int       `json:"error_count"`
}

// Janitor runs periodic maintenance sweeps behind a statekit machine.
type Janitor struct {
	interp  *statekit.Interpreter[Context]
	runtime *RuntimeContext

	onSweep func(ctx context.Context, retention time.Duration) (*SweepResult, error)

	stopCh    chan struct{}
	stoppedCh chan struct{}
	mu        sync.RWMutex
}

// NewJanitor creates a janitor with the given configuration.
func NewJanitor(cfg Config) (*Janitor, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive")
	}

	return &Janitor{
		runtime:   NewRuntimeContext(cfg),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}, nil
}

// buildMachine constructs the janitor state machine. The runtime pointer
// is captured by closures so actions modify the original context.
func buildMachine(runtime *RuntimeContext) (*statekit.Interpreter[Context], error) {
	machine, err := statekit.NewMachine[Context]("taskwright-janitor").
		WithInitial("stopped").
		WithContext(runtime.GetContext()).
		WithAction("recordStart", func(_ *Context, _ statekit.Event) {
			runtime.RecordStart()
		}).
		WithAction("recordError", func(_ *Context, event statekit.Event) {
			if payload, ok := event.Payload.(map[string]interface{}); ok {
				if err, ok := payload["error"].(error); ok {
					runtime.RecordError(err)
				}
			}
		}).
		State("stopped").
		On(EventStart).Target("starting").Done().
		State("starting").
		OnEntry("recordStart").
		On(EventStarted).Target("running").
		On(EventError).Target("error").Done().
		State("running").
		On(EventTick).Target("sweeping").
		On(EventStop).Target("stopping").
		On(EventError).Target("error").Done().
		State("sweeping").
		On(EventSweepComplete).Target("running").
		On(EventStop).Target("stopping").
		On(EventError).Target("error").Done().
		State("stopping").
		After(100 * time.Millisecond).Target("stopped").Done().
		State("error").
		OnEntry("recordError").
		On(EventRecover).Target("running").
		On(EventStop).Target("stopped").Done().
		Build()

	if err != nil {
		return nil, err
	}

	return statekit.NewInterpreter(machine), nil
}

// SetSweepHandler sets the function invoked each sweep cycle.
func (j *Janitor) SetSweepHandler(fn func(ctx context.Context, retention time.Duration) (*SweepResult, error)) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.onSweep = fn
}

// Start starts the janitor.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	interp, err := buildMachine(j.runtime)
	if err != nil {
		return fmt.Errorf("failed to build state machine: %w", err)
	}
	j.interp = interp

	j.stopCh = make(chan struct{})
	j.stoppedCh = make(chan struct{})

	j.interp.Start()
	j.interp.Send(statekit.Event{Type: EventStart})

	time.AfterFunc(50*time.Millisecond, func() {
		j.mu.RLock()
		interp := j.interp
		j.mu.RUnlock()
		if interp != nil {
			interp.Send(statekit.Event{Type: EventStarted})
		}
	})

	go j.runScheduler(ctx)

	return nil
}

// Stop stops the janitor gracefully.
func (j *Janitor) Stop(ctx context.Context) error {
	j.mu.Lock()
	interp := j.interp
	stopCh := j.stopCh
	stoppedCh := j.stoppedCh

	if interp == nil {
		j.mu.Unlock()
		return nil
	}

	select {
	case <-stopCh:
	default:
		close(stopCh)
	}
	j.mu.Unlock()

	interp.Send(statekit.Event{Type: EventStop})

	select {
	case <-stoppedCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	j.mu.Lock()
	interp.Stop()
	j.interp = nil
	j.mu.Unlock()

	return nil
}

// State returns the current state.
func (j *Janitor) State() State {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.interp == nil {
		return StateStopped
	}
	return State(j.interp.State().Value)
}

// Status returns the current janitor status.
func (j *Janitor) Status() Status {
	ctx := j.runtime.GetContext()
	return Status{
		State:      j.State(),
		StartedAt:  ctx.StartedAt,
		LastSweep:  ctx.LastSweep,
		SweepCount: ctx.SweepCount,
		ErrorCount: ctx.ErrorCount,
	}
}

// runScheduler runs the sweep scheduler loop.
func (j *Janitor) runScheduler(ctx context.Context) {
	defer close(j.stoppedCh)

	select {
	case <-time.After(200 * time.Millisecond):
	case <-ctx.Done():
		return
	case <-j.stopCh:
		return
	}

	cfg := j.runtime.GetContext().Config
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.stopCh:
			return
		case <-ticker.C:
			j.triggerSweep(ctx)
		}
	}
}

// triggerSweep runs one sweep cycle.
func (j *Janitor) triggerSweep(ctx context.Context) {
	if j.State() != StateRunning {
		return
	}

	j.interp.Send(statekit.Event{Type: EventTick})

	j.mu.RLock()
	handler := j.onSweep
	j.mu.RUnlock()

	if handler == nil {
		j.interp.Send(statekit.Event{Type: EventSweepComplete})
		return
	}

	cfg := j.runtime.GetContext().Config

	start := time.Now()
	result, err := handler(ctx, cfg.BackupRetention)
	if err != nil {
		j.interp.Send(statekit.Event{
			Type:    EventError,
			Payload: map[string]interface{}{"error": err},
		})
		return
	}
	if result != nil {
		result.Duration = time.Since(start)
	}

	j.runtime.RecordSweep(result)
	j.interp.Send(statekit.Event{Type: EventSweepComplete})
}

// Recover attempts to move the janitor out of the error state.
func (j *Janitor) Recover() {
	j.mu.RLock()
	interp := j.interp
	j.mu.RUnlock()

	if interp != nil {
		interp.Send(statekit.Event{Type: EventRecover})
	}
}
