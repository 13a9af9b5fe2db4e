package httpapi

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"jobpostings-etl/internal/events"
)

// ErrBusy is returned when a run is requested while one is in flight.
var ErrBusy = errors.New("a pipeline run is already in progress")

type RunFunc func(ctx context.Context, runID string) error

// RunTracker serializes pipeline runs from the scheduler and from POST /run
// and keeps the status served by GET /status.
type RunTracker struct {
	run    RunFunc
	hub    *events.Hub
	busy   atomic.Bool
	status atomic.Value // RunStatus
	now    func() time.Time
}

func NewRunTracker(run RunFunc, hub *events.Hub) *RunTracker {
	t := &RunTracker{run: run, hub: hub, now: time.Now}
	t.status.Store(RunStatus{})
	return t
}

func (t *RunTracker) Status() RunStatus {
	return t.status.Load().(RunStatus)
}

// Run executes one pipeline run synchronously.
func (t *RunTracker) Run(ctx context.Context) error {
	if !t.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return t.execute(ctx)
}

// Start launches a run in the background. It reports false when one is
// already in flight.
func (t *RunTracker) Start(ctx context.Context) bool {
	if !t.busy.CompareAndSwap(false, true) {
		return false
	}
	go func() { _ = t.execute(ctx) }()
	return true
}

func (t *RunTracker) execute(ctx context.Context) error {
	defer t.busy.Store(false)

	runID := uuid.NewString()
	st := t.Status()
	st.LastRunID = runID
	st.LastRunAt = t.now().Format(time.RFC3339)
	st.Running = true
	t.status.Store(st)
	t.publish(events.New(events.RunStarted, runID, nil))

	err := t.run(ctx, runID)

	next := t.Status()
	next.Running = false
	next.Runs++
	result := map[string]string{"status": "ok"}
	if err != nil {
		next.LastError = err.Error()
		result = map[string]string{"status": "failed", "error": err.Error()}
	} else {
		next.LastError = ""
		next.LastOkAt = t.now().Format(time.RFC3339)
	}
	t.status.Store(next)
	t.publish(events.New(events.RunFinished, runID, result))
	return err
}

func (t *RunTracker) publish(e events.Event) {
	if t.hub != nil {
		t.hub.Publish(e)
	}
}
