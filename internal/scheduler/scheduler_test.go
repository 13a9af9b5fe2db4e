package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"jobpostings-etl/internal/logger"
)

func TestEvery_RunsImmediatelyAndRepeats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	done := make(chan struct{})
	go func() {
		Every(ctx, 10*time.Millisecond, "test", logger.Nop(), func(context.Context) error {
			if runs.Add(1) == 3 {
				cancel()
			}
			return errors.New("failures are logged, not fatal")
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Every did not stop after cancel")
	}
	if n := runs.Load(); n < 3 {
		t.Errorf("runs = %d, want at least 3", n)
	}
}

func TestEvery_NoOverlap(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var active, maxActive atomic.Int32
	Every(ctx, time.Millisecond, "slow", logger.Nop(), func(context.Context) error {
		n := active.Add(1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		time.Sleep(20 * time.Millisecond)
		active.Add(-1)
		return nil
	})

	if maxActive.Load() != 1 {
		t.Errorf("max concurrent runs = %d, want 1", maxActive.Load())
	}
}
