package scheduler

import (
	"context"
	"time"

	"jobpostings-etl/internal/logger"
)

type Task func(ctx context.Context) error

// Every runs task now and then once per interval until ctx is done. Runs
// never overlap: a tick that arrives while the task is still running is
// dropped.
func Every(ctx context.Context, interval time.Duration, name string, log *logger.Logger, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	run := func() {
		if err := task(ctx); err != nil {
			log.Error("["+name+"] error", "err", err)
		}
		select {
		case <-t.C:
		default:
		}
	}

	// run immediately
	run()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
