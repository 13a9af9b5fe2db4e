package httpapi

import (
	"context"

	"jobpostings-etl/internal/events"
	"jobpostings-etl/internal/logger"
	"jobpostings-etl/internal/metrics"
)

type Deps struct {
	Log     *logger.Logger
	Metrics *metrics.Metrics
	Hub     *events.Hub
	Runs    *RunTracker

	// BaseCtx bounds runs started over HTTP.
	BaseCtx context.Context

	Counts func(ctx context.Context) (map[string]int64, error)
}
