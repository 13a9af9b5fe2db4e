package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"jobpostings-etl/internal/events"
	"jobpostings-etl/internal/httpapi"
	"jobpostings-etl/internal/metrics"
	"jobpostings-etl/internal/pipeline"
	"jobpostings-etl/internal/scheduler"
)

func newScheduleCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline now and then every schedule.interval, serving ops endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.log.Sync()
			return runSchedule(cmd.Context(), a)
		},
	}
}

func runSchedule(ctx context.Context, a *app) error {
	g, ctx := errgroup.WithContext(ctx)

	m := metrics.New()
	hub := events.NewHub(16)
	p := pipeline.New(a.cfg, a.log, m)
	runs := httpapi.NewRunTracker(p.RunWithID, hub)

	if addr := a.cfg.Metrics.Addr; addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}
		srv := &http.Server{
			Handler: httpapi.NewHandler(httpapi.Deps{
				Log:     a.log,
				Metrics: m,
				Hub:     hub,
				Runs:    runs,
				BaseCtx: ctx,
				Counts: func(ctx context.Context) (map[string]int64, error) {
					return pipeline.Counts(ctx, a.cfg)
				},
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		a.log.Info("[http] listening", "addr", "http://"+ln.Addr().String())

		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		scheduler.Every(ctx, a.cfg.Schedule.Interval, "pipeline", a.log, func(ctx context.Context) error {
			err := runs.Run(ctx)
			if errors.Is(err, httpapi.ErrBusy) || errors.Is(err, pipeline.ErrLocked) {
				a.log.Warn("[pipeline] a run is already in progress, skipping tick")
				return nil
			}
			return err
		})
		return nil
	})

	err := g.Wait()
	a.log.Info("[schedule] stopped")
	return err
}

func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
