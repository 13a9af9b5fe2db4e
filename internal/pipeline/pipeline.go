// Package pipeline runs create-tables, extract, normalize and load in
// order, retrying the whole sequence on failure.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"jobpostings-etl/internal/config"
	"jobpostings-etl/internal/extract"
	"jobpostings-etl/internal/load"
	"jobpostings-etl/internal/logger"
	"jobpostings-etl/internal/metrics"
	"jobpostings-etl/internal/normalize"
	"jobpostings-etl/internal/runlog"
	"jobpostings-etl/internal/staging"
	"jobpostings-etl/internal/store"
)

// ErrLocked means another process is running the pipeline on the same data dir.
var ErrLocked = errors.New("pipeline is already running")

type Stats struct {
	Stage      string // last stage entered
	Extracted  int
	Normalized int
	Loaded     int
}

type Pipeline struct {
	Config   config.Config
	Log      *logger.Logger
	Metrics  *metrics.Metrics
	Recorder *runlog.Recorder

	// Source and Stager default to the ones named by Config when nil.
	Source extract.Source
	Stager staging.Writer

	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg config.Config, log *logger.Logger, m *metrics.Metrics) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		Config:   cfg,
		Log:      log,
		Metrics:  m,
		Recorder: runlog.NewRecorder(cfg.Path(cfg.RunLog.Dir)),
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run is RunWithID with a fresh run id.
func (p *Pipeline) Run(ctx context.Context) error {
	return p.RunWithID(ctx, uuid.NewString())
}

// RunWithID holds the run lock for its whole duration and makes up to
// 1+Retry.Attempts attempts, all recorded under runID.
func (p *Pipeline) RunWithID(ctx context.Context, runID string) error {
	if err := os.MkdirAll(p.Config.App.DataDir, 0o755); err != nil {
		return err
	}
	lock := flock.New(p.Config.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	defer func() { _ = lock.Unlock() }()

	log := p.Log.With("run_id", runID)
	maxAttempts := 1 + p.Config.Retry.Attempts

	for attempt := 1; ; attempt++ {
		err := p.attempt(ctx, log, runID, attempt)
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt >= maxAttempts {
			log.Error("[pipeline] run failed", "attempt", attempt, "err", err)
			return err
		}
		log.Warn("[pipeline] attempt failed, retrying",
			"attempt", attempt, "max_attempts", maxAttempts, "delay", p.Config.Retry.Delay, "err", err)
		if serr := p.sleep(ctx, p.Config.Retry.Delay); serr != nil {
			return fmt.Errorf("%w (retry abandoned: %v)", err, serr)
		}
	}
}

// retryable is false for failures a re-run cannot fix.
func retryable(err error) bool {
	var mre *normalize.MalformedRecordError
	switch {
	case errors.As(err, &mre):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}

func (p *Pipeline) attempt(ctx context.Context, log *logger.Logger, runID string, attempt int) (err error) {
	started := time.Now()
	log = log.With("attempt", attempt)

	rec, recErr := p.Recorder.Start(runID, attempt)
	if recErr != nil {
		log.Warn("[runlog] cannot record attempt", "err", recErr)
	}

	stats, err := p.RunOnce(ctx, log)

	status := "ok"
	if err != nil {
		status = "failed"
	}
	p.Metrics.RunFinished(status, time.Since(started))

	if rec != nil {
		rec.Stage = stats.Stage
		rec.Set("extracted", int64(stats.Extracted))
		rec.Set("normalized", int64(stats.Normalized))
		rec.Set("loaded", int64(stats.Loaded))
		if ferr := p.Recorder.Finish(rec, err); ferr != nil {
			log.Warn("[runlog] cannot finish record", "err", ferr)
		}
	}
	if err == nil {
		log.Info("[pipeline] run ok", "extracted", stats.Extracted, "loaded", stats.Loaded,
			"took", time.Since(started).Round(time.Millisecond))
	}
	return err
}

// RunOnce executes every stage once. The store is opened here and closed on
// every exit path.
func (p *Pipeline) RunOnce(ctx context.Context, log *logger.Logger) (stats Stats, err error) {
	cfg := p.Config

	stats.Stage = "create_tables"
	db, err := store.Open(ctx, store.Options{Driver: cfg.Store.Driver, DSN: cfg.StoreDSN()})
	if err != nil {
		return stats, fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Warn("[store] close failed", "err", cerr)
		}
	}()
	if err := db.CreateTables(ctx); err != nil {
		return stats, fmt.Errorf("create tables: %w", err)
	}

	stats.Stage = "extract"
	src := p.Source
	if src == nil {
		src = extract.NewCSVSource(cfg.Path(cfg.Source.Path), cfg.Source.Column)
	}
	payloads, err := src.Extract(ctx)
	if err != nil {
		return stats, fmt.Errorf("extract: %w", err)
	}
	stats.Extracted = len(payloads)
	p.Metrics.Extracted(len(payloads))
	log.Info("[extract] done", "payloads", len(payloads))

	stats.Stage = "normalize"
	stager := p.Stager
	if stager == nil {
		if stager, err = staging.New(cfg); err != nil {
			return stats, fmt.Errorf("staging: %w", err)
		}
	}
	records, err := normalize.New(stager, cfg.Normalize, log, p.Metrics).Normalize(ctx, payloads)
	if err != nil {
		return stats, fmt.Errorf("normalize: %w", err)
	}
	stats.Normalized = len(records)

	stats.Stage = "load"
	res, err := load.New(db, log, p.Metrics).Load(ctx, records)
	if err != nil {
		return stats, err
	}
	stats.Loaded = res.Jobs
	return stats, nil
}

// CreateTables runs only the DDL stage.
func CreateTables(ctx context.Context, cfg config.Config) error {
	db, err := store.Open(ctx, store.Options{Driver: cfg.Store.Driver, DSN: cfg.StoreDSN()})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()
	return db.CreateTables(ctx)
}

// Counts reports rows per table in the configured store.
func Counts(ctx context.Context, cfg config.Config) (map[string]int64, error) {
	db, err := store.Open(ctx, store.Options{Driver: cfg.Store.Driver, DSN: cfg.StoreDSN()})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer db.Close()
	return db.Counts(ctx)
}

type StoreReport struct {
	Counts  map[string]int64 `json:"counts"`
	Orphans int64            `json:"orphans"`
}

// Inspect reports row counts and the number of rows breaking job linkage.
func Inspect(ctx context.Context, cfg config.Config) (StoreReport, error) {
	db, err := store.Open(ctx, store.Options{Driver: cfg.Store.Driver, DSN: cfg.StoreDSN()})
	if err != nil {
		return StoreReport{}, fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	var rep StoreReport
	if rep.Counts, err = db.Counts(ctx); err != nil {
		return rep, err
	}
	if rep.Orphans, err = db.Orphans(ctx); err != nil {
		return rep, err
	}
	return rep, nil
}
