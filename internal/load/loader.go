// Package load persists normalized records, one job row plus its five
// dependents per record, in a single transaction.
package load

import (
	"context"
	"errors"
	"fmt"

	"jobpostings-etl/internal/domain"
	"jobpostings-etl/internal/logger"
	"jobpostings-etl/internal/metrics"
	"jobpostings-etl/internal/store"
)

// LoadError wraps the store error that stopped the load. Nothing from the
// batch is committed when it is returned.
type LoadError struct {
	Index int    // record index, -1 when not tied to a record
	Table string // table being written, empty for begin/commit
	Err   error
}

func (e *LoadError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("load: %v", e.Err)
	}
	return fmt.Sprintf("load record %d into %s: %v", e.Index, e.Table, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Tx is the slice of a store transaction the loader writes through.
type Tx interface {
	InsertJob(ctx context.Context, j domain.Job) (int64, error)
	InsertCompany(ctx context.Context, jobID int64, c domain.Company) error
	InsertEducation(ctx context.Context, jobID int64, e domain.Education) error
	InsertExperience(ctx context.Context, jobID int64, e domain.Experience) error
	InsertSalary(ctx context.Context, jobID int64, s domain.Salary) error
	InsertLocation(ctx context.Context, jobID int64, l domain.Location) error
	Commit() error
	Rollback() error
}

// Beginner opens a load transaction.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// StoreBeginner adapts *store.DB to Beginner.
type StoreBeginner struct {
	DB *store.DB
}

func (b StoreBeginner) Begin(ctx context.Context) (Tx, error) {
	return b.DB.Begin(ctx)
}

type Result struct {
	Jobs int
	IDs  []int64 // generated job ids, in record order
}

type Loader struct {
	Store   Beginner
	Log     *logger.Logger
	Metrics *metrics.Metrics
}

func New(db *store.DB, log *logger.Logger, m *metrics.Metrics) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{Store: StoreBeginner{DB: db}, Log: log, Metrics: m}
}

// Load writes records in order and commits once. Any failure rolls the
// whole batch back.
func (l *Loader) Load(ctx context.Context, records []domain.Record) (res Result, err error) {
	tx, err := l.Store.Begin(ctx)
	if err != nil {
		return Result{}, &LoadError{Index: -1, Err: err}
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
			res = Result{}
		}
	}()

	res.IDs = make([]int64, 0, len(records))
	for _, rec := range records {
		if err = ctx.Err(); err != nil {
			return res, &LoadError{Index: rec.Index, Err: err}
		}
		var id int64
		if id, err = insertRecord(ctx, tx, rec); err != nil {
			return res, err
		}
		res.IDs = append(res.IDs, id)
		l.Log.Debug("[load] record inserted", "index", rec.Index, "job_id", id)
	}

	if err = tx.Commit(); err != nil {
		return res, &LoadError{Index: -1, Err: fmt.Errorf("commit: %w", err)}
	}
	res.Jobs = len(res.IDs)
	l.Metrics.Loaded(res.Jobs)
	l.Log.Info("[load] committed", "jobs", res.Jobs)
	return res, nil
}

// insertRecord writes the job row, then its five dependents with the id
// that insert returned. The next record must not start before this returns.
func insertRecord(ctx context.Context, tx Tx, rec domain.Record) (int64, error) {
	id, err := tx.InsertJob(ctx, rec.Job)
	if err != nil {
		return 0, &LoadError{Index: rec.Index, Table: "job", Err: err}
	}

	deps := []struct {
		table string
		run   func() error
	}{
		{"company", func() error { return tx.InsertCompany(ctx, id, rec.Company) }},
		{"education", func() error { return tx.InsertEducation(ctx, id, rec.Education) }},
		{"experience", func() error { return tx.InsertExperience(ctx, id, rec.Experience) }},
		{"salary", func() error { return tx.InsertSalary(ctx, id, rec.Salary) }},
		{"location", func() error { return tx.InsertLocation(ctx, id, rec.Location) }},
	}
	for _, d := range deps {
		if err := d.run(); err != nil {
			return 0, &LoadError{Index: rec.Index, Table: d.table, Err: err}
		}
	}
	return id, nil
}
