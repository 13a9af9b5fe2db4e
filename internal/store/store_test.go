package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"jobpostings-etl/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Options{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "jobs.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.CreateTables(context.Background()); err != nil {
		t.Fatalf("CreateTables: %v", err)
	}
	return db
}

func TestCreateTables_Idempotent(t *testing.T) {
	db := openTestDB(t)
	if err := db.CreateTables(context.Background()); err != nil {
		t.Fatalf("second CreateTables: %v", err)
	}
	counts, err := db.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	for _, table := range Tables {
		if n, ok := counts[table]; !ok || n != 0 {
			t.Errorf("table %s count = %d, ok=%v", table, n, ok)
		}
	}
}

func TestTx_InsertRecord(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	tx, err := db.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	id, err := tx.InsertJob(ctx, domain.Job{Title: "Data Engineer", DatePosted: "2024-01-15"})
	if err != nil {
		t.Fatalf("InsertJob: %v", err)
	}
	if id <= 0 {
		t.Fatalf("InsertJob id = %d", id)
	}
	steps := []func() error{
		func() error { return tx.InsertCompany(ctx, id, domain.Company{Name: "Acme", Link: "acme.com"}) },
		func() error { return tx.InsertEducation(ctx, id, domain.Education{}) },
		func() error {
			return tx.InsertExperience(ctx, id, domain.Experience{MonthsOfExperience: domain.NumberOf(24)})
		},
		func() error {
			return tx.InsertSalary(ctx, id, domain.Salary{Currency: "USD", MinValue: domain.NumberOf(90000), MaxValue: domain.NumberOf(120000), Unit: "YEAR"})
		},
		func() error {
			return tx.InsertLocation(ctx, id, domain.Location{Country: "US", Latitude: domain.NumberOf(40.7128)})
		},
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("dependent insert %d: %v", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	var (
		minV, maxV sql.NullFloat64
		currency   string
		jobID      int64
	)
	err = db.Pool.QueryRow(`SELECT job_id, currency, min_value, max_value FROM salary`).Scan(&jobID, &currency, &minV, &maxV)
	if err != nil {
		t.Fatal(err)
	}
	if jobID != id || currency != "USD" || minV.Float64 != 90000 || maxV.Float64 != 120000 {
		t.Errorf("salary row = %d %s %v %v", jobID, currency, minV, maxV)
	}

	var lng sql.NullFloat64
	var lat float64
	if err := db.Pool.QueryRow(`SELECT latitude, longitude FROM location WHERE job_id = ?`, id).Scan(&lat, &lng); err != nil {
		t.Fatal(err)
	}
	if lat != 40.7128 || lng.Valid {
		t.Errorf("location lat=%v lng=%v, want 40.7128 and NULL", lat, lng)
	}

	orphans, err := db.Orphans(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if orphans != 0 {
		t.Errorf("orphans = %d, want 0", orphans)
	}
}

func TestTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	tx, err := db.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	id, err := tx.InsertJob(ctx, domain.Job{Title: "gone"})
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.InsertCompany(ctx, id, domain.Company{Name: "gone"}); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatal(err)
	}

	counts, err := db.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts["job"] != 0 || counts["company"] != 0 {
		t.Errorf("counts after rollback = %v", counts)
	}
}

func TestOrphans_DetectsMissingDependents(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Pool.Exec(`INSERT INTO job (title) VALUES ('lonely')`); err != nil {
		t.Fatal(err)
	}
	n, err := db.Orphans(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("orphans = %d, want 5 (one per dependent table)", n)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	q := "INSERT INTO t (a, b) VALUES (?, ?)"
	if got := rebind(DriverSQLite, q); got != q {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
	if got := rebind(DriverPostgres, q); got != "INSERT INTO t (a, b) VALUES ($1, $2)" {
		t.Errorf("postgres rebind = %q", got)
	}
}
