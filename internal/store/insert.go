package store

import (
	"context"
	"database/sql"
	"fmt"

	"jobpostings-etl/internal/domain"
)

// Tx is one load transaction. Every dependent insert takes the job id it
// belongs to as an argument; nothing relies on the connection's "last
// inserted id".
type Tx struct {
	tx     *sql.Tx
	driver string
}

func (d *DB) Begin(ctx context.Context) (*Tx, error) {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &Tx{tx: tx, driver: d.driver}, nil
}

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }

func (t *Tx) exec(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, rebind(t.driver, query), args...)
	return err
}

// datePosted keeps "" on sqlite, which stores it as text, and sends NULL to
// postgres, whose DATE type rejects it.
func (t *Tx) datePosted(s string) any {
	if t.driver == DriverPostgres && s == "" {
		return nil
	}
	return s
}

// InsertJob inserts the parent row and returns its generated id.
func (t *Tx) InsertJob(ctx context.Context, j domain.Job) (int64, error) {
	const q = `
INSERT INTO job (title, industry, description, employment_type, date_posted)
VALUES (?, ?, ?, ?, ?)`
	args := []any{j.Title, j.Industry, j.Description, j.EmploymentType, t.datePosted(j.DatePosted)}

	if t.driver == DriverPostgres {
		var id int64
		if err := t.tx.QueryRowContext(ctx, rebind(t.driver, q+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("insert job: %w", err)
		}
		return id, nil
	}

	res, err := t.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert job: last insert id: %w", err)
	}
	return id, nil
}

func (t *Tx) InsertCompany(ctx context.Context, jobID int64, c domain.Company) error {
	err := t.exec(ctx, `
INSERT INTO company (job_id, name, link)
VALUES (?, ?, ?)`, jobID, c.Name, c.Link)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (t *Tx) InsertEducation(ctx context.Context, jobID int64, e domain.Education) error {
	err := t.exec(ctx, `
INSERT INTO education (job_id, required_credential)
VALUES (?, ?)`, jobID, e.RequiredCredential)
	if err != nil {
		return fmt.Errorf("insert education: %w", err)
	}
	return nil
}

func (t *Tx) InsertExperience(ctx context.Context, jobID int64, e domain.Experience) error {
	err := t.exec(ctx, `
INSERT INTO experience (job_id, months_of_experience, seniority_level)
VALUES (?, ?, ?)`, jobID, e.MonthsOfExperience, e.SeniorityLevel)
	if err != nil {
		return fmt.Errorf("insert experience: %w", err)
	}
	return nil
}

func (t *Tx) InsertSalary(ctx context.Context, jobID int64, s domain.Salary) error {
	err := t.exec(ctx, `
INSERT INTO salary (job_id, currency, min_value, max_value, unit)
VALUES (?, ?, ?, ?, ?)`, jobID, s.Currency, s.MinValue, s.MaxValue, s.Unit)
	if err != nil {
		return fmt.Errorf("insert salary: %w", err)
	}
	return nil
}

func (t *Tx) InsertLocation(ctx context.Context, jobID int64, l domain.Location) error {
	err := t.exec(ctx, `
INSERT INTO location (job_id, country, locality, region, postal_code, street_address, latitude, longitude)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		jobID, l.Country, l.Locality, l.Region, l.PostalCode, l.StreetAddress, l.Latitude, l.Longitude)
	if err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}
