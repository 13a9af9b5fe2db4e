package store

import (
	"context"
	"fmt"
)

// Tables lists the persisted tables, parent first.
var Tables = []string{"job", "company", "education", "experience", "salary", "location"}

var sqliteSchema = []string{`
CREATE TABLE IF NOT EXISTS job (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title VARCHAR(225),
  industry VARCHAR(225),
  description TEXT,
  employment_type VARCHAR(125),
  date_posted DATE
);`, `
CREATE TABLE IF NOT EXISTS company (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_id INTEGER,
  name VARCHAR(225),
  link TEXT,
  FOREIGN KEY (job_id) REFERENCES job(id)
);`, `
CREATE TABLE IF NOT EXISTS education (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_id INTEGER,
  required_credential VARCHAR(225),
  FOREIGN KEY (job_id) REFERENCES job(id)
);`, `
CREATE TABLE IF NOT EXISTS experience (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_id INTEGER,
  months_of_experience INTEGER,
  seniority_level VARCHAR(25),
  FOREIGN KEY (job_id) REFERENCES job(id)
);`, `
CREATE TABLE IF NOT EXISTS salary (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_id INTEGER,
  currency VARCHAR(3),
  min_value NUMERIC,
  max_value NUMERIC,
  unit VARCHAR(12),
  FOREIGN KEY (job_id) REFERENCES job(id)
);`, `
CREATE TABLE IF NOT EXISTS location (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_id INTEGER,
  country VARCHAR(60),
  locality VARCHAR(60),
  region VARCHAR(60),
  postal_code VARCHAR(25),
  street_address VARCHAR(225),
  latitude NUMERIC,
  longitude NUMERIC,
  FOREIGN KEY (job_id) REFERENCES job(id)
);`,
}

var postgresSchema = []string{`
CREATE TABLE IF NOT EXISTS job (
  id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
  title VARCHAR(225),
  industry VARCHAR(225),
  description TEXT,
  employment_type VARCHAR(125),
  date_posted DATE
);`, `
CREATE TABLE IF NOT EXISTS company (
  id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
  job_id BIGINT REFERENCES job(id),
  name VARCHAR(225),
  link TEXT
);`, `
CREATE TABLE IF NOT EXISTS education (
  id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
  job_id BIGINT REFERENCES job(id),
  required_credential VARCHAR(225)
);`, `
CREATE TABLE IF NOT EXISTS experience (
  id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
  job_id BIGINT REFERENCES job(id),
  months_of_experience INTEGER,
  seniority_level VARCHAR(25)
);`, `
CREATE TABLE IF NOT EXISTS salary (
  id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
  job_id BIGINT REFERENCES job(id),
  currency VARCHAR(3),
  min_value NUMERIC,
  max_value NUMERIC,
  unit VARCHAR(12)
);`, `
CREATE TABLE IF NOT EXISTS location (
  id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
  job_id BIGINT REFERENCES job(id),
  country VARCHAR(60),
  locality VARCHAR(60),
  region VARCHAR(60),
  postal_code VARCHAR(25),
  street_address VARCHAR(225),
  latitude NUMERIC,
  longitude NUMERIC
);`,
}

// CreateTables creates the six tables if they do not exist yet. It never
// alters or drops anything.
func (d *DB) CreateTables(ctx context.Context) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if d.driver == DriverSQLite {
		var v int
		if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
			return err
		}
		if v >= 1 {
			return tx.Commit()
		}
	}

	schema := sqliteSchema
	if d.driver == DriverPostgres {
		schema = postgresSchema
	}
	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table %s: %w", Tables[i], err)
		}
	}

	if d.driver == DriverSQLite {
		if _, err := tx.ExecContext(ctx, `PRAGMA user_version = 1;`); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Counts returns the number of rows in every table.
func (d *DB) Counts(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(Tables))
	for _, t := range Tables {
		var n int64
		// table names come from the fixed Tables list
		if err := d.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", t, err)
		}
		out[t] = n
	}
	return out, nil
}

// Orphans counts job rows missing a dependent in any of the five child
// tables, plus child rows whose job_id matches no job.
func (d *DB) Orphans(ctx context.Context) (int64, error) {
	var total int64
	for _, t := range Tables[1:] {
		var n int64
		q := `SELECT COUNT(*) FROM job j WHERE NOT EXISTS (SELECT 1 FROM ` + t + ` c WHERE c.job_id = j.id)`
		if err := d.Pool.QueryRowContext(ctx, q).Scan(&n); err != nil {
			return 0, fmt.Errorf("check %s: %w", t, err)
		}
		total += n

		q = `SELECT COUNT(*) FROM ` + t + ` c WHERE c.job_id IS NULL OR NOT EXISTS (SELECT 1 FROM job j WHERE j.id = c.job_id)`
		if err := d.Pool.QueryRowContext(ctx, q).Scan(&n); err != nil {
			return 0, fmt.Errorf("check %s: %w", t, err)
		}
		total += n
	}
	return total, nil
}

