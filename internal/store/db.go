package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Options struct {
	Driver string // sqlite | postgres
	DSN    string // file path for sqlite, connection string for postgres
}

type DB struct {
	Pool   *sql.DB
	driver string
}

func Open(ctx context.Context, opts Options) (*DB, error) {
	var (
		pool *sql.DB
		err  error
	)
	switch opts.Driver {
	case DriverSQLite, "":
		// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", opts.DSN)
		pool, err = sql.Open("sqlite", dsn)
		opts.Driver = DriverSQLite
	case DriverPostgres:
		pool, err = sql.Open("pgx", opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	// one connection: the loader is the only writer and every dependent
	// insert must see the job row inserted just before it
	pool.SetMaxOpenConns(1)
	pool.SetConnMaxLifetime(5 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.PingContext(pctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping %s store: %w", opts.Driver, err)
	}

	return &DB{Pool: pool, driver: opts.Driver}, nil
}

func (d *DB) Close() error {
	if d == nil || d.Pool == nil {
		return nil
	}
	return d.Pool.Close()
}

func (d *DB) Driver() string { return d.driver }

// rebind rewrites ? placeholders to $n for postgres.
func rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
