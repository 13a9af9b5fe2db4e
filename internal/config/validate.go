package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err folds all errors into one, or returns nil when the config is usable.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return errors.New("config validation failed:\n- " + strings.Join(v.Errors, "\n- "))
}

// NormalizeAndValidate returns a trimmed, lower-cased copy of cfg and the
// problems found in it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	lower := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

	out.App.DataDir = strings.TrimSpace(out.App.DataDir)
	if out.App.DataDir == "" {
		out.App.DataDir = "."
	}
	out.Source.Path = strings.TrimSpace(out.Source.Path)
	out.Source.Column = strings.TrimSpace(out.Source.Column)
	out.Staging.Backend = lower(out.Staging.Backend)
	out.Store.Driver = lower(out.Store.Driver)
	out.Store.DSN = strings.TrimSpace(out.Store.DSN)
	out.Normalize.OnMalformed = lower(out.Normalize.OnMalformed)
	out.Logging.Level = lower(out.Logging.Level)
	out.Logging.Format = lower(out.Logging.Format)

	// ---- source ----
	if out.Source.Path == "" {
		res.addErr("source.path is required")
	}
	if out.Source.Column == "" {
		res.addErr("source.column is required")
	}

	// ---- staging ----
	switch out.Staging.Backend {
	case StagingDir:
		if strings.TrimSpace(out.Staging.Dir) == "" {
			res.addErr("staging.dir is required when staging.backend=dir")
		}
	case StagingS3:
		if strings.TrimSpace(out.Staging.S3.Endpoint) == "" {
			res.addErr("staging.s3.endpoint is required when staging.backend=s3")
		}
		if strings.TrimSpace(out.Staging.S3.Bucket) == "" {
			res.addErr("staging.s3.bucket is required when staging.backend=s3")
		}
		if out.Staging.S3.AccessKey == "" || out.Staging.S3.SecretKey == "" {
			res.addWarn("staging.s3 credentials are empty; uploads will be anonymous")
		}
	case StagingNone, "":
		out.Staging.Backend = StagingNone
		res.addWarn("staging is disabled; no per-record snapshots will be written")
	default:
		res.addErr("staging.backend must be one of: dir, s3, none (got %q)", out.Staging.Backend)
	}

	// ---- store ----
	switch out.Store.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		res.addErr("store.driver must be sqlite or postgres (got %q)", out.Store.Driver)
	}
	if out.Store.DSN == "" {
		res.addErr("store.dsn is required")
	}

	// ---- normalize ----
	switch out.Normalize.OnMalformed {
	case PolicyAbort, PolicySkip:
	case "":
		out.Normalize.OnMalformed = PolicyAbort
	default:
		res.addErr("normalize.on_malformed must be abort or skip (got %q)", out.Normalize.OnMalformed)
	}

	// ---- retry ----
	if out.Retry.Attempts < 0 {
		res.addErr("retry.attempts must be >= 0")
	} else if out.Retry.Attempts > 10 {
		res.addWarn("retry.attempts is high (%d); a failing source will be re-read many times.", out.Retry.Attempts)
	}
	if out.Retry.Delay < 0 {
		res.addErr("retry.delay must be >= 0")
	}

	// ---- schedule ----
	if out.Schedule.Interval <= 0 {
		res.addErr("schedule.interval must be > 0")
	} else if out.Schedule.Interval < time.Minute {
		res.addWarn("schedule.interval is very low (%s); each run reloads the whole source.", out.Schedule.Interval)
	}
	if out.Retry.Attempts > 0 && out.Schedule.Interval > 0 &&
		time.Duration(out.Retry.Attempts)*out.Retry.Delay >= out.Schedule.Interval {
		res.addWarn("retries can outlast schedule.interval; the next tick waits for the current run")
	}

	// ---- logging ----
	switch out.Logging.Level {
	case "debug", "info", "warn", "error":
	case "":
		out.Logging.Level = "info"
	default:
		res.addErr("logging.level must be one of: debug, info, warn, error")
	}
	switch out.Logging.Format {
	case "console", "json":
	case "":
		out.Logging.Format = "console"
	default:
		res.addErr("logging.format must be console or json")
	}

	return out, res
}
