package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// OverlayEnv loads envFile (if present) into the process environment and
// applies JOBETL_* variables on top of cfg. Variables already set in the
// environment win over the file.
func OverlayEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	str("JOBETL_DATA_DIR", &cfg.App.DataDir)
	str("JOBETL_SOURCE_PATH", &cfg.Source.Path)
	str("JOBETL_SOURCE_COLUMN", &cfg.Source.Column)
	str("JOBETL_STAGING_BACKEND", &cfg.Staging.Backend)
	str("JOBETL_STAGING_DIR", &cfg.Staging.Dir)
	str("JOBETL_S3_ENDPOINT", &cfg.Staging.S3.Endpoint)
	str("JOBETL_S3_BUCKET", &cfg.Staging.S3.Bucket)
	str("JOBETL_S3_ACCESS_KEY", &cfg.Staging.S3.AccessKey)
	str("JOBETL_S3_SECRET_KEY", &cfg.Staging.S3.SecretKey)
	str("JOBETL_STORE_DRIVER", &cfg.Store.Driver)
	str("JOBETL_STORE_DSN", &cfg.Store.DSN)
	str("JOBETL_ON_MALFORMED", &cfg.Normalize.OnMalformed)
	str("JOBETL_METRICS_ADDR", &cfg.Metrics.Addr)
	str("JOBETL_LOG_LEVEL", &cfg.Logging.Level)

	if v, ok := os.LookupEnv("JOBETL_RETRY_ATTEMPTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("JOBETL_RETRY_ATTEMPTS: %w", err)
		}
		cfg.Retry.Attempts = n
	}
	if v, ok := os.LookupEnv("JOBETL_RETRY_DELAY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JOBETL_RETRY_DELAY: %w", err)
		}
		cfg.Retry.Delay = d
	}
	return nil
}
