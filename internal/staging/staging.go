// Package staging writes one human-readable JSON snapshot per normalized
// record, keyed by the record's position in the source.
package staging

import (
	"context"
	"encoding/json"
	"fmt"

	"jobpostings-etl/internal/config"
	"jobpostings-etl/internal/domain"
)

type Writer interface {
	Write(ctx context.Context, index int, rec domain.Record) error
}

// Name is the file or object name used for the record at index.
func Name(index int) string {
	return fmt.Sprintf("job_%d.json", index)
}

// Encode renders rec as indented JSON with a trailing newline.
func Encode(rec domain.Record) ([]byte, error) {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// New builds the writer selected by cfg.Staging.Backend.
func New(cfg config.Config) (Writer, error) {
	switch cfg.Staging.Backend {
	case config.StagingDir:
		return NewDirWriter(cfg.Path(cfg.Staging.Dir)), nil
	case config.StagingS3:
		return NewS3Writer(cfg.Staging.S3)
	case config.StagingNone, "":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown staging backend %q", cfg.Staging.Backend)
	}
}

type Nop struct{}

func (Nop) Write(context.Context, int, domain.Record) error { return nil }
