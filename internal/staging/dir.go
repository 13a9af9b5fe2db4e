package staging

import (
	"context"
	"os"
	"path/filepath"

	"jobpostings-etl/internal/domain"
)

// DirWriter writes job_<index>.json files into Dir, replacing any file left
// by an earlier run.
type DirWriter struct {
	Dir string
}

func NewDirWriter(dir string) *DirWriter {
	return &DirWriter{Dir: dir}
}

func (w *DirWriter) Write(ctx context.Context, index int, rec domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := Encode(rec)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(w.Dir, Name(index))
	tmp, err := os.CreateTemp(w.Dir, ".job-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
