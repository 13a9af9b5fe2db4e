// Package extract reads raw posting payloads from the source export.
package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrColumnNotFound is returned when the header lacks the payload column.
var ErrColumnNotFound = errors.New("column not found")

// SourceReadError means the source as a whole could not be read. It is fatal
// to the run.
type SourceReadError struct {
	Path string
	Err  error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("read source %s: %v", e.Path, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// Source yields the ordered, unparsed JSON payloads of one run.
type Source interface {
	Extract(ctx context.Context) ([]string, error)
}

// CSVSource reads one column of a CSV file with a header row.
type CSVSource struct {
	Path   string
	Column string
}

func NewCSVSource(path, column string) *CSVSource {
	if column == "" {
		column = "context"
	}
	return &CSVSource{Path: path, Column: column}
}

func (s *CSVSource) Extract(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, &SourceReadError{Path: s.Path, Err: err}
	}
	defer f.Close()

	out, err := ReadColumn(ctx, f, s.Column)
	if err != nil {
		return nil, &SourceReadError{Path: s.Path, Err: err}
	}
	return out, nil
}

// ReadColumn returns the values of column for every data row of r, in order.
// Rows too short to reach the column yield "".
func ReadColumn(ctx context.Context, r io.Reader, column string) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, err
	}

	col := -1
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if strings.TrimSpace(h) == column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}

	var out []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if col < len(rec) {
			out = append(out, rec[col])
		} else {
			out = append(out, "")
		}
	}
	return out, nil
}

// SliceSource serves payloads already in memory.
type SliceSource []string

func (s SliceSource) Extract(ctx context.Context) ([]string, error) {
	out := make([]string, len(s))
	copy(out, s)
	return out, ctx.Err()
}
