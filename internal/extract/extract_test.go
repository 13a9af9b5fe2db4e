package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestCSVSource_Extract(t *testing.T) {
	path := writeCSV(t, "id,context\n"+
		`1,"{""title"":""Data Engineer""}"`+"\n"+
		`2,"{""title"":""Line one`+"\n"+`line two""}"`+"\n"+
		"3,not json\n")

	got, err := NewCSVSource(path, "").Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := []string{
		`{"title":"Data Engineer"}`,
		"{\"title\":\"Line one\nline two\"}",
		"not json",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d payloads, want %d: %q", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("payload %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCSVSource_BOMAndRaggedRows(t *testing.T) {
	path := writeCSV(t, "\ufeffcontext,extra\n{}\n{},x\n")

	got, err := NewCSVSource(path, "context").Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got) != 2 || got[0] != "{}" || got[1] != "{}" {
		t.Errorf("got %q", got)
	}

	path = writeCSV(t, "id,context\n1\n2,{}\n")
	got, err = NewCSVSource(path, "context").Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got) != 2 || got[0] != "" || got[1] != "{}" {
		t.Errorf("short row should yield empty payload, got %q", got)
	}
}

func TestCSVSource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.csv") }, "no such file"},
		{"empty file", func(t *testing.T) string { return writeCSV(t, "") }, "missing header"},
		{"missing column", func(t *testing.T) string { return writeCSV(t, "id,payload\n1,{}\n") }, "column not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVSource(tt.path(t), "context").Extract(context.Background())
			var sre *SourceReadError
			if !errors.As(err, &sre) {
				t.Fatalf("err = %v, want *SourceReadError", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want substring %q", err, tt.wantErr)
			}
		})
	}

	_, err := NewCSVSource(writeCSV(t, "id\n1\n"), "context").Extract(context.Background())
	if !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("err = %v, want ErrColumnNotFound", err)
	}
}

func TestReadColumn_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadColumn(ctx, strings.NewReader("context\n{}\n"), "context")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSliceSource(t *testing.T) {
	src := SliceSource{"a", "b"}
	got, err := src.Extract(context.Background())
	if err != nil || len(got) != 2 || got[1] != "b" {
		t.Fatalf("got %q, %v", got, err)
	}
	got[0] = "changed"
	if src[0] != "a" {
		t.Error("Extract should return a copy")
	}
}
