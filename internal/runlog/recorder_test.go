package runlog

import (
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"
)

func readRecord(t *testing.T, path string) RunRecord {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var rec RunRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return rec
}

func TestRecorder_Lifecycle(t *testing.T) {
	r := NewRecorder(t.TempDir())
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	rec, err := r.Start("abc", 1)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := readRecord(t, r.Path(rec)); got.Status != StatusStarted || got.RunID != "abc" {
		t.Errorf("started record = %+v", got)
	}

	rec.Set("records", 12)
	rec.Stage = "load"
	if err := r.Finish(rec, errors.New("boom")); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	got := readRecord(t, r.Path(rec))
	if got.Status != StatusFailed || got.Error != "boom" || got.Stage != "load" {
		t.Errorf("failed record = %+v", got)
	}
	if got.Metrics["records"] != 12 {
		t.Errorf("metrics = %v", got.Metrics)
	}
	if !got.CompletedAt.Equal(fixed) {
		t.Errorf("CompletedAt = %v", got.CompletedAt)
	}

	rec2, _ := r.Start("abc", 2)
	if err := r.Finish(rec2, nil); err != nil {
		t.Fatal(err)
	}
	if got := readRecord(t, r.Path(rec2)); got.Status != StatusCompleted || got.Error != "" {
		t.Errorf("completed record = %+v", got)
	}
	if r.Path(rec) == r.Path(rec2) {
		t.Error("attempts must not overwrite each other")
	}
}

func TestRecorder_Errors(t *testing.T) {
	var nilRec *Recorder
	if _, err := nilRec.Start("x", 1); err == nil {
		t.Error("nil recorder Start should fail")
	}
	if _, err := NewRecorder("").Start("x", 1); err == nil {
		t.Error("empty dir should fail")
	}
	if err := NewRecorder(t.TempDir()).Finish(nil, nil); err == nil {
		t.Error("nil record should fail")
	}
}
