// Package runlog keeps one JSON file per pipeline attempt.
package runlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type RunRecord struct {
	RunID       string           `json:"run_id"`
	Attempt     int              `json:"attempt"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at,omitempty"`
	Status      Status           `json:"status"`
	Stage       string           `json:"stage,omitempty"`
	Error       string           `json:"error,omitempty"`
	Metrics     map[string]int64 `json:"metrics,omitempty"`
}

// Set stores a counter on the record.
func (r *RunRecord) Set(key string, v int64) {
	if r.Metrics == nil {
		r.Metrics = make(map[string]int64)
	}
	r.Metrics[key] = v
}

type Recorder struct {
	dir string
	now func() time.Time
}

func NewRecorder(dir string) *Recorder {
	return &Recorder{
		dir: dir,
		now: time.Now,
	}
}

func (r *Recorder) Start(runID string, attempt int) (*RunRecord, error) {
	if r == nil {
		return nil, errors.New("runlog: recorder is nil")
	}
	if r.dir == "" {
		return nil, errors.New("runlog: directory is required")
	}
	record := &RunRecord{
		RunID:     runID,
		Attempt:   attempt,
		StartedAt: r.now(),
		Status:    StatusStarted,
	}
	if err := r.write(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *Recorder) Finish(record *RunRecord, runErr error) error {
	if r == nil {
		return errors.New("runlog: recorder is nil")
	}
	if record == nil {
		return errors.New("runlog: record is nil")
	}
	record.CompletedAt = r.now()
	if runErr != nil {
		record.Status = StatusFailed
		record.Error = runErr.Error()
	} else {
		record.Status = StatusCompleted
		record.Error = ""
	}
	return r.write(record)
}

// Path is where record is written.
func (r *Recorder) Path(record *RunRecord) string {
	return filepath.Join(r.dir, fmt.Sprintf("run-%s-%d.json", record.RunID, record.Attempt))
}

func (r *Recorder) write(record *RunRecord) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.Path(record), append(payload, '\n'), 0o644)
}
