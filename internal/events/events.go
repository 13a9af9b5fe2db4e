// Package events fans pipeline run notifications out to SSE subscribers.
package events

import (
	"encoding/json"
	"time"
)

const (
	Ping        = "ping"
	RunStarted  = "run_started"
	RunFinished = "run_finished"
)

type Event struct {
	Type  string          `json:"type"`
	At    time.Time       `json:"at"`
	RunID string          `json:"run_id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func New(typ, runID string, data any) Event {
	e := Event{Type: typ, At: time.Now().UTC(), RunID: runID}
	if data != nil {
		e.Data, _ = json.Marshal(data)
	}
	return e
}

// Encode renders e as a single-line JSON string suitable for an SSE data field.
func (e Event) Encode() string {
	b, _ := json.Marshal(e)
	return string(b)
}
