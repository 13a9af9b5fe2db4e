package events

import (
	"encoding/json"
	"testing"
)

func TestHub_PublishAndDrop(t *testing.T) {
	h := NewHub(1)
	fast := h.Subscribe()
	slow := h.Subscribe()
	defer h.Unsubscribe(fast)
	defer h.Unsubscribe(slow)

	if d := h.Publish(New(RunStarted, "r1", nil)); d != 0 {
		t.Fatalf("dropped = %d, want 0", d)
	}
	<-fast
	if d := h.Publish(New(RunFinished, "r1", map[string]string{"status": "ok"})); d != 1 {
		t.Fatalf("dropped = %d, want 1 (slow buffer full)", d)
	}

	var e Event
	if err := json.Unmarshal([]byte(<-fast), &e); err != nil {
		t.Fatal(err)
	}
	if e.Type != RunFinished || e.RunID != "r1" || string(e.Data) != `{"status":"ok"}` {
		t.Errorf("event = %+v", e)
	}
}

func TestHub_UnsubscribeTwice(t *testing.T) {
	h := NewHub(0)
	ch := h.Subscribe()
	h.Unsubscribe(ch)
	h.Unsubscribe(ch)
	if h.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.Len())
	}
	if _, ok := <-ch; ok {
		t.Error("channel still open after Unsubscribe")
	}
}
