package httpapi

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	Runs *RunTracker
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"ok":   true,
		"time": time.Now().Format(time.RFC3339),
	}
	if h.Runs != nil {
		body["running"] = h.Runs.Status().Running
	}
	WriteJSON(w, http.StatusOK, body)
}
