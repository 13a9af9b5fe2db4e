package httpapi

import (
	"context"
	"net/http"
)

type RunHandler struct {
	Runs *RunTracker
	// BaseCtx outlives the request so a triggered run is not cancelled when
	// the client disconnects.
	BaseCtx context.Context
}

func (h RunHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Runs.Status())
}

func (h RunHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	ctx := h.BaseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if !h.Runs.Start(ctx) {
		WriteError(w, r, http.StatusConflict, "busy", ErrBusy.Error())
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
