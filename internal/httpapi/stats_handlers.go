package httpapi

import (
	"context"
	"net/http"
)

type StatsHandler struct {
	Counts func(ctx context.Context) (map[string]int64, error)
}

func (h StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Counts(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, counts)
}
