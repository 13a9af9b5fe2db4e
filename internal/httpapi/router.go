package httpapi

import "net/http"

// NewMux registers the ops endpoints served next to the scheduler.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{Runs: d.Runs}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	if d.Metrics != nil {
		mux.Handle("/metrics", d.Metrics.Handler())
	}

	if d.Runs != nil {
		rh := RunHandler{Runs: d.Runs, BaseCtx: d.BaseCtx}
		mux.HandleFunc("/status", methodMux(map[string]http.HandlerFunc{
			http.MethodGet: rh.Status,
		}))
		mux.HandleFunc("/run", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: rh.Trigger,
		}))
	}

	if d.Counts != nil {
		sh := StatsHandler{Counts: d.Counts}
		mux.HandleFunc("/stats", methodMux(map[string]http.HandlerFunc{
			http.MethodGet: sh.Get,
		}))
	}

	if d.Hub != nil {
		eh := EventsHandler{Hub: d.Hub}
		mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
			http.MethodGet: eh.ServeSSE,
		}))
	}

	return mux
}

// NewHandler wraps NewMux with request ids, access logging and panic recovery.
func NewHandler(d Deps) http.Handler {
	return Chain(NewMux(d), RequestID, AccessLog(d.Log), Recover(d.Log))
}
