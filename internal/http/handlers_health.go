package httpx

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports the liveness of a backing dependency.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandlers serves the liveness and readiness endpoints.
type HealthHandlers struct {
	DB Pinger // optional; readiness passes without it
}

// HandleHealthz reports process liveness.
func (h *HealthHandlers) HandleHealthz(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReadyz reports readiness, including the audit store when wired.
func (h *HealthHandlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			WriteError(w, ErrorParams{
				Code:    http.StatusServiceUnavailable,
				ErrCode: "db_unavailable",
				Err:     err,
			})
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
