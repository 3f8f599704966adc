package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"cardshelf/internal/httputil"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	store  Pinger // nil for the memory store
	logger *slog.Logger
}

// NewHealthHandler creates a health handler; store may be nil
func NewHealthHandler(store Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: logger}
}

// HealthCheck returns 200 when the store answers, 503 otherwise
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn("health check failed", "error", err)
			httputil.RespondError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
