package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/payetonkawa/orders-api/internal/platform/httpx"
)

// ReadinessCheck reports whether a dependency is ready to serve.
type ReadinessCheck func(ctx context.Context) error

// HealthHandlers answers liveness and readiness probes.
type HealthHandlers struct {
	startedAt time.Time
	checks    []ReadinessCheck
}

// NewHealthHandlers constructs the probe handlers with optional readiness checks.
func NewHealthHandlers(checks ...ReadinessCheck) *HealthHandlers {
	return &HealthHandlers{
		startedAt: time.Now().UTC(),
		checks:    checks,
	}
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.startedAt).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz runs the registered readiness checks and reports the first failure.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	for _, check := range h.checks {
		if check == nil {
			continue
		}
		if err := check(ctx); err != nil {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
