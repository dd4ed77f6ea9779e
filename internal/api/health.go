package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/srt-bank/srtbank/internal/store"
)

// NluHealthChecker reports whether the NLU sidecar is reachable.
type NluHealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	repo store.Repository
	nlu  NluHealthChecker // nil when AI features are disabled
}

// NewHealthHandler creates a new health handler. nluClient may be nil.
func NewHealthHandler(repo store.Repository, nluClient NluHealthChecker) *HealthHandler {
	return &HealthHandler{repo: repo, nlu: nluClient}
}

// Health returns the health status of the API and its dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	status := "healthy"
	statusCode := http.StatusOK

	if err := h.repo.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		status = "degraded"
		checks["database"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	if h.nlu == nil {
		checks["nlu"] = "disabled"
	} else if err := h.nlu.Health(ctx); err != nil {
		slog.Warn("NLU health check failed", "error", err)
		status = "degraded"
		checks["nlu"] = "unreachable"
	} else {
		checks["nlu"] = "ok"
	}

	JSON(w, statusCode, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/api/health", h.Health)
}
