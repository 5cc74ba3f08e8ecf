package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/jbp-analytics/pkg/database"
)

// HealthChecker reports the state of the backing database
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// HealthHandler serves the liveness probe
type HealthHandler struct {
	db HealthChecker
}

// NewHealthHandler creates a health handler; db may be nil for the in-memory store
func NewHealthHandler(db HealthChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check returns server health status
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "ok",
		"service": "jbp-analytics",
	}

	if h.db == nil {
		body["database"] = "memory"
		respondJSON(w, http.StatusOK, body)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, err := h.db.HealthCheck(ctx)
	body["database"] = status
	if err != nil {
		body["status"] = "degraded"
		respondJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	respondJSON(w, http.StatusOK, body)
}
