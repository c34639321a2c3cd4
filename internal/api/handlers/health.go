package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/trendday/pkg/database"
	"github.com/wonny/trendday/pkg/logger"
)

// HealthChecker reports database health
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	db     HealthChecker // nil = DB 없이 실행 중
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db HealthChecker, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: log,
	}
}

// Get returns server health status
// GET /health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "ok",
		"service": "trendday-api",
	}

	if h.db == nil {
		respondJSON(w, http.StatusOK, body)
		return
	}

	status, err := h.db.HealthCheck(r.Context())
	body["database"] = status
	if err != nil {
		h.logger.WithError(err).Warn("Database health check failed")
		body["status"] = "degraded"
		respondJSON(w, http.StatusServiceUnavailable, body)
		return
	}

	respondJSON(w, http.StatusOK, body)
}
