package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/wonny/trendday/internal/strategyconfig"
	"github.com/wonny/trendday/internal/trendday"
	"github.com/wonny/trendday/pkg/logger"
)

// SignalPlanner computes a session's plan without saving orders
type SignalPlanner interface {
	Plan(ctx context.Context, at time.Time) (*trendday.TradeResult, error)
}

// StrategyHandler handles strategy config and signal endpoints
// ⭐ SSOT: 전략 조회 API 핸들러는 이 구조체에서만
type StrategyHandler struct {
	config  *strategyconfig.Config
	params  trendday.Params
	planner SignalPlanner
	loc     *time.Location
	logger  *logger.Logger
	now     func() time.Time
}

// NewStrategyHandler creates a new strategy handler
func NewStrategyHandler(cfg *strategyconfig.Config, params trendday.Params, planner SignalPlanner,
	loc *time.Location, log *logger.Logger) *StrategyHandler {
	return &StrategyHandler{
		config:  cfg,
		params:  params,
		planner: planner,
		loc:     loc,
		logger:  log,
		now:     time.Now,
	}
}

// GetStrategy returns the active parameters and config hash
// GET /api/strategy
func (h *StrategyHandler) GetStrategy(w http.ResponseWriter, r *http.Request) {
	hash, err := strategyconfig.Hash(h.config)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash strategy config")
		respondError(w, http.StatusInternalServerError, "Failed to hash strategy config")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"code":        h.params.Code,
		"config":      h.config,
		"config_hash": hash,
		"warnings":    strategyconfig.Warn(h.config),
	})
}

// GetSignals returns returns, signals, weights and the order plan for a session
// GET /api/signals?date=YYYY-MM-DD (생략 시 오늘)
func (h *StrategyHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	at := h.now()
	if date := r.URL.Query().Get("date"); date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", date, h.loc)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)")
			return
		}
		at = parsed
	}

	result, err := h.planner.Plan(r.Context(), at)
	if err != nil {
		if errors.Is(err, trendday.ErrNoSessionPrices) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to plan session")
		respondError(w, http.StatusInternalServerError, "Failed to compute signals")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
