package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wonny/trendday/internal/backtest"
	"github.com/wonny/trendday/internal/contracts"
	"github.com/wonny/trendday/internal/trendday"
	"github.com/wonny/trendday/pkg/logger"
)

// BacktestHandler runs backtests over loaded prices
type BacktestHandler struct {
	strategy     *trendday.Strategy
	loader       contracts.PriceLoader
	lookbackDays int
	logger       *logger.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(strategy *trendday.Strategy, loader contracts.PriceLoader, lookbackDays int, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{
		strategy:     strategy,
		loader:       loader,
		lookbackDays: lookbackDays,
		logger:       log,
	}
}

// BacktestRequest represents a backtest request
type BacktestRequest struct {
	From           string  `json:"from"`    // YYYY-MM-DD
	To             string  `json:"to"`      // YYYY-MM-DD
	InitialCapital float64 `json:"capital"` // 기본 100,000
	IncludeFrames  bool    `json:"include_frames"`
}

// Run executes a backtest
// POST /api/backtest
func (h *BacktestHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)")
		return
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)")
		return
	}
	if to.Before(from) {
		respondError(w, http.StatusBadRequest, "to must not be before from")
		return
	}
	if req.InitialCapital == 0 {
		req.InitialCapital = 100_000
	}
	if req.InitialCapital < 0 {
		respondError(w, http.StatusBadRequest, "capital must be > 0")
		return
	}

	params := h.strategy.Params()

	// 첫 세션의 전일 종가 확보
	prices, err := h.loader.LoadPrices(r.Context(), params.PriceQuery(from.AddDate(0, 0, -h.lookbackDays), to))
	if err != nil {
		h.logger.WithError(err).Error("Failed to load prices")
		respondError(w, http.StatusInternalServerError, "Failed to load prices")
		return
	}
	if prices.Empty() {
		respondError(w, http.StatusNotFound, "No prices in range")
		return
	}

	engine := backtest.NewEngine(h.strategy, backtest.NewSimulator(h.logger), h.logger)
	result, err := engine.Run(r.Context(), backtest.Config{
		StartDate:          from,
		EndDate:            to,
		InitialCapital:     req.InitialCapital,
		CommissionPerShare: params.CommissionPerShare,
		SlippageBps:        params.SlippageBps,
	}, prices)
	if err != nil {
		h.logger.WithError(err).Error("Backtest failed")
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if !req.IncludeFrames {
		result.Signals = nil
		result.Weights = nil
		result.Positions = nil
		result.GrossReturns = nil
		result.NetReturns = nil
	}

	respondJSON(w, http.StatusOK, result)
}
