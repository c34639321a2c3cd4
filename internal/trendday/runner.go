package trendday

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/trendday/internal/contracts"
	"github.com/wonny/trendday/internal/execution"
	"github.com/wonny/trendday/internal/marketdata"
	"github.com/wonny/trendday/pkg/logger"
)

// ErrNoSessionPrices is returned when the price table has no row for the requested session
var ErrNoSessionPrices = errors.New("no prices for session")

// Runner performs the one-shot trade run for a session
// ⭐ SSOT: 당일 포지션 → 주문 생성/저장 흐름은 여기서만
type Runner struct {
	strategy     *Strategy
	loader       contracts.PriceLoader
	store        contracts.OrderStore
	planner      *execution.Planner
	loc          *time.Location
	lookbackDays int
	logger       *logger.Logger
}

// RunnerConfig defines trade run parameters
type RunnerConfig struct {
	Location     *time.Location // 거래소 시간대
	LookbackDays int            // 전일 종가 확보용 캘린더 일수
}

// TradeResult is the outcome of one trade run
type TradeResult struct {
	Session time.Time         `json:"session"`
	Returns *contracts.Frame  `json:"returns"`
	Signals *contracts.Frame  `json:"signals"`
	Weights *contracts.Frame  `json:"weights"`
	Orders  []contracts.Order `json:"orders"`
	Saved   bool              `json:"saved"`

	AlreadySaved bool `json:"already_saved,omitempty"` // 같은 세션 주문이 이미 저장됨

	Quality *marketdata.QualityReport `json:"quality"`
}

// NewRunner creates a trade runner. store may be nil for plan-only use.
func NewRunner(strategy *Strategy, loader contracts.PriceLoader, store contracts.OrderStore,
	planner *execution.Planner, cfg RunnerConfig, log *logger.Logger) *Runner {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	lookback := cfg.LookbackDays
	if lookback < 2 {
		lookback = 2
	}
	return &Runner{
		strategy:     strategy,
		loader:       loader,
		store:        store,
		planner:      planner,
		loc:          loc,
		lookbackDays: lookback,
		logger:       log,
	}
}

// SessionOf returns the exchange-local calendar date of t as a session label
func (r *Runner) SessionOf(t time.Time) time.Time {
	local := t.In(r.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// Plan computes today's signals, weights and orders without persisting them
func (r *Runner) Plan(ctx context.Context, at time.Time) (*TradeResult, error) {
	session := r.SessionOf(at)
	params := r.strategy.Params()

	query := params.PriceQuery(session.AddDate(0, 0, -r.lookbackDays), session)
	prices, err := r.loader.LoadPrices(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}

	if prices.Empty() || contracts.SessionKey(prices.Sessions[len(prices.Sessions)-1]) != contracts.SessionKey(session) {
		return nil, fmt.Errorf("%w %s", ErrNoSessionPrices, contracts.SessionKey(session))
	}
	if len(prices.Sessions) < 2 {
		r.logger.WithField("session", contracts.SessionKey(session)).Warn("No prior session loaded, all signals will be flat")
	}
	quality := marketdata.CheckQuality(prices, params.PlanRequirements(), marketdata.QualityConfig{MinCoverage: 1})
	if !quality.Passed {
		r.logger.WithFields(map[string]interface{}{
			"stage":   contracts.StagePrices.String(),
			"session": contracts.SessionKey(session),
			"missing": len(quality.Missing),
			"score":   quality.Score,
		}).Warn("Incomplete price coverage, missing cells stay flat")
	}

	signals := r.strategy.PricesToSignals(prices)
	weights := r.strategy.SignalsToTargetWeights(signals, prices)
	positions := r.strategy.TargetWeightsToPositions(weights, prices)

	stubs := r.planner.OrderStubs(session, positions, r.strategy.EntryPrices(prices))
	orders := r.strategy.OrderStubsToOrders(stubs, prices)

	result := &TradeResult{
		Session: session,
		Returns: PricesToReturns(params, prices).Tail(1),
		Signals: signals.Tail(1),
		Weights: weights.Tail(1),
		Orders:  orders,
		Quality: quality,
	}

	r.logger.WithFields(map[string]interface{}{
		"stage":   contracts.StageOrders.String(),
		"session": contracts.SessionKey(session),
		"active":  signals.NonZero(len(signals.Sessions) - 1),
		"orders":  len(orders),
	}).Info("Trade plan created")

	return result, nil
}

// Run plans the session and persists the orders
func (r *Runner) Run(ctx context.Context, at time.Time) (*TradeResult, error) {
	result, err := r.Plan(ctx, at)
	if err != nil {
		return nil, err
	}

	if len(result.Orders) == 0 {
		r.logger.WithField("session", contracts.SessionKey(result.Session)).Info("No orders for session")
		return result, nil
	}
	if r.store == nil {
		return nil, errors.New("order store not configured")
	}

	if err := r.store.SaveOrders(ctx, result.Orders); err != nil {
		if errors.Is(err, contracts.ErrSessionOrdersExist) {
			r.logger.WithError(err).WithField("session", contracts.SessionKey(result.Session)).
				Warn("Orders already saved for session, skipping")
			result.AlreadySaved = true
			return result, nil
		}
		return nil, fmt.Errorf("save orders: %w", err)
	}
	result.Saved = true

	r.logger.WithFields(map[string]interface{}{
		"session": contracts.SessionKey(result.Session),
		"orders":  len(result.Orders),
	}).Info("Orders saved")

	return result, nil
}
