package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/wonny/trendday/internal/backtest"
	"github.com/wonny/trendday/internal/strategyconfig"
)

// BacktestRun is the persisted record of one backtest
type BacktestRun struct {
	RunID       string                           `json:"run_id"`
	Snapshot    *strategyconfig.DecisionSnapshot `json:"snapshot"`
	StartDate   time.Time                        `json:"start_date"`
	EndDate     time.Time                        `json:"end_date"`
	Config      backtest.Config                  `json:"config"`
	TotalReturn float64                          `json:"total_return"`
	CAGR        float64                          `json:"cagr"`
	Sharpe      float64                          `json:"sharpe"`
	MaxDrawdown float64                          `json:"max_drawdown"`
	TradeStats  TradeStats                       `json:"trade_stats"`
	Attribution []Attribution                    `json:"attribution"`
	CreatedAt   time.Time                        `json:"created_at"`
}

// NewBacktestRun summarises result under snapshot
func NewBacktestRun(snapshot *strategyconfig.DecisionSnapshot, result *backtest.Result) *BacktestRun {
	return &BacktestRun{
		RunID:       uuid.NewString(),
		Snapshot:    snapshot,
		StartDate:   result.StartDate,
		EndDate:     result.EndDate,
		Config:      result.Config,
		TotalReturn: result.TotalReturn,
		CAGR:        result.CAGR,
		Sharpe:      result.SharpeRatio,
		MaxDrawdown: result.MaxDrawdown,
		TradeStats:  AnalyzeTrades(result.Trades),
		Attribution: AttributeBySymbol(result.Trades),
		CreatedAt:   time.Now(),
	}
}
