package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/wonny/trendday/internal/contracts"
	"github.com/wonny/trendday/internal/risk"
	"github.com/wonny/trendday/pkg/logger"
)

// Strategy is what the engine runs; EntryPrices feeds the per-share commission
type Strategy interface {
	contracts.Strategy
	EntryPrices(prices *contracts.PriceTable) *contracts.Frame
}

// Engine runs vectorized backtests over a price table
// ⭐ SSOT: 백테스팅 실행은 여기서만
type Engine struct {
	strategy  Strategy
	simulator *Simulator
	logger    *logger.Logger
}

// Config holds backtest configuration
type Config struct {
	StartDate          time.Time `json:"start_date"` // zero = 첫 세션부터
	EndDate            time.Time `json:"end_date"`   // zero = 마지막 세션까지
	InitialCapital     float64   `json:"initial_capital"`
	CommissionPerShare float64   `json:"commission_per_share"` // USD per share
	SlippageBps        float64   `json:"slippage_bps"`
}

// Result holds backtest results
type Result struct {
	Config      Config        `json:"config"`
	Strategy    string        `json:"strategy"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
	Duration    time.Duration `json:"duration"`
	TotalDays   int           `json:"total_days"`
	TradingDays int           `json:"trading_days"`

	// Performance metrics
	InitialCapital   float64 `json:"initial_capital"`
	FinalCapital     float64 `json:"final_capital"`
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	CAGR             float64 `json:"cagr"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	WinRate          float64 `json:"win_rate"`

	// Trading metrics
	TotalTrades     int     `json:"total_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	TotalCommission float64 `json:"total_commission"` // 수익률 단위
	TotalSlippage   float64 `json:"total_slippage"`   // 수익률 단위

	// Session return distribution
	Risk risk.Report `json:"risk"`

	// Equity curve
	EquityCurve []EquityPoint `json:"equity_curve"`

	// Pipeline frames
	Signals      *contracts.Frame `json:"signals,omitempty"`
	Weights      *contracts.Frame `json:"weights,omitempty"`
	Positions    *contracts.Frame `json:"positions,omitempty"`
	GrossReturns *contracts.Frame `json:"gross_returns,omitempty"`
	NetReturns   *contracts.Frame `json:"net_returns,omitempty"`

	Trades []Trade `json:"trades,omitempty"`
}

// EquityPoint represents a point in the equity curve
type EquityPoint struct {
	Date   time.Time `json:"date"`
	Equity float64   `json:"equity"`
	Return float64   `json:"return"` // 세션 순수익률
}

// NewEngine creates a new backtest engine
func NewEngine(strategy Strategy, simulator *Simulator, logger *logger.Logger) *Engine {
	return &Engine{
		strategy:  strategy,
		simulator: simulator,
		logger:    logger,
	}
}

// Run executes the pipeline over prices and compounds net session returns
func (e *Engine) Run(ctx context.Context, config Config, prices *contracts.PriceTable) (*Result, error) {
	if config.InitialCapital <= 0 {
		return nil, fmt.Errorf("initial capital must be > 0")
	}
	if prices == nil || prices.Empty() {
		return nil, fmt.Errorf("empty price table")
	}

	e.logger.WithFields(map[string]interface{}{
		"strategy":        e.strategy.Code(),
		"sessions":        len(prices.Sessions),
		"symbols":         len(prices.Symbols),
		"initial_capital": config.InitialCapital,
	}).Info("Starting backtest")

	startTime := time.Now()

	// 전체 테이블로 계산 (첫 세션 전일 종가 확보)
	signals := e.strategy.PricesToSignals(prices)
	weights := e.strategy.SignalsToTargetWeights(signals, prices)
	positions := e.strategy.TargetWeightsToPositions(weights, prices)
	gross := e.strategy.PositionsToGrossReturns(positions, prices)
	entryPrices := e.strategy.EntryPrices(prices)

	result := &Result{
		Config:         config,
		Strategy:       e.strategy.Code(),
		InitialCapital: config.InitialCapital,
		EquityCurve:    make([]EquityPoint, 0, len(prices.Sessions)),
		Signals:        signals,
		Weights:        weights,
		Positions:      positions,
		GrossReturns:   gross,
		NetReturns:     contracts.NewFrameFilled(positions.Sessions, positions.Symbols, 0),
	}

	// Initialize simulator
	e.simulator.Initialize(config.CommissionPerShare, config.SlippageBps)

	equity := config.InitialCapital
	for i, session := range positions.Sessions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !inRange(session, config.StartDate, config.EndDate) {
			continue
		}

		net := e.simulator.ExecuteSession(i, positions, gross, entryPrices)
		sessionReturn := 0.0
		for j, v := range net {
			result.NetReturns.Set(i, j, v)
			sessionReturn += v
		}

		equity *= 1 + sessionReturn
		result.EquityCurve = append(result.EquityCurve, EquityPoint{
			Date:   session,
			Equity: equity,
			Return: sessionReturn,
		})
	}

	if len(result.EquityCurve) == 0 {
		return nil, fmt.Errorf("no sessions between %s and %s",
			contracts.SessionKey(config.StartDate), contracts.SessionKey(config.EndDate))
	}

	// Calculate final metrics
	result.StartDate = result.EquityCurve[0].Date
	result.EndDate = result.EquityCurve[len(result.EquityCurve)-1].Date
	result.Duration = time.Since(startTime)
	result.TotalDays = int(result.EndDate.Sub(result.StartDate).Hours()/24) + 1
	result.TradingDays = len(result.EquityCurve)
	result.FinalCapital = equity
	result.Trades = e.simulator.Trades()

	e.calculateMetrics(result)

	e.logger.WithFields(map[string]interface{}{
		"stage":        contracts.StageGrossReturns.String(),
		"duration":     result.Duration.Seconds(),
		"trading_days": result.TradingDays,
		"trades":       result.TotalTrades,
		"total_return": fmt.Sprintf("%.2f%%", result.TotalReturn*100),
		"sharpe_ratio": fmt.Sprintf("%.2f", result.SharpeRatio),
		"max_drawdown": fmt.Sprintf("%.2f%%", result.MaxDrawdown*100),
	}).Info("Backtest completed")

	return result, nil
}

func inRange(session, start, end time.Time) bool {
	key := contracts.SessionKey(session)
	if !start.IsZero() && key < contracts.SessionKey(start) {
		return false
	}
	if !end.IsZero() && key > contracts.SessionKey(end) {
		return false
	}
	return true
}

// calculateMetrics calculates performance metrics from equity curve
func (e *Engine) calculateMetrics(result *Result) {
	if len(result.EquityCurve) == 0 {
		return
	}

	// Total return
	result.TotalReturn = (result.FinalCapital - result.InitialCapital) / result.InitialCapital

	// Annualized return
	years := float64(result.TotalDays) / 365.25
	if years > 0 {
		result.AnnualizedReturn = result.TotalReturn / years
	}

	// CAGR
	if years > 0 && result.FinalCapital > 0 {
		result.CAGR = math.Pow(result.FinalCapital/result.InitialCapital, 1.0/years) - 1.0
	}

	// Session returns
	dailyReturns := make([]float64, 0, len(result.EquityCurve))
	for _, p := range result.EquityCurve {
		dailyReturns = append(dailyReturns, p.Return)
	}

	// Volatility (annualized)
	result.Volatility = calculateVolatility(dailyReturns) * math.Sqrt(252)

	// Sharpe Ratio (assuming 0% risk-free rate)
	if result.Volatility > 0 {
		result.SharpeRatio = result.AnnualizedReturn / result.Volatility
	}

	// Sortino Ratio (downside deviation)
	downsideReturns := make([]float64, 0)
	for _, r := range dailyReturns {
		if r < 0 {
			downsideReturns = append(downsideReturns, r)
		}
	}
	downsideDeviation := calculateVolatility(downsideReturns) * math.Sqrt(252)
	if downsideDeviation > 0 {
		result.SortinoRatio = result.AnnualizedReturn / downsideDeviation
	}

	// Maximum Drawdown
	result.MaxDrawdown = calculateMaxDrawdown(result.InitialCapital, result.EquityCurve)

	// Session VaR/CVaR
	result.Risk = risk.Analyze(dailyReturns)

	// Win rate from simulator
	stats := e.simulator.GetStats()
	result.TotalTrades = stats.TotalTrades
	result.WinningTrades = stats.WinningTrades
	result.LosingTrades = stats.LosingTrades
	result.TotalCommission = stats.TotalCommission
	result.TotalSlippage = stats.TotalSlippage
	if result.TotalTrades > 0 {
		result.WinRate = float64(result.WinningTrades) / float64(result.TotalTrades)
	}
}

// calculateVolatility calculates standard deviation
func calculateVolatility(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	// Mean
	sum := 0.0
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	// Variance
	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns))

	// Standard deviation
	return math.Sqrt(variance)
}

// calculateMaxDrawdown calculates maximum drawdown from equity curve
func calculateMaxDrawdown(initial float64, curve []EquityPoint) float64 {
	maxDrawdown := 0.0
	peak := initial

	for _, point := range curve {
		if point.Equity > peak {
			peak = point.Equity
		}

		drawdown := (peak - point.Equity) / peak
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}
