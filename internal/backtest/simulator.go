package backtest

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/trendday/internal/contracts"
	"github.com/wonny/trendday/pkg/logger"
)

// Simulator applies trading costs to gross returns and keeps the trade ledger
// ⭐ SSOT: 백테스트 비용 모델은 여기서만
// 비용은 수익률 단위 (자본 대비)
type Simulator struct {
	logger *logger.Logger

	commissionPerShare decimal.Decimal
	slippageBps        decimal.Decimal

	// Current state
	trades []Trade

	// Statistics
	totalTrades     int
	winningTrades   int
	losingTrades    int
	totalCommission float64
	totalSlippage   float64
}

// Trade is one intraday round trip (14:01 entry, close exit)
type Trade struct {
	Session    time.Time `json:"session"`
	Symbol     string    `json:"symbol"`
	Direction  string    `json:"direction"` // "long" or "short"
	Weight     float64   `json:"weight"`
	EntryPrice float64   `json:"entry_price"`
	Gross      float64   `json:"gross"`
	Commission float64   `json:"commission"`
	Slippage   float64   `json:"slippage"`
	Net        float64   `json:"net"`
}

// Stats holds simulation statistics
type Stats struct {
	TotalTrades     int
	WinningTrades   int
	LosingTrades    int
	TotalCommission float64
	TotalSlippage   float64
}

// NewSimulator creates a new trading simulator
func NewSimulator(logger *logger.Logger) *Simulator {
	return &Simulator{
		logger: logger,
		trades: make([]Trade, 0),
	}
}

// Initialize resets the simulator with the cost parameters
func (s *Simulator) Initialize(commissionPerShare, slippageBps float64) {
	s.commissionPerShare = decimal.NewFromFloat(commissionPerShare)
	s.slippageBps = decimal.NewFromFloat(slippageBps)
	s.trades = make([]Trade, 0)
	s.totalTrades = 0
	s.winningTrades = 0
	s.losingTrades = 0
	s.totalCommission = 0
	s.totalSlippage = 0
}

// Commission returns the per-share commission in return units for one cell.
// turnover = 2 × |position| (진입 + 청산)
func (s *Simulator) Commission(position, entryPrice float64) float64 {
	if !validPrice(entryPrice) || position == 0 || math.IsNaN(position) {
		return 0
	}
	turnover := decimal.NewFromFloat(2 * math.Abs(position))
	return turnover.Mul(s.commissionPerShare).Div(decimal.NewFromFloat(entryPrice)).InexactFloat64()
}

// Slippage returns the bps slippage in return units for one cell
func (s *Simulator) Slippage(position float64) float64 {
	if position == 0 || math.IsNaN(position) {
		return 0
	}
	turnover := decimal.NewFromFloat(2 * math.Abs(position))
	return turnover.Mul(s.slippageBps).Div(decimal.NewFromInt(10_000)).InexactFloat64()
}

// ExecuteSession books every non-flat position of row i and returns the net frame row.
// Positions without a usable entry price are not traded.
func (s *Simulator) ExecuteSession(i int, positions, gross, entryPrices *contracts.Frame) []float64 {
	session := positions.Sessions[i]
	net := make([]float64, len(positions.Symbols))

	for j, symbol := range positions.Symbols {
		pos := positions.At(i, j)
		if pos == 0 || math.IsNaN(pos) {
			continue
		}

		entry := entryPrices.Get(session, symbol)
		if !validPrice(entry) {
			s.logger.WithFields(map[string]interface{}{
				"session": contracts.SessionKey(session),
				"symbol":  symbol,
			}).Debug("No entry price, position not traded")
			continue
		}

		g := gross.At(i, j)
		if math.IsNaN(g) {
			g = 0
		}

		trade := Trade{
			Session:    session,
			Symbol:     symbol,
			Direction:  "long",
			Weight:     pos,
			EntryPrice: entry,
			Gross:      g,
			Commission: s.Commission(pos, entry),
			Slippage:   s.Slippage(pos),
		}
		if pos < 0 {
			trade.Direction = "short"
		}
		trade.Net = trade.Gross - trade.Commission - trade.Slippage
		net[j] = trade.Net

		s.trades = append(s.trades, trade)
		s.totalTrades++
		if trade.Net > 0 {
			s.winningTrades++
		} else if trade.Net < 0 {
			s.losingTrades++
		}
		s.totalCommission += trade.Commission
		s.totalSlippage += trade.Slippage
	}

	return net
}

// Trades returns the trade ledger
func (s *Simulator) Trades() []Trade {
	return append([]Trade(nil), s.trades...)
}

// GetStats returns simulation statistics
func (s *Simulator) GetStats() Stats {
	return Stats{
		TotalTrades:     s.totalTrades,
		WinningTrades:   s.winningTrades,
		LosingTrades:    s.losingTrades,
		TotalCommission: s.totalCommission,
		TotalSlippage:   s.totalSlippage,
	}
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}
