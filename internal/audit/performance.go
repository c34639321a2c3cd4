package audit

import (
	"math"

	"github.com/wonny/trendday/internal/backtest"
)

// TradeStats summarises the trade ledger
type TradeStats struct {
	Trades       int     `json:"trades"`
	WinRate      float64 `json:"win_rate"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"` // 음수
	ProfitFactor float64 `json:"profit_factor"`

	// 방향별
	LongTrades  int     `json:"long_trades"`
	ShortTrades int     `json:"short_trades"`
	LongNet     float64 `json:"long_net"`
	ShortNet    float64 `json:"short_net"`
}

// AnalyzeTrades computes trade-level statistics on net returns
func AnalyzeTrades(trades []backtest.Trade) TradeStats {
	stats := TradeStats{Trades: len(trades)}
	if len(trades) == 0 {
		return stats
	}

	var sumWin, sumLoss float64
	var countWin, countLoss int

	for _, t := range trades {
		if t.Weight > 0 {
			stats.LongTrades++
			stats.LongNet += t.Net
		} else {
			stats.ShortTrades++
			stats.ShortNet += t.Net
		}

		if t.Net > 0 {
			sumWin += t.Net
			countWin++
		} else if t.Net < 0 {
			sumLoss += t.Net
			countLoss++
		}
	}

	stats.WinRate = float64(countWin) / float64(len(trades))
	if countWin > 0 {
		stats.AvgWin = sumWin / float64(countWin)
	}
	if countLoss > 0 {
		stats.AvgLoss = sumLoss / float64(countLoss)
		stats.ProfitFactor = sumWin / math.Abs(sumLoss)
	}

	return stats
}
