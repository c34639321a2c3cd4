package audit

import (
	"sort"

	"github.com/wonny/trendday/internal/backtest"
)

// Attribution represents one symbol's contribution to backtest return
type Attribution struct {
	Symbol       string  `json:"symbol"`
	Trades       int     `json:"trades"`
	Longs        int     `json:"longs"`
	Shorts       int     `json:"shorts"`
	Gross        float64 `json:"gross"`        // Σ 총수익률
	Costs        float64 `json:"costs"`        // Σ (수수료 + 슬리피지)
	Contribution float64 `json:"contribution"` // Σ 순수익률
	HitRate      float64 `json:"hit_rate"`     // 순수익 > 0 비율
}

// AttributeBySymbol groups trades by symbol, sorted by contribution (descending)
// ⭐ SSOT: 종목별 기여도 계산은 여기서만
func AttributeBySymbol(trades []backtest.Trade) []Attribution {
	bySymbol := make(map[string]*Attribution)
	wins := make(map[string]int)

	for _, t := range trades {
		a, ok := bySymbol[t.Symbol]
		if !ok {
			a = &Attribution{Symbol: t.Symbol}
			bySymbol[t.Symbol] = a
		}

		a.Trades++
		if t.Weight > 0 {
			a.Longs++
		} else {
			a.Shorts++
		}
		a.Gross += t.Gross
		a.Costs += t.Commission + t.Slippage
		a.Contribution += t.Net
		if t.Net > 0 {
			wins[t.Symbol]++
		}
	}

	attrs := make([]Attribution, 0, len(bySymbol))
	for symbol, a := range bySymbol {
		a.HitRate = float64(wins[symbol]) / float64(a.Trades)
		attrs = append(attrs, *a)
	}

	sort.Slice(attrs, func(i, j int) bool {
		if attrs[i].Contribution != attrs[j].Contribution {
			return attrs[i].Contribution > attrs[j].Contribution
		}
		return attrs[i].Symbol < attrs[j].Symbol
	})

	return attrs
}

// TopContributors returns the best contributing symbols
func TopContributors(attrs []Attribution, limit int) []Attribution {
	if limit > len(attrs) {
		limit = len(attrs)
	}
	return attrs[:limit]
}

// BottomContributors returns the worst contributing symbols, worst first
func BottomContributors(attrs []Attribution, limit int) []Attribution {
	if limit > len(attrs) {
		limit = len(attrs)
	}

	bottom := make([]Attribution, 0, limit)
	for i := len(attrs) - 1; i >= len(attrs)-limit; i-- {
		bottom = append(bottom, attrs[i])
	}
	return bottom
}
