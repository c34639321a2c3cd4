package marketdata

import (
	"math"
	"sort"
	"time"

	"github.com/wonny/trendday/internal/contracts"
)

// Requirement is one cross-section the strategy reads
type Requirement struct {
	Field contracts.Field
	Clock string

	PriorOnly bool // 마지막(진행 중) 세션 제외
}

// Key returns "field@clock"
func (r Requirement) Key() string {
	return string(r.Field) + "@" + r.Clock
}

// QualityConfig holds quality gate thresholds
type QualityConfig struct {
	MinCoverage float64 `yaml:"min_coverage"` // 요구 cross-section별 최소 커버리지 (기본 1.0)
}

// MissingBar is one absent or invalid price
type MissingBar struct {
	Session time.Time `json:"session"`
	Symbol  string    `json:"symbol"`
	Key     string    `json:"key"` // field@clock
}

// QualityReport summarises price coverage over a table
type QualityReport struct {
	Sessions int                `json:"sessions"`
	Symbols  int                `json:"symbols"`
	Coverage map[string]float64 `json:"coverage"` // key: field@clock
	Missing  []MissingBar       `json:"missing"`
	Score    float64            `json:"score"` // 요구 항목 커버리지 평균
	Passed   bool               `json:"passed"`
}

// CheckQuality measures how many (session, symbol) cells hold a positive finite price
// for each requirement.
// ⭐ SSOT: 분봉 품질 검증은 여기서만
func CheckQuality(table *contracts.PriceTable, reqs []Requirement, cfg QualityConfig) *QualityReport {
	report := &QualityReport{
		Sessions: len(table.Sessions),
		Symbols:  len(table.Symbols),
		Coverage: make(map[string]float64, len(reqs)),
		Missing:  make([]MissingBar, 0),
	}

	cells := len(table.Sessions) * len(table.Symbols)
	if cells == 0 || len(reqs) == 0 {
		return report
	}

	report.Passed = true
	for _, req := range reqs {
		frame := table.XS(req.Field, req.Clock)

		rows := len(frame.Sessions)
		if req.PriorOnly {
			rows--
		}
		required := rows * len(frame.Symbols)
		if required <= 0 {
			report.Coverage[req.Key()] = 1
			report.Score += 1 / float64(len(reqs))
			continue
		}

		valid := 0
		for i, session := range frame.Sessions[:rows] {
			for j, symbol := range frame.Symbols {
				v := frame.At(i, j)
				if !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0 {
					valid++
					continue
				}
				report.Missing = append(report.Missing, MissingBar{
					Session: session,
					Symbol:  symbol,
					Key:     req.Key(),
				})
			}
		}

		cov := float64(valid) / float64(required)
		report.Coverage[req.Key()] = cov
		report.Score += cov / float64(len(reqs))
		if cov < cfg.MinCoverage {
			report.Passed = false
		}
	}

	sort.SliceStable(report.Missing, func(a, b int) bool {
		ma, mb := report.Missing[a], report.Missing[b]
		if !ma.Session.Equal(mb.Session) {
			return ma.Session.Before(mb.Session)
		}
		if ma.Symbol != mb.Symbol {
			return ma.Symbol < mb.Symbol
		}
		return ma.Key < mb.Key
	})

	return report
}
