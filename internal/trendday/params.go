package trendday

import (
	"fmt"
	"time"

	"github.com/wonny/trendday/internal/contracts"
	"github.com/wonny/trendday/internal/marketdata"
	"github.com/wonny/trendday/internal/strategyconfig"
)

// Params is the immutable parameter record every transform reads.
// ⭐ SSOT: strategyconfig.Config → Params 변환은 FromConfig에서만
type Params struct {
	Code     string
	DB       string
	Universe string
	Times    []string
	Fields   []contracts.Field

	SignalTime string // 14:00 Open = 신호 가격, 14:00 Close = 진입가
	CloseTime  string // 15:59 Close = 세션 종가

	MinPctChange float64
	Weight       float64
	Cap          float64

	CommissionPerShare float64
	SlippageBps        float64

	Exchange  string
	EntryType contracts.OrderType
	ExitType  contracts.OrderType
	Tif       contracts.TimeInForce

	Timezone string
}

// DefaultParams returns the built-in trend-day parameters
func DefaultParams() Params {
	p, err := FromConfig(strategyconfig.Default())
	if err != nil {
		// 기본 설정은 항상 유효
		panic(err)
	}
	return p
}

// FromConfig converts a validated strategy config
func FromConfig(cfg *strategyconfig.Config) (Params, error) {
	fields := make([]contracts.Field, 0, len(cfg.Data.Fields))
	for _, name := range cfg.Data.Fields {
		f, err := contracts.ParseField(name)
		if err != nil {
			return Params{}, fmt.Errorf("data.fields: %w", err)
		}
		fields = append(fields, f)
	}

	times := make([]string, 0, len(cfg.Data.Times))
	for _, t := range cfg.Data.Times {
		clock, err := contracts.NormalizeClock(t)
		if err != nil {
			return Params{}, fmt.Errorf("data.times: %w", err)
		}
		times = append(times, clock)
	}

	signalTime, err := contracts.NormalizeClock(cfg.Data.EntryTime)
	if err != nil {
		return Params{}, fmt.Errorf("data.entry_time: %w", err)
	}
	closeTime, err := contracts.NormalizeClock(cfg.Data.CloseTime)
	if err != nil {
		return Params{}, fmt.Errorf("data.close_time: %w", err)
	}

	return Params{
		Code:               cfg.Meta.StrategyID,
		DB:                 cfg.Data.DB,
		Universe:           cfg.Data.Universe,
		Times:              times,
		Fields:             fields,
		SignalTime:         signalTime,
		CloseTime:          closeTime,
		MinPctChange:       cfg.Signal.MinPctChange,
		Weight:             cfg.Allocation.Weight,
		Cap:                cfg.Allocation.Cap,
		CommissionPerShare: cfg.Costs.CommissionPerShare,
		SlippageBps:        cfg.Costs.SlippageBps,
		Exchange:           cfg.Orders.Exchange,
		EntryType:          contracts.OrderType(cfg.Orders.EntryType),
		ExitType:           contracts.OrderType(cfg.Orders.ExitType),
		Tif:                contracts.TimeInForce(cfg.Orders.Tif),
		Timezone:           cfg.Meta.Timezone,
	}, nil
}

// PriceQuery builds the loader query for [from, to]
func (p Params) PriceQuery(from, to time.Time) contracts.PriceQuery {
	return contracts.PriceQuery{
		DB:       p.DB,
		Universe: p.Universe,
		Times:    append([]string(nil), p.Times...),
		Fields:   append([]contracts.Field(nil), p.Fields...),
		From:     from,
		To:       to,
	}
}

// Requirements lists the cross-sections the transforms read
func (p Params) Requirements() []marketdata.Requirement {
	return []marketdata.Requirement{
		{Field: contracts.FieldOpen, Clock: p.SignalTime},
		{Field: contracts.FieldClose, Clock: p.SignalTime},
		{Field: contracts.FieldClose, Clock: p.CloseTime},
	}
}

// PlanRequirements is Requirements for a trade run at the signal time:
// the session close is only required for settled sessions
func (p Params) PlanRequirements() []marketdata.Requirement {
	reqs := p.Requirements()
	for i := range reqs {
		if reqs[i].Clock != p.SignalTime {
			reqs[i].PriorOnly = true
		}
	}
	return reqs
}
