package trendday

import (
	"github.com/wonny/trendday/internal/contracts"
)

// Strategy binds Params to the contracts.Strategy capability
type Strategy struct {
	params Params
}

var _ contracts.Strategy = (*Strategy)(nil)

// New creates a trend-day strategy
func New(params Params) *Strategy {
	return &Strategy{params: params}
}

// Params returns a copy of the strategy parameters
func (s *Strategy) Params() Params {
	p := s.params
	p.Times = append([]string(nil), s.params.Times...)
	p.Fields = append([]contracts.Field(nil), s.params.Fields...)
	return p
}

func (s *Strategy) Code() string {
	return s.params.Code
}

func (s *Strategy) PricesToSignals(prices *contracts.PriceTable) *contracts.Frame {
	return PricesToSignals(s.params, prices)
}

func (s *Strategy) SignalsToTargetWeights(signals *contracts.Frame, _ *contracts.PriceTable) *contracts.Frame {
	return SignalsToTargetWeights(s.params, signals)
}

func (s *Strategy) TargetWeightsToPositions(weights *contracts.Frame, _ *contracts.PriceTable) *contracts.Frame {
	return TargetWeightsToPositions(weights)
}

func (s *Strategy) PositionsToGrossReturns(positions *contracts.Frame, prices *contracts.PriceTable) *contracts.Frame {
	return PositionsToGrossReturns(s.params, positions, prices)
}

func (s *Strategy) OrderStubsToOrders(stubs []contracts.Order, _ *contracts.PriceTable) []contracts.Order {
	return OrderStubsToOrders(s.params, stubs)
}

// EntryPrices returns the price each position is entered at (signal-time bar close)
func (s *Strategy) EntryPrices(prices *contracts.PriceTable) *contracts.Frame {
	return prices.XS(contracts.FieldClose, s.params.SignalTime)
}
