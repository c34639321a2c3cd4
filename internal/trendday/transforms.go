package trendday

import (
	"math"

	"github.com/google/uuid"

	"github.com/wonny/trendday/internal/contracts"
	"github.com/wonny/trendday/internal/execution"
	"github.com/wonny/trendday/internal/portfolio"
)

// ⭐ SSOT: trend-day 변환 로직은 여기서만
// prices → signals → target weights → positions → gross returns
// order stubs → orders
// 입력 Frame은 변경하지 않음 (OrderStubsToOrders의 stub 라우팅 필드 제외)

// PricesToReturns returns the move from the prior session close to the signal-time open.
// Undefined moves (first session, missing price, zero prior close) are NaN.
func PricesToReturns(p Params, prices *contracts.PriceTable) *contracts.Frame {
	// 전일 종가: 15:59 봉 종가를 한 세션 밀어서 사용
	priorCloses := prices.XS(contracts.FieldClose, p.CloseTime).Shift(1)
	// 14:00 가격: 14:00 봉 시가
	afternoonPrices := prices.XS(contracts.FieldOpen, p.SignalTime)

	return afternoonPrices.Apply(func(i, j int, price float64) float64 {
		prior := priorCloses.At(i, j)
		if prior == 0 || math.IsNaN(prior) || math.IsNaN(price) {
			return math.NaN()
		}
		ret := (price - prior) / prior
		if math.IsInf(ret, 0) {
			return math.NaN()
		}
		return ret
	})
}

// PricesToSignals marks +1 above the threshold, -1 below its negative, 0 otherwise.
// Exactly ±threshold and undefined returns are 0.
func PricesToSignals(p Params, prices *contracts.PriceTable) *contracts.Frame {
	returns := PricesToReturns(p, prices)
	return returns.Apply(func(_, _ int, ret float64) float64 {
		switch {
		case ret > p.MinPctChange:
			return 1
		case ret < -p.MinPctChange:
			return -1
		default:
			return 0
		}
	})
}

// SignalsToTargetWeights allocates the fixed weight per signal, capped per session
func SignalsToTargetWeights(p Params, signals *contracts.Frame) *contracts.Frame {
	return portfolio.AllocateFixedWeightsCapped(signals, p.Weight, p.Cap)
}

// TargetWeightsToPositions enters on the same session as the signal
func TargetWeightsToPositions(weights *contracts.Frame) *contracts.Frame {
	return weights.Clone()
}

// PositionsToGrossReturns returns (close − entry) / entry × position, entering at the
// signal-time bar close and exiting at the session close. Undefined cells are 0.
func PositionsToGrossReturns(p Params, positions *contracts.Frame, prices *contracts.PriceTable) *contracts.Frame {
	entryPrices := prices.XS(contracts.FieldClose, p.SignalTime)
	sessionCloses := prices.XS(contracts.FieldClose, p.CloseTime)

	return positions.Apply(func(i, j int, pos float64) float64 {
		if pos == 0 || math.IsNaN(pos) {
			return 0
		}
		session, symbol := positions.Sessions[i], positions.Symbols[j]
		entry := entryPrices.Get(session, symbol)
		exit := sessionCloses.Get(session, symbol)
		if entry == 0 || math.IsNaN(entry) || math.IsNaN(exit) {
			return 0
		}
		ret := (exit - entry) / entry * pos
		if math.IsNaN(ret) || math.IsInf(ret, 0) {
			return 0
		}
		return ret
	})
}

// OrderStubsToOrders assigns entry routing to every stub and appends one exit per stub.
// Result: all entries, then all exits.
func OrderStubsToOrders(p Params, stubs []contracts.Order) []contracts.Order {
	for i := range stubs {
		if stubs[i].OrderID == "" {
			stubs[i].OrderID = uuid.NewString()
		}
		stubs[i].Exchange = p.Exchange
		stubs[i].OrderType = p.EntryType
		stubs[i].Tif = p.Tif
	}

	children := execution.OrdersToChildOrders(stubs)
	for i := range children {
		children[i].OrderType = p.ExitType
	}

	orders := make([]contracts.Order, 0, len(stubs)+len(children))
	orders = append(orders, stubs...)
	orders = append(orders, children...)
	return orders
}
