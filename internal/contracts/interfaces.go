package contracts

import (
	"context"
	"errors"
	"time"
)

// ErrSessionOrdersExist is returned by an OrderStore when the strategy already saved
// orders for the session
var ErrSessionOrdersExist = errors.New("orders already saved for session")

// Strategy turns a price table into signals, weights, positions, returns and orders.
// ⭐ SSOT: 전략 인터페이스. 백테스트/트레이드 러너는 이 인터페이스만 호출
// Every method is pure: no I/O, no state kept between calls.
type Strategy interface {
	Code() string
	PricesToSignals(prices *PriceTable) *Frame
	SignalsToTargetWeights(signals *Frame, prices *PriceTable) *Frame
	TargetWeightsToPositions(weights *Frame, prices *PriceTable) *Frame
	PositionsToGrossReturns(positions *Frame, prices *PriceTable) *Frame
	OrderStubsToOrders(stubs []Order, prices *PriceTable) []Order
}

// PriceQuery selects bars for a price table
type PriceQuery struct {
	DB       string
	Universe string
	Times    []string
	Fields   []Field
	From     time.Time
	To       time.Time
}

// PriceLoader loads price tables
// ⭐ SSOT: 가격 조회 인터페이스
type PriceLoader interface {
	LoadPrices(ctx context.Context, q PriceQuery) (*PriceTable, error)
}

// OrderStore persists orders for an external router.
// 같은 (세션, order_ref) 주문이 이미 있으면 ErrSessionOrdersExist
type OrderStore interface {
	SaveOrders(ctx context.Context, orders []Order) error
}
