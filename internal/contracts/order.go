package contracts

import "time"

// Order is one order row: an entry built from a position, or a derived exit.
// ⭐ SSOT: 전략 → 주문 라우터 주문 정보 전달
type Order struct {
	OrderID       string      `json:"order_id"`
	ParentID      string      `json:"parent_id,omitempty"` // 청산 주문이면 진입 주문 ID
	Symbol        string      `json:"symbol"`
	Session       time.Time   `json:"session"`
	Account       string      `json:"account,omitempty"`
	OrderRef      string      `json:"order_ref"` // 전략 코드
	Action        OrderAction `json:"action"`
	TotalQuantity int64       `json:"total_quantity"`
	Exchange      string      `json:"exchange"`
	OrderType     OrderType   `json:"order_type"`
	Tif           TimeInForce `json:"tif"`
	Status        Status      `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
}

// OrderAction represents buy or sell
type OrderAction string

const (
	ActionBuy  OrderAction = "BUY"
	ActionSell OrderAction = "SELL"
)

// Reverse returns the closing action
func (a OrderAction) Reverse() OrderAction {
	if a == ActionBuy {
		return ActionSell
	}
	return ActionBuy
}

// OrderType represents the order type sent to the router
type OrderType string

const (
	OrderTypeMarket        OrderType = "MKT"
	OrderTypeMarketOnClose OrderType = "MOC"
	OrderTypeLimit         OrderType = "LMT"
)

// TimeInForce of an order
type TimeInForce string

const (
	TifDay TimeInForce = "DAY"
	TifGTC TimeInForce = "GTC"
)

// ExchangeSmart routes through the broker's smart router
const ExchangeSmart = "SMART"

// Status represents order status
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSubmitted Status = "SUBMITTED"
	StatusFilled    Status = "FILLED"
	StatusCanceled  Status = "CANCELED"
	StatusRejected  Status = "REJECTED"
)

// IsChild reports whether the order was derived from a parent
func (o *Order) IsChild() bool {
	return o.ParentID != ""
}

// IsMarketOrder checks if the order is a market order
func (o *Order) IsMarketOrder() bool {
	return o.OrderType == OrderTypeMarket
}

// SignedQuantity is positive for BUY and negative for SELL
func (o *Order) SignedQuantity() int64 {
	if o.Action == ActionSell {
		return -o.TotalQuantity
	}
	return o.TotalQuantity
}
