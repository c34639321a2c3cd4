package execution

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wonny/trendday/internal/contracts"
	"github.com/wonny/trendday/pkg/logger"
)

// Planner turns one session's positions into order stubs
// ⭐ SSOT: 포지션 → 주문 수량 계산은 여기서만
type Planner struct {
	config PlannerConfig
	logger *logger.Logger
	now    func() time.Time
}

// PlannerConfig defines order sizing parameters
type PlannerConfig struct {
	Account  string          // 주문 계좌
	Equity   decimal.Decimal // 순자산 (USD)
	OrderRef string          // 전략 코드
}

// NewPlanner creates a new execution planner
func NewPlanner(config PlannerConfig, logger *logger.Logger) *Planner {
	return &Planner{
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// OrderStubs builds one stub per non-flat position of the given session.
// Quantity = floor(|weight| × equity / price). Routing fields are left for the strategy.
func (p *Planner) OrderStubs(session time.Time, positions, prices *contracts.Frame) []contracts.Order {
	stubs := make([]contracts.Order, 0)

	i, ok := positions.SessionIndex(session)
	if !ok {
		p.logger.WithField("session", contracts.SessionKey(session)).Warn("No positions for session")
		return stubs
	}

	createdAt := p.now()
	for j, symbol := range positions.Symbols {
		weight := positions.At(i, j)
		if weight == 0 || math.IsNaN(weight) {
			continue
		}

		price := prices.Get(session, symbol)
		qty := p.quantity(weight, price)
		if qty <= 0 {
			p.logger.WithFields(map[string]interface{}{
				"symbol": symbol,
				"weight": weight,
				"price":  price,
			}).Warn("Skipping order stub with zero quantity")
			continue
		}

		action := contracts.ActionBuy
		if weight < 0 {
			action = contracts.ActionSell
		}

		stubs = append(stubs, contracts.Order{
			OrderID:       uuid.NewString(),
			Symbol:        symbol,
			Session:       session,
			Account:       p.config.Account,
			OrderRef:      p.config.OrderRef,
			Action:        action,
			TotalQuantity: qty,
			Status:        contracts.StatusPending,
			CreatedAt:     createdAt,
		})
	}

	p.logger.WithFields(map[string]interface{}{
		"session": contracts.SessionKey(session),
		"stubs":   len(stubs),
		"buys":    countOrders(stubs, contracts.ActionBuy),
		"sells":   countOrders(stubs, contracts.ActionSell),
	}).Info("Order stubs created")

	return stubs
}

// quantity returns whole shares; missing or non-positive price yields 0
func (p *Planner) quantity(weight, price float64) int64 {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0
	}

	target := decimal.NewFromFloat(math.Abs(weight)).Mul(p.config.Equity)
	return target.Div(decimal.NewFromFloat(price)).Floor().IntPart()
}

// countOrders counts orders by action
func countOrders(orders []contracts.Order, action contracts.OrderAction) int {
	count := 0
	for _, order := range orders {
		if order.Action == action {
			count++
		}
	}
	return count
}
