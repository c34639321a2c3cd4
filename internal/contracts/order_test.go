package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderAction_Reverse(t *testing.T) {
	assert.Equal(t, ActionSell, ActionBuy.Reverse())
	assert.Equal(t, ActionBuy, ActionSell.Reverse())
}

func TestOrder_SignedQuantity(t *testing.T) {
	buy := Order{Action: ActionBuy, TotalQuantity: 10}
	sell := Order{Action: ActionSell, TotalQuantity: 10}

	assert.Equal(t, int64(10), buy.SignedQuantity())
	assert.Equal(t, int64(-10), sell.SignedQuantity())
}

func TestOrder_IsChild(t *testing.T) {
	parent := Order{OrderID: "p1", OrderType: OrderTypeMarket}
	child := Order{ParentID: "p1", OrderType: OrderTypeMarketOnClose}

	assert.False(t, parent.IsChild())
	assert.True(t, parent.IsMarketOrder())
	assert.True(t, child.IsChild())
	assert.False(t, child.IsMarketOrder())
}

func TestStages(t *testing.T) {
	stages := AllStages()
	assert.Equal(t, StagePrices, stages[0])
	assert.Equal(t, StageOrders, stages[len(stages)-1])
	assert.True(t, IsValidStage("SIGNALS"))
	assert.False(t, IsValidStage("S2_SIGNALS"))
}
