package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/trendday/internal/contracts"
)

func TestOrdersToChildOrders(t *testing.T) {
	parents := []contracts.Order{
		{OrderID: "p1", Symbol: "TQQQ", Session: session, Action: contracts.ActionBuy, TotalQuantity: 187,
			Exchange: contracts.ExchangeSmart, OrderType: contracts.OrderTypeMarket, Tif: contracts.TifDay},
		{OrderID: "p2", Symbol: "SQQQ", Session: session, Action: contracts.ActionSell, TotalQuantity: 2000,
			Exchange: contracts.ExchangeSmart, OrderType: contracts.OrderTypeMarket, Tif: contracts.TifDay},
	}

	children := OrdersToChildOrders(parents)
	require.Len(t, children, 2)

	for i, child := range children {
		parent := parents[i]
		assert.Equal(t, parent.OrderID, child.ParentID)
		assert.NotEmpty(t, child.OrderID)
		assert.NotEqual(t, parent.OrderID, child.OrderID)
		assert.Equal(t, parent.Action.Reverse(), child.Action)
		assert.Equal(t, parent.Symbol, child.Symbol)
		assert.Equal(t, parent.TotalQuantity, child.TotalQuantity)
		assert.Equal(t, parent.Exchange, child.Exchange)
		assert.True(t, child.IsChild())
	}

	// 부모 불변
	assert.Equal(t, contracts.ActionBuy, parents[0].Action)
	assert.Empty(t, parents[0].ParentID)
}

func TestOrdersToChildOrders_Empty(t *testing.T) {
	assert.Empty(t, OrdersToChildOrders(nil))
}
