package execution

import (
	"github.com/google/uuid"

	"github.com/wonny/trendday/internal/contracts"
)

// OrdersToChildOrders derives one closing order per parent.
// Child: reversed action, same symbol/session/quantity/routing, ParentID = parent.OrderID.
// Parents are not modified.
func OrdersToChildOrders(orders []contracts.Order) []contracts.Order {
	children := make([]contracts.Order, 0, len(orders))
	for _, parent := range orders {
		child := parent
		child.OrderID = uuid.NewString()
		child.ParentID = parent.OrderID
		child.Action = parent.Action.Reverse()
		children = append(children, child)
	}
	return children
}
