package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/trendday/internal/contracts"
	"github.com/wonny/trendday/internal/execution"
)

// ordersCmd represents the orders command
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "저장된 주문 조회/상태 변경",
	Long: `execution.orders에 저장된 세션 주문을 관리합니다.

Example:
  go run ./cmd/trendday orders list --date 2024-03-05
  go run ./cmd/trendday orders status <order-id> FILLED`,
}

var (
	ordersListCmd = &cobra.Command{
		Use:   "list",
		Short: "세션 주문 목록 (진입 → 청산 순)",
		RunE:  listOrders,
	}

	ordersStatusCmd = &cobra.Command{
		Use:   "status <order-id> <PENDING|SUBMITTED|FILLED|CANCELED|REJECTED>",
		Short: "주문 상태 변경",
		Args:  cobra.ExactArgs(2),
		RunE:  updateOrderStatus,
	}

	ordersDate string
	ordersJSON bool
)

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersStatusCmd)

	ordersListCmd.Flags().StringVar(&ordersDate, "date", "", "세션 날짜 (YYYY-MM-DD, 기본: 오늘)")
	ordersListCmd.Flags().BoolVar(&ordersJSON, "json", false, "JSON 출력")
}

// orderRepository opens the app and requires the database
func orderRepository() (*app, *execution.Repository, error) {
	a, err := newApp()
	if err != nil {
		return nil, nil, err
	}
	if a.db == nil {
		a.Close()
		return nil, nil, fmt.Errorf("orders requires DATABASE_URL")
	}
	return a, execution.NewRepository(a.db.Pool), nil
}

func listOrders(cmd *cobra.Command, args []string) error {
	a, repo, err := orderRepository()
	if err != nil {
		return err
	}
	defer a.Close()

	at, err := a.parseSessionDate(ordersDate)
	if err != nil {
		return err
	}
	session := a.runner(nil).SessionOf(at)

	orders, err := repo.GetOrdersBySession(cmd.Context(), session)
	if err != nil {
		return err
	}

	if ordersJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(orders)
	}

	PrintHeader("Orders",
		[2]string{"Session", contracts.SessionKey(session)},
		[2]string{"Count", fmt.Sprintf("%d", len(orders))},
	)
	if len(orders) == 0 {
		PrintInfo("No orders for session")
		return nil
	}

	widths := []int{36, 8, 5, 8, 5, 10}
	PrintTableHeader([]string{"Order", "Symbol", "Side", "Qty", "Type", "Status"}, widths)
	for _, o := range orders {
		PrintTableRow([]string{
			o.OrderID,
			o.Symbol,
			string(o.Action),
			formatNumber(o.TotalQuantity),
			string(o.OrderType),
			string(o.Status),
		}, widths)
	}
	return nil
}

func updateOrderStatus(cmd *cobra.Command, args []string) error {
	status, err := parseStatus(args[1])
	if err != nil {
		return err
	}

	a, repo, err := orderRepository()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := repo.UpdateOrderStatus(cmd.Context(), args[0], status); err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("Order %s → %s", args[0], status))
	return nil
}

func parseStatus(s string) (contracts.Status, error) {
	status := contracts.Status(strings.ToUpper(s))
	switch status {
	case contracts.StatusPending, contracts.StatusSubmitted, contracts.StatusFilled,
		contracts.StatusCanceled, contracts.StatusRejected:
		return status, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}
