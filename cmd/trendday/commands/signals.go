package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/trendday/internal/contracts"
	"github.com/wonny/trendday/internal/trendday"
)

// signalsCmd represents the signals command
var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "세션 시그널/주문 계획 조회",
	Long: `지정 세션의 14:00 수익률, 시그널, 목표 비중, 주문 계획을 계산합니다.
주문은 저장하지 않습니다.

Flags:
  --date   세션 날짜 (YYYY-MM-DD, 기본: 오늘, 거래소 시간대)
  --json   JSON 출력

Example:
  go run ./cmd/trendday signals
  go run ./cmd/trendday signals --date 2024-03-05
  go run ./cmd/trendday signals --bars testdata/bars.json --date 2024-03-05 --json`,
	RunE: runSignals,
}

var (
	signalsDate string
	signalsJSON bool
)

func init() {
	rootCmd.AddCommand(signalsCmd)

	signalsCmd.Flags().StringVar(&signalsDate, "date", "", "세션 날짜 (YYYY-MM-DD)")
	signalsCmd.Flags().BoolVar(&signalsJSON, "json", false, "JSON 출력")
}

func runSignals(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	at, err := a.parseSessionDate(signalsDate)
	if err != nil {
		return err
	}

	result, err := a.runner(nil).Plan(cmd.Context(), at)
	if err != nil {
		return err
	}

	if signalsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printTradeResult(a.params, result)
	return nil
}

// printTradeResult prints the session table and the order plan
func printTradeResult(params trendday.Params, result *trendday.TradeResult) {
	PrintHeader("Trend-day Session",
		[2]string{"Session", contracts.SessionKey(result.Session)},
		[2]string{"Strategy", params.Code},
		[2]string{"Threshold", fmt.Sprintf("±%.2f%%", params.MinPctChange*100)},
	)

	widths := []int{8, 10, 7, 8}
	PrintTableHeader([]string{"Symbol", "Return", "Signal", "Weight"}, widths)
	for j, symbol := range result.Signals.Symbols {
		PrintTableRow([]string{
			symbol,
			formatPct(result.Returns.At(0, j)),
			fmt.Sprintf("%+.0f", result.Signals.At(0, j)),
			fmt.Sprintf("%.4f", result.Weights.At(0, j)),
		}, widths)
	}
	fmt.Println()

	if len(result.Orders) == 0 {
		PrintInfo("No orders for session")
		return
	}

	fmt.Println("📝 Orders")
	orderWidths := []int{8, 6, 8, 5, 5, 36}
	PrintTableHeader([]string{"Symbol", "Action", "Qty", "Type", "Tif", "Parent"}, orderWidths)
	for _, o := range result.Orders {
		PrintTableRow([]string{
			o.Symbol,
			string(o.Action),
			formatNumber(o.TotalQuantity),
			string(o.OrderType),
			string(o.Tif),
			o.ParentID,
		}, orderWidths)
	}
	fmt.Println()

	if result.Saved {
		PrintSuccess(fmt.Sprintf("%d orders saved", len(result.Orders)))
	}
}
