package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// tradeCmd represents the trade command
var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "당일 주문 생성 및 저장",
	Long: `당일 세션의 진입(MKT)과 청산(MOC) 주문을 생성해 execution.orders에 저장합니다.
스케줄러의 trend_day_trade 작업과 같은 흐름을 1회 실행합니다.

Flags:
  --date      세션 날짜 (YYYY-MM-DD, 기본: 오늘)
  --dry-run   저장하지 않고 계획만 출력

Example:
  go run ./cmd/trendday trade
  go run ./cmd/trendday trade --dry-run`,
	RunE: runTrade,
}

var (
	tradeDate   string
	tradeDryRun bool
)

func init() {
	rootCmd.AddCommand(tradeCmd)

	tradeCmd.Flags().StringVar(&tradeDate, "date", "", "세션 날짜 (YYYY-MM-DD)")
	tradeCmd.Flags().BoolVar(&tradeDryRun, "dry-run", false, "주문 저장 생략")
}

func runTrade(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	at, err := a.parseSessionDate(tradeDate)
	if err != nil {
		return err
	}

	if tradeDryRun {
		result, err := a.runner(nil).Plan(cmd.Context(), at)
		if err != nil {
			return err
		}
		printTradeResult(a.params, result)
		PrintInfo("Dry run: orders not saved")
		return nil
	}

	store := a.orderStore()
	if store == nil {
		return fmt.Errorf("trade requires DATABASE_URL (use --dry-run with --bars)")
	}

	result, err := a.runner(store).Run(cmd.Context(), at)
	if err != nil {
		return err
	}
	printTradeResult(a.params, result)
	if result.AlreadySaved {
		PrintWarning("Orders for this session were already saved; nothing new persisted")
	}
	return nil
}
