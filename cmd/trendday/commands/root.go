package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	barsFile     string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trendday",
	Short: "Trend-day - 레버리지 ETF 장중 추세 전략",
	Long: `Trend-day Unified CLI

전일 종가 대비 14:00 가격이 ±6% 이상 움직인 레버리지 ETF를
14:01에 시장가로 진입하고 장 마감(MOC)에 청산하는 장중 전략.

Usage:
  go run ./cmd/trendday [command]

Examples:
  go run ./cmd/trendday config show
  go run ./cmd/trendday signals --date 2024-03-05
  go run ./cmd/trendday backtest run --from 2023-01-01 --to 2023-12-31
  go run ./cmd/trendday trade --dry-run
  go run ./cmd/trendday scheduler start
  go run ./cmd/trendday api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "전략 YAML 경로 (기본: STRATEGY_CONFIG 또는 내장 기본값)")
	rootCmd.PersistentFlags().StringVar(&barsFile, "bars", "", "분봉 JSON 파일 (지정 시 DB 대신 사용)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
