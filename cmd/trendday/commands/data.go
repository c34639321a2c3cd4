package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/trendday/internal/contracts"
	"github.com/wonny/trendday/internal/marketdata"
)

// dataCmd represents the data command
var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "분봉 데이터 관리",
}

var dataCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "분봉 커버리지 검증",
	Long: `전략이 읽는 cross-section(14:00 Open, 14:00 Close, 15:59 Close)의
(세션, 종목) 커버리지를 계산합니다. 기준 미달이면 종료 코드 1.

Example:
  go run ./cmd/trendday data check --from 2024-01-02 --to 2024-03-29
  go run ./cmd/trendday data check --from 2024-01-02 --min-coverage 0.95 --json`,
	RunE: runDataCheck,
}

var (
	dataFrom        string
	dataTo          string
	dataMinCoverage float64
	dataJSON        bool
	dataShowMissing int
)

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataCheckCmd)

	dataCheckCmd.Flags().StringVar(&dataFrom, "from", "", "시작 날짜 (YYYY-MM-DD, 필수)")
	dataCheckCmd.Flags().StringVar(&dataTo, "to", "", "종료 날짜 (YYYY-MM-DD, 기본: 오늘)")
	dataCheckCmd.Flags().Float64Var(&dataMinCoverage, "min-coverage", 1.0, "최소 커버리지 (0~1)")
	dataCheckCmd.Flags().BoolVar(&dataJSON, "json", false, "JSON 출력")
	dataCheckCmd.Flags().IntVar(&dataShowMissing, "show-missing", 20, "출력할 누락 항목 수")

	dataCheckCmd.MarkFlagRequired("from")
}

func runDataCheck(cmd *cobra.Command, args []string) error {
	if dataMinCoverage < 0 || dataMinCoverage > 1 {
		return fmt.Errorf("--min-coverage must be within [0, 1]")
	}

	from, err := time.Parse("2006-01-02", dataFrom)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	to := from
	if dataTo != "" {
		if to, err = time.Parse("2006-01-02", dataTo); err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
	} else {
		now := time.Now()
		to = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	prices, err := a.loader.LoadPrices(cmd.Context(), a.params.PriceQuery(from, to))
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}

	report := marketdata.CheckQuality(prices, a.params.Requirements(),
		marketdata.QualityConfig{MinCoverage: dataMinCoverage})

	a.log.WithFields(map[string]interface{}{
		"sessions": report.Sessions,
		"symbols":  report.Symbols,
		"missing":  len(report.Missing),
		"score":    report.Score,
		"passed":   report.Passed,
	}).Info("Data quality checked")

	if dataJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printQualityReport(report, from, to)
	}

	if !report.Passed {
		return fmt.Errorf("data quality below %.2f", dataMinCoverage)
	}
	return nil
}

func printQualityReport(report *marketdata.QualityReport, from, to time.Time) {
	PrintHeader("Data Quality",
		[2]string{"Period", contracts.SessionKey(from) + " ~ " + contracts.SessionKey(to)},
		[2]string{"Sessions", fmt.Sprintf("%d", report.Sessions)},
		[2]string{"Symbols", fmt.Sprintf("%d", report.Symbols)},
	)

	keys := make([]string, 0, len(report.Coverage))
	for k := range report.Coverage {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	widths := []int{18, 10}
	PrintTableHeader([]string{"Cross-section", "Coverage"}, widths)
	for _, k := range keys {
		PrintTableRow([]string{k, formatPct(report.Coverage[k])}, widths)
	}
	fmt.Println()

	if n := len(report.Missing); n > 0 {
		PrintWarning(fmt.Sprintf("%d missing cells", n))
		limit := n
		if dataShowMissing >= 0 && limit > dataShowMissing {
			limit = dataShowMissing
		}
		for _, m := range report.Missing[:limit] {
			fmt.Printf("  %s  %-6s  %s\n", contracts.SessionKey(m.Session), m.Symbol, m.Key)
		}
		if limit < n {
			fmt.Printf("  ... %d more\n", n-limit)
		}
		fmt.Println()
	}

	if report.Passed {
		PrintSuccess(fmt.Sprintf("Passed (score %s)", formatPct(report.Score)))
	} else {
		PrintWarning(fmt.Sprintf("Failed (score %s)", formatPct(report.Score)))
	}
}
