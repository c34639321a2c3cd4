package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/trendday/internal/audit"
	"github.com/wonny/trendday/internal/backtest"
	"github.com/wonny/trendday/internal/contracts"
	"github.com/wonny/trendday/internal/strategyconfig"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "백테스팅",
	Long: `과거 분봉으로 전략을 시뮬레이션합니다.

백테스팅은 다음을 검증합니다:
- 세션별 순수익률 (수수료, 슬리피지 차감)
- 리스크 지표 (Sharpe, Sortino, MDD)
- 승률

Example:
  go run ./cmd/trendday backtest run --from 2023-01-01 --to 2023-12-31
  go run ./cmd/trendday backtest run --from 2024-03-01 --bars testdata/bars.json`,
}

var (
	backtestRunCmd = &cobra.Command{
		Use:   "run",
		Short: "백테스트 실행",
		Long: `지정된 기간 동안 백테스트를 실행합니다.

Flags:
  --from        시작 날짜 (YYYY-MM-DD, 필수)
  --to          종료 날짜 (YYYY-MM-DD, 기본: 오늘)
  --capital     초기 자본 (USD, 기본: 100,000)
  --commission  주당 수수료 (USD, 기본: 전략 설정)
  --slippage    슬리피지 (bps, 기본: 전략 설정)
  --json        JSON 출력
  --save        결과를 audit.backtest_runs에 저장

Example:
  go run ./cmd/trendday backtest run --from 2023-01-01 --to 2023-12-31
  go run ./cmd/trendday backtest run --from 2023-01-01 --commission 0 --slippage 0`,
		RunE: runBacktest,
	}

	backtestRunsCmd = &cobra.Command{
		Use:   "runs",
		Short: "저장된 백테스트 목록",
		RunE:  listBacktestRuns,
	}

	backtestShowCmd = &cobra.Command{
		Use:   "show <run-id>",
		Short: "저장된 백테스트 상세 (스냅샷, 기여도)",
		Args:  cobra.ExactArgs(1),
		RunE:  showBacktestRun,
	}

	// Flags
	backtestFrom       string
	backtestTo         string
	backtestCapital    float64
	backtestCommission float64
	backtestSlippage   float64
	backtestJSON       bool
	backtestSave       bool
	backtestRunsLimit  int
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)
	backtestCmd.AddCommand(backtestRunsCmd)
	backtestCmd.AddCommand(backtestShowCmd)

	// Flags
	backtestRunCmd.Flags().StringVar(&backtestFrom, "from", "", "시작 날짜 (YYYY-MM-DD, 필수)")
	backtestRunCmd.Flags().StringVar(&backtestTo, "to", "", "종료 날짜 (YYYY-MM-DD, 기본: 오늘)")
	backtestRunCmd.Flags().Float64Var(&backtestCapital, "capital", 100_000, "초기 자본 (USD)")
	backtestRunCmd.Flags().Float64Var(&backtestCommission, "commission", -1, "주당 수수료 (USD, 음수 = 전략 설정)")
	backtestRunCmd.Flags().Float64Var(&backtestSlippage, "slippage", -1, "슬리피지 bps (음수 = 전략 설정)")
	backtestRunCmd.Flags().BoolVar(&backtestJSON, "json", false, "JSON 출력")
	backtestRunCmd.Flags().BoolVar(&backtestSave, "save", false, "결과 저장 (DB 필요)")
	backtestRunsCmd.Flags().IntVar(&backtestRunsLimit, "limit", 10, "조회 개수")

	backtestRunCmd.MarkFlagRequired("from")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	// Parse dates (세션 라벨은 UTC 자정)
	startDate, err := time.Parse("2006-01-02", backtestFrom)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	var endDate time.Time
	if backtestTo != "" {
		endDate, err = time.Parse("2006-01-02", backtestTo)
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
	} else {
		now := time.Now()
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if endDate.Before(startDate) {
		return fmt.Errorf("end date %s is before start date %s", backtestTo, backtestFrom)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	commission := a.params.CommissionPerShare
	if backtestCommission >= 0 {
		commission = backtestCommission
	}
	slippage := a.params.SlippageBps
	if backtestSlippage >= 0 {
		slippage = backtestSlippage
	}

	if !backtestJSON {
		fmt.Println("=== Trend-day Backtest Engine ===")
		fmt.Printf("\n📅 Period: %s ~ %s\n", startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
		fmt.Printf("💰 Initial Capital: %s\n", formatUSD(backtestCapital))
		fmt.Printf("💸 Commission: $%.4f/share\n", commission)
		fmt.Printf("📉 Slippage: %.1f bps\n\n", slippage)
	}

	// 첫 세션의 전일 종가 확보
	query := a.params.PriceQuery(startDate.AddDate(0, 0, -a.cfg.Strategy.LookbackDays), endDate)
	prices, err := a.loader.LoadPrices(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}

	engine := backtest.NewEngine(a.strategy, backtest.NewSimulator(a.log), a.log)
	result, err := engine.Run(cmd.Context(), backtest.Config{
		StartDate:          startDate,
		EndDate:            endDate,
		InitialCapital:     backtestCapital,
		CommissionPerShare: commission,
		SlippageBps:        slippage,
	}, prices)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	snapshot, err := strategyconfig.NewDecisionSnapshot(a.strategyConfig, a.strategyYAML, gitCommit(),
		fmt.Sprintf("%s_%s_%s", a.params.DB, contracts.SessionKey(startDate), contracts.SessionKey(endDate)))
	if err != nil {
		return err
	}
	run := audit.NewBacktestRun(snapshot, result)

	if backtestSave {
		if a.db == nil {
			return fmt.Errorf("--save requires DATABASE_URL")
		}
		if err := audit.NewRepository(a.db.Pool).SaveBacktestRun(cmd.Context(), run); err != nil {
			return err
		}
	}

	if backtestJSON {
		result.Signals, result.Weights, result.Positions = nil, nil, nil
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"result": result,
			"run":    run,
		})
	}

	printBacktestResult(result)
	printAttribution(run)
	if backtestSave {
		PrintSuccess(fmt.Sprintf("Saved run %s (config %s)", run.RunID, snapshot.ConfigHash[:12]))
	}
	return nil
}

func listBacktestRuns(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.db == nil {
		return fmt.Errorf("runs requires DATABASE_URL")
	}

	runs, err := audit.NewRepository(a.db.Pool).ListBacktestRuns(cmd.Context(), backtestRunsLimit)
	if err != nil {
		return err
	}

	widths := []int{36, 23, 10, 7, 8, 12}
	PrintTableHeader([]string{"Run", "Period", "Return", "Sharpe", "MDD", "Config"}, widths)
	for _, r := range runs {
		hash := ""
		if r.Snapshot != nil && len(r.Snapshot.ConfigHash) >= 12 {
			hash = r.Snapshot.ConfigHash[:12]
		}
		PrintTableRow([]string{
			r.RunID,
			contracts.SessionKey(r.StartDate) + " ~ " + contracts.SessionKey(r.EndDate),
			formatPct(r.TotalReturn),
			fmt.Sprintf("%.2f", r.Sharpe),
			fmt.Sprintf("%.2f%%", r.MaxDrawdown*100),
			hash,
		}, widths)
	}
	return nil
}

func showBacktestRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.db == nil {
		return fmt.Errorf("show requires DATABASE_URL")
	}

	run, err := audit.NewRepository(a.db.Pool).GetBacktestRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	pairs := [][2]string{
		{"Run", run.RunID},
		{"Period", contracts.SessionKey(run.StartDate) + " ~ " + contracts.SessionKey(run.EndDate)},
		{"Created", run.CreatedAt.Format(time.RFC3339)},
	}
	if run.Snapshot != nil {
		pairs = append(pairs,
			[2]string{"Config", run.Snapshot.ConfigHash},
			[2]string{"Commit", run.Snapshot.GitCommit},
			[2]string{"Data", run.Snapshot.DataSnapshotID},
		)
	}
	PrintHeader("Backtest Run", pairs...)

	fmt.Printf("Total Return:    %s\n", formatPct(run.TotalReturn))
	fmt.Printf("CAGR:            %s\n", formatPct(run.CAGR))
	fmt.Printf("Sharpe:          %.2f\n", run.Sharpe)
	fmt.Printf("Max Drawdown:    %.2f%%\n", run.MaxDrawdown*100)
	fmt.Printf("Trades:          %d (win %.1f%%)\n\n", run.TradeStats.Trades, run.TradeStats.WinRate*100)

	printContributors("🔝 Top Contributors", audit.TopContributors(run.Attribution, 5))
	printContributors("🔻 Bottom Contributors", audit.BottomContributors(run.Attribution, 5))
	return nil
}

func printContributors(title string, attrs []audit.Attribution) {
	if len(attrs) == 0 {
		return
	}
	fmt.Println(title)
	widths := []int{8, 7, 10, 9}
	PrintTableHeader([]string{"Symbol", "Trades", "Net", "Hit"}, widths)
	for _, attr := range attrs {
		PrintTableRow([]string{
			attr.Symbol,
			fmt.Sprintf("%d", attr.Trades),
			formatPct(attr.Contribution),
			fmt.Sprintf("%.1f%%", attr.HitRate*100),
		}, widths)
	}
	fmt.Println()
}

// gitCommit returns the short HEAD commit, "unknown" outside a work tree
func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func printAttribution(run *audit.BacktestRun) {
	if len(run.Attribution) == 0 {
		return
	}

	fmt.Println("🧮 Attribution by Symbol")
	widths := []int{8, 7, 6, 6, 10, 9}
	PrintTableHeader([]string{"Symbol", "Trades", "Long", "Short", "Net", "Hit"}, widths)
	for _, attr := range run.Attribution {
		PrintTableRow([]string{
			attr.Symbol,
			fmt.Sprintf("%d", attr.Trades),
			fmt.Sprintf("%d", attr.Longs),
			fmt.Sprintf("%d", attr.Shorts),
			formatPct(attr.Contribution),
			fmt.Sprintf("%.1f%%", attr.HitRate*100),
		}, widths)
	}
	fmt.Println()

	stats := run.TradeStats
	fmt.Printf("Profit Factor:   %.2f\n", stats.ProfitFactor)
	fmt.Printf("Avg Win / Loss:  %s / %s\n", formatPct(stats.AvgWin), formatPct(stats.AvgLoss))
	fmt.Printf("Long / Short:    %s / %s\n", formatPct(stats.LongNet), formatPct(stats.ShortNet))
	fmt.Println()
}

func printBacktestResult(result *backtest.Result) {
	fmt.Println("\n✅ Backtest Completed")
	fmt.Println("=" + strings.Repeat("=", 60))
	fmt.Println()

	// Summary
	fmt.Println("📊 Summary")
	fmt.Printf("Period: %s ~ %s (%d days, %d trading days)\n",
		result.StartDate.Format("2006-01-02"),
		result.EndDate.Format("2006-01-02"),
		result.TotalDays,
		result.TradingDays)
	fmt.Printf("Duration: %.2f seconds\n", result.Duration.Seconds())
	fmt.Println()

	// Performance
	fmt.Println("💰 Performance")
	fmt.Printf("Initial Capital: %s\n", formatUSD(result.InitialCapital))
	fmt.Printf("Final Capital:   %s\n", formatUSD(result.FinalCapital))
	fmt.Printf("P&L:             %s (%+.2f%%)\n",
		formatUSD(result.FinalCapital-result.InitialCapital),
		result.TotalReturn*100)
	fmt.Println()

	fmt.Printf("Annual Return:   %+.2f%%\n", result.AnnualizedReturn*100)
	fmt.Printf("CAGR:            %+.2f%%\n", result.CAGR*100)
	fmt.Printf("Volatility:      %.2f%%\n", result.Volatility*100)
	fmt.Println()

	// Risk Metrics
	fmt.Println("📉 Risk Metrics")
	fmt.Printf("Sharpe Ratio:    %.2f", result.SharpeRatio)
	if result.SharpeRatio > 2.0 {
		fmt.Print(" ✅ (Good)")
	} else if result.SharpeRatio > 1.0 {
		fmt.Print(" ⚠️  (Fair)")
	} else {
		fmt.Print(" ❌ (Poor)")
	}
	fmt.Println()

	fmt.Printf("Sortino Ratio:   %.2f\n", result.SortinoRatio)
	fmt.Printf("Max Drawdown:    %.2f%%\n", result.MaxDrawdown*100)
	for _, v := range result.Risk.Historical {
		fmt.Printf("VaR %.0f%%:         %.2f%% (CVaR %.2f%%)\n", v.Confidence*100, v.VaR*100, v.CVaR*100)
	}
	fmt.Printf("Worst Session:   %+.2f%%\n", result.Risk.Worst*100)
	fmt.Println()

	// Trading Metrics
	fmt.Println("💹 Trading Metrics")
	fmt.Printf("Total Trades:    %d\n", result.TotalTrades)
	fmt.Printf("Winning Trades:  %d (%.1f%%)\n", result.WinningTrades, result.WinRate*100)
	fmt.Printf("Losing Trades:   %d\n", result.LosingTrades)
	fmt.Printf("Commission:      %.4f%% of capital\n", result.TotalCommission*100)
	fmt.Printf("Slippage:        %.4f%% of capital\n", result.TotalSlippage*100)
	fmt.Println()

	// Equity Curve (last 10 points)
	fmt.Println("📈 Equity Curve (Last 10 Sessions)")
	startIdx := len(result.EquityCurve) - 10
	if startIdx < 0 {
		startIdx = 0
	}
	for _, point := range result.EquityCurve[startIdx:] {
		fmt.Printf("%s: %s (%+.2f%%)\n",
			point.Date.Format("2006-01-02"),
			formatUSD(point.Equity),
			point.Return*100)
	}
	fmt.Println()
}
