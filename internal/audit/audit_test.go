package audit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/trendday/internal/backtest"
	"github.com/wonny/trendday/internal/strategyconfig"
)

var day = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

func testTrades() []backtest.Trade {
	return []backtest.Trade{
		{Session: day, Symbol: "TQQQ", Weight: 0.2, Gross: 0.002, Commission: 0.0001, Slippage: 0.0001, Net: 0.0018},
		{Session: day, Symbol: "SQQQ", Weight: -0.2, Gross: 0.001, Commission: 0.0002, Slippage: 0.0001, Net: 0.0007},
		{Session: day.AddDate(0, 0, 1), Symbol: "TQQQ", Weight: -0.2, Gross: -0.004, Commission: 0.0001, Slippage: 0.0001, Net: -0.0042},
		{Session: day.AddDate(0, 0, 1), Symbol: "SPXL", Weight: 0.2, Gross: 0.0001, Commission: 0.0001, Slippage: 0.0001, Net: -0.0001},
	}
}

func TestAttributeBySymbol(t *testing.T) {
	attrs := AttributeBySymbol(testTrades())
	require.Len(t, attrs, 3)

	assert.Equal(t, "SQQQ", attrs[0].Symbol)
	assert.Equal(t, "SPXL", attrs[1].Symbol)
	assert.Equal(t, "TQQQ", attrs[2].Symbol)

	tqqq := attrs[2]
	assert.Equal(t, 2, tqqq.Trades)
	assert.Equal(t, 1, tqqq.Longs)
	assert.Equal(t, 1, tqqq.Shorts)
	assert.InDelta(t, -0.002, tqqq.Gross, 1e-12)
	assert.InDelta(t, 0.0004, tqqq.Costs, 1e-12)
	assert.InDelta(t, -0.0024, tqqq.Contribution, 1e-12)
	assert.Equal(t, 0.5, tqqq.HitRate)

	assert.Empty(t, AttributeBySymbol(nil))
}

func TestContributors(t *testing.T) {
	attrs := AttributeBySymbol(testTrades())

	top := TopContributors(attrs, 1)
	require.Len(t, top, 1)
	assert.Equal(t, "SQQQ", top[0].Symbol)

	bottom := BottomContributors(attrs, 2)
	require.Len(t, bottom, 2)
	assert.Equal(t, "TQQQ", bottom[0].Symbol)
	assert.Equal(t, "SPXL", bottom[1].Symbol)

	assert.Len(t, TopContributors(attrs, 10), 3)
	assert.Len(t, BottomContributors(attrs, 10), 3)
}

func TestAnalyzeTrades(t *testing.T) {
	stats := AnalyzeTrades(testTrades())

	assert.Equal(t, 4, stats.Trades)
	assert.Equal(t, 0.5, stats.WinRate)
	assert.InDelta(t, 0.00125, stats.AvgWin, 1e-12)
	assert.InDelta(t, -0.00215, stats.AvgLoss, 1e-12)
	assert.InDelta(t, 0.0025/0.0043, stats.ProfitFactor, 1e-12)
	assert.Equal(t, 2, stats.LongTrades)
	assert.Equal(t, 2, stats.ShortTrades)
	assert.InDelta(t, 0.0017, stats.LongNet, 1e-12)
	assert.InDelta(t, -0.0035, stats.ShortNet, 1e-12)

	empty := AnalyzeTrades(nil)
	assert.Zero(t, empty.WinRate)
	assert.Zero(t, empty.ProfitFactor)
}

func testRun(t *testing.T) *BacktestRun {
	t.Helper()

	cfg := strategyconfig.Default()
	snapshot, err := strategyconfig.NewDecisionSnapshot(cfg, []byte("meta: {}"), "abc123", "usstock-1min_2024-03-05")
	require.NoError(t, err)

	return NewBacktestRun(snapshot, &backtest.Result{
		Config:      backtest.Config{InitialCapital: 100_000, CommissionPerShare: 0.005, SlippageBps: 3},
		StartDate:   day,
		EndDate:     day.AddDate(0, 0, 1),
		TotalReturn: -0.0018,
		SharpeRatio: -1.2,
		MaxDrawdown: 0.004,
		Trades:      testTrades(),
	})
}

func TestNewBacktestRun(t *testing.T) {
	run := testRun(t)

	assert.Len(t, run.RunID, 36)
	assert.Equal(t, "trend-day", run.Snapshot.StrategyID)
	assert.Equal(t, -1.2, run.Sharpe)
	assert.Equal(t, 4, run.TradeStats.Trades)
	assert.Len(t, run.Attribution, 3)
	assert.False(t, run.CreatedAt.IsZero())
}

// audit.backtest_runs 스키마가 있는 DB가 필요
func TestRepository_BacktestRuns(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" || testing.Short() {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool)
	run := testRun(t)
	require.NoError(t, repo.SaveBacktestRun(ctx, run))

	got, err := repo.GetBacktestRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.Snapshot.ConfigHash, got.Snapshot.ConfigHash)
	assert.Len(t, got.Attribution, 3)

	runs, err := repo.ListBacktestRuns(ctx, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, runs)

	_, err = repo.GetBacktestRun(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
