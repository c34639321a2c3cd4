package marketdata

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/trendday/internal/contracts"
	"github.com/wonny/trendday/pkg/config"
	"github.com/wonny/trendday/pkg/logger"
	"github.com/wonny/trendday/pkg/redis"
)

var (
	mon = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	tue = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
)

func testQuery() contracts.PriceQuery {
	return contracts.PriceQuery{
		DB:       "usstock-1min",
		Universe: "leveraged-etf",
		Times:    []string{"14:00:00", "15:59:00"},
		Fields:   []contracts.Field{contracts.FieldOpen, contracts.FieldClose},
		From:     mon,
		To:       tue,
	}
}

func testBars() []contracts.Bar {
	return []contracts.Bar{
		{Symbol: "TQQQ", Session: mon, Clock: "15:59:00", Open: 99.9, Close: 100},
		{Symbol: "TQQQ", Session: mon, Clock: "12:00:00", Open: 90, Close: 90},
		{Symbol: "TQQQ", Session: tue, Clock: "14:00:00", Open: 106.5, Close: 106.4},
		{Symbol: "SQQQ", Session: tue, Clock: "14:00:00", Open: 9.8, Close: 9.8},
		{Symbol: "SQQQ", Session: tue.AddDate(0, 0, 1), Clock: "14:00:00", Open: 9, Close: 9},
	}
}

func TestSplitBarTime(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2024-03-08 (EST, UTC-5) and 2024-03-11 (EDT, UTC-4)
	session, clock := SplitBarTime(time.Date(2024, 3, 8, 19, 0, 0, 0, time.UTC), ny)
	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), session)
	assert.Equal(t, "14:00:00", clock)

	session, clock = SplitBarTime(time.Date(2024, 3, 11, 18, 0, 0, 0, time.UTC), ny)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), session)
	assert.Equal(t, "14:00:00", clock)
}

func TestSessionBounds(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	start, end := SessionBounds(mon, tue, ny)
	assert.Equal(t, time.Date(2024, 3, 4, 5, 0, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, time.Date(2024, 3, 6, 5, 0, 0, 0, time.UTC), end.UTC())
}

func TestPriceKey(t *testing.T) {
	assert.Equal(t,
		"prices:usstock-1min:leveraged-etf:2024-03-04:2024-03-05:14:00:00,15:59:00:Open,Close",
		PriceKey(testQuery()))
}

func TestFileLoader(t *testing.T) {
	data, err := json.Marshal(testBars())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "bars.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loader, err := NewFileLoader(path)
	require.NoError(t, err)

	symbols, err := loader.UniverseSymbols(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, []string{"SQQQ", "TQQQ"}, symbols)

	table, err := loader.LoadPrices(context.Background(), testQuery())
	require.NoError(t, err)

	assert.Equal(t, []time.Time{mon, tue}, table.Sessions, "sessions outside the range are dropped")
	closes := table.XS(contracts.FieldClose, "15:59:00")
	assert.Equal(t, 100.0, closes.Get(mon, "TQQQ"))
	assert.True(t, math.IsNaN(closes.Get(mon, "SQQQ")))
	assert.False(t, table.Has(contracts.FieldClose, "12:00:00"), "unrequested times are dropped")
	assert.Equal(t, 106.5, table.XS(contracts.FieldOpen, "14:00:00").Get(tue, "TQQQ"))
}

func TestNewFileLoader_Errors(t *testing.T) {
	_, err := NewFileLoader(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"symbol":"TQQQ","clock":"2pm"}]`), 0o644))
	_, err = NewFileLoader(path)
	assert.Error(t, err)
}

type countingSource struct {
	Source
	priceCalls    int
	universeCalls int
}

func (c *countingSource) LoadPrices(ctx context.Context, q contracts.PriceQuery) (*contracts.PriceTable, error) {
	c.priceCalls++
	return c.Source.LoadPrices(ctx, q)
}

func (c *countingSource) UniverseSymbols(ctx context.Context, universe string) ([]string, error) {
	c.universeCalls++
	return c.Source.UniverseSymbols(ctx, universe)
}

func TestCachedRepository_Disabled(t *testing.T) {
	client, err := redis.New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)

	source := &countingSource{Source: NewMemoryLoader(testBars())}
	cached := NewCachedRepository(source, redis.NewCache(client, "trendday"), time.UTC, logger.NewNop())

	for i := 0; i < 2; i++ {
		table, err := cached.LoadPrices(context.Background(), testQuery())
		require.NoError(t, err)
		assert.Len(t, table.Sessions, 2)
	}
	assert.Equal(t, 2, source.priceCalls, "disabled cache always reaches the source")

	_, err = cached.UniverseSymbols(context.Background(), "leveraged-etf")
	require.NoError(t, err)
	assert.Equal(t, 1, source.universeCalls)
}

func TestCachedRepository_TTL(t *testing.T) {
	cached := NewCachedRepository(nil, nil, time.UTC, logger.NewNop())
	cached.now = func() time.Time { return tue.Add(15 * time.Hour) }

	q := testQuery()
	assert.Equal(t, redis.TTLShort, cached.ttl(q))

	q.To = mon
	assert.Equal(t, redis.TTLDaily, cached.ttl(q))
}

func TestCachedRepository_RoundTrip(t *testing.T) {
	if os.Getenv("REDIS_HOST") == "" {
		t.Skip("REDIS_HOST not set, skipping integration test")
	}

	client, err := redis.New(&config.Config{Redis: config.RedisConfig{
		Host:    os.Getenv("REDIS_HOST"),
		Port:    "6379",
		Enabled: true,
	}})
	require.NoError(t, err)
	defer client.Close()

	cache := redis.NewCache(client, "trendday-test")
	source := &countingSource{Source: NewMemoryLoader(testBars())}
	cached := NewCachedRepository(source, cache, time.UTC, logger.NewNop())
	ctx := context.Background()
	defer cache.Delete(ctx, PriceKey(testQuery()))

	first, err := cached.LoadPrices(ctx, testQuery())
	require.NoError(t, err)
	second, err := cached.LoadPrices(ctx, testQuery())
	require.NoError(t, err)

	assert.Equal(t, 1, source.priceCalls)
	assert.True(t, first.XS(contracts.FieldClose, "15:59:00").Equal(second.XS(contracts.FieldClose, "15:59:00"), 0))
}

func TestRepository_LoadPrices(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" || testing.Short() {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	repo := NewRepository(pool, ny)

	symbols, err := repo.UniverseSymbols(ctx, "leveraged-etf")
	require.NoError(t, err)
	if len(symbols) == 0 {
		t.Skip("universe leveraged-etf not loaded")
	}

	table, err := repo.LoadPrices(ctx, testQuery())
	require.NoError(t, err)
	assert.Equal(t, symbols, table.Symbols)
}

func TestCheckQuality(t *testing.T) {
	table := contracts.BuildPriceTable(testBars(), []contracts.Field{contracts.FieldOpen, contracts.FieldClose})
	reqs := []Requirement{
		{Field: contracts.FieldOpen, Clock: "14:00:00"},
		{Field: contracts.FieldClose, Clock: "15:59:00"},
	}

	report := CheckQuality(table, reqs, QualityConfig{MinCoverage: 0.5})

	// sessions: mon, tue, wed / symbols: SQQQ, TQQQ
	assert.Equal(t, 3, report.Sessions)
	assert.Equal(t, 2, report.Symbols)
	assert.InDelta(t, 3.0/6, report.Coverage["Open@14:00:00"], 1e-12)
	assert.InDelta(t, 1.0/6, report.Coverage["Close@15:59:00"], 1e-12)
	assert.InDelta(t, (3.0/6+1.0/6)/2, report.Score, 1e-12)
	assert.False(t, report.Passed)
	assert.Len(t, report.Missing, 3+5)

	first := report.Missing[0]
	assert.Equal(t, mon, first.Session)
	assert.Equal(t, "SQQQ", first.Symbol)
	assert.Equal(t, "Close@15:59:00", first.Key)

	loose := CheckQuality(table, reqs[:1], QualityConfig{MinCoverage: 0.5})
	assert.True(t, loose.Passed)
}

func TestCheckQuality_Empty(t *testing.T) {
	table := contracts.NewPriceTable(nil, nil)
	report := CheckQuality(table, []Requirement{{Field: contracts.FieldOpen, Clock: "14:00:00"}}, QualityConfig{MinCoverage: 1})
	assert.False(t, report.Passed)
	assert.Empty(t, report.Coverage)
}

func TestCheckQuality_PriorOnly(t *testing.T) {
	table := contracts.BuildPriceTable(testBars(), []contracts.Field{contracts.FieldOpen, contracts.FieldClose})
	req := Requirement{Field: contracts.FieldClose, Clock: "15:59:00", PriorOnly: true}

	// wed 제외: mon, tue × SQQQ, TQQQ
	report := CheckQuality(table, []Requirement{req}, QualityConfig{MinCoverage: 0.25})
	assert.InDelta(t, 1.0/4, report.Coverage["Close@15:59:00"], 1e-12)
	assert.Len(t, report.Missing, 3)
	assert.True(t, report.Passed)
	for _, m := range report.Missing {
		assert.NotEqual(t, "2024-03-06", contracts.SessionKey(m.Session))
	}

	single := contracts.NewPriceTable([]time.Time{mon}, []string{"TQQQ"})
	report = CheckQuality(single, []Requirement{req}, QualityConfig{MinCoverage: 1})
	assert.True(t, report.Passed)
	assert.Equal(t, 1.0, report.Coverage["Close@15:59:00"])
}
