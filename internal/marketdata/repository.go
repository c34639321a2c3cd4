package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/trendday/internal/contracts"
)

// Source loads price tables and universe membership
type Source interface {
	contracts.PriceLoader
	UniverseSymbols(ctx context.Context, universe string) ([]string, error)
}

// Repository reads 1-minute bars from PostgreSQL
// ⭐ SSOT: 분봉/유니버스 조회는 여기서만 (읽기 전용)
type Repository struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

var _ Source = (*Repository)(nil)

// NewRepository creates a new market data repository.
// loc is the exchange time zone used for sessions and bar clocks.
func NewRepository(pool *pgxpool.Pool, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.UTC
	}
	return &Repository{pool: pool, loc: loc}
}

// UniverseSymbols returns the members of a universe, sorted
func (r *Repository) UniverseSymbols(ctx context.Context, universe string) ([]string, error) {
	query := `
		SELECT symbol
		FROM data.universe_members
		WHERE universe = $1
		ORDER BY symbol ASC
	`

	rows, err := r.pool.Query(ctx, query, universe)
	if err != nil {
		return nil, fmt.Errorf("failed to query universe: %w", err)
	}
	defer rows.Close()

	symbols := make([]string, 0)
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, sym)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return symbols, nil
}

// LoadPrices reads the bars at q.Times for sessions q.From..q.To (inclusive)
func (r *Repository) LoadPrices(ctx context.Context, q contracts.PriceQuery) (*contracts.PriceTable, error) {
	symbols, err := r.UniverseSymbols(ctx, q.Universe)
	if err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("universe %q has no members", q.Universe)
	}

	start, end := SessionBounds(q.From, q.To, r.loc)

	query := `
		SELECT symbol, bar_time,
		       open::float8, high::float8, low::float8, close::float8, volume::float8
		FROM data.minute_bars
		WHERE db = $1
		  AND symbol = ANY($2)
		  AND bar_time >= $3 AND bar_time < $4
		  AND to_char(bar_time AT TIME ZONE $5, 'HH24:MI:SS') = ANY($6)
		ORDER BY bar_time ASC, symbol ASC
	`

	rows, err := r.pool.Query(ctx, query, q.DB, symbols, start, end, r.loc.String(), q.Times)
	if err != nil {
		return nil, fmt.Errorf("failed to query minute bars: %w", err)
	}
	defer rows.Close()

	bars := make([]contracts.Bar, 0)
	for rows.Next() {
		var (
			b       contracts.Bar
			barTime time.Time
		)
		if err := rows.Scan(&b.Symbol, &barTime, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}
		b.Session, b.Clock = SplitBarTime(barTime, r.loc)
		bars = append(bars, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return contracts.BuildPriceTable(bars, q.Fields, symbols...), nil
}

// SessionBounds returns [from 00:00, to+1 00:00) in loc for session labels from and to
func SessionBounds(from, to time.Time, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	return start, end
}

// SplitBarTime converts a bar timestamp to its session label and HH:MM:SS clock in loc
func SplitBarTime(t time.Time, loc *time.Location) (time.Time, string) {
	local := t.In(loc)
	session := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return session, local.Format(contracts.ClockLayout)
}
