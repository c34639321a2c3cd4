package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRunNotFound is returned when a backtest run id is unknown
var ErrRunNotFound = errors.New("backtest run not found")

// Repository handles audit data persistence
// ⭐ SSOT: Audit 데이터 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveBacktestRun saves a backtest run to database
func (r *Repository) SaveBacktestRun(ctx context.Context, run *BacktestRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	var configHash, strategyID string
	if run.Snapshot != nil {
		configHash = run.Snapshot.ConfigHash
		strategyID = run.Snapshot.StrategyID
	}

	query := `
		INSERT INTO audit.backtest_runs (
			run_id, strategy_id, config_hash, period_start, period_end,
			total_return, sharpe_ratio, max_drawdown, report_data, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.pool.Exec(ctx, query,
		run.RunID, strategyID, configHash, run.StartDate, run.EndDate,
		run.TotalReturn, run.Sharpe, run.MaxDrawdown, data, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest run: %w", err)
	}

	return nil
}

// GetBacktestRun retrieves a run by id
func (r *Repository) GetBacktestRun(ctx context.Context, runID string) (*BacktestRun, error) {
	query := `
		SELECT report_data
		FROM audit.backtest_runs
		WHERE run_id = $1
	`

	var data []byte
	err := r.pool.QueryRow(ctx, query, runID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get backtest run: %w", err)
	}

	var run BacktestRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}

	return &run, nil
}

// ListBacktestRuns returns the latest runs, newest first
func (r *Repository) ListBacktestRuns(ctx context.Context, limit int) ([]BacktestRun, error) {
	query := `
		SELECT report_data
		FROM audit.backtest_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest runs: %w", err)
	}
	defer rows.Close()

	runs := make([]BacktestRun, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan backtest run: %w", err)
		}

		var run BacktestRun
		if err := json.Unmarshal(data, &run); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
