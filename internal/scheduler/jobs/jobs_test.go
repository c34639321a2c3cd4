package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/trendday/internal/contracts"
	"github.com/wonny/trendday/internal/trendday"
	"github.com/wonny/trendday/pkg/database"
	"github.com/wonny/trendday/pkg/logger"
)

type fakeRunner struct {
	at  time.Time
	err error
}

func (f *fakeRunner) Run(_ context.Context, at time.Time) (*trendday.TradeResult, error) {
	f.at = at
	if f.err != nil {
		return nil, f.err
	}
	return &trendday.TradeResult{
		Session: time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC),
		Orders:  []contracts.Order{{Symbol: "TQQQ"}, {Symbol: "TQQQ"}},
		Saved:   true,
	}, nil
}

func TestTradeJob(t *testing.T) {
	runner := &fakeRunner{}
	job := NewTradeJob(runner, "America/New_York", logger.NewNop())
	fixed := time.Date(2024, 3, 5, 19, 1, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	assert.Equal(t, "trend_day_trade", job.Name())
	assert.Equal(t, "CRON_TZ=America/New_York 0 1 14 * * MON-FRI", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, fixed, runner.at)
}

func TestTradeJob_Error(t *testing.T) {
	job := NewTradeJob(&fakeRunner{err: errors.New("no prices")}, "America/New_York", logger.NewNop())
	assert.ErrorContains(t, job.Run(context.Background()), "no prices")
}

type fakeChecker struct {
	err error
}

func (f *fakeChecker) HealthCheck(_ context.Context) (*database.HealthStatus, error) {
	if f.err != nil {
		return &database.HealthStatus{Error: f.err.Error()}, f.err
	}
	return &database.HealthStatus{Healthy: true, TotalConns: 2}, nil
}

func TestDBHealthJob(t *testing.T) {
	job := NewDBHealthJob(&fakeChecker{}, logger.NewNop())
	assert.Equal(t, "db_health_check", job.Name())
	assert.NoError(t, job.Run(context.Background()))

	failing := NewDBHealthJob(&fakeChecker{err: errors.New("connection refused")}, logger.NewNop())
	assert.Error(t, failing.Run(context.Background()))
}
