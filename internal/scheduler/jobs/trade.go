package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/trendday/internal/contracts"
	"github.com/wonny/trendday/internal/trendday"
	"github.com/wonny/trendday/pkg/logger"
)

// TradeRunner runs the trade pipeline for the session containing at
type TradeRunner interface {
	Run(ctx context.Context, at time.Time) (*trendday.TradeResult, error)
}

// TradeJob creates and saves the session's entry and exit orders at 14:01
type TradeJob struct {
	runner   TradeRunner
	timezone string
	logger   *logger.Logger
	now      func() time.Time
}

// NewTradeJob creates a new trade job
func NewTradeJob(runner TradeRunner, timezone string, log *logger.Logger) *TradeJob {
	return &TradeJob{
		runner:   runner,
		timezone: timezone,
		logger:   log,
		now:      time.Now,
	}
}

// Name returns the job name
func (j *TradeJob) Name() string {
	return "trend_day_trade"
}

// Schedule returns the cron schedule (weekdays 14:01 exchange time)
func (j *TradeJob) Schedule() string {
	return fmt.Sprintf("CRON_TZ=%s 0 1 14 * * MON-FRI", j.timezone)
}

// Run executes the trade pipeline
func (j *TradeJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled trade run")

	result, err := j.runner.Run(ctx, j.now())
	if err != nil {
		return fmt.Errorf("trade run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"session": contracts.SessionKey(result.Session),
		"orders":  len(result.Orders),
		"saved":   result.Saved,
		"skipped": result.AlreadySaved,
	}).Info("Scheduled trade run completed")

	return nil
}
