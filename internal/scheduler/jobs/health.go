package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/trendday/pkg/database"
	"github.com/wonny/trendday/pkg/logger"
)

// HealthChecker reports database health
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// DBHealthJob logs connection pool health
type DBHealthJob struct {
	db     HealthChecker
	logger *logger.Logger
}

// NewDBHealthJob creates a new database health job
func NewDBHealthJob(db HealthChecker, log *logger.Logger) *DBHealthJob {
	return &DBHealthJob{
		db:     db,
		logger: log,
	}
}

// Name returns the job name
func (j *DBHealthJob) Name() string {
	return "db_health_check"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *DBHealthJob) Schedule() string {
	return "0 */5 * * * *" // Every 5 minutes
}

// Run checks the pool
func (j *DBHealthJob) Run(ctx context.Context) error {
	status, err := j.db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"response_time": status.ResponseTime,
		"acquired":      status.AcquiredConns,
		"idle":          status.IdleConns,
		"total":         status.TotalConns,
	}).Debug("Database healthy")

	return nil
}
