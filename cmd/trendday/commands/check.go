package commands

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/trendday/pkg/config"
	"github.com/wonny/trendday/pkg/database"
	"github.com/wonny/trendday/pkg/logger"
	"github.com/wonny/trendday/pkg/redis"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "PostgreSQL / Redis 연결 점검",
	Long: `데이터베이스와 캐시 연결을 점검하고 풀 통계를 표시합니다.

이 명령어는:
- config에서 DATABASE_URL, REDIS_* 로드
- 데이터베이스 Health Check 실행
- Connection Pool 통계 표시
- REDIS_ENABLED=true 이면 Redis Ping

Example:
  go run ./cmd/trendday check`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Trend-day Connection Check ===")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		return fmt.Errorf("❌ %w", err)
	}
	log := logger.New(cfg)

	fmt.Printf("✅ Config loaded (ENV: %s)\n", cfg.Env)
	fmt.Printf("   Database URL: %s\n\n", maskPassword(cfg.Database.URL))

	// Create database connection
	fmt.Println("Connecting to database...")
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}

	fmt.Println("✅ Health Check Results:")
	fmt.Printf("   Healthy: %v\n", status.Healthy)
	fmt.Printf("   Response Time: %v\n", status.ResponseTime)
	fmt.Printf("   Timestamp: %v\n\n", status.Timestamp.Format(time.RFC3339))

	fmt.Println("📊 Connection Pool Statistics:")
	fmt.Printf("   Max Connections: %d\n", status.MaxConns)
	fmt.Printf("   Total Connections: %d\n", status.TotalConns)
	fmt.Printf("   Acquired Connections: %d\n", status.AcquiredConns)
	fmt.Printf("   Idle Connections: %d\n\n", status.IdleConns)

	if !cfg.Redis.Enabled {
		PrintInfo("Redis disabled (REDIS_ENABLED=false)")
	} else {
		rdb, err := redis.New(cfg)
		if err != nil {
			return fmt.Errorf("❌ %w", err)
		}
		defer rdb.Close()
		log.WithField("addr", cfg.Redis.Host+":"+cfg.Redis.Port).Debug("Redis connected")
		PrintSuccess(fmt.Sprintf("Redis ping successful (%s:%s)", cfg.Redis.Host, cfg.Redis.Port))
	}

	fmt.Println("\n✅ All checks passed!")
	return nil
}

// maskPassword hides the password part of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	pw, ok := u.User.Password()
	if !ok || pw == "" {
		return raw
	}
	return strings.Replace(raw, ":"+pw+"@", ":****@", 1)
}
