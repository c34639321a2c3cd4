package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/wonny/trendday/internal/api"
	"github.com/wonny/trendday/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `읽기 전용 REST API 서버를 시작합니다.

Endpoints:
  GET  /health                  - Health check
  GET  /api/strategy            - 전략 설정과 해시
  GET  /api/signals?date=       - 세션 시그널/주문 계획 (저장 안 함)
  POST /api/backtest            - 백테스트 실행

Example:
  go run ./cmd/trendday api
  go run ./cmd/trendday api --port 8080
  go run ./cmd/trendday api --bars testdata/bars.json`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Trend-day API Server ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	var health handlers.HealthChecker
	if a.db != nil {
		health = a.db
	}

	router := api.NewRouter(api.Handlers{
		Health:   handlers.NewHealthHandler(health, a.log),
		Strategy: handlers.NewStrategyHandler(a.strategyConfig, a.params, a.runner(nil), a.loc, a.log),
		Backtest: handlers.NewBacktestHandler(a.strategy, a.loader, a.cfg.Strategy.LookbackDays, a.log),
	}, rate.NewLimiter(rate.Limit(a.cfg.API.RateLimit), a.cfg.API.RateBurst), a.log)

	server := api.New(a.cfg, a.log, router)

	// Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	a.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
