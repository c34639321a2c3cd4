package main

import (
	"os"

	"github.com/wonny/trendday/cmd/trendday/commands"
)

// main is the entry point for the trend-day CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/trendday [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
