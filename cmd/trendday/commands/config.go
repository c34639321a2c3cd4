package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/trendday/internal/strategyconfig"
	"github.com/wonny/trendday/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "전략 설정 조회/검증",
	Long: `전략 YAML 설정을 조회하거나 검증합니다.

Subcommands:
  show      - 적용될 설정과 해시 출력
  validate  - YAML 파일 검증 (오류/경고)

Example:
  go run ./cmd/trendday config show
  go run ./cmd/trendday config validate config/strategy/trend_day.yaml`,
}

var (
	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "적용될 전략 설정 출력",
		RunE:  runConfigShow,
	}

	configValidateCmd = &cobra.Command{
		Use:   "validate [path]",
		Short: "전략 YAML 검증",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigValidate,
	}
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path := strategyFile
	if path == "" {
		appCfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		path = appCfg.Strategy.ConfigPath
	}

	cfg, _, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return err
	}
	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "(built-in default)"
	}
	PrintHeader("Strategy Config", [2]string{"Source", source}, [2]string{"Hash", hash[:16]})

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	PrintSeparator()

	printWarnings(strategyconfig.Warn(cfg))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := strategyFile
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("path required (argument or --strategy)")
	}

	cfg, _, err := strategyconfig.Load(path)
	if err != nil {
		return fmt.Errorf("❌ %s: %w", path, err)
	}

	PrintSuccess(fmt.Sprintf("%s is valid (strategy %s v%s)", path, cfg.Meta.StrategyID, cfg.Meta.Version))
	printWarnings(strategyconfig.Warn(cfg))
	return nil
}

func printWarnings(warnings []strategyconfig.Warning) {
	for _, w := range warnings {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
}
