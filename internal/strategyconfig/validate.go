package strategyconfig

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var hhmmss = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}
	if _, err := time.LoadLocation(cfg.Meta.Timezone); err != nil || cfg.Meta.Timezone == "" {
		return ValidationError{"meta.timezone", "must be an IANA time zone"}
	}

	// === Data ===
	if cfg.Data.DB == "" {
		return ValidationError{"data.db", "required"}
	}
	if cfg.Data.Universe == "" {
		return ValidationError{"data.universe", "required"}
	}
	if len(cfg.Data.Times) == 0 {
		return ValidationError{"data.times", "must not be empty"}
	}
	for i, t := range cfg.Data.Times {
		if err := validateHHMMSS(t); err != nil {
			return ValidationError{fmt.Sprintf("data.times[%d]", i), err.Error()}
		}
	}
	if err := validateFields(cfg.Data.Fields); err != nil {
		return ValidationError{"data.fields", err.Error()}
	}
	if !contains(cfg.Data.Times, cfg.Data.EntryTime) {
		return ValidationError{"data.entry_time", "must be one of data.times"}
	}
	if !contains(cfg.Data.Times, cfg.Data.CloseTime) {
		return ValidationError{"data.close_time", "must be one of data.times"}
	}

	// entry < close
	entry, _ := time.Parse("15:04:05", cfg.Data.EntryTime)
	closeAt, _ := time.Parse("15:04:05", cfg.Data.CloseTime)
	if !entry.Before(closeAt) {
		return ValidationError{"data", "entry_time must be before close_time"}
	}

	// === Signal ===
	if cfg.Signal.MinPctChange <= 0 || cfg.Signal.MinPctChange >= 1 {
		return ValidationError{"signal.min_pct_change", "must be in (0, 1)"}
	}

	// === Allocation ===
	if err := validatePctRange(cfg.Allocation.Weight, "allocation.weight"); err != nil {
		return err
	}
	if cfg.Allocation.Weight == 0 {
		return ValidationError{"allocation.weight", "must be > 0"}
	}
	if cfg.Allocation.Cap <= 0 {
		return ValidationError{"allocation.cap", "must be > 0"}
	}
	if cfg.Allocation.Weight > cfg.Allocation.Cap {
		return ValidationError{"allocation", "weight must be <= cap"}
	}

	// === Orders ===
	if cfg.Orders.Exchange == "" {
		return ValidationError{"orders.exchange", "required"}
	}
	if !oneOf(cfg.Orders.EntryType, "MKT", "LMT") {
		return ValidationError{"orders.entry_type", "must be MKT or LMT"}
	}
	if !oneOf(cfg.Orders.ExitType, "MOC", "MKT") {
		return ValidationError{"orders.exit_type", "must be MOC or MKT"}
	}
	if !oneOf(cfg.Orders.Tif, "DAY", "GTC") {
		return ValidationError{"orders.tif", "must be DAY or GTC"}
	}

	// === BacktestCosts ===
	if cfg.Costs.CommissionPerShare < 0 {
		return ValidationError{"backtest_costs.commission_per_share", "must be >= 0"}
	}
	if cfg.Costs.SlippageBps < 0 {
		return ValidationError{"backtest_costs.slippage_bps", "must be >= 0"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 임계값이 낮으면 일반적인 변동에도 신호 발생
	if cfg.Signal.MinPctChange < 0.03 {
		warnings = append(warnings, Warning{
			Code:    "LOW_THRESHOLD",
			Message: "min_pct_change < 3%: 추세일이 아닌 날에도 진입할 수 있음",
		})
	}

	// cap > 1 → 레버리지
	if cfg.Allocation.Cap > 1.0 {
		warnings = append(warnings, Warning{
			Code:    "LEVERAGED_CAP",
			Message: "allocation.cap > 1.0: 총 비중이 순자산을 초과할 수 있음",
		})
	}

	// 비용 0 → 낙관적 백테스트
	if cfg.Costs.CommissionPerShare == 0 && cfg.Costs.SlippageBps == 0 {
		warnings = append(warnings, Warning{
			Code:    "ZERO_COSTS",
			Message: "commission/slippage 모두 0: 백테스트 결과가 낙관적임",
		})
	}

	if cfg.Orders.ExitType != "MOC" {
		warnings = append(warnings, Warning{
			Code:    "NON_MOC_EXIT",
			Message: "exit_type != MOC: 백테스트 종가 가정과 실제 청산가가 다를 수 있음",
		})
	}

	return warnings
}

// === Helper Functions ===

func validateHHMMSS(s string) error {
	if !hhmmss.MatchString(s) {
		return errors.New("must be HH:MM:SS format")
	}
	_, err := time.Parse("15:04:05", s)
	return err
}

func validateFields(fields []string) error {
	if len(fields) == 0 {
		return errors.New("must not be empty")
	}
	for _, f := range fields {
		if !oneOf(f, "Open", "High", "Low", "Close", "Volume") {
			return fmt.Errorf("unknown field %q", f)
		}
	}
	if !contains(fields, "Open") || !contains(fields, "Close") {
		return errors.New("must include Open and Close")
	}
	return nil
}

// validatePctRange는 퍼센트 값이 0~1 범위인지 검증
func validatePctRange(pct float64, field string) error {
	if pct < 0 || pct > 1 {
		return ValidationError{field, "must be in range [0, 1]"}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func oneOf(s string, options ...string) bool {
	return contains(options, s)
}
