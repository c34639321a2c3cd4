package strategyconfig

import "time"

// Config는 trend-day 전략의 전체 설정
// ⭐ SSOT: 전략 상수는 이 구조체에서만 정의
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Data       Data       `yaml:"data" json:"data"`
	Signal     Signal     `yaml:"signal" json:"signal"`
	Allocation Allocation `yaml:"allocation" json:"allocation"`
	Orders     Orders     `yaml:"orders" json:"orders"`
	Costs      Costs      `yaml:"backtest_costs" json:"backtest_costs"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"` // 주문 OrderRef로 사용
	Version    string `yaml:"version" json:"version"`
	Timezone   string `yaml:"timezone" json:"timezone"`
}

// Data 가격 테이블 조회 설정
type Data struct {
	DB        string   `yaml:"db" json:"db"`
	Universe  string   `yaml:"universe" json:"universe"`
	Times     []string `yaml:"times" json:"times"`   // HH:MM:SS
	Fields    []string `yaml:"fields" json:"fields"` // Open, Close
	EntryTime string   `yaml:"entry_time" json:"entry_time"`
	CloseTime string   `yaml:"close_time" json:"close_time"`
}

// Signal 신호 생성
type Signal struct {
	MinPctChange float64 `yaml:"min_pct_change" json:"min_pct_change"` // 0.06 = 6%
}

// Allocation 비중 배분
type Allocation struct {
	Weight float64 `yaml:"weight" json:"weight"` // 신호당 고정 비중
	Cap    float64 `yaml:"cap" json:"cap"`       // 세션별 총 비중 상한
}

// Orders 주문 라우팅
type Orders struct {
	Exchange  string `yaml:"exchange" json:"exchange"`
	EntryType string `yaml:"entry_type" json:"entry_type"` // MKT
	ExitType  string `yaml:"exit_type" json:"exit_type"`   // MOC
	Tif       string `yaml:"tif" json:"tif"`
}

// Costs 백테스트 비용
type Costs struct {
	CommissionPerShare float64 `yaml:"commission_per_share" json:"commission_per_share"` // USD
	SlippageBps        float64 `yaml:"slippage_bps" json:"slippage_bps"`
}

// Default returns the built-in trend-day configuration
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "trend-day",
			Version:    "1.0.0",
			Timezone:   "America/New_York",
		},
		Data: Data{
			DB:        "usstock-1min",
			Universe:  "leveraged-etf",
			Times:     []string{"14:00:00", "15:59:00"},
			Fields:    []string{"Open", "Close"},
			EntryTime: "14:00:00",
			CloseTime: "15:59:00",
		},
		Signal: Signal{
			MinPctChange: 0.06,
		},
		Allocation: Allocation{
			Weight: 0.20,
			Cap:    1.00,
		},
		Orders: Orders{
			Exchange:  "SMART",
			EntryType: "MKT",
			ExitType:  "MOC",
			Tif:       "DAY",
		},
		Costs: Costs{
			CommissionPerShare: 0.005,
			SlippageBps:        3,
		},
	}
}

// DecisionSnapshot 의사결정 스냅샷 (재현성용)
type DecisionSnapshot struct {
	ConfigHash     string    `json:"config_hash"`
	ConfigYAML     string    `json:"config_yaml"`
	StrategyID     string    `json:"strategy_id"`
	GitCommit      string    `json:"git_commit"`
	DataSnapshotID string    `json:"data_snapshot_id"`
	CreatedAt      time.Time `json:"created_at"`
}
