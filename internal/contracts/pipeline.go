package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그와 결과에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   prices → signals → target weights → positions → gross returns
//   order stubs → orders

// Stage represents a pipeline stage
type Stage string

const (
	// StagePrices: 가격 테이블 로드
	StagePrices Stage = "PRICES"

	// StageSignals: 전일 종가 대비 14:00 등락률 → {-1, 0, +1}
	StageSignals Stage = "SIGNALS"

	// StageTargetWeights: 고정 비중 + 총 비중 상한
	StageTargetWeights Stage = "TARGET_WEIGHTS"

	// StagePositions: 목표 비중 = 당일 포지션
	StagePositions Stage = "POSITIONS"

	// StageGrossReturns: 14:01 진입 → 종가 청산 수익률
	StageGrossReturns Stage = "GROSS_RETURNS"

	// StageOrders: 진입(MKT) + 청산(MOC) 주문
	StageOrders Stage = "ORDERS"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StagePrices,
		StageSignals,
		StageTargetWeights,
		StagePositions,
		StageGrossReturns,
		StageOrders,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// PipelineResult represents the result of one stage
type PipelineResult struct {
	Stage       Stage                  `json:"stage"`
	Success     bool                   `json:"success"`
	OutputCount int                    `json:"output_count"`
	Duration    int64                  `json:"duration_ms"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
