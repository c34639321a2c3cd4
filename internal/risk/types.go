package risk

// VaRResult VaR 계산 결과
// ⭐ SSOT: VaR/CVaR는 손실을 양수로 표현
// - VaR=0.05 → 95% 신뢰수준에서 세션 최대 5% 손실 가능
// - CVaR=0.07 → 5% tail에서 평균 7% 손실 예상
type VaRResult struct {
	Confidence float64 `json:"confidence"` // 신뢰수준 (예: 0.95, 0.99)
	VaR        float64 `json:"var"`        // Value at Risk (손실, 양수)
	CVaR       float64 `json:"cvar"`       // Conditional VaR (Expected Shortfall, 양수)
}

// Report summarises the distribution of session net returns
type Report struct {
	Sessions       int         `json:"sessions"`
	ActiveSessions int         `json:"active_sessions"` // 수익률 ≠ 0 세션
	Mean           float64     `json:"mean"`
	StdDev         float64     `json:"std_dev"`
	Best           float64     `json:"best"`
	Worst          float64     `json:"worst"`
	Historical     []VaRResult `json:"historical"`
	Parametric     []VaRResult `json:"parametric"`
}

// DefaultConfidenceLevels 기본 신뢰수준
var DefaultConfidenceLevels = []float64{0.95, 0.99}
