package risk

import (
	"math"
	"sort"
)

// sessionReturns is a sorted (ascending, worst first) series of session net returns
type sessionReturns []float64

func newSessionReturns(returns []float64) sessionReturns {
	s := make(sessionReturns, 0, len(returns))
	for _, r := range returns {
		if !math.IsNaN(r) {
			s = append(s, r)
		}
	}
	sort.Float64s(s)
	return s
}

// tailSize is the number of worst sessions inside the (1-confidence) tail, at least one
func (s sessionReturns) tailSize(confidence float64) int {
	n := int(math.Floor((1-confidence)*float64(len(s)))) + 1
	if n > len(s) {
		n = len(s)
	}
	return n
}

// historical reads VaR off the tail's best session and CVaR as the tail's mean loss
func (s sessionReturns) historical(confidence float64) VaRResult {
	res := VaRResult{Confidence: confidence}
	if len(s) == 0 {
		return res
	}

	tail := s[:s.tailSize(confidence)]
	var sum float64
	for _, r := range tail {
		sum += r
	}
	res.VaR = asLoss(tail[len(tail)-1])
	res.CVaR = asLoss(sum / float64(len(tail)))
	return res
}

// moments returns the mean and sample standard deviation (Welford)
func (s sessionReturns) moments() (mean, stdDev float64) {
	var m2 float64
	for i, r := range s {
		delta := r - mean
		mean += delta / float64(i+1)
		m2 += delta * (r - mean)
	}
	if len(s) < 2 {
		return mean, 0
	}
	return mean, math.Sqrt(m2 / float64(len(s)-1))
}

// parametric assumes normally distributed session returns
func parametric(mean, stdDev, confidence float64) VaRResult {
	z := zScore(confidence)
	return VaRResult{
		Confidence: confidence,
		VaR:        math.Max(0, -mean+z*stdDev),
		CVaR:       math.Max(0, -mean+stdDev*normPDF(z)/(1-confidence)),
	}
}

// zScore is the standard normal quantile; 0 outside (0, 1)
func zScore(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

// asLoss flips a return into a non-negative loss
func asLoss(r float64) float64 {
	if r < 0 {
		return -r
	}
	return 0
}
