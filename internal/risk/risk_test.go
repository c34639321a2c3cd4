package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionReturns_Historical(t *testing.T) {
	// -0.10 ~ +0.09, 20개
	returns := make([]float64, 20)
	for i := range returns {
		returns[len(returns)-1-i] = float64(i-10) / 100
	}

	sessions := newSessionReturns(returns)
	assert.Equal(t, 2, sessions.tailSize(0.95)) // floor(0.05 × 20) + 1

	res := sessions.historical(0.95)
	assert.InDelta(t, 0.09, res.VaR, 1e-12)
	// tail = {-0.10, -0.09}
	assert.InDelta(t, 0.095, res.CVaR, 1e-12)
	assert.Equal(t, 0.95, res.Confidence)

	// 입력 순서 유지
	assert.Equal(t, 0.09, returns[0])
}

func TestSessionReturns_NoLoss(t *testing.T) {
	res := newSessionReturns([]float64{0.01, 0.02, 0.03}).historical(0.95)
	assert.Zero(t, res.VaR)
	assert.Zero(t, res.CVaR)

	empty := newSessionReturns(nil).historical(0.99)
	assert.Zero(t, empty.VaR)

	// 세션이 tail보다 적으면 전체가 tail
	short := newSessionReturns([]float64{-0.03, -0.01})
	assert.Equal(t, 2, short.tailSize(0.01))
	assert.InDelta(t, 0.02, short.historical(0.01).CVaR, 1e-12)
}

func TestParametric(t *testing.T) {
	res := parametric(0, 0.01, 0.95)
	assert.InDelta(t, 0.016449, res.VaR, 1e-6)
	// φ(1.645)/0.05 ≈ 2.063
	assert.InDelta(t, 0.02063, res.CVaR, 1e-4)
	assert.Greater(t, res.CVaR, res.VaR)

	positive := parametric(0.1, 0.01, 0.95)
	assert.Zero(t, positive.VaR)
	assert.Zero(t, positive.CVaR)
}

func TestZScore(t *testing.T) {
	assert.InDelta(t, 0.0, zScore(0.5), 1e-12)
	assert.InDelta(t, 1.281552, zScore(0.9), 1e-6)
	assert.InDelta(t, -1.644854, zScore(0.05), 1e-6)
	assert.InDelta(t, 2.575829, zScore(0.995), 1e-6)
	assert.Zero(t, zScore(0))
	assert.Zero(t, zScore(1))
}

func TestMoments(t *testing.T) {
	mean, sd := newSessionReturns([]float64{2, 4, 4, 4, 5, 5, 7, 9}).moments()
	assert.InDelta(t, 5.0, mean, 1e-12)
	assert.InDelta(t, 2.13809, sd, 1e-5)

	_, single := newSessionReturns([]float64{1}).moments()
	assert.Zero(t, single)
	mean, _ = newSessionReturns(nil).moments()
	assert.Zero(t, mean)
}

func TestAnalyze(t *testing.T) {
	returns := []float64{0, 0.012, -0.02, 0, math.NaN(), 0.005, -0.004}

	report := Analyze(returns)
	assert.Equal(t, 6, report.Sessions)
	assert.Equal(t, 4, report.ActiveSessions)
	assert.Equal(t, 0.012, report.Best)
	assert.Equal(t, -0.02, report.Worst)
	assert.InDelta(t, -0.007/6, report.Mean, 1e-12)
	require.Len(t, report.Historical, 2)
	require.Len(t, report.Parametric, 2)
	assert.Equal(t, 0.99, report.Historical[1].Confidence)
	assert.InDelta(t, 0.02, report.Historical[0].VaR, 1e-12)
	assert.InDelta(t, 0.02, report.Historical[0].CVaR, 1e-12)

	empty := Analyze(nil, 0.9)
	assert.Zero(t, empty.Sessions)
	assert.Empty(t, empty.Historical)
}
