package portfolio

import (
	"math"

	"github.com/wonny/trendday/internal/contracts"
)

// ⭐ SSOT: 신호 → 비중 배분 로직은 여기서만
// 모든 함수는 입력 Frame을 변경하지 않고 새 Frame을 반환

// AllocateFixedWeights assigns sign(signal) × weight to every nonzero signal.
// NaN and zero signals get 0.
func AllocateFixedWeights(signals *contracts.Frame, weight float64) *contracts.Frame {
	return signals.Apply(func(_, _ int, v float64) float64 {
		return sign(v) * weight
	})
}

// AllocateEqualWeights splits cap equally across the session's nonzero signals.
// A session with no active signal stays flat.
func AllocateEqualWeights(signals *contracts.Frame, cap float64) *contracts.Frame {
	out := signals.Apply(func(_, _ int, v float64) float64 { return 0 })

	rows, cols := signals.Shape()
	for i := 0; i < rows; i++ {
		k := signals.NonZero(i)
		if k == 0 {
			continue
		}
		each := cap / float64(k)
		for j := 0; j < cols; j++ {
			out.Set(i, j, sign(signals.At(i, j))*each)
		}
	}
	return out
}

// AllocateFixedWeightsCapped assigns a fixed weight per signal; on sessions where the
// total absolute weight would exceed cap, falls back to equal weights summing to cap.
func AllocateFixedWeightsCapped(signals *contracts.Frame, weight, cap float64) *contracts.Frame {
	fixed := AllocateFixedWeights(signals, weight)
	equal := AllocateEqualWeights(signals, cap)

	rows, cols := fixed.Shape()
	for i := 0; i < rows; i++ {
		if fixed.RowAbsSum(i) <= cap {
			continue
		}
		for j := 0; j < cols; j++ {
			fixed.Set(i, j, equal.At(i, j))
		}
	}
	return fixed
}

// sign returns -1, 0 or +1; NaN counts as 0
func sign(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
