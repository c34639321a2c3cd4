package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/trendday/internal/contracts"
)

var session = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func signalRow(values ...float64) *contracts.Frame {
	symbols := make([]string, len(values))
	for j := range values {
		symbols[j] = string(rune('A' + j))
	}
	f := contracts.NewFrame([]time.Time{session}, symbols)
	for j, v := range values {
		f.Set(0, j, v)
	}
	return f
}

func TestAllocateFixedWeights(t *testing.T) {
	signals := signalRow(1, -1, 0, math.NaN())
	weights := AllocateFixedWeights(signals, 0.2)

	assert.Equal(t, []float64{0.2, -0.2, 0, 0}, weights.Row(0))
	// 입력 불변
	assert.True(t, math.IsNaN(signals.At(0, 3)))
}

func TestAllocateEqualWeights(t *testing.T) {
	weights := AllocateEqualWeights(signalRow(1, -1, 1, 0), 0.9)
	assert.InDeltaSlice(t, []float64{0.3, -0.3, 0.3, 0}, weights.Row(0), 1e-12)

	flat := AllocateEqualWeights(signalRow(0, 0), 1.0)
	assert.Equal(t, []float64{0, 0}, flat.Row(0))
}

func TestAllocateFixedWeightsCapped(t *testing.T) {
	tests := []struct {
		name    string
		signals []float64
		want    []float64
	}{
		{
			name:    "single long",
			signals: []float64{1, 0, 0},
			want:    []float64{0.2, 0, 0},
		},
		{
			name:    "mixed under cap",
			signals: []float64{1, -1, 0},
			want:    []float64{0.2, -0.2, 0},
		},
		{
			name:    "exactly at cap keeps fixed weights",
			signals: []float64{1, 1, 1, -1, -1},
			want:    []float64{0.2, 0.2, 0.2, -0.2, -0.2},
		},
		{
			name:    "six active scale to cap",
			signals: []float64{1, 1, 1, 1, -1, -1},
			want:    []float64{1.0 / 6, 1.0 / 6, 1.0 / 6, 1.0 / 6, -1.0 / 6, -1.0 / 6},
		},
		{
			name:    "no signal",
			signals: []float64{0, 0, math.NaN()},
			want:    []float64{0, 0, 0},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			weights := AllocateFixedWeightsCapped(signalRow(tc.signals...), 0.2, 1.0)
			got := weights.Row(0)
			require.Len(t, got, len(tc.want))
			assert.InDeltaSlice(t, tc.want, got, 1e-12)
			assert.LessOrEqual(t, weights.RowAbsSum(0), 1.0+1e-9)
		})
	}
}

func TestAllocateFixedWeightsCapped_PerSession(t *testing.T) {
	sessions := []time.Time{session, session.AddDate(0, 0, 1)}
	symbols := []string{"A", "B", "C", "D", "E", "F", "G"}
	signals := contracts.NewFrameFilled(sessions, symbols, 0)

	// 세션 0: 1개, 세션 1: 7개 활성
	signals.Set(0, 0, 1)
	for j := range symbols {
		signals.Set(1, j, -1)
	}

	weights := AllocateFixedWeightsCapped(signals, 0.2, 1.0)
	assert.Equal(t, 0.2, weights.At(0, 0))
	assert.Equal(t, 0.0, weights.At(0, 1))
	for j := range symbols {
		assert.InDelta(t, -1.0/7, weights.At(1, j), 1e-12)
	}
	assert.InDelta(t, 1.0, weights.RowAbsSum(1), 1e-12)
}
