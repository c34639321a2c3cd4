package contracts

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestNewFrame(t *testing.T) {
	f := NewFrame([]time.Time{day(1), day(4)}, []string{"TQQQ", "SQQQ"})

	rows, cols := f.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.True(t, math.IsNaN(f.At(1, 1)))

	f.Set(1, 0, 0.2)
	assert.Equal(t, 0.2, f.Get(day(4), "TQQQ"))
	assert.True(t, math.IsNaN(f.Get(day(5), "TQQQ")), "unknown session reads as NaN")
	assert.True(t, math.IsNaN(f.Get(day(4), "SPXL")), "unknown symbol reads as NaN")
}

func TestFrame_SessionIndexIgnoresLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	f := NewFrame([]time.Time{day(1)}, []string{"TQQQ"})
	i, ok := f.SessionIndex(time.Date(2024, 3, 1, 15, 59, 0, 0, ny))
	assert.True(t, ok)
	assert.Equal(t, 0, i)
}

func TestFrame_Shift(t *testing.T) {
	f := NewFrameFilled([]time.Time{day(1), day(4), day(5)}, []string{"TQQQ"}, 0)
	f.Set(0, 0, 100)
	f.Set(1, 0, 101)
	f.Set(2, 0, 102)

	shifted := f.Shift(1)
	assert.True(t, math.IsNaN(shifted.At(0, 0)))
	assert.Equal(t, 100.0, shifted.At(1, 0))
	assert.Equal(t, 101.0, shifted.At(2, 0))

	// source untouched
	assert.Equal(t, 100.0, f.At(0, 0))
}

func TestFrame_CloneIsDeep(t *testing.T) {
	f := NewFrameFilled([]time.Time{day(1)}, []string{"TQQQ"}, 1)
	c := f.Clone()
	c.Set(0, 0, 5)
	assert.Equal(t, 1.0, f.At(0, 0))
	assert.True(t, f.SameShape(c))
}

func TestFrame_RowAggregates(t *testing.T) {
	f := NewFrame([]time.Time{day(1)}, []string{"A", "B", "C", "D"})
	f.Set(0, 0, 0.2)
	f.Set(0, 1, -0.2)
	f.Set(0, 2, 0)

	assert.InDelta(t, 0.4, f.RowAbsSum(0), 1e-12)
	assert.InDelta(t, 0.0, f.RowSum(0), 1e-12)
	assert.Equal(t, 2, f.NonZero(0))
}

func TestFrame_Equal(t *testing.T) {
	a := NewFrame([]time.Time{day(1)}, []string{"A", "B"})
	a.Set(0, 0, 1)
	b := a.Clone()
	assert.True(t, a.Equal(b, 0))

	b.Set(0, 1, 0)
	assert.False(t, a.Equal(b, 0), "NaN vs 0 differs")

	c := NewFrame([]time.Time{day(1)}, []string{"B", "A"})
	assert.False(t, a.Equal(c, 0), "column order matters")
	assert.False(t, a.Equal(nil, 0))
}

func TestFrame_JSON(t *testing.T) {
	f := NewFrame([]time.Time{day(1), day(4)}, []string{"TQQQ", "SQQQ"})
	f.Set(0, 0, 1)
	f.Set(1, 1, -1)

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"2024-03-01"`)
	assert.Contains(t, string(data), `null`)

	var decoded Frame
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, f.Equal(&decoded, 0))
}

func TestFrame_UnmarshalRejectsRaggedRows(t *testing.T) {
	var f Frame
	err := json.Unmarshal([]byte(`{"sessions":["2024-03-01"],"symbols":["A","B"],"values":[[1]]}`), &f)
	assert.Error(t, err)
}
