package contracts

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// SessionLayout is the date format used to key trading sessions
const SessionLayout = "2006-01-02"

// SessionKey returns the calendar date of a session, independent of location
func SessionKey(t time.Time) string {
	return t.Format(SessionLayout)
}

// Frame is a dense session × symbol matrix.
// ⭐ SSOT: 모든 시그널/비중/포지션/수익률 테이블은 Frame으로 전달
// Missing values are NaN.
type Frame struct {
	Sessions []time.Time
	Symbols  []string

	values       [][]float64
	sessionIndex map[string]int
	symbolIndex  map[string]int
}

// NewFrame creates a frame filled with NaN
func NewFrame(sessions []time.Time, symbols []string) *Frame {
	return NewFrameFilled(sessions, symbols, math.NaN())
}

// NewFrameFilled creates a frame with every cell set to v
func NewFrameFilled(sessions []time.Time, symbols []string, v float64) *Frame {
	f := &Frame{
		Sessions:     append([]time.Time(nil), sessions...),
		Symbols:      append([]string(nil), symbols...),
		values:       make([][]float64, len(sessions)),
		sessionIndex: make(map[string]int, len(sessions)),
		symbolIndex:  make(map[string]int, len(symbols)),
	}

	for i, s := range f.Sessions {
		f.sessionIndex[SessionKey(s)] = i
		row := make([]float64, len(symbols))
		for j := range row {
			row[j] = v
		}
		f.values[i] = row
	}
	for j, sym := range f.Symbols {
		f.symbolIndex[sym] = j
	}

	return f
}

// Shape returns (sessions, symbols)
func (f *Frame) Shape() (int, int) {
	return len(f.Sessions), len(f.Symbols)
}

// At returns the value at row i, column j
func (f *Frame) At(i, j int) float64 {
	return f.values[i][j]
}

// Set stores v at row i, column j
func (f *Frame) Set(i, j int, v float64) {
	f.values[i][j] = v
}

// SessionIndex returns the row of a session
func (f *Frame) SessionIndex(session time.Time) (int, bool) {
	i, ok := f.sessionIndex[SessionKey(session)]
	return i, ok
}

// SymbolIndex returns the column of a symbol
func (f *Frame) SymbolIndex(symbol string) (int, bool) {
	j, ok := f.symbolIndex[symbol]
	return j, ok
}

// Get looks a value up by labels. Unknown labels read as NaN.
func (f *Frame) Get(session time.Time, symbol string) float64 {
	i, ok := f.SessionIndex(session)
	if !ok {
		return math.NaN()
	}
	j, ok := f.SymbolIndex(symbol)
	if !ok {
		return math.NaN()
	}
	return f.values[i][j]
}

// Row returns a copy of row i
func (f *Frame) Row(i int) []float64 {
	return append([]float64(nil), f.values[i]...)
}

// Clone returns a deep copy
func (f *Frame) Clone() *Frame {
	out := NewFrameFilled(f.Sessions, f.Symbols, 0)
	for i := range f.values {
		copy(out.values[i], f.values[i])
	}
	return out
}

// Shift moves every column forward by n sessions; vacated rows are NaN
func (f *Frame) Shift(n int) *Frame {
	out := NewFrame(f.Sessions, f.Symbols)
	for i := range f.values {
		src := i - n
		if src < 0 || src >= len(f.values) {
			continue
		}
		copy(out.values[i], f.values[src])
	}
	return out
}

// Apply returns a new frame with fn applied to every cell
func (f *Frame) Apply(fn func(i, j int, v float64) float64) *Frame {
	out := NewFrameFilled(f.Sessions, f.Symbols, 0)
	for i, row := range f.values {
		for j, v := range row {
			out.values[i][j] = fn(i, j, v)
		}
	}
	return out
}

// FillNaN returns a copy with NaN replaced by v
func (f *Frame) FillNaN(v float64) *Frame {
	return f.Apply(func(_, _ int, x float64) float64 {
		if math.IsNaN(x) {
			return v
		}
		return x
	})
}

// RowAbsSum sums |v| over row i, skipping NaN
func (f *Frame) RowAbsSum(i int) float64 {
	sum := 0.0
	for _, v := range f.values[i] {
		if !math.IsNaN(v) {
			sum += math.Abs(v)
		}
	}
	return sum
}

// RowSum sums row i, skipping NaN
func (f *Frame) RowSum(i int) float64 {
	sum := 0.0
	for _, v := range f.values[i] {
		if !math.IsNaN(v) {
			sum += v
		}
	}
	return sum
}

// NonZero counts cells in row i that are neither 0 nor NaN
func (f *Frame) NonZero(i int) int {
	n := 0
	for _, v := range f.values[i] {
		if v != 0 && !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// SameShape reports whether both frames carry the same labels in the same order
func (f *Frame) SameShape(other *Frame) bool {
	if len(f.Sessions) != len(other.Sessions) || len(f.Symbols) != len(other.Symbols) {
		return false
	}
	for i := range f.Sessions {
		if SessionKey(f.Sessions[i]) != SessionKey(other.Sessions[i]) {
			return false
		}
	}
	for j := range f.Symbols {
		if f.Symbols[j] != other.Symbols[j] {
			return false
		}
	}
	return true
}

// Equal compares labels and values within tol. NaN equals NaN.
func (f *Frame) Equal(other *Frame, tol float64) bool {
	if other == nil || !f.SameShape(other) {
		return false
	}
	for i, row := range f.values {
		for j, v := range row {
			w := other.values[i][j]
			if math.IsNaN(v) || math.IsNaN(w) {
				if math.IsNaN(v) != math.IsNaN(w) {
					return false
				}
				continue
			}
			if math.Abs(v-w) > tol {
				return false
			}
		}
	}
	return true
}

// frameJSON is the wire form; NaN travels as null
type frameJSON struct {
	Sessions []string     `json:"sessions"`
	Symbols  []string     `json:"symbols"`
	Values   [][]*float64 `json:"values"`
}

// MarshalJSON implements json.Marshaler
func (f *Frame) MarshalJSON() ([]byte, error) {
	out := frameJSON{
		Sessions: make([]string, len(f.Sessions)),
		Symbols:  f.Symbols,
		Values:   make([][]*float64, len(f.values)),
	}
	for i, s := range f.Sessions {
		out.Sessions[i] = SessionKey(s)
	}
	for i, row := range f.values {
		out.Values[i] = make([]*float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			x := v
			out.Values[i][j] = &x
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (f *Frame) UnmarshalJSON(data []byte) error {
	var in frameJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	sessions := make([]time.Time, len(in.Sessions))
	for i, s := range in.Sessions {
		t, err := time.Parse(SessionLayout, s)
		if err != nil {
			return fmt.Errorf("parse session %q: %w", s, err)
		}
		sessions[i] = t
	}
	if len(in.Values) != len(sessions) {
		return fmt.Errorf("frame has %d rows for %d sessions", len(in.Values), len(sessions))
	}

	*f = *NewFrame(sessions, in.Symbols)
	for i, row := range in.Values {
		if len(row) != len(in.Symbols) {
			return fmt.Errorf("frame row %d has %d values for %d symbols", i, len(row), len(in.Symbols))
		}
		for j, v := range row {
			if v != nil {
				f.values[i][j] = *v
			}
		}
	}
	return nil
}

// Tail returns a copy of the last n sessions
func (f *Frame) Tail(n int) *Frame {
	if n > len(f.Sessions) {
		n = len(f.Sessions)
	}
	if n < 0 {
		n = 0
	}
	start := len(f.Sessions) - n
	out := NewFrame(f.Sessions[start:], f.Symbols)
	for i := range out.values {
		copy(out.values[i], f.values[start+i])
	}
	return out
}
