package contracts

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Field is a bar field name
type Field string

const (
	FieldOpen   Field = "Open"
	FieldHigh   Field = "High"
	FieldLow    Field = "Low"
	FieldClose  Field = "Close"
	FieldVolume Field = "Volume"
)

// ParseField converts a configured field name
func ParseField(s string) (Field, error) {
	switch Field(s) {
	case FieldOpen, FieldHigh, FieldLow, FieldClose, FieldVolume:
		return Field(s), nil
	default:
		return "", fmt.Errorf("unknown price field %q", s)
	}
}

// ClockLayout is the time-of-day format of bar observations
const ClockLayout = "15:04:05"

// 두 자리 시/분(/초)만 허용 ("9:30" 거부)
var clockPattern = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)

// NormalizeClock accepts HH:MM or HH:MM:SS and returns HH:MM:SS
func NormalizeClock(s string) (string, error) {
	if !clockPattern.MatchString(s) {
		return "", fmt.Errorf("invalid time of day %q", s)
	}
	for _, layout := range []string{ClockLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ClockLayout), nil
		}
	}
	return "", fmt.Errorf("invalid time of day %q", s)
}

// Bar is one observation of one symbol at one time of day
type Bar struct {
	Symbol  string    `json:"symbol"`
	Session time.Time `json:"session"`
	Clock   string    `json:"clock"` // HH:MM:SS
	Open    float64   `json:"open"`
	High    float64   `json:"high"`
	Low     float64   `json:"low"`
	Close   float64   `json:"close"`
	Volume  float64   `json:"volume"`
}

func (b Bar) value(field Field) float64 {
	switch field {
	case FieldOpen:
		return b.Open
	case FieldHigh:
		return b.High
	case FieldLow:
		return b.Low
	case FieldClose:
		return b.Close
	default:
		return b.Volume
	}
}

// PriceTable holds bar fields at fixed times of day, per session and symbol.
// ⭐ SSOT: 전략 입력 가격 테이블
type PriceTable struct {
	Sessions []time.Time
	Symbols  []string

	frames map[string]*Frame // key: field@clock
}

func xsKey(field Field, clock string) string {
	return string(field) + "@" + clock
}

// NewPriceTable creates an empty table over the given labels
func NewPriceTable(sessions []time.Time, symbols []string) *PriceTable {
	return &PriceTable{
		Sessions: append([]time.Time(nil), sessions...),
		Symbols:  append([]string(nil), symbols...),
		frames:   make(map[string]*Frame),
	}
}

// BuildPriceTable builds a table from bars.
// Sessions are sorted ascending; symbols are the union of extraSymbols and bar symbols, sorted.
// A later bar for the same (symbol, session, clock) overwrites an earlier one.
func BuildPriceTable(bars []Bar, fields []Field, extraSymbols ...string) *PriceTable {
	sessionSet := make(map[string]time.Time)
	symbolSet := make(map[string]struct{})
	for _, sym := range extraSymbols {
		symbolSet[sym] = struct{}{}
	}
	for _, b := range bars {
		key := SessionKey(b.Session)
		if _, ok := sessionSet[key]; !ok {
			sessionSet[key] = time.Date(b.Session.Year(), b.Session.Month(), b.Session.Day(), 0, 0, 0, 0, time.UTC)
		}
		symbolSet[b.Symbol] = struct{}{}
	}

	sessions := make([]time.Time, 0, len(sessionSet))
	for _, s := range sessionSet {
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Before(sessions[j]) })

	symbols := make([]string, 0, len(symbolSet))
	for sym := range symbolSet {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	table := NewPriceTable(sessions, symbols)
	for _, b := range bars {
		for _, field := range fields {
			table.Set(field, b.Clock, b.Session, b.Symbol, b.value(field))
		}
	}
	return table
}

// Set stores one value. Labels outside the table are ignored and reported as false.
func (p *PriceTable) Set(field Field, clock string, session time.Time, symbol string, v float64) bool {
	key := xsKey(field, clock)
	frame, ok := p.frames[key]
	if !ok {
		frame = NewFrame(p.Sessions, p.Symbols)
		p.frames[key] = frame
	}

	i, ok := frame.SessionIndex(session)
	if !ok {
		return false
	}
	j, ok := frame.SymbolIndex(symbol)
	if !ok {
		return false
	}
	frame.Set(i, j, v)
	return true
}

// XS returns the cross-section of field at one time of day.
// A time that was never loaded yields an all-NaN frame.
func (p *PriceTable) XS(field Field, clock string) *Frame {
	if frame, ok := p.frames[xsKey(field, clock)]; ok {
		return frame.Clone()
	}
	return NewFrame(p.Sessions, p.Symbols)
}

// Has reports whether any value was loaded for field at clock
func (p *PriceTable) Has(field Field, clock string) bool {
	_, ok := p.frames[xsKey(field, clock)]
	return ok
}

// Keys lists the loaded field@clock cross-sections, sorted
func (p *PriceTable) Keys() []string {
	keys := make([]string, 0, len(p.frames))
	for k := range p.frames {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Empty reports whether the table has no sessions or no symbols
func (p *PriceTable) Empty() bool {
	return len(p.Sessions) == 0 || len(p.Symbols) == 0
}

type priceTableJSON struct {
	Sessions []string          `json:"sessions"`
	Symbols  []string          `json:"symbols"`
	Frames   map[string]*Frame `json:"frames"`
}

// MarshalJSON implements json.Marshaler
func (p *PriceTable) MarshalJSON() ([]byte, error) {
	out := priceTableJSON{
		Sessions: make([]string, len(p.Sessions)),
		Symbols:  p.Symbols,
		Frames:   p.frames,
	}
	for i, s := range p.Sessions {
		out.Sessions[i] = SessionKey(s)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (p *PriceTable) UnmarshalJSON(data []byte) error {
	var in priceTableJSON
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

	*p = *NewPriceTable(sessions, in.Symbols)
	for key, frame := range in.Frames {
		if !strings.Contains(key, "@") {
			return fmt.Errorf("invalid cross-section key %q", key)
		}
		p.frames[key] = frame
	}
	return nil
}
