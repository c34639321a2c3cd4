package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/wonny/trendday/internal/contracts"
)

// FileLoader serves price tables from a JSON array of bars.
// DB 없이 signals/backtest 실행용
type FileLoader struct {
	bars []contracts.Bar
}

var _ Source = (*FileLoader)(nil)

// NewFileLoader reads bars from path
func NewFileLoader(path string) (*FileLoader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var bars []contracts.Bar
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, fmt.Errorf("decode bars %s: %w", path, err)
	}

	for i := range bars {
		clock, err := contracts.NormalizeClock(bars[i].Clock)
		if err != nil {
			return nil, fmt.Errorf("bar %d: %w", i, err)
		}
		bars[i].Clock = clock
	}

	return &FileLoader{bars: bars}, nil
}

// NewMemoryLoader serves the given bars
func NewMemoryLoader(bars []contracts.Bar) *FileLoader {
	return &FileLoader{bars: append([]contracts.Bar(nil), bars...)}
}

// UniverseSymbols returns every symbol present in the file; the universe name is ignored
func (f *FileLoader) UniverseSymbols(_ context.Context, _ string) ([]string, error) {
	set := make(map[string]struct{})
	for _, b := range f.bars {
		set[b.Symbol] = struct{}{}
	}
	symbols := make([]string, 0, len(set))
	for s := range set {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// LoadPrices filters bars by session range and times
func (f *FileLoader) LoadPrices(ctx context.Context, q contracts.PriceQuery) (*contracts.PriceTable, error) {
	symbols, err := f.UniverseSymbols(ctx, q.Universe)
	if err != nil {
		return nil, err
	}

	times := make(map[string]struct{}, len(q.Times))
	for _, t := range q.Times {
		times[t] = struct{}{}
	}
	from, to := contracts.SessionKey(q.From), contracts.SessionKey(q.To)

	selected := make([]contracts.Bar, 0, len(f.bars))
	for _, b := range f.bars {
		key := contracts.SessionKey(b.Session)
		if (!q.From.IsZero() && key < from) || (!q.To.IsZero() && key > to) {
			continue
		}
		if _, ok := times[b.Clock]; !ok {
			continue
		}
		selected = append(selected, b)
	}

	return contracts.BuildPriceTable(selected, q.Fields, symbols...), nil
}
