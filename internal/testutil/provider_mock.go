package testutil

import (
	"context"
	"sync"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/model"
)

// MockProvider is an in-memory marketdata.Provider for testing.
// Symbols without configured data return an empty price series and an empty snapshot.
type MockProvider struct {
	mu sync.Mutex

	History      map[string]model.PriceSeries
	Snapshots    map[string]model.FundamentalsSnapshot
	HistoryErr   map[string]error
	SnapshotErr  map[string]error
	HistoryCalls map[string]int
	Calls        []string
}

// NewMockProvider creates an empty MockProvider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		History:      make(map[string]model.PriceSeries),
		Snapshots:    make(map[string]model.FundamentalsSnapshot),
		HistoryErr:   make(map[string]error),
		SnapshotErr:  make(map[string]error),
		HistoryCalls: make(map[string]int),
	}
}

// WithSeries sets the price series returned for its symbol.
func (m *MockProvider) WithSeries(series model.PriceSeries) *MockProvider {
	m.History[series.Symbol] = series
	return m
}

// WithSnapshot sets the fundamentals returned for its symbol.
func (m *MockProvider) WithSnapshot(snapshot model.FundamentalsSnapshot) *MockProvider {
	m.Snapshots[snapshot.Symbol] = snapshot
	return m
}

// WithHistoryError makes PriceHistory fail for symbol.
func (m *MockProvider) WithHistoryError(symbol string, err error) *MockProvider {
	m.HistoryErr[symbol] = err
	return m
}

// WithSnapshotError makes Fundamentals fail for symbol.
func (m *MockProvider) WithSnapshotError(symbol string, err error) *MockProvider {
	m.SnapshotErr[symbol] = err
	return m
}

// PriceHistory implements marketdata.Provider.
func (m *MockProvider) PriceHistory(_ context.Context, symbol string, period model.Period) (model.PriceSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.HistoryCalls[symbol]++
	m.Calls = append(m.Calls, "history:"+symbol)

	if err := m.HistoryErr[symbol]; err != nil {
		return model.PriceSeries{}, err
	}
	series, ok := m.History[symbol]
	if !ok {
		return model.PriceSeries{Symbol: symbol, Period: period}, nil
	}
	series.Period = period
	return series, nil
}

// Fundamentals implements marketdata.Provider.
func (m *MockProvider) Fundamentals(_ context.Context, symbol string) (model.FundamentalsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, "fundamentals:"+symbol)

	if err := m.SnapshotErr[symbol]; err != nil {
		return model.FundamentalsSnapshot{}, err
	}
	snapshot, ok := m.Snapshots[symbol]
	if !ok {
		return model.FundamentalsSnapshot{Symbol: symbol}, nil
	}
	return snapshot, nil
}

// HistoryCallCount returns how often PriceHistory was called for symbol.
func (m *MockProvider) HistoryCallCount(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.HistoryCalls[symbol]
}

// CallLog returns a copy of every call made, in order.
func (m *MockProvider) CallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}
