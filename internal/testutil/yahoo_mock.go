package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/yahoo"
)

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// It returns predefined test data instead of making actual API calls.
type MockYahooClient struct {
	mu sync.Mutex

	// MockResponse is the response to return from chart queries
	MockResponse yahoo.Response
	// MockSummary is the response to return from quoteSummary queries
	MockSummary yahoo.QuoteSummary
	// MockError is the error to return from query methods
	MockError error
	// QueryCount tracks how many times a query method was called
	QueryCount int
}

// NewMockYahooClient creates a new mock Yahoo client with default test data.
// The default data includes 5 days of historical prices and a complete summary.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		MockResponse: CreateMockYahooResponse(5),
		MockSummary:  CreateMockQuoteSummary(),
	}
}

// QueryChartByRange returns the configured MockResponse and MockError.
func (m *MockYahooClient) QueryChartByRange(_ context.Context, _, _ string) (yahoo.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QueryCount++
	if m.MockError != nil {
		return yahoo.Response{}, m.MockError
	}
	return m.MockResponse, nil
}

// QueryQuoteSummary returns the configured MockSummary and MockError.
func (m *MockYahooClient) QueryQuoteSummary(_ context.Context, _ string, _ ...string) (yahoo.QuoteSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QueryCount++
	if m.MockError != nil {
		return yahoo.QuoteSummary{}, m.MockError
	}
	return m.MockSummary, nil
}

// Queries returns the number of calls made so far.
func (m *MockYahooClient) Queries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.QueryCount
}

// WithError configures the mock to return the specified error.
func (m *MockYahooClient) WithError(err error) *MockYahooClient {
	m.MockError = err
	return m
}

// WithResponse configures the mock to return the specified chart response.
func (m *MockYahooClient) WithResponse(resp yahoo.Response) *MockYahooClient {
	m.MockResponse = resp
	return m
}

// WithSummary configures the mock to return the specified quote summary.
func (m *MockYahooClient) WithSummary(summary yahoo.QuoteSummary) *MockYahooClient {
	m.MockSummary = summary
	return m
}

// WithEmptyResponse configures the mock to return a chart without prices.
func (m *MockYahooClient) WithEmptyResponse() *MockYahooClient {
	m.MockResponse = yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{{Meta: yahoo.Meta{Symbol: "TEST"}}},
		},
	}
	return m
}

// CreateMockYahooResponse creates a mock Yahoo Finance chart response with test data.
// The response includes `days` number of days of price data, ending yesterday.
func CreateMockYahooResponse(days int) yahoo.Response {
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)

	timestamps := make([]int64, days)
	opens := make([]*float64, days)
	highs := make([]*float64, days)
	lows := make([]*float64, days)
	closes := make([]*float64, days)
	volumes := make([]*int64, days)

	// Generate realistic price data for testing
	basePrice := 100.0
	for i := 0; i < days; i++ {
		date := yesterday.AddDate(0, 0, -days+i+1)
		timestamps[i] = date.Unix()

		dayPrice := basePrice + float64(i)*0.5
		open := dayPrice
		high := dayPrice + 1.0
		low := dayPrice - 0.5
		closePrice := dayPrice + 0.25
		volume := int64(1000000 + i*10000)

		opens[i] = &open
		highs[i] = &high
		lows[i] = &low
		closes[i] = &closePrice
		volumes[i] = &volume
	}

	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{
				{
					Meta: yahoo.Meta{
						Symbol:           "TEST",
						Currency:         "USD",
						ExchangeName:     "NMS",
						FullExchangeName: "NASDAQ",
						LongName:         "Test Corp.",
						Shortname:        "TEST",
					},
					Timestamp: timestamps,
					Indicators: yahoo.IndicatorsContainer{
						Quote: []yahoo.Quote{
							{
								Open:   opens,
								High:   highs,
								Low:    lows,
								Close:  closes,
								Volume: volumes,
							},
						},
					},
				},
			},
		},
	}
}

// CreateMockQuoteSummary creates a quoteSummary result with every module the
// fundamentals snapshot reads.
func CreateMockQuoteSummary() yahoo.QuoteSummary {
	return yahoo.QuoteSummary{
		SummaryDetail: &yahoo.SummaryDetail{
			PreviousClose:                raw(101.5),
			DividendYield:                raw(0.012),
			Beta:                         raw(1.1),
			ForwardPE:                    raw(24),
			AverageVolume:                raw(2500000),
			PriceToSalesTrailing12Months: raw(6),
		},
		FinancialData: &yahoo.FinancialData{
			CurrentPrice:     raw(102),
			DebtToEquity:     raw(80),
			OperatingMargins: raw(0.25),
		},
		DefaultKeyStatistics: &yahoo.DefaultKeyStatistics{
			ForwardPE: raw(23),
			Beta:      raw(1.2),
		},
		AssetProfile: &yahoo.AssetProfile{
			Sector:   "Technology",
			Industry: "Software",
		},
		ESGScores: &yahoo.ESGScores{
			TotalEsg: raw(18),
		},
	}
}

func raw(v float64) yahoo.Value {
	return yahoo.Value{Raw: &v}
}
