package model

import "time"

// Period is a price-history lookback window. The values double as Yahoo Finance
// chart range identifiers.
type Period string

const (
	PeriodOneMonth    Period = "1mo"
	PeriodThreeMonths Period = "3mo"
	PeriodSixMonths   Period = "6mo"
	PeriodOneYear     Period = "1y"
	PeriodTwoYears    Period = "2y"
)

// DefaultPeriod is used when a request does not name a lookback window.
const DefaultPeriod = PeriodOneYear

// ValidPeriods lists every supported lookback window.
var ValidPeriods = map[Period]bool{
	PeriodOneMonth:    true,
	PeriodThreeMonths: true,
	PeriodSixMonths:   true,
	PeriodOneYear:     true,
	PeriodTwoYears:    true,
}

// FundamentalsSnapshot holds the fundamental data a ticker is scored on.
// Every numeric field is optional: nil means the provider did not report it,
// which the scorer treats as an "unknown" input rather than an error.
type FundamentalsSnapshot struct {
	Symbol          string   `json:"symbol"`
	ForwardPE       *float64 `json:"forwardPE,omitempty"`
	PriceToSales    *float64 `json:"priceToSales,omitempty"`
	DividendYield   *float64 `json:"dividendYield,omitempty"`   // fraction, 0.02 = 2%
	DebtToEquity    *float64 `json:"debtToEquity,omitempty"`    // percent units, 150 = 1.5x
	OperatingMargin *float64 `json:"operatingMargin,omitempty"` // fraction
	Beta            *float64 `json:"beta,omitempty"`            // provider-reported beta
	Sector          string   `json:"sector,omitempty"`
	ESGTotal        *float64 `json:"esgTotal,omitempty"`
	AverageVolume   *float64 `json:"averageVolume,omitempty"`
	LatestClose     *float64 `json:"latestClose,omitempty"`
}

// PricePoint is one trading day of a price series.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries is an ordered (oldest first) sequence of daily closes for one symbol.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Period Period       `json:"period"`
	Points []PricePoint `json:"points"`
}

// Empty reports whether the series holds no prices.
func (s PriceSeries) Empty() bool {
	return len(s.Points) == 0
}

// Closes returns the closing prices in series order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Latest returns the most recent price point.
func (s PriceSeries) Latest() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// AverageVolume returns the mean daily volume over the series.
func (s PriceSeries) AverageVolume() (float64, bool) {
	if len(s.Points) == 0 {
		return 0, false
	}
	var total float64
	for _, p := range s.Points {
		total += float64(p.Volume)
	}
	return total / float64(len(s.Points)), true
}
