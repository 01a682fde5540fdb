package testutil

import (
	"time"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/model"
)

// DefaultVolume is the daily volume NewSeries assigns to every point.
const DefaultVolume int64 = 1_000_000

// SeriesStart is the date of the first point NewSeries generates.
var SeriesStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Float returns a pointer to v, for optional fundamentals fields.
func Float(v float64) *float64 {
	return &v
}

// NewSeries builds a daily price series starting at SeriesStart with one point per close.
//
// Example:
//
//	series := testutil.NewSeries("AAPL", []float64{100, 101, 99})
func NewSeries(symbol string, closes []float64) model.PriceSeries {
	return NewSeriesWithVolume(symbol, closes, DefaultVolume)
}

// NewSeriesWithVolume builds a daily price series with a constant volume.
func NewSeriesWithVolume(symbol string, closes []float64, volume int64) model.PriceSeries {
	points := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = model.PricePoint{
			Date:   SeriesStart.AddDate(0, 0, i),
			Close:  c,
			Volume: volume,
		}
	}
	return model.PriceSeries{
		Symbol: symbol,
		Period: model.DefaultPeriod,
		Points: points,
	}
}

// TrendingCloses returns n closes starting at start and compounding by step each day.
func TrendingCloses(start, step float64, n int) []float64 {
	closes := make([]float64, n)
	price := start
	for i := range closes {
		closes[i] = price
		price *= 1 + step
	}
	return closes
}

// OscillatingCloses returns n closes that alternate between start and start*(1+amplitude).
func OscillatingCloses(start, amplitude float64, n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start
		if i%2 == 1 {
			closes[i] = start * (1 + amplitude)
		}
	}
	return closes
}
