package risk

import (
	"math"
	"time"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/model"
)

// SimpleReturns returns day-over-day percentage changes of closes.
// Pairs with a non-positive previous close are skipped.
func SimpleReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	return returns
}

// RunningMax returns the running maximum of closes.
func RunningMax(closes []float64) []float64 {
	out := make([]float64, len(closes))
	peak := math.Inf(-1)
	for i, c := range closes {
		if c > peak {
			peak = c
		}
		out[i] = peak
	}
	return out
}

// Drawdowns returns close/runningMax - 1 for every point. Each value is <= 0.
func Drawdowns(closes []float64) []float64 {
	peaks := RunningMax(closes)
	out := make([]float64, len(closes))
	for i, c := range closes {
		if peaks[i] <= 0 {
			continue
		}
		out[i] = c/peaks[i] - 1
	}
	return out
}

// MaxDrawdown returns the deepest drawdown of closes (a value <= 0).
func MaxDrawdown(closes []float64) float64 {
	var worst float64
	for _, d := range Drawdowns(closes) {
		if d < worst {
			worst = d
		}
	}
	return worst
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation of values.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Variance returns the population variance of values.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(values))
}

// Covariance returns the population covariance of two equally long series.
func Covariance(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	ma, mb := mean(a[:n]), mean(b[:n])
	var sum float64
	for i := 0; i < n; i++ {
		sum += (a[i] - ma) * (b[i] - mb)
	}
	return sum / float64(n)
}

// AlignedReturns pairs the returns of series and benchmark on the trading days both have a close for.
func AlignedReturns(series, benchmark model.PriceSeries) ([]float64, []float64) {
	benchByDay := make(map[time.Time]float64, len(benchmark.Points))
	for _, p := range benchmark.Points {
		benchByDay[day(p.Date)] = p.Close
	}

	var closes, benchCloses []float64
	for _, p := range series.Points {
		if bc, ok := benchByDay[day(p.Date)]; ok {
			closes = append(closes, p.Close)
			benchCloses = append(benchCloses, bc)
		}
	}

	if len(closes) < 2 {
		return nil, nil
	}

	var ra, rb []float64
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || benchCloses[i-1] <= 0 {
			continue
		}
		ra = append(ra, closes[i]/closes[i-1]-1)
		rb = append(rb, benchCloses[i]/benchCloses[i-1]-1)
	}
	return ra, rb
}

// Beta returns cov(series, benchmark) / var(benchmark) over date-aligned returns.
// The second result is false when fewer than two aligned returns exist or the
// benchmark did not move.
func Beta(series, benchmark model.PriceSeries) (float64, bool) {
	ra, rb := AlignedReturns(series, benchmark)
	if len(ra) < 2 {
		return 0, false
	}
	v := Variance(rb)
	if v == 0 {
		return 0, false
	}
	return Covariance(ra, rb) / v, true
}

func day(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
