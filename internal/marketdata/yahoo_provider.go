package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/apperrors"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/metrics"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/model"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/yahoo"
)

// Breaker defaults for the Yahoo provider.
const (
	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
	breakerInterval         = time.Minute
)

// YahooProvider adapts the Yahoo Finance client to Provider. Calls run through a
// circuit breaker so a failing upstream is not hammered once per ticker.
type YahooProvider struct {
	client  yahoo.Client
	breaker *gobreaker.CircuitBreaker
	logger  zerolog.Logger
}

// NewYahooProvider creates a YahooProvider around client.
func NewYahooProvider(client yahoo.Client, logger zerolog.Logger) *YahooProvider {
	p := &YahooProvider{
		client: client,
		logger: logger.With().Str("component", "yahoo_provider").Logger(),
	}

	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "yahoo",
		MaxRequests: 1,
		Interval:    breakerInterval,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		IsSuccessful: isUpstreamHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return p
}

// isUpstreamHealthy treats answers about the symbol itself as success for breaker accounting.
func isUpstreamHealthy(err error) bool {
	return err == nil ||
		errors.Is(err, yahoo.ErrNotFound) ||
		errors.Is(err, yahoo.ErrNoPriceData) ||
		errors.Is(err, context.Canceled)
}

// PriceHistory fetches daily closes for symbol over period.
func (p *YahooProvider) PriceHistory(ctx context.Context, symbol string, period model.Period) (model.PriceSeries, error) {
	start := time.Now()

	raw, err := p.breaker.Execute(func() (interface{}, error) {
		return p.client.QueryChartByRange(ctx, symbol, string(period))
	})
	if err != nil {
		observe(model.CacheKindHistory, start, err)
		return model.PriceSeries{}, p.mapError(symbol, err)
	}

	chart, err := yahoo.ParseChart(raw.(yahoo.Response))
	if err != nil {
		observe(model.CacheKindHistory, start, nil)
		if errors.Is(err, yahoo.ErrNoPriceData) {
			return model.PriceSeries{Symbol: symbol, Period: period}, nil
		}
		return model.PriceSeries{}, fmt.Errorf("failed to parse price history for %s: %w", symbol, err)
	}
	observe(model.CacheKindHistory, start, nil)

	series := model.PriceSeries{
		Symbol: symbol,
		Period: period,
		Points: make([]model.PricePoint, 0, len(chart.Indicators)),
	}
	for _, ind := range chart.Indicators {
		series.Points = append(series.Points, model.PricePoint{
			Date:   ind.Date,
			Close:  ind.PriceClose,
			Volume: ind.Volume,
		})
	}

	return series, nil
}

// Fundamentals fetches the quoteSummary modules the scorer reads and maps them to a snapshot.
func (p *YahooProvider) Fundamentals(ctx context.Context, symbol string) (model.FundamentalsSnapshot, error) {
	start := time.Now()

	raw, err := p.breaker.Execute(func() (interface{}, error) {
		return p.client.QueryQuoteSummary(ctx, symbol, yahoo.FundamentalsModules...)
	})
	observe(model.CacheKindFundamentals, start, err)
	if err != nil {
		return model.FundamentalsSnapshot{}, p.mapError(symbol, err)
	}

	return snapshotFromSummary(symbol, raw.(yahoo.QuoteSummary)), nil
}

func (p *YahooProvider) mapError(symbol string, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%s: %w", symbol, apperrors.ErrProviderUnavailable)
	case errors.Is(err, yahoo.ErrNotFound):
		return fmt.Errorf("%s: %w", symbol, apperrors.ErrSymbolNotFound)
	default:
		return fmt.Errorf("yahoo request for %s failed: %w", symbol, err)
	}
}

func observe(kind string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ProviderLatency.WithLabelValues(kind, outcome).Observe(time.Since(start).Seconds())
}

// snapshotFromSummary maps quoteSummary modules to a snapshot. When a figure is
// reported by more than one module, summaryDetail wins.
func snapshotFromSummary(symbol string, s yahoo.QuoteSummary) model.FundamentalsSnapshot {
	f := model.FundamentalsSnapshot{Symbol: symbol}

	if d := s.SummaryDetail; d != nil {
		f.ForwardPE = d.ForwardPE.Raw
		f.PriceToSales = d.PriceToSalesTrailing12Months.Raw
		f.DividendYield = d.DividendYield.Raw
		f.Beta = d.Beta.Raw
		f.AverageVolume = d.AverageVolume.Raw
		f.LatestClose = d.PreviousClose.Raw
	}
	if k := s.DefaultKeyStatistics; k != nil {
		f.ForwardPE = firstOf(f.ForwardPE, k.ForwardPE.Raw)
		f.Beta = firstOf(f.Beta, k.Beta.Raw)
	}
	if fd := s.FinancialData; fd != nil {
		f.DebtToEquity = fd.DebtToEquity.Raw
		f.OperatingMargin = fd.OperatingMargins.Raw
		f.LatestClose = firstOf(fd.CurrentPrice.Raw, f.LatestClose)
	}
	if a := s.AssetProfile; a != nil {
		f.Sector = a.Sector
	}
	if e := s.ESGScores; e != nil {
		f.ESGTotal = e.TotalEsg.Raw
	}

	return f
}

func firstOf(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
