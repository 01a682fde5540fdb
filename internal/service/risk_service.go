package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/apperrors"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/marketdata"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/metrics"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/model"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/risk"
)

// TickerAnalysis is the result of scoring a single ticker.
type TickerAnalysis struct {
	ID                 string
	Period             model.Period
	Benchmark          string
	BenchmarkAvailable bool
	Result             risk.Result
	AnalyzedAt         time.Time
}

// PortfolioAnalysis is the result of scoring a caller-owned portfolio.
// Aggregate is nil when no entry could be scored.
type PortfolioAnalysis struct {
	ID                 string
	Period             model.Period
	Benchmark          string
	BenchmarkAvailable bool
	Outcomes           []risk.TickerOutcome
	Aggregate          *risk.PortfolioRisk
	Unscored           []string
	Excluded           []string
	Message            string
	AnalyzedAt         time.Time
}

// RiskService scores tickers and portfolios against market data.
// Tickers are evaluated one after another; the benchmark is fetched once per request.
type RiskService struct {
	provider   marketdata.Provider
	scorer     *risk.Scorer
	aggregator *risk.Aggregator
	benchmark  string
	logger     zerolog.Logger
	now        func() time.Time
}

// NewRiskService creates a new RiskService scoring under profile against the benchmark symbol.
func NewRiskService(
	provider marketdata.Provider,
	profile risk.Profile,
	benchmark string,
	logger zerolog.Logger,
) *RiskService {
	return &RiskService{
		provider:   provider,
		scorer:     risk.NewScorer(profile),
		aggregator: risk.NewAggregator(profile),
		benchmark:  marketdata.NormalizeSymbol(benchmark),
		logger:     logger.With().Str("component", "risk_service").Logger(),
		now:        time.Now,
	}
}

// Profile returns the scoring profile in use.
func (s *RiskService) Profile() risk.Profile {
	return s.scorer.Profile()
}

// Benchmark returns the benchmark symbol beta is measured against.
func (s *RiskService) Benchmark() string {
	return s.benchmark
}

// ScoreTicker scores one ticker over period.
// Returns an error wrapping apperrors.ErrNoDataAvailable when the ticker has no price history.
func (s *RiskService) ScoreTicker(ctx context.Context, symbol string, period model.Period) (TickerAnalysis, error) {
	symbol = marketdata.NormalizeSymbol(symbol)
	id := uuid.New().String()

	benchmark := s.fetchBenchmark(ctx, id, period)

	result, err := s.evaluate(ctx, symbol, period, benchmark)
	if err != nil {
		s.logFailure(id, symbol, err)
		metrics.TickersUnscored.Inc()
		if errors.Is(err, apperrors.ErrNoDataAvailable) {
			return TickerAnalysis{}, err
		}
		return TickerAnalysis{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToScoreTicker, err)
	}
	metrics.TickersScored.WithLabelValues(string(result.Label)).Inc()

	return TickerAnalysis{
		ID:                 id,
		Period:             period,
		Benchmark:          s.benchmark,
		BenchmarkAvailable: !benchmark.Empty(),
		Result:             result,
		AnalyzedAt:         s.now().UTC(),
	}, nil
}

// AnalyzePortfolio scores every entry in order and aggregates the scored ones.
// A ticker that cannot be scored is reported as unscored and never aborts the others.
// A ticker listed more than once is fetched and scored once.
// Zero scored entries is not an error: Aggregate is nil and Message says so.
func (s *RiskService) AnalyzePortfolio(ctx context.Context, entries []model.PortfolioEntry, period model.Period) (PortfolioAnalysis, error) {
	id := uuid.New().String()
	benchmark := s.fetchBenchmark(ctx, id, period)

	type evaluation struct {
		result risk.Result
		err    error
	}
	seen := make(map[string]evaluation, len(entries))

	outcomes := make([]risk.TickerOutcome, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return PortfolioAnalysis{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToAnalyzePortfolio, err)
		}

		ticker := marketdata.NormalizeSymbol(entry.Ticker)

		eval, ok := seen[ticker]
		if !ok {
			result, err := s.evaluate(ctx, ticker, period, benchmark)
			eval = evaluation{result: result, err: err}
			seen[ticker] = eval

			if err != nil {
				s.logFailure(id, ticker, err)
				metrics.TickersUnscored.Inc()
			} else {
				metrics.TickersScored.WithLabelValues(string(result.Label)).Inc()
			}
		}

		if eval.err != nil {
			outcomes = append(outcomes, risk.NoData(ticker, entry.Amount, reason(eval.err)))
			continue
		}
		outcomes = append(outcomes, risk.Scored(ticker, entry.Amount, eval.result))
	}

	analysis := PortfolioAnalysis{
		ID:                 id,
		Period:             period,
		Benchmark:          s.benchmark,
		BenchmarkAvailable: !benchmark.Empty(),
		Outcomes:           outcomes,
		AnalyzedAt:         s.now().UTC(),
	}

	aggregate, err := s.aggregator.Aggregate(outcomes)
	analysis.Unscored = aggregate.Unscored
	analysis.Excluded = aggregate.Excluded
	switch {
	case errors.Is(err, apperrors.ErrNothingToShow):
		analysis.Message = apperrors.ErrNothingToShow.Error()
		s.logger.Info().
			Str("analysis_id", id).
			Int("entries", len(entries)).
			Msg("no portfolio entry could be scored")
	case err != nil:
		return PortfolioAnalysis{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToAnalyzePortfolio, err)
	default:
		analysis.Aggregate = &aggregate
	}

	return analysis, nil
}

// evaluate fetches one ticker's data and scores it. A missing or failed price
// history is reported as apperrors.ErrNoDataAvailable; failed fundamentals only
// leave the snapshot empty so the scorer substitutes fallbacks.
func (s *RiskService) evaluate(ctx context.Context, symbol string, period model.Period, benchmark model.PriceSeries) (risk.Result, error) {
	series, err := s.provider.PriceHistory(ctx, symbol, period)
	if err != nil {
		return risk.Result{}, fmt.Errorf("%s: %w: %w", symbol, apperrors.ErrNoDataAvailable, err)
	}
	if series.Empty() {
		return risk.Result{}, fmt.Errorf("%s: %w", symbol, apperrors.ErrNoDataAvailable)
	}

	fundamentals, err := s.provider.Fundamentals(ctx, symbol)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("ticker", symbol).
			Msg("fundamentals unavailable, scoring with fallbacks")
		fundamentals = model.FundamentalsSnapshot{Symbol: symbol}
	}

	return s.scorer.Score(fundamentals, series, benchmark)
}

// fetchBenchmark returns the benchmark series, or an empty one when it cannot be fetched.
func (s *RiskService) fetchBenchmark(ctx context.Context, analysisID string, period model.Period) model.PriceSeries {
	if s.benchmark == "" {
		return model.PriceSeries{}
	}

	series, err := s.provider.PriceHistory(ctx, s.benchmark, period)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("analysis_id", analysisID).
			Str("benchmark", s.benchmark).
			Msg("benchmark unavailable, beta falls back")
		return model.PriceSeries{}
	}
	return series
}

func (s *RiskService) logFailure(analysisID, ticker string, err error) {
	s.logger.Warn().
		Err(err).
		Str("analysis_id", analysisID).
		Str("ticker", ticker).
		Msg("ticker could not be scored")
}

// reason is the user-facing explanation for an unscored ticker.
func reason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrSymbolNotFound):
		return apperrors.ErrSymbolNotFound.Error()
	case errors.Is(err, apperrors.ErrProviderUnavailable):
		return apperrors.ErrProviderUnavailable.Error()
	default:
		return apperrors.ErrNoDataAvailable.Error()
	}
}
