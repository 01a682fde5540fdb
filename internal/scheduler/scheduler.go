// Package scheduler runs the background market data jobs: pruning expired cache
// entries and keeping the benchmark history warm.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/config"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/marketdata"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/model"
)

const jobTimeout = 2 * time.Minute

// CachePruner deletes expired market data.
type CachePruner interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler owns the cron runner and its jobs.
type Scheduler struct {
	cron      *cron.Cron
	cfg       config.SchedulerConfig
	pruner    CachePruner
	provider  marketdata.Provider
	benchmark string
	logger    zerolog.Logger
	now       func() time.Time

	mu      sync.Mutex
	running bool
}

// New creates a Scheduler. Jobs are registered by Start.
func New(
	cfg config.SchedulerConfig,
	pruner CachePruner,
	provider marketdata.Provider,
	benchmark string,
	logger zerolog.Logger,
) *Scheduler {
	logger = logger.With().Str("component", "scheduler").Logger()
	cronLogger := cronLogger{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		cfg:       cfg,
		pruner:    pruner,
		provider:  provider,
		benchmark: marketdata.NormalizeSymbol(benchmark),
		logger:    logger,
		now:       time.Now,
	}
}

// Start registers the jobs and starts the cron runner.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler is already running")
	}

	if _, err := s.cron.AddFunc(s.cfg.PruneSchedule, s.runPrune); err != nil {
		return fmt.Errorf("invalid cache prune schedule %q: %w", s.cfg.PruneSchedule, err)
	}
	if s.benchmark != "" {
		if _, err := s.cron.AddFunc(s.cfg.WarmSchedule, s.runWarm); err != nil {
			return fmt.Errorf("invalid benchmark warm schedule %q: %w", s.cfg.WarmSchedule, err)
		}
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("prune_schedule", s.cfg.PruneSchedule).
		Str("warm_schedule", s.cfg.WarmSchedule).
		Int("jobs", len(s.cron.Entries())).
		Msg("scheduler started")

	return nil
}

// Stop stops the cron runner and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info().Msg("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn().Msg("scheduler stop timed out")
	}
	s.running = false
}

// PruneCache removes expired market data and returns the number of entries removed.
func (s *Scheduler) PruneCache(ctx context.Context) (int64, error) {
	removed, err := s.pruner.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to prune market data cache: %w", err)
	}
	return removed, nil
}

// WarmBenchmark fetches the benchmark history for every lookback period so the
// first requests after a cache expiry do not pay for it.
func (s *Scheduler) WarmBenchmark(ctx context.Context) error {
	var errs []error
	for _, period := range []model.Period{
		model.PeriodOneMonth,
		model.PeriodThreeMonths,
		model.PeriodSixMonths,
		model.PeriodOneYear,
		model.PeriodTwoYears,
	} {
		if _, err := s.provider.PriceHistory(ctx, s.benchmark, period); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", s.benchmark, period, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) runPrune() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	removed, err := s.PruneCache(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("cache prune failed")
		return
	}
	s.logger.Info().Int64("removed", removed).Msg("market data cache pruned")
}

func (s *Scheduler) runWarm() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.WarmBenchmark(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("benchmark warm-up incomplete")
		return
	}
	s.logger.Info().Str("benchmark", s.benchmark).Msg("benchmark history warmed")
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
