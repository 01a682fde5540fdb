package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/api"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/config"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/database"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/logging"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/marketdata"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/metrics"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/repository"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/risk"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/scheduler"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/service"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/version"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure logging")
	}
	log.Logger = logger

	profile, err := risk.LoadProfileFile(cfg.Risk.ProfilePath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Risk.ProfilePath).Msg("failed to load risk profile")
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to open database")
	}
	defer db.Close()

	logger.Info().
		Str("version", version.Version).
		Str("database", cfg.Database.Path).
		Str("profile", profile.Name).
		Str("benchmark", cfg.Market.BenchmarkSymbol).
		Msg("starting risk analyzer")

	metrics.Register()

	// Market data: Yahoo behind a circuit breaker, behind the sqlite cache
	yahooClient := yahoo.NewFinanceClient(
		yahoo.WithHTTPClient(&http.Client{Timeout: cfg.Market.YahooTimeout}),
		yahoo.WithRateLimit(cfg.Market.YahooRateLimit),
		yahoo.WithLogger(logger),
	)
	cacheRepo := repository.NewMarketCacheRepository(db)
	provider := marketdata.NewCachedProvider(
		marketdata.NewYahooProvider(yahooClient, logger),
		cacheRepo,
		cfg.Market.CacheTTL,
		marketdata.WithCacheLogger(logger),
	)

	// Create services
	systemService := service.NewSystemService(db, cacheRepo, profile.Name, cfg.Market.BenchmarkSymbol)
	riskService := service.NewRiskService(provider, profile, cfg.Market.BenchmarkSymbol, logger)

	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.New(cfg.Scheduler, cacheRepo, provider, cfg.Market.BenchmarkSymbol, logger)
		if err := jobs.Start(); err != nil {
			logger.Fatal().Err(err).Msg("failed to start scheduler")
		}
	}

	// Create router
	router := api.NewRouter(systemService, riskService, logger, cfg)

	// Create HTTP server. A portfolio request fetches every ticker in turn,
	// so the write timeout is longer than a single upstream call.
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if jobs != nil {
		jobs.Stop(ctx)
	}

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	logger.Info().Msg("server exited")
}
