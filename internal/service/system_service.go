package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/apperrors"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/database"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/marketdata"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/model"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/repository"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db          *sql.DB
	cacheRepo   *repository.MarketCacheRepository
	profileName string
	benchmark   string
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB, cacheRepo *repository.MarketCacheRepository, profileName, benchmark string) *SystemService {
	return &SystemService{
		db:          db,
		cacheRepo:   cacheRepo,
		profileName: profileName,
		benchmark:   benchmark,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth(ctx context.Context) error {
	return database.HealthCheck(ctx, s.db)
}

// GetVersionInfo returns the application and schema versions and the active scoring setup.
func (s *SystemService) GetVersionInfo(ctx context.Context) (model.VersionInfo, error) {
	dbVersion, err := database.SchemaVersion(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToGetVersionInfo, err)
	}

	return model.VersionInfo{
		AppVersion:  version.Version,
		DbVersion:   strconv.FormatInt(dbVersion, 10),
		ProfileName: s.profileName,
		Benchmark:   s.benchmark,
		Features: map[string]bool{
			"market_cache":   true,
			"benchmark_beta": s.benchmark != "",
			"portfolio_risk": true,
			"custom_profile": s.profileName != "default",
		},
	}, nil
}

// InvalidateSymbol drops every cached history and fundamentals entry for symbol,
// so the next analysis fetches it fresh. Returns the number of entries removed.
func (s *SystemService) InvalidateSymbol(ctx context.Context, symbol string) (int64, error) {
	return s.cacheRepo.DeleteSymbol(ctx, marketdata.NormalizeSymbol(symbol))
}

// GetCacheStats counts entries in the market data cache.
func (s *SystemService) GetCacheStats(ctx context.Context) (model.CacheStats, error) {
	return s.cacheRepo.Stats(ctx, time.Now())
}
