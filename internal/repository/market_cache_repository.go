package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/apperrors"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/model"
)

// MarketCacheRepository provides data access methods for the market_cache table.
// Timestamps are stored as unix seconds.
type MarketCacheRepository struct {
	db *sql.DB
}

// NewMarketCacheRepository creates a new MarketCacheRepository with the provided database connection.
func NewMarketCacheRepository(db *sql.DB) *MarketCacheRepository {
	return &MarketCacheRepository{db: db}
}

// Get retrieves the cache entry for key if it has not expired at now.
// Returns apperrors.ErrCacheMiss when no valid entry exists.
func (r *MarketCacheRepository) Get(ctx context.Context, key string, now time.Time) (model.CacheEntry, error) {
	query := `
          SELECT cache_key, kind, symbol, payload, fetched_at, expires_at
          FROM market_cache
          WHERE cache_key = ? AND expires_at > ?
      `

	var entry model.CacheEntry
	var fetchedAt, expiresAt int64

	err := r.db.QueryRowContext(ctx, query, key, now.Unix()).Scan(
		&entry.Key,
		&entry.Kind,
		&entry.Symbol,
		&entry.Payload,
		&fetchedAt,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CacheEntry{}, apperrors.ErrCacheMiss
		}
		return model.CacheEntry{}, fmt.Errorf("failed to query market_cache table: %w", err)
	}

	entry.FetchedAt = time.Unix(fetchedAt, 0).UTC()
	entry.ExpiresAt = time.Unix(expiresAt, 0).UTC()

	return entry, nil
}

// Put inserts or replaces the cache entry with the same key.
func (r *MarketCacheRepository) Put(ctx context.Context, entry model.CacheEntry) error {
	query := `
          INSERT INTO market_cache (cache_key, kind, symbol, payload, fetched_at, expires_at)
          VALUES (?, ?, ?, ?, ?, ?)
          ON CONFLICT(cache_key) DO UPDATE SET
              kind = excluded.kind,
              symbol = excluded.symbol,
              payload = excluded.payload,
              fetched_at = excluded.fetched_at,
              expires_at = excluded.expires_at
      `

	_, err := r.db.ExecContext(ctx, query,
		entry.Key,
		entry.Kind,
		entry.Symbol,
		entry.Payload,
		entry.FetchedAt.Unix(),
		entry.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert market_cache entry %s: %w", entry.Key, err)
	}

	return nil
}

// DeleteExpired removes every entry that expired at or before now and returns the number removed.
func (r *MarketCacheRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM market_cache WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired market_cache entries: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted market_cache entries: %w", err)
	}

	return removed, nil
}

// DeleteSymbol removes every cached entry for symbol and returns the number removed.
func (r *MarketCacheRepository) DeleteSymbol(ctx context.Context, symbol string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM market_cache WHERE symbol = ?`, symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to delete market_cache entries for %s: %w", symbol, err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted market_cache entries: %w", err)
	}

	return removed, nil
}

// Stats counts total and expired entries at now.
func (r *MarketCacheRepository) Stats(ctx context.Context, now time.Time) (model.CacheStats, error) {
	query := `
          SELECT COUNT(*), COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0)
          FROM market_cache
      `

	var stats model.CacheStats
	if err := r.db.QueryRowContext(ctx, query, now.Unix()).Scan(&stats.Entries, &stats.Expired); err != nil {
		return model.CacheStats{}, fmt.Errorf("failed to query market_cache stats: %w", err)
	}

	return stats, nil
}
