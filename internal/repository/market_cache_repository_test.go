package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/apperrors"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/model"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/repository"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/testutil"
)

func newEntry(key, symbol string, fetched time.Time, ttl time.Duration) model.CacheEntry {
	return model.CacheEntry{
		Key:       key,
		Kind:      model.CacheKindHistory,
		Symbol:    symbol,
		Payload:   []byte(`{"symbol":"` + symbol + `"}`),
		FetchedAt: fetched,
		ExpiresAt: fetched.Add(ttl),
	}
}

func TestMarketCacheRepository_GetPut(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("returns stored entry before expiry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewMarketCacheRepository(db)

		if err := repo.Put(ctx, newEntry("history:AAPL:1y", "AAPL", now, time.Hour)); err != nil {
			t.Fatalf("Put() returned unexpected error: %v", err)
		}

		entry, err := repo.Get(ctx, "history:AAPL:1y", now.Add(30*time.Minute))
		if err != nil {
			t.Fatalf("Get() returned unexpected error: %v", err)
		}

		if entry.Symbol != "AAPL" {
			t.Errorf("Expected symbol AAPL, got %s", entry.Symbol)
		}
		if string(entry.Payload) != `{"symbol":"AAPL"}` {
			t.Errorf("Expected stored payload, got %s", entry.Payload)
		}
		if !entry.ExpiresAt.Equal(now.Add(time.Hour)) {
			t.Errorf("Expected expiry %v, got %v", now.Add(time.Hour), entry.ExpiresAt)
		}
	})

	t.Run("expired entry is a cache miss", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewMarketCacheRepository(db)

		if err := repo.Put(ctx, newEntry("history:AAPL:1y", "AAPL", now, time.Hour)); err != nil {
			t.Fatalf("Put() returned unexpected error: %v", err)
		}

		_, err := repo.Get(ctx, "history:AAPL:1y", now.Add(time.Hour))
		if !errors.Is(err, apperrors.ErrCacheMiss) {
			t.Errorf("Expected ErrCacheMiss, got %v", err)
		}
	})

	t.Run("unknown key is a cache miss", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewMarketCacheRepository(db)

		_, err := repo.Get(ctx, "fundamentals:MSFT", now)
		if !errors.Is(err, apperrors.ErrCacheMiss) {
			t.Errorf("Expected ErrCacheMiss, got %v", err)
		}
	})

	t.Run("put replaces an existing key", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewMarketCacheRepository(db)

		first := newEntry("history:AAPL:1y", "AAPL", now, time.Hour)
		second := first
		second.Payload = []byte(`{"symbol":"AAPL","points":[]}`)
		second.ExpiresAt = now.Add(2 * time.Hour)

		if err := repo.Put(ctx, first); err != nil {
			t.Fatalf("Put() returned unexpected error: %v", err)
		}
		if err := repo.Put(ctx, second); err != nil {
			t.Fatalf("Put() returned unexpected error: %v", err)
		}

		testutil.AssertRowCount(t, db, "market_cache", 1)

		entry, err := repo.Get(ctx, "history:AAPL:1y", now.Add(90*time.Minute))
		if err != nil {
			t.Fatalf("Get() returned unexpected error: %v", err)
		}
		if string(entry.Payload) != string(second.Payload) {
			t.Errorf("Expected replaced payload, got %s", entry.Payload)
		}
	})
}

func TestMarketCacheRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	db := testutil.SetupTestDB(t)
	repo := repository.NewMarketCacheRepository(db)

	entries := []model.CacheEntry{
		newEntry("history:AAPL:1y", "AAPL", now.Add(-2*time.Hour), time.Hour),
		newEntry("history:MSFT:1y", "MSFT", now.Add(-2*time.Hour), time.Hour),
		newEntry("history:NVDA:1y", "NVDA", now, time.Hour),
	}
	for _, e := range entries {
		if err := repo.Put(ctx, e); err != nil {
			t.Fatalf("Put() returned unexpected error: %v", err)
		}
	}

	stats, err := repo.Stats(ctx, now)
	if err != nil {
		t.Fatalf("Stats() returned unexpected error: %v", err)
	}
	if stats.Entries != 3 || stats.Expired != 2 {
		t.Errorf("Expected 3 entries with 2 expired, got %+v", stats)
	}

	removed, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired() returned unexpected error: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 removed entries, got %d", removed)
	}

	testutil.AssertRowCount(t, db, "market_cache", 1)
}

func TestMarketCacheRepository_DeleteSymbol(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	db := testutil.SetupTestDB(t)
	repo := repository.NewMarketCacheRepository(db)

	aapl := newEntry("fundamentals:AAPL", "AAPL", now, time.Hour)
	aapl.Kind = model.CacheKindFundamentals
	for _, e := range []model.CacheEntry{
		newEntry("history:AAPL:1y", "AAPL", now, time.Hour),
		aapl,
		newEntry("history:MSFT:1y", "MSFT", now, time.Hour),
	} {
		if err := repo.Put(ctx, e); err != nil {
			t.Fatalf("Put() returned unexpected error: %v", err)
		}
	}

	removed, err := repo.DeleteSymbol(ctx, "AAPL")
	if err != nil {
		t.Fatalf("DeleteSymbol() returned unexpected error: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 removed entries, got %d", removed)
	}

	testutil.AssertRowCount(t, db, "market_cache", 1)
}
