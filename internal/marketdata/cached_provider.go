package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/apperrors"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/metrics"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/model"
)

// CacheStore persists cached market data payloads.
type CacheStore interface {
	Get(ctx context.Context, key string, now time.Time) (model.CacheEntry, error)
	Put(ctx context.Context, entry model.CacheEntry) error
}

// DefaultFetchTimeout bounds a coalesced upstream fetch.
const DefaultFetchTimeout = time.Minute

// CachedProvider wraps a Provider with a TTL cache and coalesces concurrent
// fetches of the same key. Cache failures are logged and bypassed; empty price
// histories are never stored.
//
// A coalesced fetch is detached from the cancellation of the caller that
// started it, so one caller going away does not fail the others waiting on
// the same key. Each caller still stops waiting when its own context is done.
type CachedProvider struct {
	next         Provider
	store        CacheStore
	ttl          time.Duration
	fetchTimeout time.Duration
	group        singleflight.Group
	now          func() time.Time
	logger       zerolog.Logger
}

// CachedProviderOption configures a CachedProvider.
type CachedProviderOption func(*CachedProvider)

// WithClock overrides the time source.
func WithClock(now func() time.Time) CachedProviderOption {
	return func(p *CachedProvider) {
		p.now = now
	}
}

// WithFetchTimeout bounds each coalesced upstream fetch.
func WithFetchTimeout(timeout time.Duration) CachedProviderOption {
	return func(p *CachedProvider) {
		if timeout > 0 {
			p.fetchTimeout = timeout
		}
	}
}

// WithCacheLogger sets a logger.
func WithCacheLogger(logger zerolog.Logger) CachedProviderOption {
	return func(p *CachedProvider) {
		p.logger = logger
	}
}

// NewCachedProvider creates a CachedProvider in front of next.
func NewCachedProvider(next Provider, store CacheStore, ttl time.Duration, opts ...CachedProviderOption) *CachedProvider {
	p := &CachedProvider{
		next:         next,
		store:        store,
		ttl:          ttl,
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HistoryKey is the cache key for a price history.
func HistoryKey(symbol string, period model.Period) string {
	return model.CacheKindHistory + ":" + symbol + ":" + string(period)
}

// FundamentalsKey is the cache key for a fundamentals snapshot.
func FundamentalsKey(symbol string) string {
	return model.CacheKindFundamentals + ":" + symbol
}

// PriceHistory implements Provider.
func (p *CachedProvider) PriceHistory(ctx context.Context, symbol string, period model.Period) (model.PriceSeries, error) {
	key := HistoryKey(symbol, period)

	var series model.PriceSeries
	if p.lookup(ctx, key, model.CacheKindHistory, &series) {
		return series, nil
	}

	v, err := p.shared(ctx, key, func(fetchCtx context.Context) (interface{}, error) {
		fetched, err := p.next.PriceHistory(fetchCtx, symbol, period)
		if err != nil {
			return nil, err
		}
		if !fetched.Empty() {
			p.save(fetchCtx, key, model.CacheKindHistory, symbol, fetched)
		}
		return fetched, nil
	})
	if err != nil {
		return model.PriceSeries{}, err
	}

	return v.(model.PriceSeries), nil
}

// Fundamentals implements Provider.
func (p *CachedProvider) Fundamentals(ctx context.Context, symbol string) (model.FundamentalsSnapshot, error) {
	key := FundamentalsKey(symbol)

	var snapshot model.FundamentalsSnapshot
	if p.lookup(ctx, key, model.CacheKindFundamentals, &snapshot) {
		return snapshot, nil
	}

	v, err := p.shared(ctx, key, func(fetchCtx context.Context) (interface{}, error) {
		fetched, err := p.next.Fundamentals(fetchCtx, symbol)
		if err != nil {
			return nil, err
		}
		p.save(fetchCtx, key, model.CacheKindFundamentals, symbol, fetched)
		return fetched, nil
	})
	if err != nil {
		return model.FundamentalsSnapshot{}, err
	}

	return v.(model.FundamentalsSnapshot), nil
}

// shared runs fetch once per key across concurrent callers. The fetch keeps the
// values of ctx but not its cancellation, and is bounded by fetchTimeout.
func (p *CachedProvider) shared(ctx context.Context, key string, fetch func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := p.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.fetchTimeout)
		defer cancel()
		return fetch(fetchCtx)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *CachedProvider) lookup(ctx context.Context, key, kind string, out any) bool {
	entry, err := p.store.Get(ctx, key, p.now())
	if err != nil {
		if !errors.Is(err, apperrors.ErrCacheMiss) {
			p.logger.Warn().Err(err).Str("key", key).Msg("market data cache read failed")
		}
		metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return false
	}

	if err := json.Unmarshal(entry.Payload, out); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return false
	}

	metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
	return true
}

func (p *CachedProvider) save(ctx context.Context, key, kind, symbol string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("failed to encode cache entry")
		return
	}

	now := p.now()
	entry := model.CacheEntry{
		Key:       key,
		Kind:      kind,
		Symbol:    symbol,
		Payload:   payload,
		FetchedAt: now,
		ExpiresAt: now.Add(p.ttl),
	}
	if err := p.store.Put(ctx, entry); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("market data cache write failed")
	}
}
