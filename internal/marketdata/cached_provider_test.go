package marketdata_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/marketdata"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/model"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/repository"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/testutil"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func setupCachedProvider(t *testing.T, next marketdata.Provider) (*marketdata.CachedProvider, *clock) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repo := repository.NewMarketCacheRepository(db)
	c := &clock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	return marketdata.NewCachedProvider(next, repo, time.Hour, marketdata.WithClock(c.Now)), c
}

func TestCachedProvider_PriceHistory(t *testing.T) {
	ctx := context.Background()
	series := testutil.NewSeries("AAPL", []float64{100, 101, 102})

	t.Run("second lookup is served from cache", func(t *testing.T) {
		mock := testutil.NewMockProvider().WithSeries(series)
		provider, _ := setupCachedProvider(t, mock)

		for i := 0; i < 2; i++ {
			got, err := provider.PriceHistory(ctx, "AAPL", model.PeriodOneYear)
			if err != nil {
				t.Fatalf("PriceHistory() returned unexpected error: %v", err)
			}
			if len(got.Points) != 3 {
				t.Fatalf("Expected 3 points, got %d", len(got.Points))
			}
			if !got.Points[2].Date.Equal(series.Points[2].Date) {
				t.Errorf("Expected date %v after round trip, got %v", series.Points[2].Date, got.Points[2].Date)
			}
		}

		if calls := mock.HistoryCallCount("AAPL"); calls != 1 {
			t.Errorf("Expected 1 upstream call, got %d", calls)
		}
	})

	t.Run("periods are cached separately", func(t *testing.T) {
		mock := testutil.NewMockProvider().WithSeries(series)
		provider, _ := setupCachedProvider(t, mock)

		for _, period := range []model.Period{model.PeriodOneYear, model.PeriodOneMonth} {
			if _, err := provider.PriceHistory(ctx, "AAPL", period); err != nil {
				t.Fatalf("PriceHistory() returned unexpected error: %v", err)
			}
		}

		if calls := mock.HistoryCallCount("AAPL"); calls != 2 {
			t.Errorf("Expected 2 upstream calls, got %d", calls)
		}
	})

	t.Run("expired entries are refetched", func(t *testing.T) {
		mock := testutil.NewMockProvider().WithSeries(series)
		provider, c := setupCachedProvider(t, mock)

		if _, err := provider.PriceHistory(ctx, "AAPL", model.PeriodOneYear); err != nil {
			t.Fatalf("PriceHistory() returned unexpected error: %v", err)
		}
		c.Advance(2 * time.Hour)
		if _, err := provider.PriceHistory(ctx, "AAPL", model.PeriodOneYear); err != nil {
			t.Fatalf("PriceHistory() returned unexpected error: %v", err)
		}

		if calls := mock.HistoryCallCount("AAPL"); calls != 2 {
			t.Errorf("Expected 2 upstream calls, got %d", calls)
		}
	})

	t.Run("empty histories are not cached", func(t *testing.T) {
		mock := testutil.NewMockProvider()
		provider, _ := setupCachedProvider(t, mock)

		for i := 0; i < 2; i++ {
			got, err := provider.PriceHistory(ctx, "GONE", model.PeriodOneYear)
			if err != nil {
				t.Fatalf("PriceHistory() returned unexpected error: %v", err)
			}
			if !got.Empty() {
				t.Errorf("Expected empty series, got %d points", len(got.Points))
			}
		}

		if calls := mock.HistoryCallCount("GONE"); calls != 2 {
			t.Errorf("Expected 2 upstream calls, got %d", calls)
		}
	})

	t.Run("errors are returned and not cached", func(t *testing.T) {
		upstream := errors.New("upstream down")
		mock := testutil.NewMockProvider().WithHistoryError("AAPL", upstream)
		provider, _ := setupCachedProvider(t, mock)

		for i := 0; i < 2; i++ {
			_, err := provider.PriceHistory(ctx, "AAPL", model.PeriodOneYear)
			if !errors.Is(err, upstream) {
				t.Errorf("Expected upstream error, got %v", err)
			}
		}

		if calls := mock.HistoryCallCount("AAPL"); calls != 2 {
			t.Errorf("Expected 2 upstream calls, got %d", calls)
		}
	})
}

func TestCachedProvider_Fundamentals(t *testing.T) {
	ctx := context.Background()
	snapshot := testutil.NewFundamentals("MSFT").WithForwardPE(31).Build()
	mock := testutil.NewMockProvider().WithSnapshot(snapshot)
	provider, _ := setupCachedProvider(t, mock)

	for i := 0; i < 3; i++ {
		got, err := provider.Fundamentals(ctx, "MSFT")
		if err != nil {
			t.Fatalf("Fundamentals() returned unexpected error: %v", err)
		}
		if got.ForwardPE == nil || *got.ForwardPE != 31 {
			t.Errorf("Expected forward PE 31, got %v", got.ForwardPE)
		}
	}

	fetches := 0
	for _, call := range mock.CallLog() {
		if call == "fundamentals:MSFT" {
			fetches++
		}
	}
	if fetches != 1 {
		t.Errorf("Expected 1 upstream fundamentals call, got %d", fetches)
	}
}

// gatedProvider blocks every history fetch until the gate is closed.
type gatedProvider struct {
	gate  chan struct{}
	calls atomic.Int32
}

func (g *gatedProvider) PriceHistory(_ context.Context, symbol string, period model.Period) (model.PriceSeries, error) {
	g.calls.Add(1)
	<-g.gate
	series := testutil.NewSeries(symbol, []float64{10, 11, 12})
	series.Period = period
	return series, nil
}

func (g *gatedProvider) Fundamentals(_ context.Context, symbol string) (model.FundamentalsSnapshot, error) {
	return model.FundamentalsSnapshot{Symbol: symbol}, nil
}

func TestCachedProvider_CoalescesConcurrentFetches(t *testing.T) {
	upstream := &gatedProvider{gate: make(chan struct{})}
	provider, _ := setupCachedProvider(t, upstream)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := provider.PriceHistory(context.Background(), "NVDA", model.PeriodOneYear)
			errs <- err
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(upstream.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("PriceHistory() returned unexpected error: %v", err)
		}
	}

	if calls := upstream.calls.Load(); calls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", calls)
	}
}

// contextGatedProvider blocks every history fetch until the gate is closed or
// the fetch context is done.
type contextGatedProvider struct {
	gate  chan struct{}
	calls atomic.Int32
}

func (g *contextGatedProvider) PriceHistory(ctx context.Context, symbol string, period model.Period) (model.PriceSeries, error) {
	g.calls.Add(1)
	select {
	case <-ctx.Done():
		return model.PriceSeries{}, ctx.Err()
	case <-g.gate:
	}
	series := testutil.NewSeries(symbol, []float64{10, 11, 12})
	series.Period = period
	return series, nil
}

func (g *contextGatedProvider) Fundamentals(_ context.Context, symbol string) (model.FundamentalsSnapshot, error) {
	return model.FundamentalsSnapshot{Symbol: symbol}, nil
}

func waitForCalls(t *testing.T, calls *atomic.Int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < want {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d upstream call(s), got %d", want, calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestCachedProvider_CanceledCallerDoesNotFailOthers tests coalesced fetches
// when the caller that started the fetch goes away.
//
// WHY: Concurrent requests for the same ticker share one upstream fetch. A client
// disconnecting must not turn another client's ticker into "no data".
func TestCachedProvider_CanceledCallerDoesNotFailOthers(t *testing.T) {
	upstream := &contextGatedProvider{gate: make(chan struct{})}
	provider, _ := setupCachedProvider(t, upstream)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := provider.PriceHistory(firstCtx, "NVDA", model.PeriodOneYear)
		firstErr <- err
	}()
	waitForCalls(t, &upstream.calls, 1)

	type result struct {
		series model.PriceSeries
		err    error
	}
	second := make(chan result, 1)
	go func() {
		series, err := provider.PriceHistory(context.Background(), "NVDA", model.PeriodOneYear)
		second <- result{series: series, err: err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected the canceled caller to get context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Canceled caller kept waiting on the shared fetch")
	}

	close(upstream.gate)
	select {
	case got := <-second:
		if got.err != nil {
			t.Fatalf("PriceHistory() returned unexpected error: %v", got.err)
		}
		if len(got.series.Points) != 3 {
			t.Errorf("Expected 3 points, got %d", len(got.series.Points))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Waiting caller never received the shared fetch")
	}

	if calls := upstream.calls.Load(); calls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", calls)
	}

	// The shared fetch was stored even though its initiator had gone away.
	if _, err := provider.PriceHistory(context.Background(), "NVDA", model.PeriodOneYear); err != nil {
		t.Fatalf("PriceHistory() returned unexpected error: %v", err)
	}
	if calls := upstream.calls.Load(); calls != 1 {
		t.Errorf("Expected the cached series to be served, got %d upstream calls", calls)
	}
}

func TestCachedProvider_FetchTimeout(t *testing.T) {
	upstream := &contextGatedProvider{gate: make(chan struct{})}
	db := testutil.SetupTestDB(t)
	provider := marketdata.NewCachedProvider(
		upstream,
		repository.NewMarketCacheRepository(db),
		time.Hour,
		marketdata.WithFetchTimeout(20*time.Millisecond),
	)

	_, err := provider.PriceHistory(context.Background(), "SLOW", model.PeriodOneYear)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
}
