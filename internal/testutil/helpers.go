package testutil

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/marketdata"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/repository"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/risk"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/service"
)

// BenchmarkSymbol is the benchmark the test services measure beta against.
const BenchmarkSymbol = "^GSPC"

// NewTestRiskService creates a RiskService on provider with the default profile.
func NewTestRiskService(t *testing.T, provider marketdata.Provider) *service.RiskService {
	t.Helper()

	return service.NewRiskService(
		provider,
		risk.DefaultProfile(),
		BenchmarkSymbol,
		zerolog.Nop(),
	)
}

// NewTestSystemService creates a SystemService on db with the default profile.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(
		db,
		repository.NewMarketCacheRepository(db),
		risk.DefaultProfile().Name,
		BenchmarkSymbol,
	)
}

// NewMockProviderWithBenchmark creates a MockProvider that already serves an
// n-day benchmark series with non-zero variance.
func NewMockProviderWithBenchmark(n int) *MockProvider {
	return NewMockProvider().WithSeries(NewSeries(BenchmarkSymbol, OscillatingCloses(4000, 0.01, n)))
}
