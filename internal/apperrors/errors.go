package apperrors

import "errors"

// Market data errors describe why a ticker could not be evaluated.
var (
	// ErrNoDataAvailable indicates the price history for a ticker is empty or could not be fetched.
	// A ticker in this state is reported as unscored and excluded from portfolio aggregation.
	ErrNoDataAvailable = errors.New("no data available")

	// ErrSymbolNotFound indicates the market data provider does not know the symbol.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrProviderUnavailable indicates the market data provider is failing or the circuit is open.
	ErrProviderUnavailable = errors.New("market data provider unavailable")

	// ErrCacheMiss indicates no unexpired cache entry exists for a key.
	ErrCacheMiss = errors.New("cache miss")
)

// Aggregation errors.
var (
	// ErrNothingToShow indicates no ticker in a portfolio could be scored,
	// so there is no aggregate result.
	ErrNothingToShow = errors.New("nothing to show")
)

// Validation errors for request input and configuration.
var (
	ErrInvalidTicker  = errors.New("invalid ticker symbol")
	ErrInvalidPeriod  = errors.New("invalid lookback period")
	ErrInvalidProfile = errors.New("invalid risk profile")
)

// Operation failure errors.
var (
	ErrFailedToScoreTicker      = errors.New("failed to score ticker")
	ErrFailedToAnalyzePortfolio = errors.New("failed to analyze portfolio")
	ErrFailedToGetVersionInfo   = errors.New("failed to get version information")
)
