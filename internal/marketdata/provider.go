// Package marketdata supplies the price histories and fundamentals the risk scorer consumes.
package marketdata

import (
	"context"
	"strings"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/model"
)

// Provider fetches market data for a single symbol.
//
// PriceHistory returns an empty series, not an error, when the provider knows the
// symbol but has no prices for the window. Fundamentals returns whatever subset of
// the snapshot the provider could supply.
type Provider interface {
	PriceHistory(ctx context.Context, symbol string, period model.Period) (model.PriceSeries, error)
	Fundamentals(ctx context.Context, symbol string) (model.FundamentalsSnapshot, error)
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
