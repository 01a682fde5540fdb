package request

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/apperrors"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/model"
)

// PortfolioRiskRequest represents the request body for scoring a portfolio.
type PortfolioRiskRequest struct {
	Period  string                  `json:"period" validate:"omitempty,period"`
	Entries []PortfolioEntryRequest `json:"entries" validate:"required,min=1,max=100,dive"`
}

// PortfolioEntryRequest is one caller-owned portfolio row. Amount accepts a JSON
// number or a numeric string.
type PortfolioEntryRequest struct {
	Ticker string          `json:"ticker" validate:"required,ticker"`
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
}

// ToEntries converts the request rows to model entries with normalized tickers.
func (r PortfolioRiskRequest) ToEntries() []model.PortfolioEntry {
	entries := make([]model.PortfolioEntry, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = model.PortfolioEntry{
			Ticker: NormalizeTicker(e.Ticker),
			Amount: e.Amount,
		}
	}
	return entries
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// ParsePeriod parses a lookback period, returning model.DefaultPeriod for an empty value.
func ParsePeriod(value string) (model.Period, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return model.DefaultPeriod, nil
	}
	period := model.Period(strings.ToLower(value))
	if !model.ValidPeriods[period] {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidPeriod, value)
	}
	return period, nil
}
