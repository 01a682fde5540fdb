package model

import "github.com/shopspring/decimal"

// PortfolioEntry is one caller-owned portfolio row: a ticker and the dollar amount invested.
// Only entries with a positive amount take part in portfolio weighting.
type PortfolioEntry struct {
	Ticker string          `json:"ticker"`
	Amount decimal.Decimal `json:"amount"`
}
