package testutil

import (
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/model"
)

// =============================================================================
// FUNDAMENTALS FACTORY
// =============================================================================

// FundamentalsBuilder provides a fluent interface for creating fundamentals snapshots.
// The default snapshot is a profitable, moderately valued technology company.
type FundamentalsBuilder struct {
	snapshot model.FundamentalsSnapshot
}

// NewFundamentals creates a FundamentalsBuilder for symbol with every field reported.
//
// Example:
//
//	f := testutil.NewFundamentals("AAPL").WithForwardPE(30).Build()
func NewFundamentals(symbol string) *FundamentalsBuilder {
	return &FundamentalsBuilder{
		snapshot: model.FundamentalsSnapshot{
			Symbol:          symbol,
			ForwardPE:       Float(18),
			PriceToSales:    Float(3),
			DividendYield:   Float(0.02),
			DebtToEquity:    Float(60),
			OperatingMargin: Float(0.3),
			Beta:            Float(1.0),
			Sector:          "Technology",
			ESGTotal:        Float(20),
			AverageVolume:   Float(float64(DefaultVolume)),
			LatestClose:     Float(100),
		},
	}
}

// Empty clears every reported field, leaving only the symbol.
func (b *FundamentalsBuilder) Empty() *FundamentalsBuilder {
	b.snapshot = model.FundamentalsSnapshot{Symbol: b.snapshot.Symbol}
	return b
}

func (b *FundamentalsBuilder) WithForwardPE(v float64) *FundamentalsBuilder {
	b.snapshot.ForwardPE = Float(v)
	return b
}

func (b *FundamentalsBuilder) WithPriceToSales(v float64) *FundamentalsBuilder {
	b.snapshot.PriceToSales = Float(v)
	return b
}

func (b *FundamentalsBuilder) WithDividendYield(v float64) *FundamentalsBuilder {
	b.snapshot.DividendYield = Float(v)
	return b
}

func (b *FundamentalsBuilder) WithDebtToEquity(v float64) *FundamentalsBuilder {
	b.snapshot.DebtToEquity = Float(v)
	return b
}

func (b *FundamentalsBuilder) WithOperatingMargin(v float64) *FundamentalsBuilder {
	b.snapshot.OperatingMargin = Float(v)
	return b
}

func (b *FundamentalsBuilder) WithBeta(v float64) *FundamentalsBuilder {
	b.snapshot.Beta = Float(v)
	return b
}

func (b *FundamentalsBuilder) WithSector(sector string) *FundamentalsBuilder {
	b.snapshot.Sector = sector
	return b
}

func (b *FundamentalsBuilder) WithAverageVolume(v float64) *FundamentalsBuilder {
	b.snapshot.AverageVolume = Float(v)
	return b
}

func (b *FundamentalsBuilder) WithLatestClose(v float64) *FundamentalsBuilder {
	b.snapshot.LatestClose = Float(v)
	return b
}

// Build returns the snapshot.
func (b *FundamentalsBuilder) Build() model.FundamentalsSnapshot {
	return b.snapshot
}

// =============================================================================
// PORTFOLIO FACTORY
// =============================================================================

// Entry creates a portfolio entry with the given dollar amount.
func Entry(ticker string, amount float64) model.PortfolioEntry {
	return model.PortfolioEntry{
		Ticker: ticker,
		Amount: decimal.NewFromFloat(amount),
	}
}
