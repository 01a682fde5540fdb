package risk

import (
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/apperrors"
)

// OutcomeStatus distinguishes a scored ticker from one that could not be scored.
type OutcomeStatus string

const (
	StatusScored OutcomeStatus = "scored"
	StatusNoData OutcomeStatus = "no_data"
)

// TickerOutcome is the evaluation of one portfolio entry.
type TickerOutcome struct {
	Ticker string          `json:"ticker"`
	Amount decimal.Decimal `json:"amount"`
	Status OutcomeStatus   `json:"status"`
	Result *Result         `json:"result,omitempty"`
	Reason string          `json:"reason,omitempty"`
}

// Scored builds the outcome of a successfully scored entry.
func Scored(ticker string, amount decimal.Decimal, result Result) TickerOutcome {
	return TickerOutcome{Ticker: ticker, Amount: amount, Status: StatusScored, Result: &result}
}

// NoData builds the outcome of an entry whose price history was unavailable.
func NoData(ticker string, amount decimal.Decimal, reason string) TickerOutcome {
	return TickerOutcome{Ticker: ticker, Amount: amount, Status: StatusNoData, Reason: reason}
}

// Contribution is one ticker's share of the portfolio score.
type Contribution struct {
	Ticker       string          `json:"ticker"`
	Score        float64         `json:"score"`
	Amount       decimal.Decimal `json:"amount"`
	Weight       float64         `json:"weight"`       // amount / total scored amount
	Contribution float64         `json:"contribution"` // score x amount / total scored amount
}

// PortfolioRisk is the amount-weighted aggregate over the scored entries.
type PortfolioRisk struct {
	Score         float64         `json:"score"`
	Label         Label           `json:"label"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Contributions []Contribution  `json:"contributions"`
	Unscored      []string        `json:"unscored"`
	Excluded      []string        `json:"excluded"`
}

// Aggregator computes portfolio-level risk.
type Aggregator struct {
	thresholds []float64
}

// NewAggregator creates an Aggregator that labels with the profile's thresholds.
func NewAggregator(profile Profile) *Aggregator {
	return &Aggregator{thresholds: profile.Thresholds}
}

// Aggregate returns sum(score_i * amount_i) / sum(amount_i) over scored entries
// with a positive amount. Entries without data are listed in Unscored and entries
// with a non-positive amount in Excluded; neither counts toward the total.
// It returns apperrors.ErrNothingToShow when nothing is left to weight.
func (a *Aggregator) Aggregate(outcomes []TickerOutcome) (PortfolioRisk, error) {
	total := decimal.Zero
	weighted := decimal.Zero
	unscored := []string{}
	excluded := []string{}

	type row struct {
		outcome TickerOutcome
		score   decimal.Decimal
	}
	var rows []row

	for _, o := range outcomes {
		if o.Status != StatusScored || o.Result == nil {
			unscored = append(unscored, o.Ticker)
			continue
		}
		if !o.Amount.IsPositive() {
			excluded = append(excluded, o.Ticker)
			continue
		}
		score := decimal.NewFromFloat(o.Result.Score)
		total = total.Add(o.Amount)
		weighted = weighted.Add(score.Mul(o.Amount))
		rows = append(rows, row{outcome: o, score: score})
	}

	if len(rows) == 0 {
		return PortfolioRisk{Unscored: unscored, Excluded: excluded, TotalAmount: decimal.Zero}, apperrors.ErrNothingToShow
	}

	contributions := make([]Contribution, len(rows))
	for i, r := range rows {
		contributions[i] = Contribution{
			Ticker:       r.outcome.Ticker,
			Score:        r.outcome.Result.Score,
			Amount:       r.outcome.Amount,
			Weight:       r.outcome.Amount.Div(total).InexactFloat64(),
			Contribution: r.score.Mul(r.outcome.Amount).Div(total).InexactFloat64(),
		}
	}

	score := clamp(weighted.Div(total).InexactFloat64(), 0, 100)
	return PortfolioRisk{
		Score:         score,
		Label:         LabelFor(score, a.thresholds),
		TotalAmount:   total,
		Contributions: contributions,
		Unscored:      unscored,
		Excluded:      excluded,
	}, nil
}
