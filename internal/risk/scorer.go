// Package risk turns a ticker's fundamentals and price history into a 0-100 risk
// score, and aggregates per-ticker scores into a portfolio score.
package risk

import (
	"fmt"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/apperrors"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/model"
)

// Inputs are the raw measures an evaluation was computed from. Nil means unknown.
type Inputs struct {
	ForwardPE       *float64 `json:"forwardPE,omitempty"`
	PriceToSales    *float64 `json:"psRatio,omitempty"`
	DebtToEquity    *float64 `json:"debtToEquity,omitempty"`
	OperatingMargin *float64 `json:"operatingMargin,omitempty"`
	DividendYield   *float64 `json:"dividendYield,omitempty"`
	Volatility      *float64 `json:"volatility,omitempty"`
	MaxDrawdown     *float64 `json:"maxDrawdown,omitempty"`
	Beta            *float64 `json:"beta,omitempty"`
	BetaSource      string   `json:"betaSource,omitempty"`
	AverageVolume   *float64 `json:"averageVolume,omitempty"`
	LatestClose     *float64 `json:"latestClose,omitempty"`
	ESGTotal        *float64 `json:"esgTotal,omitempty"`
	Sector          string   `json:"sector,omitempty"`
	Observations    int      `json:"observations"`
}

// Beta sources.
const (
	BetaFromBenchmark = "benchmark"
	BetaFromProvider  = "provider"
)

// Breakdown maps an indicator to its weighted contribution (sub-score x weight).
// Its values sum to Result.Composite.
type Breakdown map[string]float64

// Result is the evaluation of one ticker.
type Result struct {
	Ticker      string             `json:"ticker"`
	Score       float64            `json:"score"`
	Composite   float64            `json:"composite"`
	Label       Label              `json:"label"`
	SubScores   map[string]float64 `json:"subScores"`
	Breakdown   Breakdown          `json:"breakdown"`
	Substituted []string           `json:"substituted"`
	Boosters    []string           `json:"boosters"`
	Distressed  bool               `json:"distressed"`
	Inputs      Inputs             `json:"inputs"`
}

// Partial reports whether any indicator fell back to a fixed sub-score.
func (r Result) Partial() bool {
	return len(r.Substituted) > 0
}

// Scorer computes ticker risk scores under a fixed profile.
type Scorer struct {
	profile Profile
}

// NewScorer creates a Scorer. The profile is assumed valid (see Profile.Validate).
func NewScorer(profile Profile) *Scorer {
	return &Scorer{profile: profile}
}

// Profile returns the scoring profile in use.
func (s *Scorer) Profile() Profile {
	return s.profile
}

// Score evaluates one ticker. The benchmark series is only used for beta and may be empty.
// An empty price series yields apperrors.ErrNoDataAvailable; missing fundamentals never fail.
func (s *Scorer) Score(f model.FundamentalsSnapshot, series, benchmark model.PriceSeries) (Result, error) {
	if series.Empty() {
		return Result{}, fmt.Errorf("%s: %w", f.Symbol, apperrors.ErrNoDataAvailable)
	}

	p := s.profile
	in := collectInputs(f, series, benchmark)
	closes := series.Closes()
	returns := SimpleReturns(closes)

	sub := make(map[string]float64, len(Indicators))
	var substituted []string
	record := func(name string, score float64, measured bool) {
		sub[name] = clamp(score, 0, 100)
		if !measured {
			substituted = append(substituted, name)
		}
	}

	v, ok := scoreVolatility(returns, p)
	record(IndicatorVolatility, v, ok)
	v, ok = scoreDrawdown(closes, p)
	record(IndicatorMaxDrawdown, v, ok)
	v, ok = scoreBeta(in.Beta, p)
	record(IndicatorBeta, v, ok)
	v, ok = scoreSector(in.Sector, p)
	record(IndicatorSector, v, ok)
	record(IndicatorConcentration, p.Fallbacks.Concentration, true)
	v, ok = scoreDebtToEquity(in.DebtToEquity, p)
	record(IndicatorDebtToEquity, v, ok)
	v, ok = scoreOperatingMargin(in.OperatingMargin, p)
	record(IndicatorOperatingMargin, v, ok)
	v, ok = scoreDividendYield(in.DividendYield, p)
	record(IndicatorDividendYield, v, ok)
	v, ok = scorePriceToSales(in.PriceToSales, p)
	record(IndicatorPriceToSales, v, ok)
	v, ok = scoreForwardPE(in.ForwardPE, p)
	record(IndicatorForwardPE, v, ok)
	v, ok = scoreLiquidity(in.AverageVolume, p)
	record(IndicatorLiquidity, v, ok)
	v, ok = scoreESG(in.ESGTotal, p)
	record(IndicatorESG, v, ok)

	breakdown := make(Breakdown, len(Indicators))
	var composite float64
	for _, name := range Indicators {
		contribution := sub[name] * p.Weights[name]
		breakdown[name] = contribution
		composite += contribution
	}

	score := composite
	boosters := []string{}
	for _, b := range p.Boosters {
		if b.holds(in) {
			score *= b.Factor
			boosters = append(boosters, b.Name)
		}
	}

	distressed := isDistressed(in, p.Distress)
	if distressed {
		score += p.Distress.Penalty
	}
	score = clamp(score, 0, 100)

	if substituted == nil {
		substituted = []string{}
	}

	return Result{
		Ticker:      f.Symbol,
		Score:       score,
		Composite:   composite,
		Label:       LabelFor(score, p.Thresholds),
		SubScores:   sub,
		Breakdown:   breakdown,
		Substituted: substituted,
		Boosters:    boosters,
		Distressed:  distressed,
		Inputs:      in,
	}, nil
}

// collectInputs derives the raw measures from the snapshot and price series.
// Series-derived values win over snapshot values where both exist, except for
// average volume, where the provider's longer-horizon figure is preferred.
func collectInputs(f model.FundamentalsSnapshot, series, benchmark model.PriceSeries) Inputs {
	in := Inputs{
		ForwardPE:       f.ForwardPE,
		PriceToSales:    f.PriceToSales,
		DebtToEquity:    f.DebtToEquity,
		OperatingMargin: f.OperatingMargin,
		DividendYield:   f.DividendYield,
		ESGTotal:        f.ESGTotal,
		Sector:          f.Sector,
		Observations:    len(series.Points),
	}

	closes := series.Closes()
	if returns := SimpleReturns(closes); len(returns) >= 2 {
		vol := StdDev(returns)
		in.Volatility = &vol
	}
	if len(closes) >= 2 {
		mdd := MaxDrawdown(closes)
		in.MaxDrawdown = &mdd
	}

	if beta, ok := Beta(series, benchmark); ok {
		in.Beta = &beta
		in.BetaSource = BetaFromBenchmark
	} else if f.Beta != nil {
		in.Beta = f.Beta
		in.BetaSource = BetaFromProvider
	}

	if latest, ok := series.Latest(); ok {
		c := latest.Close
		in.LatestClose = &c
	} else if f.LatestClose != nil {
		in.LatestClose = f.LatestClose
	}

	if f.AverageVolume != nil && *f.AverageVolume > 0 {
		in.AverageVolume = f.AverageVolume
	} else if avg, ok := series.AverageVolume(); ok && avg > 0 {
		in.AverageVolume = &avg
	}

	return in
}

func isDistressed(in Inputs, d Distress) bool {
	if in.LatestClose != nil && *in.LatestClose < d.MinPrice {
		return true
	}
	if in.AverageVolume != nil && *in.AverageVolume < d.MinVolume {
		return true
	}
	return false
}
