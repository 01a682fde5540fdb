package risk

import "math"

// ratioScore maps value/ceiling onto 0-100.
func ratioScore(value, ceiling float64) float64 {
	return clamp(value/ceiling*100, 0, 100)
}

// scoreForwardPE scores forward P/E against its ceiling. Missing or
// non-positive earnings score the fallback.
func scoreForwardPE(pe *float64, p Profile) (float64, bool) {
	if pe == nil || *pe <= 0 || math.IsNaN(*pe) {
		return p.Fallbacks.ForwardPE, false
	}
	return ratioScore(*pe, p.Scales.ForwardPE), true
}

func scorePriceToSales(ps *float64, p Profile) (float64, bool) {
	if ps == nil || *ps <= 0 || math.IsNaN(*ps) {
		return p.Fallbacks.PriceToSales, false
	}
	return ratioScore(*ps, p.Scales.PriceToSales), true
}

// scoreDebtToEquity scores leverage. Negative equity is maximum risk.
func scoreDebtToEquity(de *float64, p Profile) (float64, bool) {
	if de == nil || math.IsNaN(*de) {
		return p.Fallbacks.DebtToEquity, false
	}
	if *de < 0 {
		return 100, true
	}
	return ratioScore(*de, p.Scales.DebtToEquity), true
}

// scoreOperatingMargin inverts the margin: a margin at the ceiling scores 0,
// a zero or negative margin scores 100.
func scoreOperatingMargin(margin *float64, p Profile) (float64, bool) {
	if margin == nil || math.IsNaN(*margin) {
		return p.Fallbacks.OperatingMargin, false
	}
	return clamp((1-*margin/p.Scales.OperatingMargin)*100, 0, 100), true
}

// scoreDividendYield is binary: any positive yield lowers risk.
func scoreDividendYield(yield *float64, p Profile) (float64, bool) {
	if yield == nil || math.IsNaN(*yield) {
		return p.Fallbacks.DividendNone, false
	}
	if *yield > 0 {
		return clamp(p.Fallbacks.DividendPaid, 0, 100), true
	}
	return clamp(p.Fallbacks.DividendNone, 0, 100), true
}

func scoreVolatility(returns []float64, p Profile) (float64, bool) {
	if len(returns) < 2 {
		return p.Fallbacks.PriceHistory, false
	}
	return ratioScore(StdDev(returns), p.Scales.Volatility), true
}

func scoreDrawdown(closes []float64, p Profile) (float64, bool) {
	if len(closes) < 2 {
		return p.Fallbacks.PriceHistory, false
	}
	return ratioScore(math.Abs(MaxDrawdown(closes)), p.Scales.Drawdown), true
}

func scoreBeta(beta *float64, p Profile) (float64, bool) {
	if beta == nil || math.IsNaN(*beta) {
		return p.Fallbacks.Beta, false
	}
	return ratioScore(math.Abs(*beta), p.Scales.Beta), true
}

// scoreLiquidity is an inverse ratio: volume at the reference scores 100 and
// scores fall as volume rises.
func scoreLiquidity(volume *float64, p Profile) (float64, bool) {
	if volume == nil || *volume <= 0 || math.IsNaN(*volume) {
		return p.Fallbacks.Liquidity, false
	}
	return clamp(p.Scales.ReferenceVolume / *volume * 100, 0, 100), true
}

func scoreESG(esg *float64, p Profile) (float64, bool) {
	if esg == nil || *esg < 0 || math.IsNaN(*esg) {
		return p.Fallbacks.ESG, false
	}
	return ratioScore(*esg, p.Scales.ESG), true
}

func scoreSector(sector string, p Profile) (float64, bool) {
	if v, ok := p.SectorRisk[sector]; ok {
		return clamp(v, 0, 100), true
	}
	return p.Fallbacks.Sector, false
}

// holds evaluates every condition set on the booster against the inputs.
func (b Booster) holds(in Inputs) bool {
	if b.MinPriceToSales != nil && (in.PriceToSales == nil || *in.PriceToSales < *b.MinPriceToSales) {
		return false
	}
	if b.MinForwardPE != nil && (in.ForwardPE == nil || *in.ForwardPE < *b.MinForwardPE) {
		return false
	}
	if b.MaxOperatingMargin != nil && (in.OperatingMargin == nil || *in.OperatingMargin >= *b.MaxOperatingMargin) {
		return false
	}
	if b.MinDebtToEquity != nil && (in.DebtToEquity == nil || *in.DebtToEquity < *b.MinDebtToEquity) {
		return false
	}
	if b.MinVolatility != nil && (in.Volatility == nil || *in.Volatility < *b.MinVolatility) {
		return false
	}
	return true
}
