package risk

import (
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/apperrors"
)

// Indicator names. They are the keys of weights, sub-scores and the breakdown.
const (
	IndicatorVolatility      = "volatility"
	IndicatorMaxDrawdown     = "max_drawdown"
	IndicatorBeta            = "beta"
	IndicatorSector          = "sector"
	IndicatorConcentration   = "concentration"
	IndicatorDebtToEquity    = "debt_to_equity"
	IndicatorOperatingMargin = "operating_margin"
	IndicatorDividendYield   = "dividend_yield"
	IndicatorPriceToSales    = "ps_ratio"
	IndicatorForwardPE       = "forward_pe"
	IndicatorLiquidity       = "liquidity"
	IndicatorESG             = "esg"
)

// Indicators lists every indicator in display order.
var Indicators = []string{
	IndicatorVolatility,
	IndicatorMaxDrawdown,
	IndicatorBeta,
	IndicatorSector,
	IndicatorConcentration,
	IndicatorDebtToEquity,
	IndicatorOperatingMargin,
	IndicatorDividendYield,
	IndicatorPriceToSales,
	IndicatorForwardPE,
	IndicatorLiquidity,
	IndicatorESG,
}

const weightTolerance = 0.001

// Scales are the reference ceilings each raw input is divided by before being
// mapped onto 0-100. ReferenceVolume is inverted: volume at the reference scores 100.
type Scales struct {
	ForwardPE       float64 `yaml:"forward_pe" json:"forwardPE"`
	PriceToSales    float64 `yaml:"ps_ratio" json:"psRatio"`
	DebtToEquity    float64 `yaml:"debt_to_equity" json:"debtToEquity"`
	OperatingMargin float64 `yaml:"operating_margin" json:"operatingMargin"`
	Volatility      float64 `yaml:"volatility" json:"volatility"`
	Drawdown        float64 `yaml:"max_drawdown" json:"maxDrawdown"`
	Beta            float64 `yaml:"beta" json:"beta"`
	ReferenceVolume float64 `yaml:"reference_volume" json:"referenceVolume"`
	ESG             float64 `yaml:"esg" json:"esg"`
}

// Fallbacks are the fixed sub-scores substituted when an input is missing or unusable.
type Fallbacks struct {
	ForwardPE       float64 `yaml:"forward_pe" json:"forwardPE"`
	PriceToSales    float64 `yaml:"ps_ratio" json:"psRatio"`
	DebtToEquity    float64 `yaml:"debt_to_equity" json:"debtToEquity"`
	OperatingMargin float64 `yaml:"operating_margin" json:"operatingMargin"`
	DividendPaid    float64 `yaml:"dividend_paid" json:"dividendPaid"`
	DividendNone    float64 `yaml:"dividend_none" json:"dividendNone"`
	PriceHistory    float64 `yaml:"price_history" json:"priceHistory"`
	Beta            float64 `yaml:"beta" json:"beta"`
	Liquidity       float64 `yaml:"liquidity" json:"liquidity"`
	ESG             float64 `yaml:"esg" json:"esg"`
	Sector          float64 `yaml:"sector" json:"sector"`
	Concentration   float64 `yaml:"concentration" json:"concentration"`
}

// Booster multiplies the composite when every condition it sets holds.
// A condition whose input is unknown never holds.
type Booster struct {
	Name               string   `yaml:"name" json:"name"`
	Factor             float64  `yaml:"factor" json:"factor"`
	MinPriceToSales    *float64 `yaml:"min_ps_ratio,omitempty" json:"minPsRatio,omitempty"`
	MinForwardPE       *float64 `yaml:"min_forward_pe,omitempty" json:"minForwardPE,omitempty"`
	MaxOperatingMargin *float64 `yaml:"max_operating_margin,omitempty" json:"maxOperatingMargin,omitempty"`
	MinDebtToEquity    *float64 `yaml:"min_debt_to_equity,omitempty" json:"minDebtToEquity,omitempty"`
	MinVolatility      *float64 `yaml:"min_volatility,omitempty" json:"minVolatility,omitempty"`
}

// Distress adds Penalty when the latest close is below MinPrice or the average
// volume is below MinVolume.
type Distress struct {
	Penalty   float64 `yaml:"penalty" json:"penalty"`
	MinPrice  float64 `yaml:"min_price" json:"minPrice"`
	MinVolume float64 `yaml:"min_volume" json:"minVolume"`
}

// Profile is a complete set of scoring constants. Weights and ceilings have
// been tuned repeatedly, so they are loaded as data rather than compiled in.
type Profile struct {
	Name       string             `yaml:"name" json:"name"`
	Weights    map[string]float64 `yaml:"weights" json:"weights"`
	Scales     Scales             `yaml:"scales" json:"scales"`
	Fallbacks  Fallbacks          `yaml:"fallbacks" json:"fallbacks"`
	SectorRisk map[string]float64 `yaml:"sector_risk" json:"sectorRisk"`
	Boosters   []Booster          `yaml:"boosters" json:"boosters"`
	Distress   Distress           `yaml:"distress" json:"distress"`
	Thresholds []float64          `yaml:"thresholds" json:"thresholds"`
}

func ptr(v float64) *float64 { return &v }

// DefaultProfile returns the built-in scoring profile.
func DefaultProfile() Profile {
	return Profile{
		Name: "default",
		Weights: map[string]float64{
			IndicatorVolatility:      0.20,
			IndicatorMaxDrawdown:     0.10,
			IndicatorBeta:            0.05,
			IndicatorSector:          0.05,
			IndicatorConcentration:   0.05,
			IndicatorDebtToEquity:    0.15,
			IndicatorOperatingMargin: 0.10,
			IndicatorDividendYield:   0.03,
			IndicatorPriceToSales:    0.08,
			IndicatorForwardPE:       0.07,
			IndicatorLiquidity:       0.07,
			IndicatorESG:             0.05,
		},
		Scales: Scales{
			ForwardPE:       60,
			PriceToSales:    15,
			DebtToEquity:    300,
			OperatingMargin: 0.5,
			Volatility:      0.05,
			Drawdown:        0.3,
			Beta:            2.0,
			ReferenceVolume: 100_000,
			ESG:             100,
		},
		Fallbacks: Fallbacks{
			ForwardPE:       90,
			PriceToSales:    80,
			DebtToEquity:    80,
			OperatingMargin: 80,
			DividendPaid:    0,
			DividendNone:    100,
			PriceHistory:    100,
			Beta:            50,
			Liquidity:       100,
			ESG:             50,
			Sector:          50,
			Concentration:   80,
		},
		SectorRisk: map[string]float64{
			"Technology":             60,
			"Energy":                 80,
			"Healthcare":             40,
			"Financial Services":     55,
			"Industrials":            65,
			"Consumer Defensive":     35,
			"Utilities":              30,
			"Communication Services": 50,
			"Consumer Cyclical":      70,
			"Basic Materials":        60,
			"Real Estate":            70,
		},
		Boosters: []Booster{
			{
				Name:               "overvalued_unprofitable",
				Factor:             1.15,
				MinPriceToSales:    ptr(10),
				MaxOperatingMargin: ptr(0.05),
			},
			{
				Name:            "leveraged_volatile",
				Factor:          1.10,
				MinDebtToEquity: ptr(200),
				MinVolatility:   ptr(0.04),
			},
		},
		Distress: Distress{
			Penalty:   30,
			MinPrice:  1.0,
			MinVolume: 50_000,
		},
		Thresholds: slices.Clone(DefaultThresholds),
	}
}

// LoadProfile decodes a YAML profile on top of DefaultProfile and validates the result.
// Keys absent from the document keep their default values.
func LoadProfile(r io.Reader) (Profile, error) {
	p := DefaultProfile()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && err != io.EOF {
		return Profile{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidProfile, err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// LoadProfileFile reads a YAML profile from path. An empty path yields DefaultProfile.
func LoadProfileFile(path string) (Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to open risk profile: %w", err)
	}
	defer f.Close()
	return LoadProfile(f)
}

// Validate checks that the weights are known and sum to one, that every scale is
// positive and that the label thresholds are ascending.
func (p Profile) Validate() error {
	var sum float64
	for name, w := range p.Weights {
		if !slices.Contains(Indicators, name) {
			return fmt.Errorf("%w: unknown indicator %q", apperrors.ErrInvalidProfile, name)
		}
		if w < 0 {
			return fmt.Errorf("%w: negative weight for %s", apperrors.ErrInvalidProfile, name)
		}
		sum += w
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %.4f, want 1", apperrors.ErrInvalidProfile, sum)
	}

	scales := map[string]float64{
		"forward_pe":       p.Scales.ForwardPE,
		"ps_ratio":         p.Scales.PriceToSales,
		"debt_to_equity":   p.Scales.DebtToEquity,
		"operating_margin": p.Scales.OperatingMargin,
		"volatility":       p.Scales.Volatility,
		"max_drawdown":     p.Scales.Drawdown,
		"beta":             p.Scales.Beta,
		"reference_volume": p.Scales.ReferenceVolume,
		"esg":              p.Scales.ESG,
	}
	for name, v := range scales {
		if v <= 0 {
			return fmt.Errorf("%w: scale %s must be positive", apperrors.ErrInvalidProfile, name)
		}
	}

	if len(p.Thresholds) != len(Labels)-1 {
		return fmt.Errorf("%w: want %d thresholds, got %d", apperrors.ErrInvalidProfile, len(Labels)-1, len(p.Thresholds))
	}
	if !sort.Float64sAreSorted(p.Thresholds) {
		return fmt.Errorf("%w: thresholds must be ascending", apperrors.ErrInvalidProfile)
	}
	for i := 1; i < len(p.Thresholds); i++ {
		if p.Thresholds[i] == p.Thresholds[i-1] {
			return fmt.Errorf("%w: duplicate threshold %.2f", apperrors.ErrInvalidProfile, p.Thresholds[i])
		}
	}

	for _, b := range p.Boosters {
		if b.Factor < 1 {
			return fmt.Errorf("%w: booster %s must not lower the score", apperrors.ErrInvalidProfile, b.Name)
		}
	}
	if p.Distress.Penalty < 0 {
		return fmt.Errorf("%w: distress penalty must not be negative", apperrors.ErrInvalidProfile)
	}
	return nil
}
