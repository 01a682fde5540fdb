package risk_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/apperrors"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/risk"
)

func TestDefaultProfile_IsValid(t *testing.T) {
	p := risk.DefaultProfile()
	require.NoError(t, p.Validate())

	var sum float64
	for _, name := range risk.Indicators {
		w, ok := p.Weights[name]
		assert.True(t, ok, "missing weight for %s", name)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestDefaultProfile_ReturnsIndependentCopies(t *testing.T) {
	a := risk.DefaultProfile()
	a.Weights[risk.IndicatorESG] = 0.9
	a.Thresholds[0] = 1

	b := risk.DefaultProfile()
	assert.Equal(t, 0.05, b.Weights[risk.IndicatorESG])
	assert.Equal(t, 20.0, b.Thresholds[0])
}

func TestLoadProfile_OverridesDefaults(t *testing.T) {
	doc := `
name: conservative
weights:
  volatility: 0.25
  max_drawdown: 0.05
scales:
  forward_pe: 40
distress:
  penalty: 20
`
	p, err := risk.LoadProfile(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "conservative", p.Name)
	assert.Equal(t, 0.25, p.Weights[risk.IndicatorVolatility])
	assert.Equal(t, 0.05, p.Weights[risk.IndicatorMaxDrawdown])
	assert.Equal(t, 0.15, p.Weights[risk.IndicatorDebtToEquity])
	assert.Equal(t, 40.0, p.Scales.ForwardPE)
	assert.Equal(t, 15.0, p.Scales.PriceToSales)
	assert.Equal(t, 20.0, p.Distress.Penalty)
	assert.Equal(t, 1.0, p.Distress.MinPrice)
}

func TestLoadProfile_Empty(t *testing.T) {
	p, err := risk.LoadProfile(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "default", p.Name)
}

func TestLoadProfile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "weights do not sum to one", doc: "weights:\n  volatility: 0.9\n"},
		{name: "unknown indicator", doc: "weights:\n  momentum: 0.0\n"},
		{name: "unknown field", doc: "colour: blue\n"},
		{name: "zero scale", doc: "scales:\n  beta: 0\n"},
		{name: "descending thresholds", doc: "thresholds: [20, 33, 30, 55, 67, 80]\n"},
		{name: "too few thresholds", doc: "thresholds: [20, 40, 60]\n"},
		{name: "booster lowering score", doc: "boosters:\n  - name: soft\n    factor: 0.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := risk.LoadProfile(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidProfile), "got %v", err)
		})
	}
}

func TestLoadProfileFile(t *testing.T) {
	t.Run("empty path uses default", func(t *testing.T) {
		p, err := risk.LoadProfileFile("")
		require.NoError(t, err)
		assert.Equal(t, "default", p.Name)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profile.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: from-file\n"), 0o600))

		p, err := risk.LoadProfileFile(path)
		require.NoError(t, err)
		assert.Equal(t, "from-file", p.Name)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := risk.LoadProfileFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
