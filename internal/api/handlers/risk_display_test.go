package handlers

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/risk"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/service"
)

// TestScoreResponses_LabelMatchesDisplayedScore tests labels next to rounded scores.
// This is an internal test because the response builders are unexported.
//
// WHY: A score just above a threshold rounds onto it. The response must not show
// 20.0 next to the label of the next bucket up.
func TestScoreResponses_LabelMatchesDisplayedScore(t *testing.T) {
	thresholds := risk.DefaultThresholds

	t.Run("ticker score on a threshold after rounding", func(t *testing.T) {
		result := risk.Result{Ticker: "EDGE", Score: 20.04, Label: risk.LabelVeryLow}

		got := newTickerScoreResponse(result, thresholds)

		if got.Score != 20.0 {
			t.Errorf("Expected score 20.0, got %v", got.Score)
		}
		if got.Label != risk.LabelExtremelyLow {
			t.Errorf("Expected label %q, got %q", risk.LabelExtremelyLow, got.Label)
		}
	})

	t.Run("ticker score that rounds up keeps its bucket", func(t *testing.T) {
		result := risk.Result{Ticker: "EDGE", Score: 20.06, Label: risk.LabelVeryLow}

		got := newTickerScoreResponse(result, thresholds)

		if got.Score != 20.1 {
			t.Errorf("Expected score 20.1, got %v", got.Score)
		}
		if got.Label != risk.LabelVeryLow {
			t.Errorf("Expected label %q, got %q", risk.LabelVeryLow, got.Label)
		}
	})

	t.Run("aggregate score on a threshold after rounding", func(t *testing.T) {
		analysis := service.PortfolioAnalysis{
			Aggregate: &risk.PortfolioRisk{
				Score:       80.03,
				Label:       risk.LabelExtremelyHigh,
				TotalAmount: decimal.NewFromInt(100),
			},
		}

		got := newPortfolioRiskResponse(analysis, thresholds)

		if got.Aggregate == nil {
			t.Fatal("Expected an aggregate")
		}
		if got.Aggregate.Score != 80.0 {
			t.Errorf("Expected score 80.0, got %v", got.Aggregate.Score)
		}
		if got.Aggregate.Label != risk.LabelVeryHigh {
			t.Errorf("Expected label %q, got %q", risk.LabelVeryHigh, got.Aggregate.Label)
		}
	})
}
