package risk

// Label is one of the seven ordered risk buckets.
type Label string

const (
	LabelExtremelyLow  Label = "Extremely Low Risk"
	LabelVeryLow       Label = "Very Low Risk"
	LabelLow           Label = "Low Risk"
	LabelModerate      Label = "Moderate Risk"
	LabelHigh          Label = "High Risk"
	LabelVeryHigh      Label = "Very High Risk"
	LabelExtremelyHigh Label = "Extremely High Risk"
)

// Labels lists the buckets from lowest to highest risk.
var Labels = []Label{
	LabelExtremelyLow,
	LabelVeryLow,
	LabelLow,
	LabelModerate,
	LabelHigh,
	LabelVeryHigh,
	LabelExtremelyHigh,
}

// DefaultThresholds are the inclusive upper bounds of the first six buckets.
// Anything above the last bound is LabelExtremelyHigh.
var DefaultThresholds = []float64{20, 33, 45, 55, 67, 80}

// LabelFor maps a score onto its bucket. thresholds must hold len(Labels)-1
// ascending inclusive upper bounds.
func LabelFor(score float64, thresholds []float64) Label {
	for i, upper := range thresholds {
		if i >= len(Labels)-1 {
			break
		}
		if score <= upper {
			return Labels[i]
		}
	}
	return Labels[len(Labels)-1]
}
