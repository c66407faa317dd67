package risk

import "math"

// Tier is a coarse severity bucket derived from a risk score.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Tier thresholds. A score equal to a threshold stays in the lower tier.
const (
	HighThreshold   = 80
	MediumThreshold = 50
)

// Accent colors per tier.
const (
	ColorHigh   = "#FF3B3B"
	ColorMedium = "#FFD700"
	ColorLow    = "#00FF9F"
)

// Classification is the display projection of a risk score.
type Classification struct {
	Tier     Tier
	BarColor string
	RowClass string
}

// Clamp bounds risk to [0, 100]. NaN becomes 0.
func Clamp(risk float64) float64 {
	switch {
	case math.IsNaN(risk), risk < 0:
		return 0
	case risk > 100:
		return 100
	default:
		return risk
	}
}

// TierOf returns the severity tier for risk.
func TierOf(risk float64) Tier {
	r := Clamp(risk)
	if r > HighThreshold {
		return TierHigh
	} else if r > MediumThreshold {
		return TierMedium
	}
	return TierLow
}

// Classify maps a risk score to its tier and display attributes.
// Out-of-range input is clamped rather than rejected.
func Classify(risk float64) Classification {
	tier := TierOf(risk)
	return Classification{
		Tier:     tier,
		BarColor: tier.Color(),
		RowClass: "risk-" + string(tier),
	}
}

// Color returns the accent color of the tier.
func (t Tier) Color() string {
	switch t {
	case TierHigh:
		return ColorHigh
	case TierMedium:
		return ColorMedium
	default:
		return ColorLow
	}
}

// MarkerColor returns the map marker color for risk. The map only
// distinguishes high risk from everything else.
func MarkerColor(risk float64) string {
	if TierOf(risk) == TierHigh {
		return ColorHigh
	}
	return ColorMedium
}
