package risk

// baseScores holds the starting score per attack type.
var baseScores = map[string]int{
	"brute_force":         60,
	"ddos":                80,
	"malware":             90,
	"port_scan":           40,
	"suspicious_activity": 50,
}

const (
	defaultBaseScore = 30
	nightBonus       = 10
	repeatBonus      = 15
	repeatThreshold  = 5
)

// BaseScore computes the backend-side risk score for an alert of attackType
// raised at the given local hour by an IP with history prior alerts.
// Only the mock backend scores alerts; the dashboard displays what it receives.
func BaseScore(attackType string, hour int, history int) int {
	score, ok := baseScores[attackType]
	if !ok {
		score = defaultBaseScore
	}
	if hour >= 0 && hour < 6 {
		score += nightBonus
	}
	if history > repeatThreshold {
		score += repeatBonus
	}
	return min(100, score)
}

// SummarySeverity returns the wording used in incident summaries.
// It uses its own, finer scale than Tier.
func SummarySeverity(score float64) string {
	switch {
	case score > 85:
		return "CRITICAL"
	case score > 60:
		return "High"
	case score > 40:
		return "Medium"
	default:
		return "Low"
	}
}
