package projector

import "github.com/tinytelemetry/soclens/internal/model"

// Totals is the headline counter projection of a stats snapshot.
type Totals struct {
	Total    int64
	Critical int64
}

// ProjectDistribution maps attack type counts into the fixed category order.
// Unknown keys are ignored; missing keys and negative counts become 0.
func ProjectDistribution(s model.StatsPayload) model.Distribution {
	var d model.Distribution
	for key, count := range s.AttackTypes {
		idx := model.CategoryIndex(key)
		if idx < 0 || count < 0 {
			continue
		}
		d[idx] = count
	}
	return d
}

// ProjectTotals passes the totals through, defaulting absent or negative
// values to 0.
func ProjectTotals(s model.StatsPayload) Totals {
	return Totals{
		Total:    nonNegative(s.Total),
		Critical: nonNegative(s.Critical),
	}
}

func nonNegative(v *int64) int64 {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}
