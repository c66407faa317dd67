package risk

import (
	"math"
	"testing"
)

func TestClassify_Thresholds(t *testing.T) {
	t.Parallel()
	tests := []struct {
		risk     float64
		expected Tier
	}{
		{0, TierLow},
		{10, TierLow},
		{50, TierLow},
		{50.5, TierMedium},
		{51, TierMedium},
		{80, TierMedium},
		{80.1, TierHigh},
		{81, TierHigh},
		{100, TierHigh},
		// Clamped
		{-20, TierLow},
		{250, TierHigh},
		{math.NaN(), TierLow},
		{math.Inf(1), TierHigh},
		{math.Inf(-1), TierLow},
	}

	for _, tt := range tests {
		got := Classify(tt.risk)
		if got.Tier != tt.expected {
			t.Errorf("Classify(%v).Tier = %q, want %q", tt.risk, got.Tier, tt.expected)
		}
		if got.BarColor != tt.expected.Color() {
			t.Errorf("Classify(%v).BarColor = %q, want %q", tt.risk, got.BarColor, tt.expected.Color())
		}
		if got.RowClass != "risk-"+string(tt.expected) {
			t.Errorf("Classify(%v).RowClass = %q", tt.risk, got.RowClass)
		}
	}
}

func TestClassify_TierIffProperty(t *testing.T) {
	t.Parallel()
	for r := 0.0; r <= 100; r += 0.5 {
		tier := Classify(r).Tier
		if (tier == TierHigh) != (r > 80) {
			t.Fatalf("risk %v: tier %q violates high iff r > 80", r, tier)
		}
		if (tier == TierMedium) != (r > 50 && r <= 80) {
			t.Fatalf("risk %v: tier %q violates medium iff 50 < r <= 80", r, tier)
		}
	}
}

func TestMarkerColor(t *testing.T) {
	t.Parallel()
	if got := MarkerColor(81); got != ColorHigh {
		t.Errorf("MarkerColor(81) = %q, want %q", got, ColorHigh)
	}
	if got := MarkerColor(80); got != ColorMedium {
		t.Errorf("MarkerColor(80) = %q, want %q", got, ColorMedium)
	}
	if got := MarkerColor(5); got != ColorMedium {
		t.Errorf("MarkerColor(5) = %q, want %q", got, ColorMedium)
	}
}

func TestBaseScore(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		attackType string
		hour       int
		history    int
		expected   int
	}{
		{"brute force daytime", "brute_force", 12, 0, 60},
		{"ddos night", "ddos", 3, 0, 90},
		{"malware repeat", "malware", 12, 6, 100},
		{"malware night repeat capped", "malware", 1, 10, 100},
		{"unknown type", "something", 12, 0, 30},
		{"port scan history at threshold", "port_scan", 12, 5, 40},
		{"hour six is daytime", "brute_force", 6, 0, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := BaseScore(tt.attackType, tt.hour, tt.history); got != tt.expected {
				t.Errorf("BaseScore(%q, %d, %d) = %d, want %d", tt.attackType, tt.hour, tt.history, got, tt.expected)
			}
		})
	}
}

func TestSummarySeverity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		score    float64
		expected string
	}{
		{86, "CRITICAL"}, {85, "High"}, {61, "High"}, {60, "Medium"}, {41, "Medium"}, {40, "Low"},
	}
	for _, tt := range tests {
		if got := SummarySeverity(tt.score); got != tt.expected {
			t.Errorf("SummarySeverity(%v) = %q, want %q", tt.score, got, tt.expected)
		}
	}
}
