package model

import "testing"

func TestCategoryIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want int
	}{
		{"brute_force", 0},
		{"ddos", 1},
		{"port_scan", 2},
		{"malware", 3},
		{"normal", 4},
		{"Malware", -1},
		{"sql_injection", -1},
		{"", -1},
	}
	for _, tt := range tests {
		if got := CategoryIndex(tt.key); got != tt.want {
			t.Errorf("CategoryIndex(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestDistributionSum(t *testing.T) {
	t.Parallel()
	d := Distribution{0, 3, 0, 1, 11}
	if got := d.Sum(); got != 15 {
		t.Fatalf("Sum() = %d, want 15", got)
	}
}
