package dashboard

import (
	"fmt"
	"math/rand/v2"
)

// Traffic source names accepted by NewSampleSource.
const (
	SourceSynthetic  = "synthetic"
	SourceStatsDelta = "stats-delta"
)

// SampleSource produces the values pushed into the traffic window.
type SampleSource interface {
	Name() string
	// Tick is called every sample interval.
	Tick() (float64, bool)
	// ObserveTotal is called with the total of every accepted stats snapshot.
	ObserveTotal(total int64) (float64, bool)
}

// NewSampleSource returns the source registered under name. seed makes the
// synthetic source reproducible.
func NewSampleSource(name string, seed uint64) (SampleSource, error) {
	switch name {
	case "", SourceSynthetic:
		return NewSynthetic(seed), nil
	case SourceStatsDelta:
		return &StatsDelta{}, nil
	default:
		return nil, fmt.Errorf("dashboard: unknown traffic source %q", name)
	}
}

// Synthetic emits uniformly distributed integers in [10, 59] on every tick,
// independent of backend data.
type Synthetic struct {
	rng *rand.Rand
}

func NewSynthetic(seed uint64) *Synthetic {
	return &Synthetic{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Synthetic) Name() string { return SourceSynthetic }

func (s *Synthetic) Tick() (float64, bool) {
	return float64(10 + s.rng.IntN(50)), true
}

func (s *Synthetic) ObserveTotal(int64) (float64, bool) { return 0, false }

// StatsDelta emits the growth of the backend total between consecutive
// stats snapshots. The first snapshot only sets the baseline, and a total
// that goes backwards (backend restart) yields 0.
type StatsDelta struct {
	last     int64
	baseline bool
}

func (s *StatsDelta) Name() string { return SourceStatsDelta }

func (s *StatsDelta) Tick() (float64, bool) { return 0, false }

func (s *StatsDelta) ObserveTotal(total int64) (float64, bool) {
	if !s.baseline {
		s.last, s.baseline = total, true
		return 0, false
	}
	delta := total - s.last
	s.last = total
	if delta < 0 {
		delta = 0
	}
	return float64(delta), true
}
