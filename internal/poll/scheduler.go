// Package poll owns the periodic fetch cycles for the backend feeds. Each
// resource is polled on its own interval, failures are isolated per
// resource, and at most one fetch per resource is in flight at a time.
package poll

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tinytelemetry/soclens/internal/metrics"
)

// Resource names a polled feed.
type Resource string

const (
	ResourceAlerts Resource = "alerts"
	ResourceStats  Resource = "stats"
)

// minTimeoutHeadroom is how far below the interval a fetch timeout is kept.
const minTimeoutHeadroom = 100 * time.Millisecond

// ResourceConfig configures one polled resource.
type ResourceConfig struct {
	Resource Resource
	Interval time.Duration
	Timeout  time.Duration
}

// ResourceState tracks per-resource tick, in-flight and error state.
type ResourceState struct {
	Resource        Resource
	Interval        time.Duration
	Timeout         time.Duration
	InFlight        bool
	Generation      uint64 // generation of the most recently started fetch
	StartedAt       time.Time
	LastError       string
	LastErrorAt     time.Time
	LastOKAt        time.Time
	LastTickOK      bool
	ConsecutiveErrs int
	Skipped         int // ticks skipped because a fetch was still pending
}

// Scheduler is the per-resource polling state machine. Drivers call Begin on
// every tick and Finish when the fetch returns. It is safe for concurrent use.
type Scheduler struct {
	mu      sync.Mutex
	states  map[Resource]*ResourceState
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewScheduler validates cfgs and returns a Scheduler. Timeouts are clamped
// below their interval so a pending fetch always resolves before the next
// tick for the same resource.
func NewScheduler(cfgs []ResourceConfig, m *metrics.Metrics) (*Scheduler, error) {
	if m == nil {
		m = metrics.New(nil)
	}
	s := &Scheduler{
		states:  make(map[Resource]*ResourceState, len(cfgs)),
		metrics: m,
		now:     time.Now,
	}
	for _, cfg := range cfgs {
		if cfg.Resource == "" {
			return nil, fmt.Errorf("poll: resource name is empty")
		}
		if _, dup := s.states[cfg.Resource]; dup {
			return nil, fmt.Errorf("poll: resource %q configured twice", cfg.Resource)
		}
		if cfg.Interval <= 0 {
			return nil, fmt.Errorf("poll: resource %q: interval must be positive", cfg.Resource)
		}
		s.states[cfg.Resource] = &ResourceState{
			Resource:   cfg.Resource,
			Interval:   cfg.Interval,
			Timeout:    ClampTimeout(cfg.Timeout, cfg.Interval),
			LastTickOK: true,
		}
	}
	return s, nil
}

// ClampTimeout keeps timeout strictly below interval. A non-positive timeout
// defaults to 80% of the interval.
func ClampTimeout(timeout, interval time.Duration) time.Duration {
	limit := interval - minTimeoutHeadroom
	if interval <= 2*minTimeoutHeadroom {
		limit = interval / 2
	}
	if timeout <= 0 {
		timeout = interval * 4 / 5
	}
	if timeout > limit {
		timeout = limit
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}

// Begin registers a tick for r. It returns the generation to pass to Finish
// and true when a fetch should start, or false when the previous fetch is
// still pending and this tick is skipped.
func (s *Scheduler) Begin(r Resource) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[r]
	if !ok {
		return 0, false
	}
	if st.InFlight {
		st.Skipped++
		s.metrics.Fetches.WithLabelValues(string(r), metrics.OutcomeSkipped).Inc()
		return 0, false
	}

	st.InFlight = true
	st.Generation++
	st.StartedAt = s.now()
	s.metrics.InFlight.WithLabelValues(string(r)).Set(1)
	return st.Generation, true
}

// Finish records the outcome of the fetch started with generation gen. It
// returns true when the result is current and should be applied; a result
// from an older generation is stale and must be discarded.
func (s *Scheduler) Finish(r Resource, gen uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[r]
	if !ok {
		return false
	}
	if gen != st.Generation || !st.InFlight {
		s.metrics.Fetches.WithLabelValues(string(r), metrics.OutcomeStale).Inc()
		return false
	}

	now := s.now()
	st.InFlight = false
	s.metrics.InFlight.WithLabelValues(string(r)).Set(0)
	s.metrics.FetchDuration.WithLabelValues(string(r)).Observe(now.Sub(st.StartedAt).Seconds())

	if err != nil {
		st.LastError = err.Error()
		st.LastErrorAt = now
		st.LastTickOK = false
		st.ConsecutiveErrs++
		s.metrics.Fetches.WithLabelValues(string(r), metrics.OutcomeError).Inc()
		return true
	}

	st.LastError = ""
	st.LastOKAt = now
	st.LastTickOK = true
	st.ConsecutiveErrs = 0
	s.metrics.Fetches.WithLabelValues(string(r), metrics.OutcomeOK).Inc()
	return true
}

// State returns a copy of the state of r.
func (s *Scheduler) State(r Resource) (ResourceState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[r]
	if !ok {
		return ResourceState{}, false
	}
	return *st, true
}

// States returns copies of all resource states ordered by name.
func (s *Scheduler) States() []ResourceState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ResourceState, 0, len(s.states))
	for _, st := range s.states {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource < out[j].Resource })
	return out
}
