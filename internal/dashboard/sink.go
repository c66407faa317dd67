// Package dashboard owns the live dashboard state and pushes it to sinks.
package dashboard

import (
	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/projector"
)

// Sink receives a complete view model and redraws from it. Render must be
// idempotent and must clear the display when given an empty value.
type Sink[VM any] interface {
	Render(vm VM)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc[VM any] func(vm VM)

// Render calls f(vm).
func (f SinkFunc[VM]) Render(vm VM) { f(vm) }

// Sinks is the set of mount points the controller renders into. A nil
// field means that component is not mounted and is never rendered.
type Sinks struct {
	Traffic      Sink[[]float64]
	Distribution Sink[model.Distribution]
	Alerts       Sink[[]projector.AlertRow]
	Totals       Sink[projector.Totals]
	Map          Sink[[]projector.Marker]
}

// Sink names used for logging and the render metric.
const (
	SinkTraffic      = "traffic"
	SinkDistribution = "distribution"
	SinkAlerts       = "alerts"
	SinkTotals       = "totals"
	SinkMap          = "map"
)

// Mounted returns the names of the non-nil sinks.
func (s Sinks) Mounted() []string {
	var names []string
	if s.Traffic != nil {
		names = append(names, SinkTraffic)
	}
	if s.Distribution != nil {
		names = append(names, SinkDistribution)
	}
	if s.Alerts != nil {
		names = append(names, SinkAlerts)
	}
	if s.Totals != nil {
		names = append(names, SinkTotals)
	}
	if s.Map != nil {
		names = append(names, SinkMap)
	}
	return names
}
