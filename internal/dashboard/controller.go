package dashboard

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tinytelemetry/soclens/internal/metrics"
	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/projector"
	"github.com/tinytelemetry/soclens/internal/window"
)

// Config sizes the controller's owned state.
type Config struct {
	WindowSize int
	AlertLimit int
	Source     SampleSource
	Metrics    *metrics.Metrics
}

// State is a copy of everything the controller owns.
type State struct {
	Traffic      []float64
	Distribution model.Distribution
	Alerts       []projector.AlertRow
	Totals       projector.Totals
	Markers      []projector.Marker
	Malformed    int
	StatsSeen    bool
	AlertsSeen   bool
}

// Controller owns the traffic window, the latest distribution, alert rows
// and totals, and re-renders the mounted sinks whenever one of them changes.
// It is not safe for concurrent use; callers serialize access (the TUI
// update loop or the headless dispatcher).
type Controller struct {
	cfg     Config
	sinks   Sinks
	logger  *zap.Logger
	metrics *metrics.Metrics

	traffic      *window.Buffer[float64]
	distribution model.Distribution
	alerts       []projector.AlertRow
	totals       projector.Totals
	markers      []projector.Marker
	malformed    int
	statsSeen    bool
	alertsSeen   bool
}

// New returns a controller. Sinks that are nil stay unmounted for the
// lifetime of the controller.
func New(cfg Config, sinks Sinks, logger *zap.Logger) *Controller {
	if cfg.WindowSize < 1 {
		cfg.WindowSize = model.DefaultWindowSize
	}
	if cfg.AlertLimit < 1 {
		cfg.AlertLimit = model.DefaultAlertLimit
	}
	if cfg.Source == nil {
		cfg.Source = NewSynthetic(1)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		cfg:     cfg,
		sinks:   sinks,
		logger:  logger.Named("dashboard"),
		metrics: cfg.Metrics,
		traffic: window.New[float64](cfg.WindowSize),
		alerts:  []projector.AlertRow{},
	}
}

// Start renders the zero state into every mounted sink and draws the map
// once from points.
func (c *Controller) Start(points []model.MapPoint) {
	c.markers = projector.ProjectMarkers(points)
	c.logger.Info("dashboard started",
		zap.Strings("sinks", c.sinks.Mounted()),
		zap.String("traffic_source", c.cfg.Source.Name()),
		zap.Int("window", c.traffic.Cap()),
		zap.Int("markers", len(c.markers)))

	c.renderTraffic()
	c.renderDistribution()
	c.renderAlerts()
	c.renderTotals()
	if c.sinks.Map != nil {
		c.sinks.Map.Render(cloneMarkers(c.markers))
		c.metrics.Renders.WithLabelValues(SinkMap).Inc()
	}
}

// ApplyAlerts replaces the alert rows with the projection of records.
// Malformed records are dropped and counted.
func (c *Controller) ApplyAlerts(records []model.AlertPayload) {
	rows, dropped := projector.ProjectAlerts(records, c.cfg.AlertLimit)
	if dropped > 0 {
		c.malformed += dropped
		c.metrics.MalformedRecords.Add(float64(dropped))
		c.logger.Debug("dropped malformed alerts", zap.Int("count", dropped))
	}
	c.alerts = rows
	c.alertsSeen = true
	c.renderAlerts()
}

// ApplyStats replaces the distribution and totals from one stats snapshot.
func (c *Controller) ApplyStats(stats model.StatsPayload) {
	c.distribution = projector.ProjectDistribution(stats)
	c.totals = projector.ProjectTotals(stats)
	c.statsSeen = true
	c.renderDistribution()
	c.renderTotals()

	if v, ok := c.cfg.Source.ObserveTotal(c.totals.Total); ok {
		c.PushSample(v)
	}
}

// Sample asks the sample source for a tick value and pushes it.
func (c *Controller) Sample() {
	if v, ok := c.cfg.Source.Tick(); ok {
		c.PushSample(v)
	}
}

// PushSample appends v to the traffic window and redraws the traffic sink.
func (c *Controller) PushSample(v float64) {
	c.traffic.Push(v)
	c.renderTraffic()
}

// Apply routes a fetch result by its dynamic type. It is the entry point
// used by the headless runner.
func (c *Controller) Apply(v any) error {
	switch v := v.(type) {
	case []model.AlertPayload:
		c.ApplyAlerts(v)
	case model.StatsPayload:
		c.ApplyStats(v)
	default:
		return fmt.Errorf("dashboard: apply: %w: unexpected result %T", errUnknownResult, v)
	}
	return nil
}

var errUnknownResult = errors.New("unknown result type")

// State returns a copy of the owned state.
func (c *Controller) State() State {
	return State{
		Traffic:      c.traffic.Snapshot(),
		Distribution: c.distribution,
		Alerts:       cloneRows(c.alerts),
		Totals:       c.totals,
		Markers:      cloneMarkers(c.markers),
		Malformed:    c.malformed,
		StatsSeen:    c.statsSeen,
		AlertsSeen:   c.alertsSeen,
	}
}

func (c *Controller) renderTraffic() {
	if c.sinks.Traffic == nil {
		return
	}
	c.sinks.Traffic.Render(c.traffic.Snapshot())
	c.metrics.Renders.WithLabelValues(SinkTraffic).Inc()
}

func (c *Controller) renderDistribution() {
	if c.sinks.Distribution == nil {
		return
	}
	c.sinks.Distribution.Render(c.distribution)
	c.metrics.Renders.WithLabelValues(SinkDistribution).Inc()
}

func (c *Controller) renderAlerts() {
	if c.sinks.Alerts == nil {
		return
	}
	c.sinks.Alerts.Render(cloneRows(c.alerts))
	c.metrics.Renders.WithLabelValues(SinkAlerts).Inc()
}

func (c *Controller) renderTotals() {
	if c.sinks.Totals == nil {
		return
	}
	c.sinks.Totals.Render(c.totals)
	c.metrics.Renders.WithLabelValues(SinkTotals).Inc()
}

func cloneRows(rows []projector.AlertRow) []projector.AlertRow {
	return append([]projector.AlertRow{}, rows...)
}

func cloneMarkers(m []projector.Marker) []projector.Marker {
	return append([]projector.Marker{}, m...)
}
