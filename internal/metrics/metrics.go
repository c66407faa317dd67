// Package metrics exposes polling health as Prometheus metrics.
package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes used as the "outcome" label.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeStale   = "stale"
	OutcomeSkipped = "skipped"
)

// Metrics groups the collectors updated by the poller and controller.
type Metrics struct {
	// Fetches counts finished or skipped fetches per resource and outcome.
	Fetches *prometheus.CounterVec

	// FetchDuration observes fetch latency per resource.
	FetchDuration *prometheus.HistogramVec

	// InFlight is 1 while a fetch for the resource is pending.
	InFlight *prometheus.GaugeVec

	// MalformedRecords counts alert records dropped at projection.
	MalformedRecords prometheus.Counter

	// Renders counts sink redraws per sink.
	Renders *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg gets a private registry so
// callers that do not export metrics need no special casing.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		Fetches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "soclens_fetches_total",
			Help: "Feed fetches by resource and outcome.",
		}, []string{"resource", "outcome"}),

		FetchDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "soclens_fetch_duration_seconds",
			Help:    "Histogram of feed fetch latencies.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"resource"}),

		InFlight: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "soclens_fetch_in_flight",
			Help: "Whether a fetch is pending for the resource (0 or 1).",
		}, []string{"resource"}),

		MalformedRecords: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "soclens_malformed_records_total",
			Help: "Alert records dropped because required fields were missing.",
		}),

		Renders: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "soclens_sink_renders_total",
			Help: "Sink redraws by sink.",
		}, []string{"sink"}),
	}
}

// Server serves a registry on /metrics.
type Server struct {
	server *http.Server
	addr   string
}

// Serve starts serving gatherer on addr in the background.
func Serve(addr string, gatherer prometheus.Gatherer) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s := &Server{
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr: listener.Addr().String(),
	}
	go s.server.Serve(listener)
	return s, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Stop shuts the listener down.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
