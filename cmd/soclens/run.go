package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tinytelemetry/soclens/internal/dashboard"
	"github.com/tinytelemetry/soclens/internal/feed"
	"github.com/tinytelemetry/soclens/internal/mapdata"
	"github.com/tinytelemetry/soclens/internal/metrics"
	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/poll"
	"github.com/tinytelemetry/soclens/internal/tui"
)

// run wires the feed client, scheduler and controller, then hands them to
// the TUI or the headless runner.
func run(cfg appConfig, headless bool) error {
	logger, cleanupLogger, err := newLogger(cfg.LogLevel, cfg.LogFile, headless)
	if err != nil {
		return err
	}
	defer cleanupLogger()

	client, err := feed.NewClient(cfg.BackendURL)
	if err != nil {
		return err
	}
	logger.Info("starting",
		zap.String("version", version),
		zap.String("backend", client.BaseURL()),
		zap.String("config", cfg.ConfigPath),
		zap.Bool("headless", headless))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if cfg.MetricsAddr != "" {
		srv, err := metrics.Serve(cfg.MetricsAddr, reg)
		if err != nil {
			return fmt.Errorf("failed to start metrics listener: %w", err)
		}
		defer srv.Stop()
		logger.Info("serving metrics", zap.String("addr", srv.Addr()))
	}

	probeCtx, cancelProbe := context.WithTimeout(context.Background(), 30*time.Second)
	err = client.Probe(probeCtx, cfg.ProbeAttempts)
	cancelProbe()
	if err != nil {
		// Polling still starts; the status line shows the failure until the backend answers.
		logger.Warn("backend not reachable", zap.String("backend", client.BaseURL()), zap.Error(err))
	}

	points, err := mapdata.Load(cfg.MapPoints)
	switch {
	case err == nil:
		logger.Info("loaded map points", zap.Int("count", len(points)), zap.String("path", cfg.MapPoints))
	case errors.Is(err, mapdata.ErrNoPoints) || errors.Is(err, os.ErrNotExist):
		logger.Info("risk map not mounted", zap.String("path", cfg.MapPoints))
	default:
		logger.Warn("risk map not mounted", zap.String("path", cfg.MapPoints), zap.Error(err))
	}
	withMap := err == nil

	source, err := dashboard.NewSampleSource(cfg.TrafficSource, uint64(time.Now().UnixNano()))
	if err != nil {
		return err
	}

	sched, err := poll.NewScheduler([]poll.ResourceConfig{
		{Resource: poll.ResourceAlerts, Interval: cfg.AlertsInterval, Timeout: cfg.FetchTimeout},
		{Resource: poll.ResourceStats, Interval: cfg.StatsInterval, Timeout: cfg.FetchTimeout},
	}, m)
	if err != nil {
		return err
	}

	dashCfg := dashboard.Config{
		WindowSize: cfg.WindowSize,
		AlertLimit: cfg.AlertLimit,
		Source:     source,
		Metrics:    m,
	}

	if headless {
		sinks := dashboard.LogSinks(logger)
		if !withMap {
			sinks.Map = nil
		}
		ctrl := dashboard.New(dashCfg, sinks, logger)
		ctrl.Start(points)
		return runHeadless(ctrl, sched, client, cfg.SampleInterval, logger)
	}

	decks := tui.NewDecks(client.BaseURL(), withMap)
	ctrl := dashboard.New(dashCfg, decks.Sinks(), logger)
	ctrl.Start(points)
	return runTUI(tui.Config{
		SampleInterval: cfg.SampleInterval,
		ExportDir:      cfg.ExportDir,
	}, decks, ctrl, sched, client, logger)
}

func runTUI(cfg tui.Config, decks *tui.Decks, ctrl *dashboard.Controller, sched *poll.Scheduler, source model.FeedSource, logger *zap.Logger) error {
	dash := tui.NewDashboardModel(cfg, decks, ctrl, sched, source, logger)

	p := tea.NewProgram(dash, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal (try -headless)")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// runHeadless polls until SIGINT or SIGTERM, logging every sink render.
func runHeadless(ctrl *dashboard.Controller, sched *poll.Scheduler, source model.FeedSource, sampleInterval time.Duration, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apply := func(v any) {
		if err := ctrl.Apply(v); err != nil {
			logger.Error("apply failed", zap.Error(err))
		}
	}
	runner, err := poll.NewRunner(sched, []poll.Task{
		{
			Resource: poll.ResourceAlerts,
			Fetch:    func(ctx context.Context) (any, error) { return source.FetchAlerts(ctx) },
			Apply:    apply,
		},
		{
			Resource: poll.ResourceStats,
			Fetch:    func(ctx context.Context) (any, error) { return source.FetchStats(ctx) },
			Apply:    apply,
		},
	}, []poll.Periodic{
		{Name: "sample", Interval: sampleInterval, Run: ctrl.Sample},
	}, logger)
	if err != nil {
		return err
	}

	err = runner.Run(ctx)
	logger.Info("stopped")
	return err
}
