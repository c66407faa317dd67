package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/soclens/internal/httpserver"
	"github.com/tinytelemetry/soclens/internal/mapdata"
	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/simulate"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var addr string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/soclens/mock.yml)")
	flag.StringVar(&addr, "addr", "", "override listen address")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("SOCLens Mock - Simulated Alert Backend\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if addr != "" {
		cfg.Addr = addr
	}

	if err := runMock(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runMock serves the simulated backend until SIGINT or SIGTERM.
func runMock(cfg mockConfig) error {
	lvl, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := logCfg.Build()
	if err != nil {
		return err
	}
	defer logger.Sync()

	var points []model.MapPoint
	if cfg.PointsFile != "" {
		points, err = mapdata.Load(cfg.PointsFile)
		if err != nil {
			return fmt.Errorf("failed to load map points: %w", err)
		}
		logger.Info("serving static map points", zap.Int("count", len(points)))
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	store, err := simulate.NewStore(cfg.DBPath, cfg.AlertCapacity)
	if err != nil {
		return fmt.Errorf("failed to open alert store: %w", err)
	}
	defer store.Close()
	gen := simulate.NewGenerator(store, seed, logger)

	server := httpserver.NewServer(cfg.Addr, store, points, logger)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down (press Ctrl+C again to force)")
		cancel()
		<-sigCh
		os.Exit(1)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return gen.Run(gctx, cfg.GenerateInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		return server.Stop()
	})

	logger.Info("mock backend ready",
		zap.String("addr", server.Addr()),
		zap.Uint64("seed", seed),
		zap.Duration("generate-interval", cfg.GenerateInterval))
	return g.Wait()
}
