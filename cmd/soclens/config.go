package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/tinytelemetry/soclens/internal/dashboard"
	"github.com/tinytelemetry/soclens/internal/model"
)

const (
	defaultProbeAttempts = 3
	defaultLogLevel      = "info"
)

// appConfig holds dashboard configuration.
type appConfig struct {
	BackendURL     string        `mapstructure:"backend-url"`
	AlertsInterval time.Duration `mapstructure:"alerts-interval"`
	StatsInterval  time.Duration `mapstructure:"stats-interval"`
	FetchTimeout   time.Duration `mapstructure:"fetch-timeout"`
	SampleInterval time.Duration `mapstructure:"sample-interval"`
	TrafficSource  string        `mapstructure:"traffic-source"`
	WindowSize     int           `mapstructure:"window-size"`
	AlertLimit     int           `mapstructure:"alert-limit"`
	MapPoints      string        `mapstructure:"map-points"`
	MetricsAddr    string        `mapstructure:"metrics-addr"`
	LogLevel       string        `mapstructure:"log-level"`
	LogFile        string        `mapstructure:"log-file"`
	ProbeAttempts  uint          `mapstructure:"probe-attempts"`
	ExportDir      string        `mapstructure:"export-dir"`
	ConfigPath     string        `mapstructure:"-"` // not from config file
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("SOCLENS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("backend-url", model.DefaultBackendURL)
	v.SetDefault("alerts-interval", model.DefaultAlertsInterval)
	v.SetDefault("stats-interval", model.DefaultStatsInterval)
	v.SetDefault("fetch-timeout", model.DefaultFetchTimeout)
	v.SetDefault("sample-interval", model.DefaultSampleInterval)
	v.SetDefault("traffic-source", dashboard.SourceSynthetic)
	v.SetDefault("window-size", model.DefaultWindowSize)
	v.SetDefault("alert-limit", model.DefaultAlertLimit)
	v.SetDefault("map-points", filepath.Join(home, ".config", "soclens", "map-points.yml"))
	v.SetDefault("metrics-addr", "")
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("log-file", filepath.Join(home, ".local", "state", "soclens", "soclens.log"))
	v.SetDefault("probe-attempts", defaultProbeAttempts)
	v.SetDefault("export-dir", ".")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "soclens", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	cfg.MapPoints = expandHome(cfg.MapPoints, home)
	cfg.LogFile = expandHome(cfg.LogFile, home)
	cfg.ExportDir = expandHome(cfg.ExportDir, home)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c appConfig) validate() error {
	if c.AlertsInterval <= 0 {
		return fmt.Errorf("invalid alerts-interval: %s", c.AlertsInterval)
	}
	if c.StatsInterval <= 0 {
		return fmt.Errorf("invalid stats-interval: %s", c.StatsInterval)
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("invalid sample-interval: %s", c.SampleInterval)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("invalid fetch-timeout: %s", c.FetchTimeout)
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("invalid window-size: %d", c.WindowSize)
	}
	if c.AlertLimit < 1 {
		return fmt.Errorf("invalid alert-limit: %d", c.AlertLimit)
	}
	switch c.TrafficSource {
	case dashboard.SourceSynthetic, dashboard.SourceStatsDelta:
	default:
		return fmt.Errorf("invalid traffic-source %q: want %q or %q",
			c.TrafficSource, dashboard.SourceSynthetic, dashboard.SourceStatsDelta)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log-level: %w", err)
	}
	return nil
}

// Expand ~ in paths
func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
