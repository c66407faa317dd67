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
)

const (
	defaultAddr             = "127.0.0.1:5000"
	defaultAlertCapacity    = 1000
	defaultGenerateInterval = 2 * time.Second
)

// mockConfig holds mock backend configuration.
type mockConfig struct {
	Addr             string        `mapstructure:"addr"`
	Seed             uint64        `mapstructure:"seed"` // 0 = seed from the clock
	AlertCapacity    int           `mapstructure:"alert-capacity"`
	GenerateInterval time.Duration `mapstructure:"generate-interval"`
	PointsFile       string        `mapstructure:"points-file"`
	DBPath           string        `mapstructure:"db-path"` // "" = in-memory
	LogLevel         string        `mapstructure:"log-level"`
}

func loadConfig(configPath string) (mockConfig, error) {
	var cfg mockConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("SOCLENS_MOCK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("addr", defaultAddr)
	v.SetDefault("seed", 0)
	v.SetDefault("alert-capacity", defaultAlertCapacity)
	v.SetDefault("generate-interval", defaultGenerateInterval)
	v.SetDefault("points-file", "")
	v.SetDefault("db-path", "")
	v.SetDefault("log-level", "info")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "soclens", "mock.yml"))
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

	if cfg.AlertCapacity < 1 {
		return cfg, fmt.Errorf("invalid alert-capacity: %d", cfg.AlertCapacity)
	}
	if cfg.GenerateInterval <= 0 {
		return cfg, fmt.Errorf("invalid generate-interval: %s", cfg.GenerateInterval)
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, fmt.Errorf("invalid log-level: %w", err)
	}
	cfg.PointsFile = expandHome(cfg.PointsFile, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)
	return cfg, nil
}

// Expand ~ in paths
func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
