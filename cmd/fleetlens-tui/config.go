package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/fleetlens/internal/dashboard"
	"github.com/tinytelemetry/fleetlens/internal/model"
)

const (
	defaultAPIURL         = "http://127.0.0.1:3000"
	defaultRequestTimeout = 10 * time.Second
	defaultLogLevel       = "info"
)

// cliConfig holds only TUI-relevant configuration.
type cliConfig struct {
	APIURL         string        `mapstructure:"api-url"`
	APIKey         string        `mapstructure:"api-key"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
	ExportDir      string        `mapstructure:"export-dir"`
	DefaultRange   int           `mapstructure:"default-range"`
	LogLevel       string        `mapstructure:"log-level"`
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("FLEETLENS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("api-url", defaultAPIURL)
	v.SetDefault("api-key", "")
	v.SetDefault("request-timeout", defaultRequestTimeout)
	v.SetDefault("export-dir", ".")
	v.SetDefault("default-range", model.DefaultRangeDays)
	v.SetDefault("log-level", defaultLogLevel)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "fleetlens", "config.yml"))
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

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.APIURL == "" {
		return cfg, errors.New("api-url must not be empty")
	}
	if cfg.RequestTimeout <= 0 {
		return cfg, fmt.Errorf("invalid request-timeout: %s", cfg.RequestTimeout)
	}
	if !slices.Contains(dashboard.Ranges, cfg.DefaultRange) {
		return cfg, fmt.Errorf("invalid default-range: %d, want one of %v", cfg.DefaultRange, dashboard.Ranges)
	}
	if strings.HasPrefix(cfg.ExportDir, "~/") {
		cfg.ExportDir = filepath.Join(home, cfg.ExportDir[2:])
	}

	return cfg, nil
}
