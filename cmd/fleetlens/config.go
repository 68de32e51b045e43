package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/fleetlens/internal/model"
)

const (
	defaultBindHost           = "127.0.0.1"
	defaultAPIPort            = model.DefaultAPIPort
	defaultQueryTimeout       = model.DefaultQueryTimeout
	defaultMaxConcurrentReads = 8
	defaultLogLevel           = "info"
	defaultLogFormat          = "console"
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	APIPort            int           `mapstructure:"api-port"`
	APIAddr            string        `mapstructure:"api-addr"`
	DBPath             string        `mapstructure:"db-path"`
	APIKey             string        `mapstructure:"api-key"`
	QueryTimeout       time.Duration `mapstructure:"query-timeout"`
	MaxConcurrentReads int           `mapstructure:"max-concurrent-queries"`
	CORSOrigins        []string      `mapstructure:"cors-origins"`
	LogLevel           string        `mapstructure:"log-level"`
	LogFormat          string        `mapstructure:"log-format"`
	DashboardEnabled   bool          `mapstructure:"dashboard-enabled"`
	MetricsEnabled     bool          `mapstructure:"metrics-enabled"`
	ConfigPath         string        `mapstructure:"-"` // not from config file
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	defaultDBPath := filepath.Join(home, ".local", "share", "fleetlens", "fleetlens.duckdb")

	v := viper.New()
	v.SetEnvPrefix("FLEETLENS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("api-port", defaultAPIPort)
	v.SetDefault("api-addr", "")
	v.SetDefault("db-path", defaultDBPath)
	v.SetDefault("api-key", "")
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("max-concurrent-queries", defaultMaxConcurrentReads)
	v.SetDefault("cors-origins", []string{})
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("log-format", defaultLogFormat)
	v.SetDefault("dashboard-enabled", true)
	v.SetDefault("metrics-enabled", true)

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
	cfg.ConfigPath = v.ConfigFileUsed()
	if _, err := os.Stat(cfg.ConfigPath); err != nil {
		cfg.ConfigPath = ""
	}

	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return cfg, fmt.Errorf("invalid api-port: %d", cfg.APIPort)
	}
	if cfg.QueryTimeout <= 0 {
		return cfg, fmt.Errorf("invalid query-timeout: %s", cfg.QueryTimeout)
	}
	if cfg.MaxConcurrentReads < 0 {
		return cfg, fmt.Errorf("invalid max-concurrent-queries: %d", cfg.MaxConcurrentReads)
	}

	// Expand ~ in db-path
	if strings.HasPrefix(cfg.DBPath, "~/") {
		cfg.DBPath = filepath.Join(home, cfg.DBPath[2:])
	}

	if cfg.APIAddr == "" {
		cfg.APIAddr = net.JoinHostPort(defaultBindHost, strconv.Itoa(cfg.APIPort))
	}

	return cfg, nil
}
