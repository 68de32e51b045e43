package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/fleetlens/internal/duckdb"
)

const (
	defaultServerCount = 200
	defaultSignupCount = 25
)

type seedConfig struct {
	DBPath       string `mapstructure:"db-path"`
	ServerCount  int    `mapstructure:"server-count"`
	BatchSize    int    `mapstructure:"batch-size"`
	WithSessions bool   `mapstructure:"with-sessions"`
	WithSignups  bool   `mapstructure:"with-signups"`
	SignupCount  int    `mapstructure:"signup-count"`
	LogLevel     string `mapstructure:"log-level"`
}

// loadSeedConfig reads the seeder settings. Unlike the server, db-path has
// no default: an unset path means there is nothing to seed.
func loadSeedConfig(configPath string) (seedConfig, error) {
	var cfg seedConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("FLEETLENS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("db-path", "")
	v.SetDefault("server-count", defaultServerCount)
	v.SetDefault("batch-size", duckdb.DefaultSeedBatchSize)
	v.SetDefault("with-sessions", true)
	v.SetDefault("with-signups", true)
	v.SetDefault("signup-count", defaultSignupCount)
	v.SetDefault("log-level", "info")

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

	if cfg.ServerCount < 0 {
		return cfg, fmt.Errorf("invalid server-count: %d", cfg.ServerCount)
	}
	if cfg.SignupCount < 0 {
		return cfg, fmt.Errorf("invalid signup-count: %d", cfg.SignupCount)
	}
	if strings.HasPrefix(cfg.DBPath, "~/") {
		cfg.DBPath = filepath.Join(home, cfg.DBPath[2:])
	}

	return cfg, nil
}
