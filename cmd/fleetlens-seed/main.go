package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/tinytelemetry/fleetlens/internal/duckdb"
	"github.com/tinytelemetry/fleetlens/internal/logging"
	"github.com/tinytelemetry/fleetlens/internal/sample"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var configPath string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/fleetlens/config.yml)")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Fleetlens seed %s (%s)\n", version, commit)
		return
	}

	cfg, err := loadSeedConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	if cfg.DBPath == "" {
		logging.Info().Msg("db-path not set, nothing to seed")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg seedConfig) error {
	store, err := duckdb.NewStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open DuckDB: %w", err)
	}
	defer store.Close()

	res, err := seed(ctx, store, cfg, sample.New())
	if err != nil {
		return err
	}

	logging.Info().
		Str("db_path", cfg.DBPath).
		Int("servers", res.Servers).
		Int("sessions", res.Sessions).
		Int("signups", res.Signups).
		Msg("seed complete")
	fmt.Printf("Seeded %s servers into %s\n", humanize.Comma(int64(res.Servers)), cfg.DBPath)
	return nil
}

type seedResult struct {
	Servers  int
	Sessions int
	Signups  int
}

// seed fills the servers table and, when asked, the optional sessions and
// signups tables, then checkpoints the database.
func seed(ctx context.Context, store *duckdb.Store, cfg seedConfig, gen *sample.Generator) (seedResult, error) {
	var res seedResult

	servers := gen.Servers(cfg.ServerCount)
	if err := store.SeedServers(ctx, servers, cfg.BatchSize); err != nil {
		return res, fmt.Errorf("seed servers: %w", err)
	}
	res.Servers = len(servers)

	if cfg.WithSessions || cfg.WithSignups {
		if err := store.CreateOptionalTables(ctx); err != nil {
			return res, fmt.Errorf("create optional tables: %w", err)
		}
	}
	if cfg.WithSessions {
		sessions := gen.Sessions(sample.SessionDays)
		if err := store.InsertSessions(ctx, sessions); err != nil {
			return res, fmt.Errorf("seed sessions: %w", err)
		}
		res.Sessions = len(sessions)
	}
	if cfg.WithSignups {
		signups := gen.Signups(cfg.SignupCount)
		if err := store.InsertSignups(ctx, signups); err != nil {
			return res, fmt.Errorf("seed signups: %w", err)
		}
		res.Signups = len(signups)
	}

	if err := store.Checkpoint(ctx); err != nil {
		return res, fmt.Errorf("checkpoint: %w", err)
	}
	return res, nil
}
