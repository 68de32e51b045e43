package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/fleetlens/internal/duckdb"
	"github.com/tinytelemetry/fleetlens/internal/httpserver"
	"github.com/tinytelemetry/fleetlens/internal/logging"
)

// runServer serves the HTTP API until SIGINT or SIGTERM.
func runServer(cfg appConfig) error {
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// The store is opened lazily by the first request that needs it.
	pool := duckdb.NewPool(duckdb.PoolConfig{
		DBPath:               cfg.DBPath,
		QueryTimeout:         cfg.QueryTimeout,
		MaxConcurrentQueries: cfg.MaxConcurrentReads,
	})
	defer pool.Close()

	apiServer := httpserver.NewServer(httpserver.Config{
		Addr:             cfg.APIAddr,
		APIKey:           cfg.APIKey,
		CORSOrigins:      cfg.CORSOrigins,
		DashboardEnabled: cfg.DashboardEnabled,
		MetricsEnabled:   cfg.MetricsEnabled,
	}, pool)
	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	// Set up context and signal handling before errgroup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		// Shutdown deadline starts now, not at boot.
		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		os.Exit(1)
	}()

	printStartupBanner(cfg, apiServer.Addr())

	g, gctx := errgroup.WithContext(ctx)

	// Open the store once up front so a bad db-path shows in the log at
	// start-up. Requests retry on their own if this fails.
	g.Go(func() error {
		if _, err := pool.Acquire(gctx); err != nil {
			logging.Warn().Err(err).Str("db_path", cfg.DBPath).Msg("store not available yet")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logging.Error().Err(err).Msg("server: errgroup exited with error")
	}

	if err := apiServer.Stop(); err != nil {
		logging.Error().Err(err).Msg("http server shutdown")
	}
	logging.Info().Msg("server stopped")

	signal.Stop(sigCh)
	return nil
}

func printStartupBanner(cfg appConfig, addr string) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
    ╔═╗╦  ╔═╗╔═╗╔╦╗╦  ╔═╗╔╗╔╔═╗
    ╠╣ ║  ║╣ ║╣  ║ ║  ║╣ ║║║╚═╗
    ╚  ╩═╝╚═╝╚═╝ ╩ ╩═╝╚═╝╝╚╝╚═╝`)

	ver := dim.Render("v" + version)

	var lines []string
	lines = append(lines, "")
	lines = append(lines, logo)
	lines = append(lines, "    "+ver)
	lines = append(lines, "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator)
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Gateway"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render(addr)))
	if cfg.DashboardEnabled {
		lines = append(lines, fmt.Sprintf("    %s  Dashboard      %s", check, cyan.Render("http://"+addr+"/dashboard")))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Dashboard      %s", dot, dim.Render("disabled")))
	}
	if cfg.MetricsEnabled {
		lines = append(lines, fmt.Sprintf("    %s  Metrics        %s", check, cyan.Render("/metrics")))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Metrics        %s", dot, dim.Render("disabled")))
	}
	if cfg.APIKey != "" {
		lines = append(lines, fmt.Sprintf("    %s  API Key        %s", check, dim.Render("required")))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  API Key        %s", dot, dim.Render("open")))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Storage"))
	lines = append(lines, "")
	if cfg.DBPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  DuckDB         %s", check, dim.Render(shortenPath(cfg.DBPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  DuckDB         %s", dot, dim.Render("not configured (sample data only)")))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Config"))
	lines = append(lines, "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}

	lines = append(lines, "")
	lines = append(lines, separator)
	lines = append(lines, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"))
	lines = append(lines, "")

	fmt.Println(strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
