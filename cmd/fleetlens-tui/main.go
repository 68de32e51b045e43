package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/fleetlens/internal/apiclient"
	"github.com/tinytelemetry/fleetlens/internal/logging"
	"github.com/tinytelemetry/fleetlens/internal/tui"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var apiURL string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/fleetlens/config.yml)")
	flag.StringVar(&apiURL, "api-url", "", "override the fleetlens API base URL")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Fleetlens TUI - Dashboard Client\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if apiURL != "" {
		cfg.APIURL = strings.TrimRight(apiURL, "/")
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg cliConfig) error {
	cleanupLogger := configureRuntimeLogger(cfg.LogLevel)
	defer cleanupLogger()

	client := apiclient.New(cfg.APIURL, cfg.APIKey, cfg.RequestTimeout)
	logging.Info().Str("api_url", cfg.APIURL).Msg("tui starting")

	dashPage := tui.NewDashboardPage(tui.DashboardConfig{
		Fetcher:   client,
		ExportDir: cfg.ExportDir,
		RangeDays: cfg.DefaultRange,
	})
	app := tui.NewApp(dashPage, tui.NewHelpPage())

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// configureRuntimeLogger sends logs to a file so they do not draw over the
// terminal UI. Logging is disabled when the file cannot be opened.
func configureRuntimeLogger(level string) func() {
	disable := func() func() {
		logging.Init(logging.Config{Level: "disabled"})
		return func() {}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return disable()
	}

	logDir := filepath.Join(home, ".local", "state", "fleetlens")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return disable()
	}

	logPath := filepath.Join(logDir, "fleetlens-tui.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return disable()
	}

	logging.Init(logging.Config{Level: level, Format: "json", Output: f})
	return func() {
		_ = f.Close()
	}
}
