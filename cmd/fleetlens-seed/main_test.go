package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tinytelemetry/fleetlens/internal/duckdb"
	"github.com/tinytelemetry/fleetlens/internal/sample"
)

func countRows(t *testing.T, store *duckdb.Store, table string) int {
	t.Helper()
	var n int
	if err := store.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestSeed_AllTables(t *testing.T) {
	t.Parallel()

	store, err := duckdb.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	cfg := seedConfig{ServerCount: 120, BatchSize: 50, WithSessions: true, WithSignups: true, SignupCount: 4}
	res, err := seed(context.Background(), store, cfg, sample.NewSeeded(1, 2))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if res != (seedResult{Servers: 120, Sessions: sample.SessionDays, Signups: 4}) {
		t.Errorf("result = %+v", res)
	}
	if got := countRows(t, store, "servers"); got != 120 {
		t.Errorf("servers = %d, want 120", got)
	}
	if got := countRows(t, store, "sessions"); got != sample.SessionDays {
		t.Errorf("sessions = %d, want %d", got, sample.SessionDays)
	}
	if got := countRows(t, store, "signups"); got != 4 {
		t.Errorf("signups = %d, want 4", got)
	}
}

func TestSeed_ServersOnly(t *testing.T) {
	t.Parallel()

	store, err := duckdb.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	res, err := seed(context.Background(), store, seedConfig{ServerCount: 10}, sample.NewSeeded(3, 4))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if res.Servers != 10 || res.Sessions != 0 || res.Signups != 0 {
		t.Errorf("result = %+v", res)
	}

	_, ok, err := store.LookupTable(context.Background(), "sessions")
	if err != nil {
		t.Fatalf("LookupTable: %v", err)
	}
	if ok {
		t.Error("sessions table created without with-sessions")
	}
}

func TestRun_OnDisk(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "seed.duckdb")
	cfg := seedConfig{DBPath: path, ServerCount: 5, BatchSize: 2}
	if err := run(context.Background(), cfg); err != nil {
		t.Fatalf("run: %v", err)
	}

	store, err := duckdb.NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	if got := countRows(t, store, "servers"); got != 5 {
		t.Errorf("servers = %d, want 5", got)
	}
}

func TestLoadSeedConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadSeedConfig("")
	if err != nil {
		t.Fatalf("loadSeedConfig: %v", err)
	}
	if cfg.DBPath != "" {
		t.Errorf("db-path = %q, want empty", cfg.DBPath)
	}
	if cfg.ServerCount != 200 || cfg.BatchSize != 50 {
		t.Errorf("counts = %d/%d, want 200/50", cfg.ServerCount, cfg.BatchSize)
	}
	if !cfg.WithSessions || !cfg.WithSignups {
		t.Error("optional tables should be seeded by default")
	}
}
