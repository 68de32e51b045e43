package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadCLIConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadCLIConfig("")
	if err != nil {
		t.Fatalf("loadCLIConfig: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Errorf("api-url = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Errorf("request-timeout = %s", cfg.RequestTimeout)
	}
	if cfg.DefaultRange != 30 {
		t.Errorf("default-range = %d, want 30", cfg.DefaultRange)
	}
	if cfg.ExportDir != "." {
		t.Errorf("export-dir = %q, want .", cfg.ExportDir)
	}
}

func TestLoadCLIConfig_FileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FLEETLENS_API_KEY", "from-env")

	path := filepath.Join(t.TempDir(), "tui.yml")
	body := "api-url: http://example.test:3000/\nrequest-timeout: 2s\ndefault-range: 7\nexport-dir: ~/exports\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadCLIConfig(path)
	if err != nil {
		t.Fatalf("loadCLIConfig: %v", err)
	}
	if cfg.APIURL != "http://example.test:3000" {
		t.Errorf("api-url = %q, want trailing slash trimmed", cfg.APIURL)
	}
	if cfg.APIKey != "from-env" {
		t.Errorf("api-key = %q", cfg.APIKey)
	}
	if cfg.RequestTimeout != 2*time.Second {
		t.Errorf("request-timeout = %s", cfg.RequestTimeout)
	}
	if cfg.DefaultRange != 7 {
		t.Errorf("default-range = %d", cfg.DefaultRange)
	}
	if want := filepath.Join(home, "exports"); cfg.ExportDir != want {
		t.Errorf("export-dir = %q, want %q", cfg.ExportDir, want)
	}
}

func TestLoadCLIConfig_InvalidRange(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FLEETLENS_DEFAULT_RANGE", "14")

	_, err := loadCLIConfig("")
	if err == nil || !strings.Contains(err.Error(), "invalid default-range") {
		t.Fatalf("err = %v, want invalid default-range", err)
	}
}
