package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"CONFIG", "BASE_URL", "TOKEN_HEADER", "TIMEOUT", "DATA_DIR",
		"PASSPHRASE", "LOG_LEVEL", "LISTEN", "LOG_BODIES"} {
		t.Setenv(envPrefix+name, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:5000/" || cfg.TokenHeader != "x-auth-token" {
		t.Errorf("cfg = %+v", cfg)
	}
	if d, _ := cfg.TimeoutDuration(); d != 30*time.Second {
		t.Errorf("timeout = %v", d)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "base_url: https://maids.example.com/\ntimeout: 5s\nlog_bodies: true\ndata_dir: /var/lib/mm\n"
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MAIDMANAGER_TIMEOUT", "12s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://maids.example.com/" || !cfg.LogBodies {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Timeout != "12s" {
		t.Errorf("timeout = %q, want env value 12s", cfg.Timeout)
	}
	if cfg.DBPath() != "/var/lib/mm/maidmanager.db" {
		t.Errorf("db path = %q", cfg.DBPath())
	}
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "mm.yaml")
	os.WriteFile(path, []byte("listen: 0.0.0.0:9000\n"), 0600)
	t.Setenv("MAIDMANAGER_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "0.0.0.0:9000" {
		t.Errorf("listen = %q", cfg.Listen)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.BaseURL = "localhost"
	cfg.Timeout = "-1s"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "base_url") || !strings.Contains(err.Error(), "timeout") {
		t.Errorf("err = %v", err)
	}
}

func TestBadLogBodies(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAIDMANAGER_LOG_BODIES", "sometimes")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error")
	}
}
