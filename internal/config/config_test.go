package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("expected default port 8090, got %d", cfg.Server.Port)
	}
	if cfg.Data.File != "loyaltypro.json" {
		t.Errorf("expected default data file, got %q", cfg.Data.File)
	}
	if cfg.Auth.TokenTTL.Std() != 24*time.Hour {
		t.Errorf("expected default TTL 24h, got %s", cfg.Auth.TokenTTL.Std())
	}
	if cfg.Insights.APIKeyEnv != "GEMINI_API_KEY" {
		t.Errorf("expected default key env, got %q", cfg.Insights.APIKeyEnv)
	}
	if cfg.Server.OpsToken != "" {
		t.Error("ops endpoints must be disabled by default")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: 9000
  ops_token: hunter2
data:
  file: /var/lib/loyaltypro/state.json
auth:
  token_ttl: 1h
insights:
  model: gemini-3-pro
logging:
  level: debug
  format: text
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.OpsToken != "hunter2" {
		t.Errorf("server config not applied: %+v", cfg.Server)
	}
	if cfg.Data.File != "/var/lib/loyaltypro/state.json" {
		t.Errorf("data file not applied: %q", cfg.Data.File)
	}
	if cfg.Auth.TokenTTL.Std() != time.Hour {
		t.Errorf("token TTL not applied: %s", cfg.Auth.TokenTTL.Std())
	}
	if cfg.Insights.Model != "gemini-3-pro" {
		t.Errorf("model not applied: %q", cfg.Insights.Model)
	}
	// Unset fields keep their defaults.
	if cfg.Insights.Timeout.Std() != 30*time.Second {
		t.Errorf("expected default timeout preserved, got %s", cfg.Insights.Timeout.Std())
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("logging config not applied: %+v", cfg.Logging)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("server: [not a map"), 0o644)

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	cfg := Default()
	cfg.Insights.APIKeyEnv = "LOYALTYPRO_TEST_KEY"
	t.Setenv("LOYALTYPRO_TEST_KEY", "sk-test")
	if got := cfg.APIKey(); got != "sk-test" {
		t.Errorf("expected key from env, got %q", got)
	}
}
