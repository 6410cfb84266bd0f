package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Server.Address != ":8085" {
		t.Fatalf("unexpected server address: %q", cfg.Server.Address)
	}
	if cfg.Server.MetricsAddress != ":2112" {
		t.Fatalf("unexpected metrics address: %q", cfg.Server.MetricsAddress)
	}
	if cfg.ZeroShot.Path != "/models/facebook/bart-large-mnli" {
		t.Fatalf("unexpected model path: %q", cfg.ZeroShot.Path)
	}
	if cfg.ZeroShot.Timeout != 30*time.Second {
		t.Fatalf("unexpected model timeout: %v", cfg.ZeroShot.Timeout)
	}
	if cfg.Stores.FeedbackPath != "feedback_chat.csv" {
		t.Fatalf("unexpected feedback path: %q", cfg.Stores.FeedbackPath)
	}
	if cfg.Cache.Enabled {
		t.Fatalf("cache must default off")
	}
	if cfg.Cache.ClassifyTTL != 10*time.Minute {
		t.Fatalf("unexpected classify TTL: %v", cfg.Cache.ClassifyTTL)
	}
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  address: ":9000"
zeroShot:
  baseURL: "https://api-inference.huggingface.co"
stores:
  feedbackPath: "/var/lib/triage/feedback.csv"
logging:
  level: debug
  json: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":9000" {
		t.Fatalf("file override lost: %q", cfg.Server.Address)
	}
	if cfg.ZeroShot.BaseURL != "https://api-inference.huggingface.co" {
		t.Fatalf("model base URL lost: %q", cfg.ZeroShot.BaseURL)
	}
	if cfg.Stores.FeedbackPath != "/var/lib/triage/feedback.csv" {
		t.Fatalf("store path lost: %q", cfg.Stores.FeedbackPath)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.JSON {
		t.Fatalf("logging section lost: %+v", cfg.Logging)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Server.MetricsAddress != ":2112" {
		t.Fatalf("defaults must survive partial files: %q", cfg.Server.MetricsAddress)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("explicit missing config must be an error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRIAGE_SERVER_ADDRESS", ":7777")
	t.Setenv("TRIAGE_ZEROSHOT_TOKEN", "hf_secret")
	t.Setenv("TRIAGE_ZEROSHOT_TIMEOUT", "5s")
	t.Setenv("TRIAGE_LOG_FORMAT", "json")
	t.Setenv("TRIAGE_CACHE_ENABLED", "true")
	t.Setenv("TRIAGE_CACHE_ADDR", "valkey:6379")
	t.Setenv("TRIAGE_CACHE_CLASSIFY_TTL", "1m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":7777" {
		t.Fatalf("env override lost: %q", cfg.Server.Address)
	}
	if cfg.ZeroShot.APIToken != "hf_secret" {
		t.Fatalf("token override lost")
	}
	if cfg.ZeroShot.Timeout != 5*time.Second {
		t.Fatalf("timeout override lost: %v", cfg.ZeroShot.Timeout)
	}
	if !cfg.Logging.JSON {
		t.Fatalf("log format override lost")
	}
	if !cfg.Cache.Enabled || cfg.Cache.Addr != "valkey:6379" {
		t.Fatalf("cache overrides lost: %+v", cfg.Cache)
	}
	if cfg.Cache.ClassifyTTL != time.Minute {
		t.Fatalf("TTL override lost: %v", cfg.Cache.ClassifyTTL)
	}
}

func TestEnvConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  address: \":6060\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TRIAGE_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":6060" {
		t.Fatalf("TRIAGE_CONFIG path not honoured: %q", cfg.Server.Address)
	}
}
