package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SUMMARY_LENGTH_DEFAULT", "")
	t.Setenv("SUMMARIZER_BACKEND", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SummaryLengthMin != 100 || cfg.SummaryLengthMax != 500 || cfg.SummaryLengthDefault != 300 {
		t.Fatalf("unexpected length range %d..%d default %d", cfg.SummaryLengthMin, cfg.SummaryLengthMax, cfg.SummaryLengthDefault)
	}
	if cfg.SummaryMinFloor != 50 || cfg.SummaryMinDelta != 50 {
		t.Fatalf("unexpected floor/delta %d/%d", cfg.SummaryMinFloor, cfg.SummaryMinDelta)
	}
	if cfg.SummarizerBackend != "ollama" {
		t.Fatalf("expected ollama backend, got %q", cfg.SummarizerBackend)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("expected 2h ttl, got %s", cfg.SessionTTL)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("expected json log format, got %q", cfg.LogFormat)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SUMMARY_LENGTH_DEFAULT", "250")
	t.Setenv("SUMMARIZE_TIMEOUT", "45s")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("BREAKER_ENABLED", "false")
	t.Setenv("MAX_UPLOAD_MB", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SummaryLengthDefault != 250 {
		t.Fatalf("expected default length 250, got %d", cfg.SummaryLengthDefault)
	}
	if cfg.SummarizeTimeout != 45*time.Second {
		t.Fatalf("expected 45s timeout, got %s", cfg.SummarizeTimeout)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected 2.5 rps, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.BreakerEnabled {
		t.Fatalf("expected breaker disabled")
	}
	if cfg.MaxUploadMB != 32 {
		t.Fatalf("expected fallback for malformed int, got %d", cfg.MaxUploadMB)
	}
}

func TestLoadConfigFileIsOverriddenByEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digest.yaml")
	content := "SUMMARIZER_BACKEND: openai\nOPENAI_MODEL: gpt-4o\nSUMMARY_LENGTH_MAX: 400\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SUMMARIZER_BACKEND", "")
	t.Setenv("OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("SUMMARY_LENGTH_MAX", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SummarizerBackend != "openai" {
		t.Fatalf("expected backend from file, got %q", cfg.SummarizerBackend)
	}
	if cfg.OpenAIModel != "gpt-4.1-mini" {
		t.Fatalf("expected env to win over file, got %q", cfg.OpenAIModel)
	}
	if cfg.SummaryLengthMax != 400 {
		t.Fatalf("expected max length from file, got %d", cfg.SummaryLengthMax)
	}
}

func TestLoadRejectsMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestSummarizerBreakerCarriesSettings(t *testing.T) {
	cfg := Config{BreakerEnabled: true, BreakerMinRequests: 3, BreakerFailureRatio: 0.6, BreakerOpenTimeout: time.Second, BreakerHalfOpenMaxCalls: -1}
	res := cfg.SummarizerBreaker()
	if !res.Enabled || res.MinRequests != 3 || res.FailureRatio != 0.6 || res.OpenTimeout != time.Second {
		t.Fatalf("breaker settings not carried over: %+v", res)
	}
	if res.HalfOpenMaxCalls != 0 {
		t.Fatalf("negative half-open calls must fall back to the default, got %d", res.HalfOpenMaxCalls)
	}
}
