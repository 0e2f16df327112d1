package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 0 {
		t.Fatalf("expected no request timeout by default, got %s", cfg.RequestTimeout)
	}
	if cfg.HistoryTTL != 7*24*time.Hour {
		t.Fatalf("unexpected history ttl %s", cfg.HistoryTTL)
	}
	if cfg.RequestDelay != 250*time.Millisecond {
		t.Fatalf("unexpected request delay %s", cfg.RequestDelay)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.internal:9000")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "3")
	t.Setenv("STORE_TYPE", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://api.internal:9000" {
		t.Fatalf("base url not taken from env, got %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("timeout not taken from env, got %s", cfg.RequestTimeout)
	}
	if cfg.StoreType != "memory" {
		t.Fatalf("store type not taken from env, got %q", cfg.StoreType)
	}
}

func TestNormalizeRejectsInvalidDurations(t *testing.T) {
	cases := []Config{
		{BaseURL: "http://x", HistoryTTLSeconds: 0, HistoryCleanupSeconds: 1},
		{BaseURL: "http://x", HistoryTTLSeconds: 1, HistoryCleanupSeconds: 0},
		{BaseURL: "http://x", HistoryTTLSeconds: 1, HistoryCleanupSeconds: 1, RequestTimeoutSeconds: -1},
		{BaseURL: "http://x", HistoryTTLSeconds: 1, HistoryCleanupSeconds: 1, RequestDelayMs: -5},
		{BaseURL: "", HistoryTTLSeconds: 1, HistoryCleanupSeconds: 1},
	}
	for i, cfg := range cases {
		if err := cfg.normalize(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
