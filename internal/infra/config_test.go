package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("FAL_API_KEY", "test-key")
	t.Setenv("FAL_QUEUE_BASE_URL", "")
	t.Setenv("FAL_MODEL", "")
	t.Setenv("FAL_POLL_INTERVAL_MS", "")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.FalBaseURL != "https://queue.fal.run" {
		t.Fatalf("FalBaseURL mismatch: %q", cfg.FalBaseURL)
	}
	if cfg.FalModel != "fal-ai/flux/schnell" {
		t.Fatalf("FalModel mismatch: %q", cfg.FalModel)
	}
	if cfg.FalPollInterval != 500*time.Millisecond {
		t.Fatalf("FalPollInterval mismatch: %v", cfg.FalPollInterval)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port mismatch: %q", cfg.Port)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("CORSAllowedOrigins mismatch: %#v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("FAL_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when FAL_API_KEY missing")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("FAL_API_KEY", "test-key")
	t.Setenv("FAL_QUEUE_BASE_URL", "https://queue.example.com")
	t.Setenv("FAL_MODEL", "fal-ai/flux/dev")
	t.Setenv("FAL_POLL_INTERVAL_MS", "100")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://ui.example.com, https://alt.example.com ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.FalBaseURL != "https://queue.example.com" {
		t.Fatalf("FalBaseURL mismatch: %q", cfg.FalBaseURL)
	}
	if cfg.FalModel != "fal-ai/flux/dev" {
		t.Fatalf("FalModel mismatch: %q", cfg.FalModel)
	}
	if cfg.FalPollInterval != 100*time.Millisecond {
		t.Fatalf("FalPollInterval mismatch: %v", cfg.FalPollInterval)
	}
	want := []string{"https://ui.example.com", "https://alt.example.com"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("CORSAllowedOrigins mismatch: %#v", cfg.CORSAllowedOrigins)
	}
	for i, origin := range want {
		if cfg.CORSAllowedOrigins[i] != origin {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], origin)
		}
	}
}
