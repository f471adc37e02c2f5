package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.SMSFallbackDelay != 30*time.Second {
		t.Errorf("expected 30s fallback delay, got %s", cfg.SMSFallbackDelay)
	}
	if cfg.UpstreamTimeout != 30*time.Second {
		t.Errorf("expected 30s upstream timeout, got %s", cfg.UpstreamTimeout)
	}
	if cfg.GHLBaseURL == "" {
		t.Error("expected a default GHL base URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("SMS_FALLBACK_DELAY", "5s")
	t.Setenv("WEBHOOK_RATE_BURST", "7")
	t.Setenv("GHL_LOCATION_ID", "loc_123")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("expected port 9999, got %s", cfg.Port)
	}
	if cfg.SMSFallbackDelay != 5*time.Second {
		t.Errorf("expected 5s fallback delay, got %s", cfg.SMSFallbackDelay)
	}
	if cfg.WebhookRateBurst != 7 {
		t.Errorf("expected burst 7, got %d", cfg.WebhookRateBurst)
	}
	if cfg.GHLLocationID != "loc_123" {
		t.Errorf("expected location loc_123, got %s", cfg.GHLLocationID)
	}
}

func TestDurationFallbackOnGarbage(t *testing.T) {
	t.Setenv("SMS_FALLBACK_DELAY", "not-a-duration")

	cfg := Load()
	if cfg.SMSFallbackDelay != 30*time.Second {
		t.Errorf("expected default on unparseable duration, got %s", cfg.SMSFallbackDelay)
	}
}
