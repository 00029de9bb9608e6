// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.Addr != ":7860" {
		t.Errorf("expected default addr :7860, got %q", cfg.Addr)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development mode by default")
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h token TTL, got %v", cfg.TokenTTL)
	}
}

func TestIsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"Development", true},
		{"DEVELOPMENT", true},
		{"production", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		cfg := AppConfig{Environment: tt.env}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment(%q) = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ORIGINS", "https://a.com,https://b.com")
	t.Setenv("RATE_LIMIT_RPM", "120")
	t.Setenv("TOKEN_TTL", "1h")

	cfg := FromEnv()

	if cfg.IsDevelopment() {
		t.Error("expected production mode")
	}
	if cfg.CORSOrigins != "https://a.com,https://b.com" {
		t.Errorf("unexpected CORS origins %q", cfg.CORSOrigins)
	}
	if cfg.RateLimitRPM != 120 {
		t.Errorf("expected 120 rpm, got %d", cfg.RateLimitRPM)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("expected 1h TTL, got %v", cfg.TokenTTL)
	}
}

func TestParseHelpers_InvalidFallsBack(t *testing.T) {
	t.Setenv("BAD_INT", "not-a-number")
	t.Setenv("BAD_BOOL", "maybe")
	t.Setenv("BAD_DUR", "soon")

	if got := ParseInt("BAD_INT", 42); got != 42 {
		t.Errorf("ParseInt fallback = %d, want 42", got)
	}
	if got := ParseBool("BAD_BOOL", true); got != true {
		t.Errorf("ParseBool fallback = %v, want true", got)
	}
	if got := ParseDuration("BAD_DUR", 5*time.Second); got != 5*time.Second {
		t.Errorf("ParseDuration fallback = %v, want 5s", got)
	}
}
