package config

import (
	"strings"
	"testing"
	"time"
)

// TestFromEnv_Defaults verifies defaults when nothing is set.
func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"BOARD_ADDR", "BOARD_ENV", "UPSTREAM_URL", "UPSTREAM_TIMEOUT", "BOARD_LOCALE",
		"BANNER_DISMISS_AFTER", "BOARD_CSRF_KEY", "BOARD_TRUSTED_ORIGINS", "BOARD_RATE_LIMIT"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.UpstreamTimeout != 10*time.Second {
		t.Errorf("UpstreamTimeout = %v, want 10s", cfg.UpstreamTimeout)
	}
	if cfg.BannerDismissAfter != 5*time.Second {
		t.Errorf("BannerDismissAfter = %v, want 5s", cfg.BannerDismissAfter)
	}
	if len(cfg.CSRFKey) != 32 || !cfg.CSRFKeyGenerated {
		t.Errorf("expected a generated 32 byte CSRF key, got %d bytes generated=%v", len(cfg.CSRFKey), cfg.CSRFKeyGenerated)
	}
	if len(cfg.TrustedOrigins) != 2 {
		t.Errorf("TrustedOrigins = %v", cfg.TrustedOrigins)
	}
}

// TestFromEnv_Overrides verifies typed parsing of configured values.
func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("UPSTREAM_URL", "https://api.example.org/")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("BANNER_DISMISS_AFTER", "750ms")
	t.Setenv("BOARD_RATE_LIMIT", "25")
	t.Setenv("BOARD_TRUSTED_ORIGINS", " board.example.org , ,admin.example.org")
	t.Setenv("BOARD_CSRF_KEY", strings.Repeat("ab", 32))

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.UpstreamTimeout != 3*time.Second || cfg.BannerDismissAfter != 750*time.Millisecond {
		t.Errorf("durations = %v / %v", cfg.UpstreamTimeout, cfg.BannerDismissAfter)
	}
	if cfg.RateLimitPerSecond != 25 {
		t.Errorf("RateLimitPerSecond = %d", cfg.RateLimitPerSecond)
	}
	if len(cfg.TrustedOrigins) != 2 || cfg.TrustedOrigins[1] != "admin.example.org" {
		t.Errorf("TrustedOrigins = %v", cfg.TrustedOrigins)
	}
	if cfg.CSRFKeyGenerated || cfg.CSRFKey[0] != 0xab {
		t.Errorf("expected configured CSRF key")
	}
}

// TestFromEnv_Invalid verifies validation failures.
func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad upstream scheme", map[string]string{"UPSTREAM_URL": "ftp://x"}},
		{"missing upstream host", map[string]string{"UPSTREAM_URL": "http://"}},
		{"short csrf key", map[string]string{"BOARD_CSRF_KEY": "abcd"}},
		{"production without csrf key", map[string]string{"BOARD_ENV": "production", "BOARD_CSRF_KEY": ""}},
		{"negative rate limit", map[string]string{"BOARD_RATE_LIMIT": "-1"}},
		{"zero dismiss delay", map[string]string{"BANNER_DISMISS_AFTER": "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("UPSTREAM_URL", "http://localhost:8000")
			t.Setenv("BOARD_CSRF_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

// TestNewLogger verifies level selection.
func TestNewLogger(t *testing.T) {
	if NewLogger("debug") == nil || NewLogger("nonsense") == nil {
		t.Fatal("expected a logger")
	}
}
