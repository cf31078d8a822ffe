package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("expected :8080, got %s", cfg.Address())
	}
	if cfg.OTPMaxAttempts != 3 {
		t.Fatalf("expected 3 otp attempts, got %d", cfg.OTPMaxAttempts)
	}
	if cfg.OTPDelay != time.Second {
		t.Fatalf("expected 1s otp delay, got %s", cfg.OTPDelay)
	}
}

func TestParseRemoteRequiresBackend(t *testing.T) {
	t.Setenv("DATA_BACKEND", "remote")
	t.Setenv("BACKEND_URL", "")

	if _, err := Parse(); err == nil {
		t.Fatalf("expected error without BACKEND_URL")
	}

	t.Setenv("BACKEND_URL", "https://example.supabase.co")
	t.Setenv("BACKEND_ANON_KEY", "anon")
	if _, err := Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}
}

func TestParseProductionRequiresSecret(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	if _, err := Parse(); err == nil {
		t.Fatalf("expected error without SESSION_SECRET in production")
	}
}

func TestParseUnknownDriver(t *testing.T) {
	t.Setenv("DATA_BACKEND", "mongo")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestAddressKeepsColonPrefix(t *testing.T) {
	cfg := Config{Port: ":9000"}
	if cfg.Address() != ":9000" {
		t.Fatalf("expected :9000, got %s", cfg.Address())
	}
}
