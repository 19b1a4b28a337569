package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}
	if !cfg.App.IsProd() {
		t.Fatal("expected IsProd to report true")
	}

	if cfg.DB.Driver != "sqlite" {
		t.Fatalf("unexpected DB driver %q", cfg.DB.Driver)
	}

	if got := cfg.Telegram.SendTimeout; got != 15*time.Second {
		t.Fatalf("expected telegram send timeout 15s, got %v", got)
	}

	if got := cfg.JWT.Expiration(); got != 720*time.Minute {
		t.Fatalf("expected default JWT expiration 12h, got %v", got)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvJWTSecret); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvJWTSecret, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvDBDriver, "sqlite")
	t.Setenv(EnvDBDSN, "file::memory:?cache=shared")
	t.Setenv(EnvJWTSecret, "test-secret")
}
