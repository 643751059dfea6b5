package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")

	cfg := Load()

	if cfg.ServerAddress != ":9090" {
		t.Errorf("expected :9090, got %q", cfg.ServerAddress)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.StatsBackend != "sqlite" {
		t.Errorf("expected sqlite backend, got %q", cfg.StatsBackend)
	}
	if cfg.AdvanceDelay != 600*time.Millisecond || cfg.IntroDelay != 800*time.Millisecond {
		t.Errorf("unexpected pacing: %v / %v", cfg.AdvanceDelay, cfg.IntroDelay)
	}
	if cfg.RepromptDelay != 700*time.Millisecond {
		t.Errorf("expected 700ms reprompt delay, got %v", cfg.RepromptDelay)
	}
	if cfg.HintCap != 2 {
		t.Errorf("expected hint cap 2, got %d", cfg.HintCap)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("STATS_BACKEND", "redis")
	t.Setenv("HINT_PROVIDER", "none")
	t.Setenv("ADVANCE_DELAY", "0s")
	t.Setenv("HINT_CAP", "3")

	cfg := Load()

	if cfg.StatsBackend != "redis" {
		t.Errorf("expected redis backend, got %q", cfg.StatsBackend)
	}
	if cfg.HintProvider != "none" {
		t.Errorf("expected no hint provider, got %q", cfg.HintProvider)
	}
	if cfg.AdvanceDelay != 0 {
		t.Errorf("expected zero advance delay, got %v", cfg.AdvanceDelay)
	}
	if cfg.HintCap != 3 {
		t.Errorf("expected hint cap 3, got %d", cfg.HintCap)
	}
}
