package server

import (
	"testing"
	"time"
)

func TestConfigEnvOverlay(t *testing.T) {
	t.Setenv("DIRE_ADDR", ":7000")
	t.Setenv("DIRE_METRICS_LOG_INTERVAL", "90s")

	cfg := DefaultConfig()
	if err := cfg.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg.Addr != ":7000" {
		t.Fatalf("Addr = %q, want :7000", cfg.Addr)
	}
	if cfg.MetricsLogInterval != 90*time.Second {
		t.Fatalf("MetricsLogInterval = %v, want 90s", cfg.MetricsLogInterval)
	}
	// Unset variables keep their defaults.
	if cfg.HeartbeatInterval != 15*time.Second {
		t.Fatalf("HeartbeatInterval = %v, want default 15s", cfg.HeartbeatInterval)
	}
}
