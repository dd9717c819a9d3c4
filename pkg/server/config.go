package server

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds server configuration. Values come from DIRE_* environment
// variables overlaid by command-line flags in cmd/dire.
type Config struct {
	Addr        string `env:"DIRE_ADDR"`         // HTTP/WebSocket bind address
	MetricsAddr string `env:"DIRE_METRICS_ADDR"` // /metrics endpoint (empty = disabled)
	DBPath      string `env:"DIRE_DB"`           // SQLite database path
	CertFile    string `env:"DIRE_TLS_CERT"`     // TLS certificate (empty = plain HTTP)
	KeyFile     string `env:"DIRE_TLS_KEY"`      // TLS private key

	// GMKey, when set, must be presented by every hello claiming the GM
	// role. Empty means roles are trusted as given, the open trust model.
	GMKey string `env:"DIRE_GM_KEY"`

	// HeartbeatInterval is the liveness sweep period. A connection that
	// misses two consecutive sweeps is closed.
	HeartbeatInterval time.Duration `env:"DIRE_HEARTBEAT_INTERVAL"`

	// MetricsLogInterval is how often the metrics summary is logged.
	// Zero disables the periodic summary.
	MetricsLogInterval time.Duration `env:"DIRE_METRICS_LOG_INTERVAL"`

	// CLI-only actions (run and exit)
	ExportUsers bool
	ExportLog   bool
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:               ":5000",
		MetricsAddr:        ":5001",
		DBPath:             "dire.db",
		HeartbeatInterval:  15 * time.Second,
		MetricsLogInterval: time.Minute,
	}
}

// LoadEnv overlays DIRE_* environment variables onto the config.
func (c *Config) LoadEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("server: parse environment: %w", err)
	}
	return nil
}
