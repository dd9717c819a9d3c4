package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/direapp/dire/pkg/datastore"
	"github.com/direapp/dire/pkg/logging"
	"github.com/direapp/dire/pkg/server"
	"github.com/direapp/dire/pkg/version"
)

func main() {
	cfg := server.DefaultConfig()
	if err := cfg.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP/WebSocket bind address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database file path")
	flag.StringVar(&cfg.CertFile, "cert", cfg.CertFile, "TLS certificate file (empty for plain HTTP)")
	flag.StringVar(&cfg.KeyFile, "key", cfg.KeyFile, "TLS private key file")
	flag.StringVar(&cfg.GMKey, "gm-key", cfg.GMKey, "Key required to claim the GM role (empty to trust clients)")
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "HTTP bind address for Prometheus /metrics (empty to disable)")
	flag.DurationVar(&cfg.HeartbeatInterval, "heartbeat", cfg.HeartbeatInterval, "Connection liveness sweep interval")
	flag.DurationVar(&cfg.MetricsLogInterval, "metrics-log-interval", cfg.MetricsLogInterval, "Metrics summary logging interval (0 to disable)")
	flag.BoolVar(&cfg.ExportUsers, "export-users", false, "Export all users as YAML and exit")
	flag.BoolVar(&cfg.ExportLog, "export-log", false, "Export the action log as YAML and exit")

	logLevel := flag.String("log-level", "info", "Log level: "+logging.LevelNames())
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("dire", version.Full())
		return
	}

	// Configure structured logging
	if err := logging.Setup(logging.Options{
		Level:  *logLevel,
		Format: *logFormat,
		Output: os.Stdout,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging config: %v\n", err)
		os.Exit(1)
	}

	kv, err := datastore.OpenSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("open database", "err", err)
		os.Exit(1)
	}
	st := datastore.NewStore(kv)

	// Handle export commands (run and exit)
	if cfg.ExportUsers || cfg.ExportLog {
		defer func() { _ = st.Close() }()

		if cfg.ExportUsers {
			data, err := server.ExportUsersYAML(st)
			if err != nil {
				slog.Error("export users", "err", err)
				os.Exit(1)
			}
			fmt.Print(string(data))
		}
		if cfg.ExportLog {
			data, err := server.ExportLogYAML(st)
			if err != nil {
				slog.Error("export log", "err", err)
				os.Exit(1)
			}
			fmt.Print(string(data))
		}
		return
	}

	slog.Info("starting dire", "version", version.String())
	srv := server.New(cfg, server.Dependencies{Store: st})
	if err := srv.Run(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
