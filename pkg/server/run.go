package server

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Run starts the server and blocks until shutdown signal.
func (s *Server) Run() error {
	if s.store == nil {
		return fmt.Errorf("server: missing store dependency")
	}
	defer func() { _ = s.store.Close() }()

	if err := s.loadState(); err != nil {
		return err
	}
	slog.Info("session state loaded",
		"users", len(s.registry.Usernames()),
		"actions", s.log.Len(),
		"allow_multiple_gms", s.settings.AllowMultipleGMs,
	)

	if err := s.StartHTTP(); err != nil {
		return err
	}

	slog.Info("DIRE server running",
		"addr", s.cfg.Addr,
		"tls", s.cfg.CertFile != "" && s.cfg.KeyFile != "",
	)

	// Start Prometheus metrics HTTP endpoint
	s.StartMetricsHTTP()

	// Start periodic metrics logging
	if s.cfg.MetricsLogInterval > 0 {
		s.metrics.StartPeriodicLog(s.cfg.MetricsLogInterval, s.ctx.Done())
	}

	// Heartbeat sweep
	go func() {
		ticker := time.NewTicker(s.cfg.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.conns.Sweep()
			}
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")
	s.Shutdown()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() {
	s.cancel()
	if s.httpSrv != nil {
		_ = s.httpSrv.Close()
	}
	for _, c := range s.conns.snapshot() {
		c.Close()
	}
}
