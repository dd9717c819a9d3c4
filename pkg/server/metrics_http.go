package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// StartMetricsHTTP starts a lightweight HTTP server that exposes /metrics
// in Prometheus text exposition format. It runs in the background and
// shuts down when the server context is cancelled.
//
// Bind address is :5001 by default — configurable via Config.MetricsAddr.
func (s *Server) StartMetricsHTTP() {
	addr := s.cfg.MetricsAddr
	if addr == "" {
		return // metrics endpoint disabled
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/metrics.json", s.handleMetricsJSON)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("metrics HTTP listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics HTTP error", "err", err)
		}
	}()

	go func() {
		<-s.ctx.Done()
		_ = srv.Close()
	}()
}

// handleMetricsJSON writes the same snapshot as JSON, for ad-hoc inspection
// without a Prometheus scraper.
func (s *Server) handleMetricsJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(s.metrics.JSON()))
	_, _ = w.Write([]byte("\n"))
}

// handleMetrics writes all metrics in Prometheus text exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	m := s.metrics
	uptime := time.Since(m.startTime).Seconds()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	// Helper for gauge/counter lines.
	// Write errors to http.ResponseWriter are non-actionable; suppress errcheck.
	write := func(name, help, mtype string, value int64) {
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		_, _ = fmt.Fprintf(w, "%s %d\n", name, value)
	}
	writeFloat := func(name, help, mtype string, value float64) {
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		_, _ = fmt.Fprintf(w, "%s %f\n", name, value)
	}

	writeFloat("dire_uptime_seconds", "Server uptime in seconds.", "gauge", uptime)

	write("dire_connections_active", "Current open websocket connections.", "gauge",
		m.ActiveConnections.Load())
	write("dire_connections_total", "Lifetime websocket connections accepted.", "counter",
		m.TotalConnections.Load())
	write("dire_disconnects_total", "Total client disconnects.", "counter",
		m.TotalDisconnects.Load())
	write("dire_hellos_total", "Hello messages processed.", "counter",
		m.Hellos.Load())

	write("dire_guard_rejections_total", "Messages dropped by an authorization guard.", "counter",
		m.GuardRejections.Load())
	write("dire_unknown_actions_total", "Messages with an unrecognized action tag.", "counter",
		m.UnknownActions.Load())
	write("dire_actions_logged_total", "Entries appended to the action log.", "counter",
		m.ActionsLogged.Load())

	write("dire_rolls_total", "Roll requests that produced a broadcast.", "counter",
		m.RollsPerformed.Load())
	write("dire_dice_rolled_total", "Individual dice rolled.", "counter",
		m.DiceRolled.Load())
	write("dire_chat_messages_total", "Chat and user-status broadcasts.", "counter",
		m.ChatMessages.Load())
	write("dire_safety_calls_total", "Safety-tool invocations.", "counter",
		m.SafetyCalls.Load())

	write("dire_kicks_total", "Users kicked by a GM.", "counter",
		m.KickCount.Load())
	write("dire_deleted_users_total", "User records deleted by a GM.", "counter",
		m.DeletedUsers.Load())
}
