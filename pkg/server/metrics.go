package server

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"
)

// Metrics tracks server runtime statistics.
// All counters use atomic operations for lock-free concurrent access.
type Metrics struct {
	startTime time.Time

	// Connection counters
	TotalConnections  atomic.Int64 // lifetime websocket connections accepted
	ActiveConnections atomic.Int64 // current open connections
	TotalDisconnects  atomic.Int64 // total disconnects (clean + unclean)
	Hellos            atomic.Int64 // hello messages processed

	// Dispatch counters
	GuardRejections atomic.Int64 // messages dropped by an authorization guard
	UnknownActions  atomic.Int64 // messages with an unrecognized action tag
	ActionsLogged   atomic.Int64 // entries appended to the action log

	// Game counters
	RollsPerformed atomic.Int64 // roll requests that produced a broadcast
	DiceRolled     atomic.Int64 // individual dice rolled
	ChatMessages   atomic.Int64 // chat and user-status broadcasts
	SafetyCalls    atomic.Int64 // safety-tool invocations

	// Roster counters
	KickCount    atomic.Int64 // users kicked by a GM
	DeletedUsers atomic.Int64 // user records deleted by a GM
}

// NewMetrics creates a new Metrics instance with the start time set to now.
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

// MetricsSnapshot is a point-in-time view of all metrics as a serializable
// struct.
type MetricsSnapshot struct {
	Uptime        string `json:"uptime"`
	UptimeSeconds int64  `json:"uptime_seconds"`

	ActiveConnections int64 `json:"active_connections"`
	TotalConnections  int64 `json:"total_connections"`
	TotalDisconnects  int64 `json:"total_disconnects"`
	Hellos            int64 `json:"hellos"`

	GuardRejections int64 `json:"guard_rejections"`
	UnknownActions  int64 `json:"unknown_actions"`
	ActionsLogged   int64 `json:"actions_logged"`

	RollsPerformed int64 `json:"rolls_performed"`
	DiceRolled     int64 `json:"dice_rolled"`
	ChatMessages   int64 `json:"chat_messages"`
	SafetyCalls    int64 `json:"safety_calls"`

	KickCount    int64 `json:"kick_count"`
	DeletedUsers int64 `json:"deleted_users"`
}

// Snapshot returns a read-consistent snapshot of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	uptime := time.Since(m.startTime)
	return MetricsSnapshot{
		Uptime:            uptime.Truncate(time.Second).String(),
		UptimeSeconds:     int64(uptime.Seconds()),
		ActiveConnections: m.ActiveConnections.Load(),
		TotalConnections:  m.TotalConnections.Load(),
		TotalDisconnects:  m.TotalDisconnects.Load(),
		Hellos:            m.Hellos.Load(),
		GuardRejections:   m.GuardRejections.Load(),
		UnknownActions:    m.UnknownActions.Load(),
		ActionsLogged:     m.ActionsLogged.Load(),
		RollsPerformed:    m.RollsPerformed.Load(),
		DiceRolled:        m.DiceRolled.Load(),
		ChatMessages:      m.ChatMessages.Load(),
		SafetyCalls:       m.SafetyCalls.Load(),
		KickCount:         m.KickCount.Load(),
		DeletedUsers:      m.DeletedUsers.Load(),
	}
}

// JSON returns the metrics snapshot as a JSON string.
func (m *Metrics) JSON() string {
	data, err := json.MarshalIndent(m.Snapshot(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// LogSummary writes a periodic metrics summary to the logger.
func (m *Metrics) LogSummary() {
	s := m.Snapshot()
	slog.Info("metrics",
		"uptime", s.Uptime,
		"connections", s.ActiveConnections,
		"total_connections", s.TotalConnections,
		"actions_logged", s.ActionsLogged,
		"rolls", s.RollsPerformed,
		"dice", s.DiceRolled,
		"chat_msgs", s.ChatMessages,
	)
}

// StartPeriodicLog starts a goroutine that logs metrics every interval.
// It stops when the done channel is closed.
func (m *Metrics) StartPeriodicLog(interval time.Duration, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				m.LogSummary()
			}
		}
	}()
}
