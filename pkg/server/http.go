package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/direapp/dire/pkg/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The login collaborator owns origin policy; the session core accepts
	// whatever reaches the socket.
	CheckOrigin: func(*http.Request) bool { return true },
}

// StartHTTP opens the listener and starts serving the websocket endpoint.
// TLS is used when both cert and key paths are configured.
func (s *Server) StartHTTP() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.cfg.Addr, err)
	}
	s.httpLn = ln
	s.httpSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		var err error
		if s.cfg.CertFile != "" && s.cfg.KeyFile != "" {
			err = s.httpSrv.ServeTLS(ln, s.cfg.CertFile, s.cfg.KeyFile)
		} else {
			err = s.httpSrv.Serve(ln)
		}
		if err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "err", err)
		}
	}()
	return nil
}

// handleWS upgrades a request and runs the connection's read loop until it
// closes.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	c := newConn(newWSSocket(ws))
	s.conns.Add(c)
	s.metrics.TotalConnections.Add(1)
	s.metrics.ActiveConnections.Add(1)
	slog.Debug("connection open", "remote", c.sock.RemoteAddr())

	ws.SetReadLimit(protocol.MaxMessage)
	ws.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})

	defer s.closeConn(c)
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				slog.Warn("read error", "remote", c.sock.RemoteAddr(), "user", c.Username(), "err", err)
			}
			return
		}

		env, err := protocol.ParseEnvelope(data)
		if err != nil {
			slog.Error("bad inbound message", "remote", c.sock.RemoteAddr(), "err", err)
			continue
		}

		s.mu.Lock()
		s.dispatch(c, env)
		s.mu.Unlock()
	}
}

// closeConn runs the disconnect cleanup: drop the connection from the
// table, clear the registry back-reference if it still points here, and
// refresh the roster for everyone watching.
func (s *Server) closeConn(c *Conn) {
	c.Close()
	s.conns.Remove(c)
	s.metrics.ActiveConnections.Add(-1)
	s.metrics.TotalDisconnects.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if name := c.Username(); name != "" {
		// A newer hello may have rebound the record to another socket.
		if rec, ok := s.registry.Lookup(name); ok && rec.conn == c {
			rec.conn = nil
		}
	}
	slog.Debug("connection closed", "remote", c.sock.RemoteAddr(), "user", c.Username())
	s.tellAboutUsers()
}
