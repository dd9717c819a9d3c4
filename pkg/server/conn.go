package server

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/direapp/dire/pkg/protocol"
)

const writeTimeout = 10 * time.Second

// socket is the duplex channel a connection rides on: ordered byte frames
// out, ping for liveness, close to tear down. The websocket implementation
// is wsSocket; tests inject fakes.
type socket interface {
	Send(data []byte) error
	Ping() error
	Close() error
	RemoteAddr() string
}

// Conn is the ephemeral per-socket state: the username bound by hello and
// the heartbeat liveness flag. None of it is persisted.
type Conn struct {
	sock socket

	// username is bound by hello under the server mutex but also read by
	// the sweep goroutine for logging, so it is atomic.
	username atomic.Pointer[string]

	alive atomic.Bool
	open  atomic.Bool
}

func newConn(sock socket) *Conn {
	c := &Conn{sock: sock}
	c.alive.Store(true)
	c.open.Store(true)
	return c
}

// IsOpen reports whether the connection has not been closed.
func (c *Conn) IsOpen() bool {
	return c.open.Load()
}

// Username returns the username bound by hello, or "" before it.
func (c *Conn) Username() string {
	if p := c.username.Load(); p != nil {
		return *p
	}
	return ""
}

func (c *Conn) setUsername(name string) {
	c.username.Store(&name)
}

// send delivers one outbound frame carrying msgs in array framing.
// Delivery is fire-and-forget: a failed write closes the connection and the
// heartbeat/read-loop cleanup takes it from there.
func (c *Conn) send(msgs ...any) {
	data, err := protocol.MarshalBatch(msgs...)
	if err != nil {
		slog.Error("marshal outbound frame failed", "err", err)
		return
	}
	c.sendRaw(data)
}

// sendRaw delivers an already-framed payload.
func (c *Conn) sendRaw(data []byte) {
	if !c.IsOpen() {
		return
	}
	if err := c.sock.Send(data); err != nil {
		slog.Debug("write failed, closing connection", "remote", c.sock.RemoteAddr(), "err", err)
		c.Close()
	}
}

// Kick notifies the connection why it is being dropped, then closes it.
// The read-loop close path performs the registry cleanup.
func (c *Conn) Kick(reason string) {
	c.send(protocol.NewKick(reason))
	c.Close()
}

// Close tears the socket down. Idempotent.
func (c *Conn) Close() {
	if c.open.CompareAndSwap(true, false) {
		_ = c.sock.Close()
	}
}

// ConnTable tracks every live connection for the heartbeat sweep.
type ConnTable struct {
	mu    sync.Mutex
	conns map[*Conn]struct{}
}

// NewConnTable returns an empty table.
func NewConnTable() *ConnTable {
	return &ConnTable{conns: make(map[*Conn]struct{})}
}

// Add registers a connection.
func (t *ConnTable) Add(c *Conn) {
	t.mu.Lock()
	t.conns[c] = struct{}{}
	t.mu.Unlock()
}

// Remove unregisters a connection.
func (t *ConnTable) Remove(c *Conn) {
	t.mu.Lock()
	delete(t.conns, c)
	t.mu.Unlock()
}

// Len returns the number of tracked connections.
func (t *ConnTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns)
}

func (t *ConnTable) snapshot() []*Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	conns := make([]*Conn, 0, len(t.conns))
	for c := range t.conns {
		conns = append(conns, c)
	}
	return conns
}

// Sweep closes every connection that failed to answer the previous ping and
// pings the rest. Run once per heartbeat interval, it bounds a dead
// connection's lifetime to roughly two intervals. The sweep never touches
// the registry; each closed connection's own close path does the cleanup.
func (t *ConnTable) Sweep() {
	for _, c := range t.snapshot() {
		if !c.alive.Load() {
			slog.Info("closing unresponsive connection", "remote", c.sock.RemoteAddr(), "user", c.Username())
			c.Close()
			continue
		}
		c.alive.Store(false)
		if err := c.sock.Ping(); err != nil {
			c.Close()
		}
	}
}

// wsSocket adapts a gorilla websocket connection to the socket interface,
// serializing writes.
type wsSocket struct {
	mu sync.Mutex
	ws *websocket.Conn
}

var _ socket = (*wsSocket)(nil)

func newWSSocket(ws *websocket.Conn) *wsSocket {
	return &wsSocket{ws: ws}
}

func (s *wsSocket) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("server: set write deadline: %w", err)
	}
	return s.ws.WriteMessage(websocket.TextMessage, data)
}

func (s *wsSocket) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

func (s *wsSocket) Close() error {
	return s.ws.Close()
}

func (s *wsSocket) RemoteAddr() string {
	return s.ws.RemoteAddr().String()
}
