// Package server implements the DIRE session/action core: the user
// registry, the shared action log with replay, the connection table with
// heartbeat liveness, role/class guards, and the action dispatcher.
package server

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/direapp/dire/pkg/crypto"
	"github.com/direapp/dire/pkg/datastore"
	"github.com/direapp/dire/pkg/game"
	"github.com/direapp/dire/pkg/model"
)

// Dependencies holds external dependencies for the server. The server
// assumes ownership of Store and closes it on shutdown.
type Dependencies struct {
	Store *datastore.Store
}

// Server is the DIRE session server. All handler work runs under one mutex,
// so each inbound message mutates the registry and log atomically with
// respect to every other message, preserving the single-actor execution
// model.
type Server struct {
	cfg   Config
	store *datastore.Store

	mu       sync.Mutex
	registry *Registry
	log      *ActionLog
	settings model.Settings

	conns   *ConnTable
	metrics *Metrics
	roller  *game.Roller

	secret    string
	gmKeyHash []byte // argon2id digest of cfg.GMKey; nil when no key is set

	handlers map[string]handlerFunc

	httpLn  net.Listener
	httpSrv *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Server. State is loaded from the store in Run.
func New(cfg Config, deps Dependencies) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		store:    deps.Store,
		registry: NewRegistry(),
		log:      NewActionLog(nil, deps.Store),
		settings: model.DefaultSettings(),
		conns:    NewConnTable(),
		metrics:  NewMetrics(),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.roller = game.NewRoller(newSeed())
	s.registerHandlers()
	return s
}

// Metrics returns the server metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// newSeed draws a roller seed from crypto/rand; math/rand does the actual
// rolling so tests can substitute a fixed seed.
func newSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("server: read random seed: %v", err))
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// verifyGMKey checks a presented GM key against the configured digest.
// True when no key is configured.
func (s *Server) verifyGMKey(presented string) bool {
	if s.gmKeyHash == nil {
		return true
	}
	return crypto.VerifyGMKey(presented, s.secret, s.gmKeyHash)
}

// loadState populates the registry, action log, settings, and session
// secret from the store. Not-found keys fall back to documented defaults;
// any other error aborts startup since the state cannot be trusted.
func (s *Server) loadState() error {
	settings, err := s.store.LoadSettings()
	if err != nil {
		return fmt.Errorf("server: load settings: %w", err)
	}
	s.settings = settings

	users, err := s.store.LoadUsers()
	if err != nil {
		return fmt.Errorf("server: load users: %w", err)
	}
	s.registry.Seed(users)

	actions, err := s.store.LoadActions()
	if err != nil {
		return fmt.Errorf("server: load actions: %w", err)
	}
	s.log = NewActionLog(actions, s.store)

	secret, err := s.store.SessionSecret()
	if err != nil {
		return fmt.Errorf("server: session secret: %w", err)
	}
	s.secret = secret

	if s.cfg.GMKey != "" {
		s.gmKeyHash = crypto.GMKeyDigest(s.cfg.GMKey, s.secret)
	}
	return nil
}

// SessionSecret exposes the login collaborator's cookie-signing secret.
func (s *Server) SessionSecret() string {
	return s.secret
}
