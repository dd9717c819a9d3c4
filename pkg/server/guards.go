package server

import (
	"log/slog"

	"github.com/direapp/dire/pkg/model"
	"github.com/direapp/dire/pkg/protocol"
)

// handlerFunc processes one inbound message. It runs under the server
// mutex with the caller already resolved and authorized.
type handlerFunc func(c *Conn, caller *UserRecord, env *protocol.Envelope)

// Authorization guards. A failed guard drops the message and accounts for
// it; nothing goes back to the client, matching the treatment of any other
// malformed input.

func (s *Server) reject(action, reason string, args ...any) {
	args = append([]any{"action", action, "reason", reason}, args...)
	slog.Warn("rejected action", args...)
	s.metrics.GuardRejections.Add(1)
}

// requireGM admits only GM callers.
func (s *Server) requireGM(action string, caller *UserRecord) bool {
	if caller.Role != model.RoleGM {
		s.reject(action, "caller is not GM", "user", caller.Username)
		return false
	}
	return true
}

// requireClass admits only callers of the given class.
func (s *Server) requireClass(action string, caller *UserRecord, class model.Class) bool {
	if caller.Class != class {
		s.reject(action, "caller class mismatch",
			"user", caller.Username, "class", caller.Class, "want", class)
		return false
	}
	return true
}

// requireHandsDie admits callers whose class physically hands a die to the
// GM.
func (s *Server) requireHandsDie(action string, caller *UserRecord) bool {
	if !caller.Class.HandsDie() {
		s.reject(action, "caller class has no die to hand",
			"user", caller.Username, "class", caller.Class)
		return false
	}
	return true
}

// targetHandsDie resolves env.Username to a registered user whose class
// hands a die, for the GM-side die operations.
func (s *Server) targetHandsDie(action string, env *protocol.Envelope) (*UserRecord, bool) {
	rec, ok := s.registry.Lookup(env.Username)
	if !ok {
		s.reject(action, "unknown target", "target", env.Username)
		return nil, false
	}
	if !rec.Class.HandsDie() {
		s.reject(action, "target class has no die to hand",
			"target", rec.Username, "class", rec.Class)
		return nil, false
	}
	return rec, true
}

// classTarget resolves the target of a class-specific mutation: a GM caller
// names the target in the payload; anyone else must be of the required
// class and targets themselves. Either way the resolved target must be of
// the class.
func (s *Server) classTarget(action string, caller *UserRecord, env *protocol.Envelope, class model.Class) (*UserRecord, bool) {
	if caller.Role != model.RoleGM {
		if caller.Class != class {
			s.reject(action, "caller class mismatch",
				"user", caller.Username, "class", caller.Class, "want", class)
			return nil, false
		}
		return caller, true
	}

	rec, ok := s.registry.Lookup(env.Username)
	if !ok {
		s.reject(action, "unknown target", "target", env.Username)
		return nil, false
	}
	if rec.Class != class {
		s.reject(action, "target class mismatch",
			"target", rec.Username, "class", rec.Class, "want", class)
		return nil, false
	}
	return rec, true
}
