package server

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/direapp/dire/pkg/game"
	"github.com/direapp/dire/pkg/model"
	"github.com/direapp/dire/pkg/protocol"
)

// Reasons sent with a kick frame before the server closes a connection.
const (
	kickReasonReplaced = "You logged in somewhere else."
	kickReasonByGM     = "Kicked by GM."
	kickReasonGMTaken  = "There's already a GM (%s), and they're not allowing other GMs right now."
	kickReasonBadKey   = "Wrong GM key."
)

// Pseudonymous attribution for anonymized safety actions.
const (
	anonUsername = "Anonymous"
	anonRole     = model.RolePlayer
)

func (s *Server) registerHandlers() {
	s.handlers = map[string]handlerFunc{
		protocol.ActionRoll:                 s.handleRoll,
		protocol.ActionChat:                 s.handleChat,
		protocol.ActionUserStatus:           s.handleUserStatus,
		protocol.ActionSafety:               s.handleSafety,
		protocol.ActionSetClass:             s.handleSetClass,
		protocol.ActionPlayerHandDie:        s.handlePlayerHandDie,
		protocol.ActionPlayerTakeDie:        s.handlePlayerTakeDie,
		protocol.ActionGMTakeDie:            s.handleGMTakeDie,
		protocol.ActionGMReturnDie:          s.handleGMReturnDie,
		protocol.ActionFoolSetDie:           s.handleFoolSetDie,
		protocol.ActionSetKnightKind:        s.handleSetKnightKind,
		protocol.ActionSetKnightLevel:       s.handleSetKnightLevel,
		protocol.ActionSetKnightMaxViolence: s.handleSetKnightMaxViolence,
		protocol.ActionKick:                 s.handleKick,
		protocol.ActionDelete:               s.handleDelete,
		protocol.ActionAllowMultipleGMs:     s.handleAllowMultipleGMs,
	}
}

// dispatch routes one inbound message. It runs under the server mutex, so
// each message's registry and log mutations are atomic with respect to
// every other message.
func (s *Server) dispatch(c *Conn, env *protocol.Envelope) {
	if env.Action == protocol.ActionHello {
		s.handleHello(c, env)
		return
	}

	handler, ok := s.handlers[env.Action]
	if !ok {
		slog.Error("unknown requested action", "action", env.Action, "remote", c.sock.RemoteAddr())
		s.metrics.UnknownActions.Add(1)
		return
	}

	if c.Username() == "" {
		s.reject(env.Action, "no hello yet", "remote", c.sock.RemoteAddr())
		return
	}
	caller := s.registry.Get(c.Username())
	caller.Normalize()
	handler(c, caller, env)
}

// handleHello binds the connection to a username, updates the record's role
// (last hello wins), replays the visible action log, and refreshes the
// roster. GM hellos additionally pass the GM-key check and the
// single-GM setting.
func (s *Server) handleHello(c *Conn, env *protocol.Envelope) {
	username := strings.TrimSpace(env.Username)
	if err := model.ValidateUsername(username); err != nil {
		s.reject(protocol.ActionHello, err.Error(), "remote", c.sock.RemoteAddr())
		return
	}
	role := model.ParseRole(env.Role)

	if role == model.RoleGM {
		if !s.verifyGMKey(env.GMKey) {
			slog.Warn("GM hello with wrong key", "user", username, "remote", c.sock.RemoteAddr())
			c.Kick(kickReasonBadKey)
			return
		}
		if !s.settings.AllowMultipleGMs {
			if other := s.registry.ActiveGM(username); other != nil {
				slog.Info("GM hello refused, another GM is active",
					"user", username, "active_gm", other.Username)
				c.Kick(fmt.Sprintf(kickReasonGMTaken, other.Username))
				return
			}
		}
	}

	rec := s.registry.Get(username)
	if old := rec.conn; old != nil && old != c && old.IsOpen() {
		old.Kick(kickReasonReplaced)
	}

	c.setUsername(username)
	rec.conn = c
	rec.Role = role
	rec.Normalize()
	s.metrics.Hellos.Add(1)

	var replay []protocol.Action
	if rec.Role == model.RoleGM {
		s.tellAboutUsers()
		replay = s.log.FilteredFor(username, model.RoleGM)
	} else {
		s.refreshUserData(username)
		replay = s.log.FilteredFor(username, rec.Role)
	}

	slog.Debug("sending action log", "user", username, "length", len(replay))
	frame := make([]any, len(replay))
	for i := range replay {
		frame[i] = replay[i]
	}
	c.send(frame...)
}

func (s *Server) handleChat(_ *Conn, caller *UserRecord, env *protocol.Envelope) {
	s.metrics.ChatMessages.Add(1)
	s.sendActionAs(caller.Username, caller.Role, protocol.Action{
		Kind: protocol.ActionChat,
		Text: env.Text,
	})
}

func (s *Server) handleUserStatus(_ *Conn, caller *UserRecord, env *protocol.Envelope) {
	s.metrics.ChatMessages.Add(1)
	s.sendStatus(caller.Username, caller.Role, env.Text, false)
}

// handleSafety broadcasts a safety-tool invocation. The anonymity marker
// swaps in the pseudonymous identity before logging, so the log never
// records who actually called it.
func (s *Server) handleSafety(_ *Conn, caller *UserRecord, env *protocol.Envelope) {
	username, role := caller.Username, caller.Role
	if env.Anon == protocol.AnonMarker {
		username, role = anonUsername, anonRole
	}
	s.metrics.SafetyCalls.Add(1)
	s.sendActionAs(username, role, protocol.Action{
		Kind:   protocol.ActionSafety,
		Text:   env.Text,
		Choice: env.Choice,
	})
}

func (s *Server) handleSetClass(_ *Conn, caller *UserRecord, env *protocol.Envelope) {
	if !s.requireGM(protocol.ActionSetClass, caller) {
		return
	}
	class := model.Class(env.Class)
	if !class.Valid() {
		s.reject(protocol.ActionSetClass, "unknown class", "class", env.Class)
		return
	}
	if err := model.ValidateUsername(env.Username); err != nil {
		s.reject(protocol.ActionSetClass, err.Error(), "target", env.Username)
		return
	}

	target := s.registry.Get(env.Username)
	target.SetClass(class)
	s.refreshUserData(target.Username)
}

func (s *Server) handlePlayerHandDie(_ *Conn, caller *UserRecord, _ *protocol.Envelope) {
	if !s.requireHandsDie(protocol.ActionPlayerHandDie, caller) {
		return
	}
	if caller.SetDieWithGM(true) {
		s.sendStatus(caller.Username, caller.Role,
			fmt.Sprintf("%s handed their die to the GM.", caller.Username), false)
		s.refreshUserData(caller.Username)
	}
}

func (s *Server) handlePlayerTakeDie(_ *Conn, caller *UserRecord, _ *protocol.Envelope) {
	if !s.requireHandsDie(protocol.ActionPlayerTakeDie, caller) {
		return
	}
	if caller.SetDieWithGM(false) {
		s.sendStatus(caller.Username, caller.Role,
			fmt.Sprintf("%s took their die back from the GM.", caller.Username), false)
		s.refreshUserData(caller.Username)
	}
}

func (s *Server) handleGMTakeDie(_ *Conn, caller *UserRecord, env *protocol.Envelope) {
	if !s.requireGM(protocol.ActionGMTakeDie, caller) {
		return
	}
	target, ok := s.targetHandsDie(protocol.ActionGMTakeDie, env)
	if !ok {
		return
	}
	if target.SetDieWithGM(true) {
		s.sendStatus(caller.Username, caller.Role,
			fmt.Sprintf("The GM took %s's die.", target.Username), false)
		s.refreshUserData(target.Username)
	}
}

func (s *Server) handleGMReturnDie(_ *Conn, caller *UserRecord, env *protocol.Envelope) {
	if !s.requireGM(protocol.ActionGMReturnDie, caller) {
		return
	}
	target, ok := s.targetHandsDie(protocol.ActionGMReturnDie, env)
	if !ok {
		return
	}
	if target.SetDieWithGM(false) {
		s.sendStatus(caller.Username, caller.Role,
			fmt.Sprintf("The GM gave %s back their die.", target.Username), false)
		s.refreshUserData(target.Username)
	}
}

// handleFoolSetDie lets a fool scribble their own die: one symbol per
// polarity, six faces, a free-text effect. The confirmation broadcast is
// private to the fool and GMs so the table can't read the die.
func (s *Server) handleFoolSetDie(_ *Conn, caller *UserRecord, env *protocol.Envelope) {
	if !s.requireClass(protocol.ActionFoolSetDie, caller, model.ClassFool) {
		return
	}
	if len(env.Sides) != 6 {
		s.reject(protocol.ActionFoolSetDie, "die must have exactly 6 sides",
			"user", caller.Username, "sides", len(env.Sides))
		return
	}

	die := model.FoolDie{
		PosSymbol: game.SanitizeFoolSymbol(env.PosSymbol, model.FoolDefaultGood),
		NegSymbol: game.SanitizeFoolSymbol(env.NegSymbol, model.FoolDefaultBad),
		Sides:     env.Sides,
		Effect:    strings.TrimSpace(env.Effect),
	}
	caller.Fool().Die = die

	faces := make([]string, len(die.Sides))
	for i := range die.Sides {
		sym, err := game.FoolSymbol(die, i+1)
		if err != nil {
			slog.Error("invalid fool die face", "user", caller.Username, "err", err)
		}
		faces[i] = strings.TrimSpace(fmt.Sprintf("%d %s", i+1, sym))
	}
	text := fmt.Sprintf("%s scribbled on their die: %s. Effect: %s",
		caller.Username, strings.Join(faces, " / "), die.Effect)

	s.sendStatus(caller.Username, caller.Role, text, true)
	s.refreshUserData(caller.Username)
}

func (s *Server) handleSetKnightKind(_ *Conn, caller *UserRecord, env *protocol.Envelope) {
	target, ok := s.classTarget(protocol.ActionSetKnightKind, caller, env, model.ClassKnight)
	if !ok {
		return
	}
	kind := strings.TrimSpace(env.EmoKind)
	if kind == "" {
		s.reject(protocol.ActionSetKnightKind, "empty emotion kind", "target", target.Username)
		return
	}

	if !slices.Contains(game.EmoKinds(), kind) {
		slog.Debug("emotion not in the intensity table, generic names apply", "kind", kind)
	}

	target.Knight().EmoKind = kind
	s.sendStatus(caller.Username, caller.Role,
		fmt.Sprintf("%s is now %s %s Knight.",
			target.Username, game.IndefiniteArticle(kind), game.CapFirst(kind)), false)
	s.refreshUserData(target.Username)
}

func (s *Server) handleSetKnightLevel(_ *Conn, caller *UserRecord, env *protocol.Envelope) {
	target, ok := s.classTarget(protocol.ActionSetKnightLevel, caller, env, model.ClassKnight)
	if !ok {
		return
	}
	if env.EmoLevel == nil || *env.EmoLevel < 0 || *env.EmoLevel > game.MaxEmoLevel {
		s.reject(protocol.ActionSetKnightLevel, "emotion level out of range",
			"target", target.Username, "level", env.EmoLevel)
		return
	}

	st := target.Knight()
	st.EmoLevel = *env.EmoLevel
	name := game.CapFirst(game.EmoLevelName(st.EmoKind, st.EmoLevel))
	s.sendStatus(caller.Username, caller.Role,
		fmt.Sprintf("%s's %s is now level %d: %s",
			target.Username, game.CapFirst(st.EmoKind), st.EmoLevel, name), false)
	s.refreshUserData(target.Username)
}

func (s *Server) handleSetKnightMaxViolence(_ *Conn, caller *UserRecord, env *protocol.Envelope) {
	target, ok := s.classTarget(protocol.ActionSetKnightMaxViolence, caller, env, model.ClassKnight)
	if !ok {
		return
	}
	if env.MaxViolence == nil || *env.MaxViolence < 0 || *env.MaxViolence > game.MaxCreativeViolence {
		s.reject(protocol.ActionSetKnightMaxViolence, "violence cap out of range",
			"target", target.Username, "max", env.MaxViolence)
		return
	}

	target.Knight().MaxViolence = *env.MaxViolence
	s.sendStatus(caller.Username, caller.Role,
		fmt.Sprintf("%s can now do Creative Violence up to level %d.",
			target.Username, *env.MaxViolence), true)
	s.refreshUserData(target.Username)
}

// handleKick drops the target's connection with a fixed reason. The
// target's own close path runs the normal disconnect cleanup.
func (s *Server) handleKick(_ *Conn, caller *UserRecord, env *protocol.Envelope) {
	if !s.requireGM(protocol.ActionKick, caller) {
		return
	}
	target, ok := s.registry.Lookup(env.Username)
	if !ok || !target.Connected() {
		return
	}
	s.metrics.KickCount.Add(1)
	target.conn.Kick(kickReasonByGM)
}

func (s *Server) handleDelete(_ *Conn, caller *UserRecord, env *protocol.Envelope) {
	if !s.requireGM(protocol.ActionDelete, caller) {
		return
	}
	if err := s.registry.Delete(env.Username); err != nil {
		s.reject(protocol.ActionDelete, "target has a live connection", "target", env.Username)
		return
	}

	s.metrics.DeletedUsers.Add(1)
	s.tellAboutUsers()
	if err := s.store.DeleteUser(env.Username); err != nil {
		slog.Error("delete user record failed", "user", env.Username, "err", err)
	}
	if err := s.store.SaveUsernames(s.registry.Usernames()); err != nil {
		slog.Error("persist usernames failed", "err", err)
	}
}

func (s *Server) handleAllowMultipleGMs(_ *Conn, caller *UserRecord, env *protocol.Envelope) {
	if !s.requireGM(protocol.ActionAllowMultipleGMs, caller) {
		return
	}
	if env.Value == nil {
		s.reject(protocol.ActionAllowMultipleGMs, "missing value", "user", caller.Username)
		return
	}

	s.settings.AllowMultipleGMs = *env.Value
	if err := s.store.SaveSetting("allowMultipleGMs", *env.Value); err != nil {
		slog.Error("persist setting failed", "setting", "allowMultipleGMs", "err", err)
	}
	s.sendToGMs(protocol.SettingUpdate{
		Action: protocol.ActionAllowMultipleGMs,
		Value:  *env.Value,
	})
}
