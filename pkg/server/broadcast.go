package server

import (
	"log/slog"
	"sort"
	"time"

	"github.com/direapp/dire/pkg/model"
	"github.com/direapp/dire/pkg/protocol"
)

// sendToAll delivers msgs to every connected user with a role, skipping
// recipients for which keep returns false. A nil keep sends to everyone.
// Callers hold the server mutex.
func (s *Server) sendToAll(keep func(rec *UserRecord) bool, msgs ...any) {
	data, err := protocol.MarshalBatch(msgs...)
	if err != nil {
		slog.Error("marshal broadcast failed", "err", err)
		return
	}
	for rec := range s.registry.Active("") {
		if rec.Role == "" {
			continue
		}
		if keep != nil && !keep(rec) {
			continue
		}
		rec.conn.sendRaw(data)
	}
}

// sendToGMs delivers msgs to every connected GM.
func (s *Server) sendToGMs(msgs ...any) {
	for rec := range s.registry.Active(model.RoleGM) {
		rec.conn.send(msgs...)
	}
}

// sendToUser delivers msgs to username's connection, if live.
func (s *Server) sendToUser(username string, msgs ...any) {
	rec, ok := s.registry.Lookup(username)
	if !ok || !rec.Connected() {
		return
	}
	rec.conn.send(msgs...)
}

// roster builds the user list broadcast: every registered user with a role,
// GMs first, each group sorted by username.
func (s *Server) roster() protocol.UserList {
	infos := make([]protocol.UserInfo, 0, len(s.registry.users))
	for _, rec := range s.registry.All() {
		if rec.Role == "" {
			continue
		}
		infos = append(infos, protocol.UserInfoFor(rec.User, rec.Connected()))
	}
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].Role == model.RoleGM && infos[j].Role != model.RoleGM
	})
	return protocol.NewUserList(infos)
}

// tellAboutUsers broadcasts the current roster to everyone.
func (s *Server) tellAboutUsers() {
	s.sendToAll(nil, s.roster())
}

// refreshUserData runs after username's record changed: push the user their
// own state, rebroadcast the roster, and persist the record. Persistence is
// best-effort; memory stays authoritative.
func (s *Server) refreshUserData(username string) {
	rec, ok := s.registry.Lookup(username)
	if !ok {
		return
	}
	s.sendToUser(username, protocol.NewUserData(protocol.UserInfoFor(rec.User, rec.Connected())))
	s.tellAboutUsers()
	s.persistUser(rec.User)
}

// persistUser saves one user record and the roster list, logging failures.
func (s *Server) persistUser(u *model.User) {
	if err := s.store.SaveUser(u); err != nil {
		slog.Error("persist user failed", "user", u.Username, "err", err)
	}
	if err := s.store.SaveUsernames(s.registry.Usernames()); err != nil {
		slog.Error("persist usernames failed", "err", err)
	}
}

// sendActionAs stamps an action with attribution and the current time,
// appends it to the log, and broadcasts it live. Private actions reach only
// GMs and the attributed user.
func (s *Server) sendActionAs(username string, role model.Role, a protocol.Action) {
	a.Username = username
	a.Role = role
	a.Time = time.Now().UnixMilli()

	s.log.Append(a)
	s.metrics.ActionsLogged.Add(1)

	a.Live = true
	var keep func(rec *UserRecord) bool
	if a.Private {
		keep = func(rec *UserRecord) bool {
			return rec.Role == model.RoleGM || rec.Username == username
		}
	}
	s.sendToAll(keep, a)
}

// sendStatus logs and broadcasts a user-status line attributed to username.
func (s *Server) sendStatus(username string, role model.Role, text string, private bool) {
	s.sendActionAs(username, role, protocol.Action{
		Kind:    protocol.ActionUserStatus,
		Text:    text,
		Private: private,
	})
}
