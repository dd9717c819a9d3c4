package server

import (
	"errors"
	"iter"
	"sort"

	"github.com/direapp/dire/pkg/model"
)

// ErrUserConnected reports an attempt to delete a user whose connection is
// still live.
var ErrUserConnected = errors.New("server: user has a live connection")

// UserRecord is a registry entry: the persisted user plus the non-owning
// back-reference to its live connection. The reference is routing state
// only; the ConnTable owns liveness bookkeeping, and the reference is
// cleared on disconnect and never persisted.
type UserRecord struct {
	*model.User
	conn *Conn
}

// Connected reports whether the record has a live connection.
func (r *UserRecord) Connected() bool {
	return r.conn != nil && r.conn.IsOpen()
}

// Registry is the in-memory username -> record mapping. Lookups never fail:
// a first access creates a minimal record with only the username set.
//
// The registry carries no lock of its own; the server mutex serializes all
// access, keeping each handler invocation atomic.
type Registry struct {
	users map[string]*UserRecord
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{users: make(map[string]*UserRecord)}
}

// Seed installs records loaded from persistence.
func (reg *Registry) Seed(users []*model.User) {
	for _, u := range users {
		reg.users[u.Username] = &UserRecord{User: u}
	}
}

// Get returns the record for username, creating a minimal one on first
// access.
func (reg *Registry) Get(username string) *UserRecord {
	if rec, ok := reg.users[username]; ok {
		return rec
	}
	rec := &UserRecord{User: model.NewUser(username)}
	reg.users[username] = rec
	return rec
}

// Lookup returns the record for username without creating one.
func (reg *Registry) Lookup(username string) (*UserRecord, bool) {
	rec, ok := reg.users[username]
	return rec, ok
}

// Delete removes a record. It refuses with ErrUserConnected while the
// user's connection is live; deleting an unknown username is a no-op.
func (reg *Registry) Delete(username string) error {
	rec, ok := reg.users[username]
	if !ok {
		return nil
	}
	if rec.Connected() {
		return ErrUserConnected
	}
	delete(reg.users, username)
	return nil
}

// Usernames returns all known usernames in sorted order, the roster list
// persisted under the `usernames` key.
func (reg *Registry) Usernames() []string {
	names := make([]string, 0, len(reg.users))
	for name := range reg.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every record, sorted by username.
func (reg *Registry) All() []*UserRecord {
	recs := make([]*UserRecord, 0, len(reg.users))
	for _, rec := range reg.users {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Username < recs[j].Username })
	return recs
}

// Active yields records with a live connection, optionally filtered to one
// role. The sequence is lazy and restartable; each range walks the current
// registry state.
func (reg *Registry) Active(role model.Role) iter.Seq[*UserRecord] {
	return func(yield func(*UserRecord) bool) {
		for _, rec := range reg.users {
			if !rec.Connected() {
				continue
			}
			if role != "" && rec.Role != role {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// ActiveGM returns some live GM other than exclude, or nil.
func (reg *Registry) ActiveGM(exclude string) *UserRecord {
	for rec := range reg.Active(model.RoleGM) {
		if rec.Username != exclude {
			return rec
		}
	}
	return nil
}
