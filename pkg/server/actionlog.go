package server

import (
	"log/slog"

	"github.com/direapp/dire/pkg/datastore"
	"github.com/direapp/dire/pkg/model"
	"github.com/direapp/dire/pkg/protocol"
)

// ActionLog is the append-only ordered sequence of everything that happened
// in the session. Index equals insertion order and is never renumbered.
// Appends persist through the store; the in-memory entry is authoritative
// immediately and a failed write only logs (accepted weak durability).
type ActionLog struct {
	entries []protocol.Action
	store   *datastore.Store
}

// NewActionLog wraps entries loaded from persistence.
func NewActionLog(entries []protocol.Action, store *datastore.Store) *ActionLog {
	return &ActionLog{entries: entries, store: store}
}

// Len returns the number of logged actions.
func (l *ActionLog) Len() int {
	return len(l.entries)
}

// Append adds an action and persists it under its index. The stored entry
// always has Live false; only the initial broadcast is live.
func (l *ActionLog) Append(a protocol.Action) int {
	a.Live = false
	index := len(l.entries)
	l.entries = append(l.entries, a)

	if l.store != nil {
		if err := l.store.AppendAction(index, a); err != nil {
			slog.Error("persist action failed", "index", index, "err", err)
		}
	}
	return index
}

// FilteredFor returns the subsequence visible to a viewer as a fresh slice:
// GMs see everything, players see non-private entries plus their own.
func (l *ActionLog) FilteredFor(username string, role model.Role) []protocol.Action {
	if role == model.RoleGM {
		out := make([]protocol.Action, len(l.entries))
		copy(out, l.entries)
		return out
	}

	out := make([]protocol.Action, 0, len(l.entries))
	for _, a := range l.entries {
		if !a.Private || a.Username == username {
			out = append(out, a)
		}
	}
	return out
}
