package datastore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/direapp/dire/pkg/model"
	"github.com/direapp/dire/pkg/protocol"
)

func kvBackends(t *testing.T) map[string]KV {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "dire.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]KV{
		"memory": NewMemory(),
		"sqlite": sq,
	}
}

func TestKVRoundTrip(t *testing.T) {
	for name, kv := range kvBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := kv.Get("missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
			}
			if err := kv.Put("k", "v1"); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if err := kv.Put("k", "v2"); err != nil {
				t.Fatalf("Put overwrite: %v", err)
			}
			got, err := kv.Get("k")
			if err != nil || got != "v2" {
				t.Fatalf("Get = %q, %v; want v2", got, err)
			}
			if err := kv.Delete("k"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := kv.Get("k"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get after delete err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestSettingsDefaultAndPersist(t *testing.T) {
	st := NewStore(NewMemory())

	settings, err := st.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if !settings.AllowMultipleGMs {
		t.Fatalf("default allowMultipleGMs should be true")
	}

	if err := st.SaveSetting("allowMultipleGMs", false); err != nil {
		t.Fatalf("SaveSetting: %v", err)
	}
	settings, err = st.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings after save: %v", err)
	}
	if settings.AllowMultipleGMs {
		t.Fatalf("saved allowMultipleGMs=false not loaded back")
	}
}

func TestUsersRoundTrip(t *testing.T) {
	mem := NewMemory()
	st := NewStore(mem)

	alice := model.NewUser("Alice")
	alice.Role = model.RolePlayer
	alice.SetClass(model.ClassFool)
	alice.Fool().Die.Effect = "the walls talk"

	if err := st.SaveUser(alice); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if err := st.SaveUsernames([]string{"Alice", "Ghost"}); err != nil {
		t.Fatalf("SaveUsernames: %v", err)
	}

	users, err := st.LoadUsers()
	if err != nil {
		t.Fatalf("LoadUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("LoadUsers returned %d users, want 2", len(users))
	}
	if diff := cmp.Diff(alice, users[0]); diff != "" {
		t.Fatalf("Alice mismatch (-want +got):\n%s", diff)
	}
	// Listed but never saved: comes back as a minimal normalized record.
	if users[1].Username != "Ghost" || users[1].Class != model.ClassNone {
		t.Fatalf("Ghost = %+v, want minimal record with class none", users[1])
	}

	before := mem.Len()
	if err := st.DeleteUser("Alice"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if mem.Len() != before-1 {
		t.Fatalf("DeleteUser left %d keys, want %d", mem.Len(), before-1)
	}
}

func TestActionsRoundTrip(t *testing.T) {
	st := NewStore(NewMemory())

	actions := []protocol.Action{
		{Kind: "chat", Username: "Alice", Role: model.RolePlayer, Time: 1000, Text: "hi"},
		{Kind: "user-status", Username: "GM", Role: model.RoleGM, Time: 2000, Text: "x", Private: true},
	}
	for i, a := range actions {
		if err := st.AppendAction(i, a); err != nil {
			t.Fatalf("AppendAction(%d): %v", i, err)
		}
	}

	got, err := st.LoadActions()
	if err != nil {
		t.Fatalf("LoadActions: %v", err)
	}
	if diff := cmp.Diff(actions, got); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadActionsGapIsError(t *testing.T) {
	st := NewStore(NewMemory())
	if err := st.AppendAction(0, protocol.Action{Kind: "chat"}); err != nil {
		t.Fatalf("AppendAction: %v", err)
	}
	// Claim three entries but only store one.
	if err := st.kv.Put(keyActionCount, "3"); err != nil {
		t.Fatalf("Put count: %v", err)
	}
	if _, err := st.LoadActions(); err == nil {
		t.Fatalf("LoadActions with a gap should fail")
	}
}

func TestSessionSecretStable(t *testing.T) {
	st := NewStore(NewMemory())

	first, err := st.SessionSecret()
	if err != nil {
		t.Fatalf("SessionSecret: %v", err)
	}
	if first == "" {
		t.Fatalf("empty generated secret")
	}
	second, err := st.SessionSecret()
	if err != nil {
		t.Fatalf("SessionSecret again: %v", err)
	}
	if first != second {
		t.Fatalf("secret changed between reads: %q vs %q", first, second)
	}
}
