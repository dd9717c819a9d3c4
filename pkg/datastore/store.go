package datastore

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/direapp/dire/pkg/crypto"
	"github.com/direapp/dire/pkg/model"
	"github.com/direapp/dire/pkg/protocol"
)

// Logical persistence keys. The `usernames` list is the source of truth for
// roster enumeration on restart; individual records live under
// users/<username>.
const (
	keySessionSecret = "session_secret"
	keyUsernames     = "usernames"
	keyActionCount   = "n-actions"
)

func settingKey(name string) string  { return "settings/" + name }
func userKey(username string) string { return "users/" + username }
func actionKey(index int) string     { return "actions/" + strconv.Itoa(index) }

// Store is the typed persistence adapter over a KV: it owns the key layout
// and the JSON encoding of every persisted entity.
type Store struct {
	kv KV
}

// NewStore wraps a KV in the typed adapter.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Close closes the underlying KV.
func (s *Store) Close() error {
	return s.kv.Close()
}

// LoadSettings reads the persisted settings, falling back to the documented
// default per setting that has never been written.
func (s *Store) LoadSettings() (model.Settings, error) {
	settings := model.DefaultSettings()

	raw, err := s.kv.Get(settingKey("allowMultipleGMs"))
	if errors.Is(err, ErrNotFound) {
		return settings, nil
	}
	if err != nil {
		return settings, err
	}
	if err := json.Unmarshal([]byte(raw), &settings.AllowMultipleGMs); err != nil {
		return settings, fmt.Errorf("datastore: decode allowMultipleGMs: %w", err)
	}
	return settings, nil
}

// SaveSetting persists one named setting value.
func (s *Store) SaveSetting(name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("datastore: encode setting %q: %w", name, err)
	}
	return s.kv.Put(settingKey(name), string(data))
}

// LoadUsers reads the persisted roster. A username listed without a stored
// record yields a minimal record, mirroring the registry's
// create-on-first-access behavior. Records are normalized on the way in.
func (s *Store) LoadUsers() ([]*model.User, error) {
	raw, err := s.kv.Get(keyUsernames)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("datastore: decode usernames: %w", err)
	}

	users := make([]*model.User, 0, len(names))
	for _, name := range names {
		entry, err := s.kv.Get(userKey(name))
		if errors.Is(err, ErrNotFound) {
			u := model.NewUser(name)
			u.Normalize()
			users = append(users, u)
			continue
		}
		if err != nil {
			return nil, err
		}
		u := &model.User{}
		if err := json.Unmarshal([]byte(entry), u); err != nil {
			return nil, fmt.Errorf("datastore: decode user %q: %w", name, err)
		}
		u.Normalize()
		users = append(users, u)
	}
	return users, nil
}

// SaveUser persists one record (sans connection, which the model never
// carries).
func (s *Store) SaveUser(u *model.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("datastore: encode user %q: %w", u.Username, err)
	}
	return s.kv.Put(userKey(u.Username), string(data))
}

// DeleteUser removes one record.
func (s *Store) DeleteUser(username string) error {
	return s.kv.Delete(userKey(username))
}

// SaveUsernames persists the roster list.
func (s *Store) SaveUsernames(names []string) error {
	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("datastore: encode usernames: %w", err)
	}
	return s.kv.Put(keyUsernames, string(data))
}

// LoadActions reads the persisted action log in index order. A missing
// count means an empty log; a missing entry under the count is an error,
// since the log is append-only and gap-free.
func (s *Store) LoadActions() ([]protocol.Action, error) {
	raw, err := s.kv.Get(keyActionCount)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	total, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("datastore: decode action count: %w", err)
	}

	actions := make([]protocol.Action, 0, total)
	for i := 0; i < total; i++ {
		entry, err := s.kv.Get(actionKey(i))
		if err != nil {
			return nil, err
		}
		var a protocol.Action
		if err := json.Unmarshal([]byte(entry), &a); err != nil {
			return nil, fmt.Errorf("datastore: decode action %d: %w", i, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// AppendAction persists a log entry under its index and advances the count.
func (s *Store) AppendAction(index int, a protocol.Action) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("datastore: encode action %d: %w", index, err)
	}
	if err := s.kv.Put(actionKey(index), string(data)); err != nil {
		return err
	}
	return s.kv.Put(keyActionCount, strconv.Itoa(index+1))
}

// SessionSecret returns the stored session secret, generating and
// persisting one on first use. The login collaborator signs its cookies
// with it; the core also salts the GM key digest with it.
func (s *Store) SessionSecret() (string, error) {
	secret, err := s.kv.Get(keySessionSecret)
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	secret, err = crypto.NewSessionSecret()
	if err != nil {
		return "", err
	}
	if err := s.kv.Put(keySessionSecret, secret); err != nil {
		return "", err
	}
	return secret, nil
}
