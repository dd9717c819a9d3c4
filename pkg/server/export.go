package server

import (
	"gopkg.in/yaml.v3"

	"github.com/direapp/dire/pkg/datastore"
	"github.com/direapp/dire/pkg/protocol"
)

// UserYAML is one user record in an export file.
type UserYAML struct {
	Username    string       `yaml:"username"`
	Role        string       `yaml:"role"`
	Class       string       `yaml:"class"`
	DieWithGM   *bool        `yaml:"die_with_gm,omitempty"`
	FoolDie     *FoolDieYAML `yaml:"fool_die,omitempty"`
	EmoKind     string       `yaml:"emo_kind,omitempty"`
	EmoLevel    *int         `yaml:"emo_level,omitempty"`
	MaxViolence *int         `yaml:"max_violence,omitempty"`
}

// FoolDieYAML is a fool die face configuration in an export file.
type FoolDieYAML struct {
	PosSymbol string   `yaml:"pos_symbol"`
	NegSymbol string   `yaml:"neg_symbol"`
	Sides     []string `yaml:"sides"`
	Effect    string   `yaml:"effect"`
}

// UsersExport is the top-level users export document.
type UsersExport struct {
	Users []UserYAML `yaml:"users"`
}

// LogExport is the top-level action log export document.
type LogExport struct {
	Actions []protocol.Action `yaml:"actions"`
}

// ExportUsersYAML exports all persisted users as YAML.
func ExportUsersYAML(st *datastore.Store) ([]byte, error) {
	users, err := st.LoadUsers()
	if err != nil {
		return nil, err
	}

	export := UsersExport{}
	for _, u := range users {
		info := protocol.UserInfoFor(u, false)
		uy := UserYAML{
			Username:    u.Username,
			Role:        u.Role.String(),
			Class:       string(u.Class),
			DieWithGM:   info.DieWithGM,
			EmoKind:     info.EmoKind,
			EmoLevel:    info.EmoLevel,
			MaxViolence: info.MaxViolence,
		}
		if info.FoolDie != nil {
			uy.FoolDie = &FoolDieYAML{
				PosSymbol: info.FoolDie.PosSymbol,
				NegSymbol: info.FoolDie.NegSymbol,
				Sides:     info.FoolDie.Sides,
				Effect:    info.FoolDie.Effect,
			}
		}
		export.Users = append(export.Users, uy)
	}
	return yaml.Marshal(&export)
}

// ExportLogYAML exports the persisted action log as YAML, oldest first.
func ExportLogYAML(st *datastore.Store) ([]byte, error) {
	actions, err := st.LoadActions()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(&LogExport{Actions: actions})
}
