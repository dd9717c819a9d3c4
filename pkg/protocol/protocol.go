// Package protocol defines the DIRE wire format: one JSON object per
// inbound message, tagged by "action"; outbound frames are JSON arrays of
// one or more action-shaped objects so a log replay and a live broadcast
// share the same shape.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/direapp/dire/pkg/game"
	"github.com/direapp/dire/pkg/model"
)

// MaxMessage is the maximum inbound message size in bytes.
const MaxMessage = 65536

// Inbound action tags.
const (
	ActionHello                = "hello"
	ActionRoll                 = "roll"
	ActionChat                 = "chat"
	ActionUserStatus           = "user-status"
	ActionSafety               = "safety"
	ActionSetClass             = "set-class"
	ActionPlayerHandDie        = "player-hand-die"
	ActionPlayerTakeDie        = "player-take-die"
	ActionGMTakeDie            = "gm-take-die"
	ActionGMReturnDie          = "gm-return-die"
	ActionFoolSetDie           = "fool-set-die"
	ActionSetKnightKind        = "set-knight-kind"
	ActionSetKnightLevel       = "set-knight-level"
	ActionSetKnightMaxViolence = "set-knight-max-violence"
	ActionKick                 = "kick"
	ActionDelete               = "delete"
	ActionAllowMultipleGMs     = "allowMultipleGMs"
)

// Outbound-only action tags.
const (
	ActionRolls       = "rolls"
	ActionUsers       = "users"
	ActionGetUserData = "getUserData"
)

// DieClassSentinel in a roll request resolves to the caller's class die.
const DieClassSentinel = "class"

// AnonMarker is the value of the "anon" field that requests pseudonymous
// attribution for a safety action.
const AnonMarker = "anon"

// Envelope is one inbound client message. Exactly one action tag, with the
// union of all per-action fields flattened alongside it; handlers read only
// the fields their action defines.
type Envelope struct {
	Action      string   `json:"action"`
	Username    string   `json:"username,omitempty"`
	Role        string   `json:"role,omitempty"`
	GMKey       string   `json:"gmKey,omitempty"`
	Dice        []string `json:"dice,omitempty"`
	Text        string   `json:"text,omitempty"`
	Class       string   `json:"class,omitempty"`
	Choice      string   `json:"choice,omitempty"`
	Anon        string   `json:"anon,omitempty"`
	PosSymbol   string   `json:"posSymbol,omitempty"`
	NegSymbol   string   `json:"negSymbol,omitempty"`
	Sides       []string `json:"sides,omitempty"`
	Effect      string   `json:"effect,omitempty"`
	EmoKind     string   `json:"emoKind,omitempty"`
	EmoLevel    *int     `json:"emoLevel,omitempty"`
	MaxViolence *int     `json:"maxViolence,omitempty"`
	Value       *bool    `json:"value,omitempty"`
}

// ParseEnvelope decodes one inbound message.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("protocol: unmarshal envelope: %w", err)
	}
	return &env, nil
}

// Action is one entry of the shared action log: attribution, timestamp, and
// a kind-specific payload. Immutable once appended.
type Action struct {
	Kind     string           `json:"action" yaml:"action"`
	Username string           `json:"username" yaml:"username"`
	Role     model.Role       `json:"role" yaml:"role"`
	Time     int64            `json:"time" yaml:"time"` // Unix milliseconds
	Live     bool             `json:"live" yaml:"-"`    // true only on the initial broadcast
	Private  bool             `json:"private,omitempty" yaml:"private,omitempty"`
	Text     string           `json:"text,omitempty" yaml:"text,omitempty"`
	Choice   string           `json:"choice,omitempty" yaml:"choice,omitempty"`
	Rolls    []game.DieResult `json:"rolls,omitempty" yaml:"rolls,omitempty"`
}

// UserInfo is one roster entry: registry state plus liveness, with the
// class sub-state fields relevant to the user's class.
type UserInfo struct {
	Username    string         `json:"username" yaml:"username"`
	Role        model.Role     `json:"role" yaml:"role"`
	Connected   bool           `json:"connected" yaml:"connected"`
	Class       model.Class    `json:"class" yaml:"class"`
	DieWithGM   *bool          `json:"dieWithGM,omitempty" yaml:"die_with_gm,omitempty"`
	FoolDie     *model.FoolDie `json:"foolDie,omitempty" yaml:"fool_die,omitempty"`
	EmoKind     string         `json:"emoKind,omitempty" yaml:"emo_kind,omitempty"`
	EmoLevel    *int           `json:"emoLevel,omitempty" yaml:"emo_level,omitempty"`
	MaxViolence *int           `json:"maxViolence,omitempty" yaml:"max_violence,omitempty"`
}

// UserInfoFor flattens a normalized record into a roster entry.
func UserInfoFor(u *model.User, connected bool) UserInfo {
	info := UserInfo{
		Username:  u.Username,
		Role:      u.Role,
		Connected: connected,
		Class:     u.Class,
	}
	switch st := u.State.(type) {
	case *model.DictatorState:
		v := st.DieWithGM
		info.DieWithGM = &v
	case *model.FoolState:
		v := st.DieWithGM
		info.DieWithGM = &v
		die := st.Die
		info.FoolDie = &die
	case *model.KnightState:
		info.EmoKind = st.EmoKind
		lvl, max := st.EmoLevel, st.MaxViolence
		info.EmoLevel = &lvl
		info.MaxViolence = &max
	}
	return info
}

// Kick tells a connection it is being dropped.
type Kick struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// NewKick builds a kick message.
func NewKick(reason string) Kick {
	return Kick{Action: ActionKick, Reason: reason}
}

// UserList is the roster broadcast.
type UserList struct {
	Action string     `json:"action"`
	Users  []UserInfo `json:"users"`
}

// NewUserList builds a roster broadcast.
func NewUserList(users []UserInfo) UserList {
	return UserList{Action: ActionUsers, Users: users}
}

// UserData pushes a user their own record after it changes.
type UserData struct {
	Action string `json:"action"`
	UserInfo
}

// NewUserData builds a self-state push.
func NewUserData(info UserInfo) UserData {
	return UserData{Action: ActionGetUserData, UserInfo: info}
}

// SettingUpdate announces a changed setting to the GM audience.
type SettingUpdate struct {
	Action string `json:"action"`
	Value  bool   `json:"value"`
}

// MarshalBatch wraps outbound messages in the array framing every frame
// uses.
func MarshalBatch(msgs ...any) ([]byte, error) {
	data, err := json.Marshal(msgs)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal batch: %w", err)
	}
	return data, nil
}
