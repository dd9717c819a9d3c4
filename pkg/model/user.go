package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MaxUsernameLength bounds login names; anything printable is otherwise fair
// game since names are display identity, not credentials.
const MaxUsernameLength = 64

var (
	ErrUsernameEmpty   = errors.New("username must not be empty")
	ErrUsernameTooLong = fmt.Errorf("username must not exceed %d characters", MaxUsernameLength)
	ErrUsernameControl = errors.New("username must not contain control characters")
)

// ValidateUsername checks that a username is non-empty after trimming, at
// most MaxUsernameLength bytes, and free of control characters.
func ValidateUsername(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return ErrUsernameControl
		}
	}
	return nil
}

// User is one registry record. Identity is the username, chosen at login and
// never renamed. Role is rewritten on every hello (last hello wins). The
// class sub-state lives in State, a tagged union keyed by Class.
//
// The live connection back-reference is deliberately NOT here: it belongs to
// the server's registry wrapper and is never persisted.
type User struct {
	Username string
	Role     Role
	Class    Class
	State    ClassState
}

// NewUser returns a minimal record with only the username set, the shape a
// record has between first reference and the owner's hello.
func NewUser(username string) *User {
	return &User{Username: username}
}

// Normalize fills missing or mismatched class sub-state with documented
// defaults. It runs when a record is loaded from persistence and whenever a
// class is assigned, so class-dependent fields are always complete when read.
func (u *User) Normalize() {
	if u.Class == "" {
		u.Class = ClassNone
	}
	switch u.Class {
	case ClassDictator:
		if _, ok := u.State.(*DictatorState); !ok {
			u.State = DefaultStateFor(u.Class)
		}
	case ClassFool:
		st, ok := u.State.(*FoolState)
		if !ok {
			u.State = DefaultStateFor(u.Class)
		} else if len(st.Die.Sides) != 6 {
			st.Die = DefaultFoolDie()
		}
	case ClassKnight:
		if _, ok := u.State.(*KnightState); !ok {
			u.State = DefaultStateFor(u.Class)
		}
	default:
		if _, ok := u.State.(*NoneState); !ok {
			u.State = DefaultStateFor(u.Class)
		}
	}
}

// SetClass assigns a class and resets the sub-state to that class's
// defaults.
func (u *User) SetClass(c Class) {
	u.Class = c
	u.State = DefaultStateFor(c)
}

// DieWithGM reports whether the user's class die is currently held by the
// GM. False for classes without a hand-able die.
func (u *User) DieWithGM() bool {
	switch st := u.State.(type) {
	case *DictatorState:
		return st.DieWithGM
	case *FoolState:
		return st.DieWithGM
	default:
		return false
	}
}

// SetDieWithGM moves the class die between the player and the GM. It
// reports whether the record actually changed, so callers can keep the
// hand/take actions idempotent.
func (u *User) SetDieWithGM(v bool) bool {
	switch st := u.State.(type) {
	case *DictatorState:
		if st.DieWithGM == v {
			return false
		}
		st.DieWithGM = v
		return true
	case *FoolState:
		if st.DieWithGM == v {
			return false
		}
		st.DieWithGM = v
		return true
	default:
		return false
	}
}

// Fool returns the fool sub-state, or nil if the user is not a fool.
func (u *User) Fool() *FoolState {
	st, _ := u.State.(*FoolState)
	return st
}

// Knight returns the knight sub-state, or nil if the user is not a knight.
func (u *User) Knight() *KnightState {
	st, _ := u.State.(*KnightState)
	return st
}

// userJSON is the flat wire/persistence shape of a record. Class sub-state
// fields are hoisted onto the object itself, matching what clients render
// and what older log entries contain.
type userJSON struct {
	Username    string   `json:"username"`
	Role        Role     `json:"role,omitempty"`
	Class       Class    `json:"class,omitempty"`
	DieWithGM   *bool    `json:"dieWithGM,omitempty"`
	FoolDie     *FoolDie `json:"foolDie,omitempty"`
	EmoKind     string   `json:"emoKind,omitempty"`
	EmoLevel    *int     `json:"emoLevel,omitempty"`
	MaxViolence *int     `json:"maxViolence,omitempty"`
}

// MarshalJSON flattens the class-state union into the wire shape.
func (u *User) MarshalJSON() ([]byte, error) {
	out := userJSON{
		Username: u.Username,
		Role:     u.Role,
		Class:    u.Class,
	}
	switch st := u.State.(type) {
	case *DictatorState:
		out.DieWithGM = &st.DieWithGM
	case *FoolState:
		out.DieWithGM = &st.DieWithGM
		die := st.Die
		out.FoolDie = &die
	case *KnightState:
		out.EmoKind = st.EmoKind
		lvl, max := st.EmoLevel, st.MaxViolence
		out.EmoLevel = &lvl
		out.MaxViolence = &max
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the class-state union from the flat shape,
// defaulting any missing sub-state fields.
func (u *User) UnmarshalJSON(data []byte) error {
	var in userJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	u.Username = in.Username
	u.Role = in.Role
	u.Class = in.Class
	if u.Class == "" {
		u.Class = ClassNone
	}

	switch u.Class {
	case ClassDictator:
		st := &DictatorState{}
		if in.DieWithGM != nil {
			st.DieWithGM = *in.DieWithGM
		}
		u.State = st
	case ClassFool:
		st := &FoolState{Die: DefaultFoolDie()}
		if in.DieWithGM != nil {
			st.DieWithGM = *in.DieWithGM
		}
		if in.FoolDie != nil && len(in.FoolDie.Sides) == 6 {
			st.Die = *in.FoolDie
		}
		u.State = st
	case ClassKnight:
		st := &KnightState{MaxViolence: 2}
		st.EmoKind = in.EmoKind
		if in.EmoLevel != nil {
			st.EmoLevel = *in.EmoLevel
		}
		if in.MaxViolence != nil {
			st.MaxViolence = *in.MaxViolence
		}
		u.State = st
	default:
		u.State = &NoneState{}
	}
	return nil
}
