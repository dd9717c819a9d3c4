package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"plain", "Alice", nil},
		{"unicode", "Göran 🎲", nil},
		{"empty", "", ErrUsernameEmpty},
		{"whitespace only", "   ", ErrUsernameEmpty},
		{"too long", strings.Repeat("a", MaxUsernameLength+1), ErrUsernameTooLong},
		{"control char", "Al\x00ice", ErrUsernameControl},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUsername(tc.in)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ValidateUsername(%q) = %v, want %v", tc.in, err, tc.wantErr)
			}
		})
	}
}

func TestClassNames(t *testing.T) {
	if !Class("fool").Valid() || Class("wizard").Valid() {
		t.Fatalf("class validity table wrong")
	}
	if got := ClassFool.DisplayName(); got != "the Fool" {
		t.Fatalf("DisplayName(fool) = %q", got)
	}
	if got := Class("wizard").DisplayName(); got != "wizard" {
		t.Fatalf("unknown class display = %q, want raw value", got)
	}
}

func TestSetClassResetsState(t *testing.T) {
	u := NewUser("Alice")
	u.SetClass(ClassFool)

	st := u.Fool()
	if st == nil {
		t.Fatalf("Fool: nil sub-state after SetClass")
	}
	if st.DieWithGM {
		t.Fatalf("fool die should start in the player's hand")
	}
	if st.Die.PosSymbol != FoolDefaultGood || st.Die.NegSymbol != FoolDefaultBad {
		t.Fatalf("fool die symbols = %q/%q, want defaults", st.Die.PosSymbol, st.Die.NegSymbol)
	}

	st.DieWithGM = true
	u.SetClass(ClassKnight)
	if u.Fool() != nil {
		t.Fatalf("fool state survived a class change")
	}
	kn := u.Knight()
	if kn == nil {
		t.Fatalf("Knight: nil sub-state after SetClass")
	}
	if kn.EmoLevel != 0 || kn.MaxViolence != 2 {
		t.Fatalf("knight defaults = level %d violence %d, want 0 and 2", kn.EmoLevel, kn.MaxViolence)
	}
}

func TestSetDieWithGMIdempotent(t *testing.T) {
	u := NewUser("Bob")
	u.SetClass(ClassDictator)

	if !u.SetDieWithGM(true) {
		t.Fatalf("first hand-over should report a change")
	}
	if u.SetDieWithGM(true) {
		t.Fatalf("second hand-over should be a no-op")
	}
	if !u.DieWithGM() {
		t.Fatalf("die should be with the GM")
	}

	none := NewUser("Carol")
	if none.SetDieWithGM(true) {
		t.Fatalf("class without a die should never change")
	}
}

func TestNormalizeRepairsFoolDie(t *testing.T) {
	u := NewUser("Dee")
	u.Class = ClassFool
	u.State = &FoolState{Die: FoolDie{Sides: []string{"+", "-"}}}

	u.Normalize()
	st := u.Fool()
	if len(st.Die.Sides) != 6 {
		t.Fatalf("Normalize left %d sides, want 6", len(st.Die.Sides))
	}
}

func TestUserJSONRoundTrip(t *testing.T) {
	users := []*User{
		func() *User { u := NewUser("A"); u.Role = RolePlayer; u.SetClass(ClassNone); return u }(),
		func() *User {
			u := NewUser("B")
			u.Role = RolePlayer
			u.SetClass(ClassDictator)
			u.SetDieWithGM(true)
			return u
		}(),
		func() *User {
			u := NewUser("C")
			u.Role = RoleGM
			u.SetClass(ClassFool)
			u.Fool().Die.Sides = []string{"+", "+", ".", ".", "-", "-"}
			u.Fool().Die.Effect = "everyone laughs"
			return u
		}(),
		func() *User {
			u := NewUser("D")
			u.Role = RolePlayer
			u.SetClass(ClassKnight)
			u.Knight().EmoKind = "anger"
			u.Knight().EmoLevel = 3
			return u
		}(),
	}

	for _, want := range users {
		data, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("Marshal(%s): %v", want.Username, err)
		}
		got := &User{}
		if err := json.Unmarshal(data, got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", want.Username, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("round trip %s mismatch (-want +got):\n%s", want.Username, diff)
		}
	}
}

func TestUserJSONFlatShape(t *testing.T) {
	u := NewUser("E")
	u.Role = RolePlayer
	u.SetClass(ClassDictator)

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("Unmarshal flat: %v", err)
	}
	if _, ok := flat["dieWithGM"]; !ok {
		t.Fatalf("dieWithGM not hoisted onto the record: %s", data)
	}
	if _, ok := flat["State"]; ok {
		t.Fatalf("union leaked into the wire shape: %s", data)
	}
}
