package game

import (
	"errors"
	"testing"

	"github.com/direapp/dire/pkg/model"
)

func TestRollKindBounds(t *testing.T) {
	r := NewRoller(1)
	for i := 0; i < 10000; i++ {
		res, err := r.RollKind("d6")
		if err != nil {
			t.Fatalf("RollKind(d6): %v", err)
		}
		if res.Roll < 1 || res.Roll > 6 {
			t.Fatalf("d6 rolled %d, want 1..6", res.Roll)
		}
		if res.Sides != 6 || res.Kind != "d6" {
			t.Fatalf("result = %+v, want kind d6 sides 6", res)
		}
	}
}

func TestRollKindUnrollable(t *testing.T) {
	r := NewRoller(1)
	for _, kind := range []string{"none", "fallen", "fool_nodie", "nonsense"} {
		if _, err := r.RollKind(kind); !errors.Is(err, ErrUnknownDie) {
			t.Fatalf("RollKind(%q) err = %v, want ErrUnknownDie", kind, err)
		}
	}
}

func TestSidesTable(t *testing.T) {
	want := map[string]int{
		"none": 0, "dictator": 4, "d6": 6, "bad": 6, "fallen": 0,
		"fool": 6, "fool_nodie": 0, "knight": 8, "neo": 10,
		"godbinder": 12, "master": 20,
	}
	for kind, sides := range want {
		got, ok := Sides(kind)
		if !ok || got != sides {
			t.Fatalf("Sides(%q) = %d,%v want %d", kind, got, ok, sides)
		}
	}
	if _, ok := Sides("d20"); ok {
		t.Fatalf("Sides(d20) should be unknown")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		kind string
		roll int
		want string
	}{
		{"d6", 6, StatusSpecial},
		{"d6", 4, StatusSuccess},
		{"d6", 2, StatusFail},
		{"d6", 1, StatusFailThreat},
		{"master", 20, StatusSpecial},
		{"master", 3, StatusFail},
		{"bad", 4, StatusBadness},
		{"bad", 3, StatusNothing},
		{"dictator", 4, StatusNA},
		{"knight", 8, StatusNA},
		{"neo", 10, StatusNeoBreak},
		{"neo", 7, StatusSpecial},
		{"neo", 1, StatusFailThreat},
		{"fool", 5, StatusSuccess},
	}
	for _, tc := range cases {
		if got := Classify(tc.kind, tc.roll); got != tc.want {
			t.Fatalf("Classify(%q, %d) = %q, want %q", tc.kind, tc.roll, got, tc.want)
		}
	}
}

func TestFoolSymbol(t *testing.T) {
	die := model.FoolDie{
		PosSymbol: "😲",
		NegSymbol: "💩",
		Sides:     []string{"+", "-", ".", ".", "+", "x"},
	}

	if sym, err := FoolSymbol(die, 1); err != nil || sym != "😲" {
		t.Fatalf("face 1 = %q, %v; want good symbol", sym, err)
	}
	if sym, err := FoolSymbol(die, 2); err != nil || sym != "💩" {
		t.Fatalf("face 2 = %q, %v; want bad symbol", sym, err)
	}
	if sym, err := FoolSymbol(die, 3); err != nil || sym != "" {
		t.Fatalf("face 3 = %q, %v; want no symbol", sym, err)
	}
	if sym, err := FoolSymbol(die, 6); !errors.Is(err, ErrInvalidFace) || sym != "" {
		t.Fatalf("face 6 = %q, %v; want ErrInvalidFace and no symbol", sym, err)
	}
	if _, err := FoolSymbol(die, 7); !errors.Is(err, ErrInvalidFace) {
		t.Fatalf("out-of-range roll err = %v, want ErrInvalidFace", err)
	}
}
