// Package game implements the DIE-specific dice rules: the die-kind table,
// roll classification, the fool's custom die faces, and the emotion knight
// level ladder.
package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/direapp/dire/pkg/model"
)

// sidesByKind is the fixed die-kind table. Zero-sided kinds exist so class
// sentinels always resolve: rolling one is a caller error, not a lookup
// miss.
var sidesByKind = map[string]int{
	"none":       0,
	"dictator":   4,
	"d6":         6,
	"bad":        6,
	"fallen":     0,
	"fool":       6,
	"fool_nodie": 0,
	"knight":     8,
	"neo":        10,
	"godbinder":  12,
	"master":     20,
}

// Roll status classifications shared with clients.
const (
	StatusSpecial    = "special"
	StatusSuccess    = "success"
	StatusFail       = "fail"
	StatusFailThreat = "fail-threat"
	StatusBadness    = "badness"
	StatusNothing    = "nothing"
	StatusNA         = "n/a"
	StatusNeoBreak   = "special neo-break"
)

// ErrUnknownDie reports a die kind with no rollable side count (missing
// from the table, or a zero-sided class sentinel).
var ErrUnknownDie = errors.New("game: die kind has no rollable sides")

// ErrInvalidFace reports a fool die face that is not "+", "-", or ".".
var ErrInvalidFace = errors.New("game: invalid fool die face")

// Sides returns the side count for a die kind. ok is false for kinds not in
// the table at all.
func Sides(kind string) (sides int, ok bool) {
	sides, ok = sidesByKind[kind]
	return sides, ok
}

// DieResult is the per-die breakdown of one roll, broadcast to all viewers.
type DieResult struct {
	Kind   string `json:"kind" yaml:"kind"`
	Sides  int    `json:"sides" yaml:"sides"`
	Roll   int    `json:"roll" yaml:"roll"`
	Status string `json:"status" yaml:"status"`
	// Symbol overrides the numeric display for fool dice whose face maps to
	// the good or bad symbol.
	Symbol string `json:"symbol,omitempty" yaml:"symbol,omitempty"`
}

// Roller draws uniform rolls from a seeded source so tests can fix the
// sequence. Not safe for concurrent use; the session core serializes all
// handler work anyway.
type Roller struct {
	rng *rand.Rand
}

// NewRoller returns a roller seeded with seed.
func NewRoller(seed int64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// RollKind rolls one die of the given kind and classifies the result.
// Kinds without a positive side count return ErrUnknownDie; the caller
// decides whether to drop the die or reject the request.
func (r *Roller) RollKind(kind string) (DieResult, error) {
	sides, ok := sidesByKind[kind]
	if !ok || sides <= 0 {
		return DieResult{}, fmt.Errorf("%w: %q", ErrUnknownDie, kind)
	}

	roll := r.rng.Intn(sides) + 1
	return DieResult{
		Kind:   kind,
		Sides:  sides,
		Roll:   roll,
		Status: Classify(kind, roll),
	}, nil
}

// Status classifies a roll by the default success ladder: 6+ is special,
// 4+ a success, 1 a fail that advances the threat, anything else a plain
// fail.
func Status(roll int) string {
	switch {
	case roll >= 6:
		return StatusSpecial
	case roll >= 4:
		return StatusSuccess
	case roll == 1:
		return StatusFailThreat
	default:
		return StatusFail
	}
}

// Classify applies the kind-specific classification rules on top of the
// default ladder.
func Classify(kind string, roll int) string {
	switch kind {
	case "bad":
		if roll >= 4 {
			return StatusBadness
		}
		return StatusNothing
	case "dictator", "knight":
		return StatusNA
	case "neo":
		if roll == 10 {
			return StatusNeoBreak
		}
		return Status(roll)
	default:
		return Status(roll)
	}
}

// FoolSymbol maps a fool roll through the die's face configuration:
// "+" shows the good symbol, "-" the bad one, "." nothing. Any other face
// value returns ErrInvalidFace and shows nothing.
func FoolSymbol(die model.FoolDie, roll int) (string, error) {
	if roll < 1 || roll > len(die.Sides) {
		return "", fmt.Errorf("%w: roll %d out of range", ErrInvalidFace, roll)
	}
	switch die.Sides[roll-1] {
	case "+":
		return die.PosSymbol, nil
	case "-":
		return die.NegSymbol, nil
	case ".":
		return "", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFace, die.Sides[roll-1])
	}
}
