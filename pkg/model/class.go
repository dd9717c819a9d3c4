package model

// Class is a player's in-game character archetype. The class determines
// which die the "class" roll sentinel resolves to and which sub-state the
// user record carries.
type Class string

const (
	ClassNone      Class = "none"
	ClassDictator  Class = "dictator"
	ClassFool      Class = "fool"
	ClassFoolNoDie Class = "fool_nodie"
	ClassFallen    Class = "fallen"
	ClassKnight    Class = "knight"
	ClassNeo       Class = "neo"
	ClassGodbinder Class = "godbinder"
	ClassMaster    Class = "master"
)

var classDisplayNames = map[Class]string{
	ClassDictator:  "the Dictator",
	ClassFool:      "the Fool",
	ClassFoolNoDie: "the Fool, but the GM has your die",
	ClassFallen:    "a Fallen",
	ClassKnight:    "the Emotion Knight",
	ClassNeo:       "the Neo",
	ClassGodbinder: "the Godbinder",
	ClassMaster:    "the Master",
}

// Valid reports whether c is a recognized class.
func (c Class) Valid() bool {
	if c == ClassNone {
		return true
	}
	_, ok := classDisplayNames[c]
	return ok
}

// DisplayName returns the human-readable class name, or the raw value for
// unknown classes.
func (c Class) DisplayName() string {
	if name, ok := classDisplayNames[c]; ok {
		return name
	}
	return string(c)
}

// HandsDie reports whether this class owns a physical die that can change
// hands between the player and the GM.
func (c Class) HandsDie() bool {
	return c == ClassFool || c == ClassDictator
}

// Fool die face symbols and effect used until the player scribbles their own.
const (
	FoolDefaultGood   = "😲"
	FoolDefaultBad    = "💩"
	FoolDefaultEffect = "Your opponent gets talking and confesses something useful to you."
)

// FoolDie is the fool's customizable six-sided die: each face is "+" (good
// symbol), "-" (bad symbol), or "." (plain number).
type FoolDie struct {
	PosSymbol string   `json:"posSymbol" yaml:"pos_symbol"`
	NegSymbol string   `json:"negSymbol" yaml:"neg_symbol"`
	Sides     []string `json:"sides" yaml:"sides"`
	Effect    string   `json:"effect" yaml:"effect"`
}

// DefaultFoolDie returns an unmarked fool die.
func DefaultFoolDie() FoolDie {
	return FoolDie{
		PosSymbol: FoolDefaultGood,
		NegSymbol: FoolDefaultBad,
		Sides:     []string{".", ".", ".", ".", ".", "."},
		Effect:    FoolDefaultEffect,
	}
}

// ClassState is the class-specific portion of a user record. Exactly one
// concrete state exists per family of classes: most classes carry no
// sub-state (NoneState); the dictator and fool track who holds their die;
// the emotion knight tracks its sacred emotion.
type ClassState interface {
	isClassState()
}

// NoneState is the empty sub-state for classes without one.
type NoneState struct{}

// DictatorState tracks whether the dictator's die is held by the GM.
type DictatorState struct {
	DieWithGM bool
}

// FoolState tracks the fool's die custody and face configuration.
type FoolState struct {
	DieWithGM bool
	Die       FoolDie
}

// KnightState is the emotion knight's sacred-emotion configuration.
type KnightState struct {
	EmoKind     string
	EmoLevel    int
	MaxViolence int
}

func (*NoneState) isClassState()     {}
func (*DictatorState) isClassState() {}
func (*FoolState) isClassState()     {}
func (*KnightState) isClassState()   {}

// DefaultStateFor returns the documented default sub-state for a class:
// dice start in the player's hand, the fool die starts unmarked, knights
// start at emotion level 0 with creative violence capped at 2.
func DefaultStateFor(c Class) ClassState {
	switch c {
	case ClassDictator:
		return &DictatorState{}
	case ClassFool:
		return &FoolState{Die: DefaultFoolDie()}
	case ClassKnight:
		return &KnightState{MaxViolence: 2}
	default:
		return &NoneState{}
	}
}
