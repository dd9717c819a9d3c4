package game

import (
	"fmt"
	"sort"
)

// Boundaries for the emotion knight's configuration.
const (
	MaxEmoLevel         = 4
	MaxCreativeViolence = 6
)

// emoLookup maps each sacred emotion to its level-0..4 intensity names.
var emoLookup = map[string][]string{
	"anger": {"calm", "irritated", "angry", "furious", "wrathful"},
	"fear":  {"steady", "uneasy", "afraid", "terrified", "panicked"},
	"grief": {"composed", "wistful", "sorrowful", "mournful", "desolate"},
	"joy":   {"even", "amused", "delighted", "elated", "euphoric"},
	"love":  {"distant", "fond", "devoted", "besotted", "lovestruck"},
}

// emoLevels gives a generic intensity name per level for emotions the table
// does not know.
var emoLevels = []string{"dormant", "stirring", "burning", "consuming", "transcendent"}

// EmoKinds returns the known sacred emotions in sorted order.
func EmoKinds() []string {
	kinds := make([]string, 0, len(emoLookup))
	for k := range emoLookup {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// EmoLevelName describes an emotion at a given level, falling back to the
// generic ladder for unknown emotions and to "level N" beyond the ladder.
func EmoLevelName(kind string, level int) string {
	if names, ok := emoLookup[kind]; ok {
		if level >= 0 && level < len(names) {
			return names[level]
		}
	}
	if level >= 0 && level < len(emoLevels) {
		return emoLevels[level]
	}
	return fmt.Sprintf("level %d", level)
}
