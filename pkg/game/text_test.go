package game

import (
	"sort"
	"testing"
)

func TestCapFirst(t *testing.T) {
	cases := map[string]string{
		"":      "",
		"anger": "Anger",
		"Épée":  "Épée",
		"a":     "A",
	}
	for in, want := range cases {
		if got := CapFirst(in); got != want {
			t.Fatalf("CapFirst(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIndefiniteArticle(t *testing.T) {
	if got := IndefiniteArticle("anger"); got != "an" {
		t.Fatalf("IndefiniteArticle(anger) = %q, want an", got)
	}
	if got := IndefiniteArticle("fear"); got != "a" {
		t.Fatalf("IndefiniteArticle(fear) = %q, want a", got)
	}
	if got := IndefiniteArticle(""); got != "a" {
		t.Fatalf("IndefiniteArticle(empty) = %q, want a", got)
	}
}

func TestSanitizeFoolSymbol(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "😲"},
		{"   ", "😲"},
		{"🎉 party", "🎉"},
		{"ab", "a"},
		{"7", "😲"}, // numbers would collide with the raw roll display
		{"👨‍👩‍👧 family", "👨‍👩‍👧"},
	}
	for _, tc := range cases {
		if got := SanitizeFoolSymbol(tc.in, "😲"); got != tc.want {
			t.Fatalf("SanitizeFoolSymbol(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEmoKinds(t *testing.T) {
	kinds := EmoKinds()
	if !sort.StringsAreSorted(kinds) {
		t.Fatalf("EmoKinds not sorted: %v", kinds)
	}
	for _, kind := range kinds {
		seen := make(map[string]bool)
		for level := 0; level <= MaxEmoLevel; level++ {
			name := EmoLevelName(kind, level)
			if name == "" || seen[name] {
				t.Fatalf("%s level %d name %q is not distinct", kind, level, name)
			}
			seen[name] = true
		}
	}
}

func TestEmoLevelName(t *testing.T) {
	if got := EmoLevelName("anger", 3); got != "furious" {
		t.Fatalf("anger level 3 = %q, want furious", got)
	}
	if got := EmoLevelName("anger", 0); got != "calm" {
		t.Fatalf("anger level 0 = %q, want calm", got)
	}
	if got := EmoLevelName("spite", 2); got != "burning" {
		t.Fatalf("unknown emotion level 2 = %q, want generic ladder", got)
	}
	if got := EmoLevelName("anger", 9); got != "level 9" {
		t.Fatalf("off-ladder level = %q, want numeric fallback", got)
	}
}
