package game

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// CapFirst upper-cases the first rune of s.
func CapFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// IndefiniteArticle returns "an" for words starting with a vowel sound,
// "a" otherwise.
func IndefiniteArticle(word string) string {
	if word == "" {
		return "a"
	}
	switch unicode.ToLower([]rune(word)[0]) {
	case 'a', 'e', 'i', 'o', 'u':
		return "an"
	}
	return "a"
}

// FirstGrapheme returns the first user-perceived character of s, so
// multi-codepoint emoji survive as one symbol.
func FirstGrapheme(s string) string {
	g := uniseg.NewGraphemes(s)
	if g.Next() {
		return g.Str()
	}
	return ""
}

// SanitizeFoolSymbol reduces a requested fool die symbol to one grapheme,
// falling back to def when empty or when the symbol starts with a digit
// (numbers would collide with the raw roll display).
func SanitizeFoolSymbol(s, def string) string {
	wanted := FirstGrapheme(strings.TrimSpace(s))
	if wanted == "" {
		return def
	}
	if r, _ := utf8.DecodeRuneInString(wanted); unicode.IsDigit(r) {
		return def
	}
	return wanted
}
