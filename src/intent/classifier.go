package intent

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// KeywordClassifier checks keyword tiers in fixed priority order:
// information, then place, then route. Earlier tiers win across all
// configured lexicons.
type KeywordClassifier struct {
	lexicons []Lexicon
}

// NewKeywordClassifier builds a classifier over lexicons, defaulting to English.
func NewKeywordClassifier(lexicons ...Lexicon) *KeywordClassifier {
	if len(lexicons) == 0 {
		lexicons = []Lexicon{English}
	}
	return &KeywordClassifier{lexicons: lexicons}
}

func (c *KeywordClassifier) Classify(message string) Intent {
	msg := strings.ToLower(strings.TrimSpace(message))
	if msg == "" {
		return None
	}

	for _, lx := range c.lexicons {
		if containsAny(msg, lx.Information) {
			return WebSearch
		}
	}
	for _, lx := range c.lexicons {
		if containsAny(msg, lx.Place) {
			return PlaceSearch
		}
	}
	for _, lx := range c.lexicons {
		if containsAny(msg, lx.Route) || (lx.RoutePattern != nil && lx.RoutePattern.MatchString(msg)) {
			return Directions
		}
	}
	return None
}

func containsAny(msg string, keywords []string) bool {
	for _, kw := range keywords {
		if containsKeyword(msg, kw) {
			return true
		}
	}
	return false
}

// containsKeyword reports whether kw starts a word in msg and ends it, allowing
// a plural "s" or "es". "restaurants" matches "restaurant"; "brutal" does
// not match "ruta" and "router" does not match "route".
func containsKeyword(msg, kw string) bool {
	if kw == "" {
		return false
	}
	for from := 0; ; {
		i := strings.Index(msg[from:], kw)
		if i < 0 {
			return false
		}
		start := from + i
		before, _ := utf8.DecodeLastRuneInString(msg[:start])
		if (start == 0 || !isWordRune(before)) && endsWord(msg[start+len(kw):]) {
			return true
		}
		_, size := utf8.DecodeRuneInString(msg[start:])
		from = start + size
	}
}

func endsWord(rest string) bool {
	for _, suffix := range []string{"", "s", "es"} {
		if !strings.HasPrefix(rest, suffix) {
			continue
		}
		next, _ := utf8.DecodeRuneInString(rest[len(suffix):])
		if len(rest) == len(suffix) || !isWordRune(next) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

var _ Classifier = (*KeywordClassifier)(nil)
