package intent

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Protocol-Lattice/waypoint/src/tools"
)

// ExtractorOptions carries request defaults that do not come from the message.
type ExtractorOptions struct {
	MaxResults int
	Radius     uint
	Mode       string
}

// PatternExtractor pulls tool arguments out of free text with per-lexicon
// regular expressions.
type PatternExtractor struct {
	lexicons []Lexicon
	opts     ExtractorOptions
}

// NewPatternExtractor builds an extractor over lexicons, defaulting to English.
func NewPatternExtractor(opts ExtractorOptions, lexicons ...Lexicon) *PatternExtractor {
	if len(lexicons) == 0 {
		lexicons = []Lexicon{English}
	}
	if opts.Mode == "" {
		opts.Mode = tools.DefaultTravelMode
	}
	if opts.Radius == 0 {
		opts.Radius = tools.DefaultPlaceRadius
	}
	return &PatternExtractor{lexicons: lexicons, opts: opts}
}

func (e *PatternExtractor) Extract(in Intent, message string) (tools.Request, error) {
	switch in {
	case WebSearch:
		return tools.WebSearchRequest{Query: message, MaxResults: e.opts.MaxResults}, nil
	case PlaceSearch:
		return e.place(message), nil
	case Directions:
		return e.directions(message)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedIntent, in)
	}
}

func (e *PatternExtractor) place(message string) tools.PlaceSearchRequest {
	req := tools.PlaceSearchRequest{Query: strings.TrimSpace(message), Radius: e.opts.Radius}
	for _, lx := range e.lexicons {
		if lx.PlacePattern == nil {
			continue
		}
		m := lx.PlacePattern.FindStringSubmatchIndex(message)
		if m == nil {
			continue
		}
		location := strings.TrimSpace(message[m[4]:m[5]])
		if location == "" {
			continue
		}
		subject := strings.TrimSpace(message[:m[2]])
		if subject == "" {
			subject = lx.DefaultSubject
		}
		req.Query = fmt.Sprintf("%s %s %s", subject, lx.PlaceJoin, location)
		req.Location = location
		return req
	}
	return req
}

func (e *PatternExtractor) directions(message string) (tools.Request, error) {
	msg := strings.ToLower(message)
	for _, lx := range e.lexicons {
		route, found := matchRoute(lx, msg)
		if !found {
			continue
		}
		return tools.DirectionsRequest{
			Origin:      route.origin,
			Destination: route.destination,
			Mode:        e.mode(route.rest),
		}, nil
	}
	return nil, ErrExtractionFailed
}

// routeMatch is an accepted directions capture. rest is the message with the
// origin and destination cut out, so place names never act as mode cues.
type routeMatch struct {
	origin, destination, rest string
}

// matchRoute scans msg left to right, skipping captures whose origin starts
// with one of the lexicon's stopwords.
func matchRoute(lx Lexicon, msg string) (routeMatch, bool) {
	if lx.DirectionsPattern == nil {
		return routeMatch{}, false
	}
	offset := 0
	for offset < len(msg) {
		m := lx.DirectionsPattern.FindStringSubmatchIndex(msg[offset:])
		if m == nil {
			return routeMatch{}, false
		}
		originStart, originEnd := offset+m[2], offset+m[3]
		destStart, destEnd := offset+m[4], offset+m[5]

		raw := msg[destStart:destEnd]
		kept := raw
		if lx.DestinationTail != nil {
			kept = lx.DestinationTail.ReplaceAllString(raw, "")
		}
		route := routeMatch{
			origin:      strings.TrimSpace(msg[originStart:originEnd]),
			destination: strings.TrimSpace(kept),
			rest:        msg[:originStart] + " " + msg[originEnd:destStart] + " " + raw[len(kept):] + msg[destEnd:],
		}
		if route.origin != "" && route.destination != "" && !startsWithWord(route.origin, lx.OriginStopwords) {
			return route, true
		}
		offset += max(m[2], 1)
	}
	return routeMatch{}, false
}

func startsWithWord(s string, words []string) bool {
	first := strings.FieldsFunc(s, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsPunct(r) })
	if len(first) == 0 {
		return false
	}
	for _, w := range words {
		if first[0] == w {
			return true
		}
	}
	return false
}

func (e *PatternExtractor) mode(msg string) string {
	for _, lx := range e.lexicons {
		for _, cue := range lx.Modes {
			if containsPhrase(msg, cue.Phrase) {
				return cue.Mode
			}
		}
	}
	return e.opts.Mode
}

// containsPhrase reports whether phrase occurs in s delimited by non-letters.
func containsPhrase(s, phrase string) bool {
	if phrase == "" {
		return false
	}
	for from := 0; ; {
		i := strings.Index(s[from:], phrase)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(phrase)
		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if (start == 0 || !unicode.IsLetter(before)) && (end == len(s) || !unicode.IsLetter(after)) {
			return true
		}
		from = start + 1
	}
}

// Clarification returns the canned reply for a failed directions
// extraction, in the language whose route vocabulary the message used.
func (e *PatternExtractor) Clarification(message string) string {
	msg := strings.ToLower(message)
	for _, lx := range e.lexicons {
		if containsAny(msg, lx.Route) {
			return lx.Clarification
		}
	}
	return e.lexicons[0].Clarification
}

var (
	_ Extractor = (*PatternExtractor)(nil)
	_ Clarifier = (*PatternExtractor)(nil)
)
