// Package intent decides which tool, if any, a user message calls for and
// pulls the tool arguments out of the free text.
//
// Both steps are rule based (keyword tiers and regular expressions) and sit
// behind the Classifier and Extractor interfaces so they can be replaced
// without touching the orchestrator.
package intent

import (
	"errors"

	"github.com/Protocol-Lattice/waypoint/src/tools"
)

// Intent is the closed set of routing decisions.
type Intent string

const (
	WebSearch   Intent = tools.NameWebSearch
	PlaceSearch Intent = tools.NamePlaceSearch
	Directions  Intent = tools.NameDirections
	None        Intent = "none"
)

// ToolName returns the tool that serves i, or "" for None.
func (i Intent) ToolName() string {
	if i == None {
		return ""
	}
	return string(i)
}

var (
	// ErrExtractionFailed reports that no origin/destination could be found.
	// It is a defined outcome, not a turn failure.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrUnsupportedIntent is returned when asked to extract for None or an unknown intent.
	ErrUnsupportedIntent = errors.New("unsupported intent")
)

// Classifier labels the latest user message. Implementations must be pure.
type Classifier interface {
	Classify(message string) Intent
}

// Extractor builds the tool request for a classified message.
type Extractor interface {
	Extract(in Intent, message string) (tools.Request, error)
}

// Clarifier is implemented by extractors that can phrase the
// clarification shown when extraction fails.
type Clarifier interface {
	Clarification(message string) string
}
