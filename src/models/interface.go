package models

import (
	"context"
	"fmt"
)

// Agent is a single-shot completion backend.
type Agent interface {
	Generate(context.Context, string) (any, error)
}

// Completion is the result returned by providers that report finish metadata.
type Completion struct {
	Text       string
	Done       bool
	DoneReason string
}

func (c Completion) String() string { return c.Text }

// Text flattens a provider result into plain text.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case Completion:
		return t.Text
	case *Completion:
		if t == nil {
			return ""
		}
		return t.Text
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
