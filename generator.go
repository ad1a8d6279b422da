package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Protocol-Lattice/waypoint/src/models"
	"github.com/Protocol-Lattice/waypoint/src/observability"
)

// ErrModelInvocation wraps every failure of the language model call.
var ErrModelInvocation = errors.New("model invocation failed")

// DefaultGroundingTemplate receives the user message and the tool output.
const DefaultGroundingTemplate = "Use the following information to answer the question '%s': %s"

// ResponseGenerator produces the final reply. An empty toolResult means no
// tool ran and the message goes to the model as-is.
type ResponseGenerator interface {
	Generate(ctx context.Context, userMessage, toolResult string) (string, error)
}

// ModelGenerator makes exactly one model call per reply.
type ModelGenerator struct {
	model    models.Agent
	template string
}

func NewModelGenerator(model models.Agent) *ModelGenerator {
	return &ModelGenerator{model: model, template: DefaultGroundingTemplate}
}

// WithTemplate overrides the grounding prompt. It must contain two %s verbs.
func (g *ModelGenerator) WithTemplate(template string) *ModelGenerator {
	if template != "" {
		g.template = template
	}
	return g
}

// Prompt renders what would be sent to the model.
func (g *ModelGenerator) Prompt(userMessage, toolResult string) string {
	if toolResult == "" {
		return userMessage
	}
	return fmt.Sprintf(g.template, userMessage, toolResult)
}

func (g *ModelGenerator) Generate(ctx context.Context, userMessage, toolResult string) (string, error) {
	if g.model == nil {
		return "", fmt.Errorf("%w: no language model configured", ErrModelInvocation)
	}

	start := time.Now()
	out, err := g.model.Generate(ctx, g.Prompt(userMessage, toolResult))
	observability.RecordModelCall(time.Since(start))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrModelInvocation, err)
	}
	return models.Text(out), nil
}

var _ ResponseGenerator = (*ModelGenerator)(nil)
