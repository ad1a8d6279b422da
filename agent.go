package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Protocol-Lattice/waypoint/src/conversation"
	"github.com/Protocol-Lattice/waypoint/src/intent"
	"github.com/Protocol-Lattice/waypoint/src/models"
	"github.com/Protocol-Lattice/waypoint/src/observability"
	"github.com/Protocol-Lattice/waypoint/src/tools"
)

// Agent routes each user message to at most one tool and turns the tool
// output into a reply.
type Agent struct {
	classifier intent.Classifier
	extractor  intent.Extractor
	clarifier  intent.Clarifier
	generator  ResponseGenerator
	catalog    ToolCatalog
	history    *conversation.Log
	logger     zerolog.Logger
	newTurnID  func() string

	mu sync.Mutex
}

// Options configure a new Agent. Either Model or Generator is required;
// everything else has a default.
type Options struct {
	Model             models.Agent
	Generator         ResponseGenerator
	GroundingTemplate string

	Classifier intent.Classifier
	Extractor  intent.Extractor
	// Clarifier supplies the reply used when directions cannot be
	// extracted. Defaults to the Extractor when it implements Clarifier.
	Clarifier intent.Clarifier

	Tools       []tools.Tool
	ToolCatalog ToolCatalog

	// History receives the messages of every successful turn.
	History *conversation.Log
	Logger  *zerolog.Logger

	NewTurnID func() string
}

// New creates an Agent with the provided options.
func New(opts Options) (*Agent, error) {
	generator := opts.Generator
	if generator == nil {
		if opts.Model == nil {
			return nil, errors.New("agent requires a language model")
		}
		generator = NewModelGenerator(opts.Model).WithTemplate(opts.GroundingTemplate)
	}

	classifier := opts.Classifier
	if classifier == nil {
		classifier = intent.NewKeywordClassifier()
	}
	extractor := opts.Extractor
	if extractor == nil {
		extractor = intent.NewPatternExtractor(intent.ExtractorOptions{})
	}
	clarifier := opts.Clarifier
	if clarifier == nil {
		if c, isClarifier := extractor.(intent.Clarifier); isClarifier {
			clarifier = c
		} else {
			clarifier = fixedClarification(intent.English.Clarification)
		}
	}

	catalog := opts.ToolCatalog
	tolerant := false
	if catalog == nil {
		catalog = NewStaticToolCatalog()
		tolerant = true
	}
	for _, tool := range opts.Tools {
		if tool == nil {
			continue
		}
		if err := catalog.Register(tool); err != nil {
			if tolerant {
				continue
			}
			return nil, err
		}
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	newTurnID := opts.NewTurnID
	if newTurnID == nil {
		newTurnID = uuid.NewString
	}

	return &Agent{
		classifier: classifier,
		extractor:  extractor,
		clarifier:  clarifier,
		generator:  generator,
		catalog:    catalog,
		history:    opts.History,
		logger:     logger,
		newTurnID:  newTurnID,
	}, nil
}

// Respond runs one turn. Tool problems come back as reply text; only a
// failed model call returns an error, wrapped as ErrModelInvocation, and in
// that case nothing is committed to History.
func (a *Agent) Respond(ctx context.Context, message string) (Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	turnID := a.newTurnID()
	logger := a.logger.With().Str("turn_id", turnID).Logger()
	start := time.Now()
	turn := newTurnState(message)

	for current := StateRouting; current != StateDone; {
		turn.enter(current)
		logger.Debug().Str("state", string(current)).Msg("state entered")

		switch current {
		case StateRouting:
			current = a.route(turn)
		case StateIdle:
			current = StateGenerating
		case StateWebSearch, StatePlaceSearch, StateDirections:
			current = a.runTool(ctx, turn, logger)
		case StateGenerating:
			if err := a.generate(ctx, turn); err != nil {
				observability.RecordTurn(string(turn.SelectedTool), observability.OutcomeError, time.Since(start))
				logger.Error().Err(err).
					Str("intent", string(turn.SelectedTool)).
					Dur("latency", time.Since(start)).
					Msg("turn failed")
				return Result{TurnID: turnID, Intent: turn.SelectedTool, Turn: turn.clone()}, err
			}
			current = StateDone
		default:
			return Result{}, fmt.Errorf("unknown state %q", current)
		}
	}
	turn.enter(StateDone)

	if a.history != nil {
		a.history.Commit(turnID, turn.Messages...)
	}

	outcome := observability.OutcomeAnswered
	if turn.Direct {
		outcome = observability.OutcomeClarification
	}
	observability.RecordTurn(string(turn.SelectedTool), outcome, time.Since(start))
	logger.Info().
		Str("intent", string(turn.SelectedTool)).
		Str("tool_status", string(turn.ToolStatus)).
		Str("outcome", outcome).
		Dur("latency", time.Since(start)).
		Msg("turn complete")

	return Result{
		TurnID: turnID,
		Reply:  turn.Reply(),
		Intent: turn.SelectedTool,
		Turn:   turn.clone(),
	}, nil
}

// route inspects only the latest user message.
func (a *Agent) route(turn *TurnState) State {
	selected := a.classifier.Classify(turn.LastUserMessage())
	next, known := branchStates[selected]
	if !known {
		selected, next = intent.None, StateIdle
	}
	turn.SelectedTool = selected
	return next
}

func (a *Agent) runTool(ctx context.Context, turn *TurnState, logger zerolog.Logger) State {
	name := turn.SelectedTool.ToolName()
	message := turn.LastUserMessage()

	req, err := a.extractor.Extract(turn.SelectedTool, message)
	if err != nil {
		if errors.Is(err, intent.ErrExtractionFailed) && turn.SelectedTool == intent.Directions {
			turn.ToolResult = a.clarifier.Clarification(message)
			turn.Direct = true
			logger.Debug().Msg("route not understood, asking for clarification")
			return StateGenerating
		}
		a.recordToolResult(turn, name, tools.Response{
			Content: fmt.Sprintf("Error: could not build a %s request: %v", name, err),
			Status:  tools.StatusBadRequest,
		})
		return StateGenerating
	}

	tool, spec, found := a.catalog.Lookup(name)
	if !found {
		a.recordToolResult(turn, name, tools.Response{
			Content: fmt.Sprintf("Error: tool %s is not configured.", name),
			Status:  tools.StatusFailed,
		})
		return StateGenerating
	}

	resp := tool.Invoke(ctx, req)
	if strings.TrimSpace(resp.Content) == "" {
		resp.Content = fmt.Sprintf("The %s tool returned no output.", spec.Name)
		if resp.Status == tools.StatusOK {
			resp.Status = tools.StatusEmpty
		}
	}
	a.recordToolResult(turn, name, resp)
	logger.Debug().Str("tool", name).Str("status", string(resp.Status)).Msg("tool invoked")
	return StateGenerating
}

func (a *Agent) recordToolResult(turn *TurnState, name string, resp tools.Response) {
	observability.RecordToolInvocation(name, string(resp.Status))
	turn.ToolResult = resp.Content
	turn.ToolStatus = resp.Status
	turn.append(Message{Role: RoleTool, Content: resp.Content, ToolName: name})
}

func (a *Agent) generate(ctx context.Context, turn *TurnState) error {
	if turn.Direct {
		turn.append(Message{Role: RoleAssistant, Content: turn.ToolResult})
		return nil
	}
	reply, err := a.generator.Generate(ctx, turn.LastUserMessage(), turn.ToolResult)
	if err != nil {
		if !errors.Is(err, ErrModelInvocation) {
			err = fmt.Errorf("%w: %w", ErrModelInvocation, err)
		}
		return err
	}
	turn.append(Message{Role: RoleAssistant, Content: reply})
	return nil
}

// ToolSpecs lists the registered tools in registration order.
func (a *Agent) ToolSpecs() []tools.Spec {
	return a.catalog.Specs()
}

// History returns the conversation log, which may be nil.
func (a *Agent) History() *conversation.Log {
	return a.history
}

type fixedClarification string

func (f fixedClarification) Clarification(string) string { return string(f) }
