package agent

import (
	"github.com/Protocol-Lattice/waypoint/src/conversation"
	"github.com/Protocol-Lattice/waypoint/src/intent"
	"github.com/Protocol-Lattice/waypoint/src/tools"
)

type (
	Message = conversation.Message
	Role    = conversation.Role
)

const (
	RoleUser      = conversation.RoleUser
	RoleAssistant = conversation.RoleAssistant
	RoleTool      = conversation.RoleTool
)

// State is a step of the per-turn state machine.
type State string

const (
	StateRouting     State = "routing"
	StateIdle        State = "idle"
	StateWebSearch   State = "web_search"
	StatePlaceSearch State = "place_search"
	StateDirections  State = "directions"
	StateGenerating  State = "generating"
	StateDone        State = "done"
)

// branchStates maps each routed intent to the state that serves it.
var branchStates = map[intent.Intent]State{
	intent.None:        StateIdle,
	intent.WebSearch:   StateWebSearch,
	intent.PlaceSearch: StatePlaceSearch,
	intent.Directions:  StateDirections,
}

// TurnState is the working data of a single turn. It is created by Respond,
// mutated only by the state machine and discarded once the reply is built.
//
// ToolResult is empty exactly when SelectedTool is intent.None. Direct marks
// a turn whose ToolResult is already the final reply.
type TurnState struct {
	Messages     []Message
	SelectedTool intent.Intent
	ToolResult   string
	ToolStatus   tools.Status
	Trace        []State
	Direct       bool
}

func newTurnState(message string) *TurnState {
	return &TurnState{
		Messages:     []Message{{Role: RoleUser, Content: message}},
		SelectedTool: intent.None,
	}
}

func (s *TurnState) enter(st State) {
	s.Trace = append(s.Trace, st)
}

func (s *TurnState) append(m Message) {
	s.Messages = append(s.Messages, m)
}

// LastUserMessage returns the most recent user message of the turn.
func (s *TurnState) LastUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}

// Reply returns the final assistant message, or "" if none was produced.
func (s *TurnState) Reply() string {
	if n := len(s.Messages); n > 0 && s.Messages[n-1].Role == RoleAssistant {
		return s.Messages[n-1].Content
	}
	return ""
}

func (s *TurnState) clone() TurnState {
	out := *s
	out.Messages = append([]Message(nil), s.Messages...)
	out.Trace = append([]State(nil), s.Trace...)
	return out
}

// Result is what a caller gets back from Respond.
type Result struct {
	TurnID string
	Reply  string
	Intent intent.Intent
	Turn   TurnState
}
