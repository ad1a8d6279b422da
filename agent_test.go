package agent

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/Protocol-Lattice/waypoint/src/conversation"
	"github.com/Protocol-Lattice/waypoint/src/intent"
	"github.com/Protocol-Lattice/waypoint/src/models"
	"github.com/Protocol-Lattice/waypoint/src/tools"
)

type stubModel struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
}

func (m *stubModel) Generate(_ context.Context, prompt string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return nil, m.err
	}
	if m.response != "" {
		return models.Completion{Text: m.response, Done: true}, nil
	}
	return "echo: " + prompt, nil
}

func (m *stubModel) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

type stubTool struct {
	name     string
	response tools.Response
	requests []tools.Request
}

func (t *stubTool) Spec() tools.Spec {
	return tools.Spec{Name: t.name, Description: "stub " + t.name, Enabled: true}
}

func (t *stubTool) Invoke(_ context.Context, req tools.Request) tools.Response {
	t.requests = append(t.requests, req)
	return t.response
}

type fixture struct {
	agent      *Agent
	model      *stubModel
	web        *stubTool
	places     *stubTool
	directions *stubTool
	history    *conversation.Log
}

func newFixture(t *testing.T, model *stubModel) *fixture {
	t.Helper()
	f := &fixture{
		model:      model,
		web:        &stubTool{name: tools.NameWebSearch, response: tools.Response{Content: "title: Election results", Status: tools.StatusOK}},
		places:     &stubTool{name: tools.NamePlaceSearch, response: tools.Response{Content: "Search results:\nName: Cafe\n---\n", Status: tools.StatusOK}},
		directions: &stubTool{name: tools.NameDirections, response: tools.Response{Content: "Route: Autopista. Distance: 415 km. Duration: 8 hours 30 mins.", Status: tools.StatusOK}},
		history:    conversation.NewLog(0),
	}
	a, err := New(Options{
		Model:     model,
		Tools:     []tools.Tool{f.web, f.places, f.directions},
		History:   f.history,
		NewTurnID: func() string { return "turn-1" },
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	f.agent = a
	return f
}

func TestNewRequiresModel(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error without a model or generator")
	}
}

func TestRespondRawPathForSmallTalk(t *testing.T) {
	f := newFixture(t, &stubModel{})

	res, err := f.agent.Respond(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if res.Intent != intent.None {
		t.Fatalf("expected intent none, got %q", res.Intent)
	}
	if calls := f.model.calls(); len(calls) != 1 || calls[0] != "hello" {
		t.Fatalf("expected raw message sent to model, got %#v", calls)
	}
	if res.Reply != "echo: hello" {
		t.Fatalf("unexpected reply %q", res.Reply)
	}
	if res.Turn.ToolResult != "" {
		t.Fatalf("expected empty tool result, got %q", res.Turn.ToolResult)
	}
	want := []State{StateRouting, StateIdle, StateGenerating, StateDone}
	if !reflect.DeepEqual(res.Turn.Trace, want) {
		t.Fatalf("unexpected trace %v", res.Turn.Trace)
	}
	if len(f.web.requests)+len(f.places.requests)+len(f.directions.requests) != 0 {
		t.Fatalf("expected no tool invocation")
	}
}

func TestRespondNewsUsesWebSearchAndGroundingPrompt(t *testing.T) {
	f := newFixture(t, &stubModel{response: "The election was won by..."})

	res, err := f.agent.Respond(context.Background(), "What is the latest news about the election?")
	if err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if res.Intent != intent.WebSearch {
		t.Fatalf("expected web_search, got %q", res.Intent)
	}
	if len(f.web.requests) != 1 {
		t.Fatalf("expected one web search, got %d", len(f.web.requests))
	}
	req := f.web.requests[0].(tools.WebSearchRequest)
	if req.Query != "What is the latest news about the election?" {
		t.Fatalf("expected raw query, got %q", req.Query)
	}

	calls := f.model.calls()
	wantPrompt := "Use the following information to answer the question 'What is the latest news about the election?': title: Election results"
	if len(calls) != 1 || calls[0] != wantPrompt {
		t.Fatalf("unexpected prompt %#v", calls)
	}
	if res.Reply != "The election was won by..." {
		t.Fatalf("unexpected reply %q", res.Reply)
	}

	roles := []Role{}
	for _, m := range res.Turn.Messages {
		roles = append(roles, m.Role)
	}
	if !reflect.DeepEqual(roles, []Role{RoleUser, RoleTool, RoleAssistant}) {
		t.Fatalf("unexpected message roles %v", roles)
	}
	if res.Turn.Messages[1].ToolName != tools.NameWebSearch {
		t.Fatalf("expected tool message to carry tool name")
	}
}

func TestRespondDirectionsClarificationSkipsToolAndModel(t *testing.T) {
	f := newFixture(t, &stubModel{})

	res, err := f.agent.Respond(context.Background(), "What is the best route?")
	if err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if res.Intent != intent.Directions {
		t.Fatalf("expected directions, got %q", res.Intent)
	}
	if res.Reply != intent.English.Clarification {
		t.Fatalf("expected canned clarification, got %q", res.Reply)
	}
	if !res.Turn.Direct {
		t.Fatalf("expected direct turn")
	}
	if len(f.directions.requests) != 0 {
		t.Fatalf("expected no directions invocation")
	}
	if calls := f.model.calls(); len(calls) != 0 {
		t.Fatalf("expected no model call, got %#v", calls)
	}
	want := []State{StateRouting, StateDirections, StateGenerating, StateDone}
	if !reflect.DeepEqual(res.Turn.Trace, want) {
		t.Fatalf("unexpected trace %v", res.Turn.Trace)
	}
}

func TestRespondDirectionsExtractsRoute(t *testing.T) {
	f := newFixture(t, &stubModel{response: "Take the highway."})

	res, err := f.agent.Respond(context.Background(), "How do I get from Bogota to Medellin?")
	if err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if len(f.directions.requests) != 1 {
		t.Fatalf("expected one directions call, got %d", len(f.directions.requests))
	}
	got := f.directions.requests[0].(tools.DirectionsRequest)
	want := tools.DirectionsRequest{Origin: "bogota", Destination: "medellin", Mode: "driving"}
	if got != want {
		t.Fatalf("unexpected request %+v", got)
	}
	if res.Turn.ToolResult != f.directions.response.Content {
		t.Fatalf("expected tool output recorded, got %q", res.Turn.ToolResult)
	}
}

func TestRespondPlaceSearch(t *testing.T) {
	f := newFixture(t, &stubModel{response: "Try the Cafe."})

	if _, err := f.agent.Respond(context.Background(), "Recommend a restaurant near the park"); err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if len(f.places.requests) != 1 {
		t.Fatalf("expected one place search, got %d", len(f.places.requests))
	}
	if got := f.places.requests[0].(tools.PlaceSearchRequest); got.Location != "the park" {
		t.Fatalf("unexpected location %q", got.Location)
	}
}

func TestRespondToolFailureBecomesText(t *testing.T) {
	f := newFixture(t, &stubModel{})
	f.web.response = tools.Response{Content: "Error running web search: timeout", Status: tools.StatusFailed}

	res, err := f.agent.Respond(context.Background(), "latest news")
	if err != nil {
		t.Fatalf("tool failure must not fail the turn: %v", err)
	}
	if res.Turn.ToolStatus != tools.StatusFailed {
		t.Fatalf("expected failed status, got %q", res.Turn.ToolStatus)
	}
	if calls := f.model.calls(); len(calls) != 1 || !strings.Contains(calls[0], "timeout") {
		t.Fatalf("expected failure text passed to the model, got %#v", calls)
	}
}

func TestRespondMissingToolIsReported(t *testing.T) {
	model := &stubModel{}
	a, err := New(Options{Model: model})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	res, err := a.Respond(context.Background(), "latest news")
	if err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if res.Turn.ToolResult != "Error: tool web_search is not configured." {
		t.Fatalf("unexpected tool result %q", res.Turn.ToolResult)
	}
}

func TestRespondEmptyToolOutputKeepsResultNonEmpty(t *testing.T) {
	f := newFixture(t, &stubModel{})
	f.places.response = tools.Response{Status: tools.StatusOK}

	res, err := f.agent.Respond(context.Background(), "any hotel in Lima")
	if err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if res.Turn.ToolResult == "" || res.Turn.ToolStatus != tools.StatusEmpty {
		t.Fatalf("expected placeholder result, got %q (%s)", res.Turn.ToolResult, res.Turn.ToolStatus)
	}
}

func TestRespondModelErrorLeavesHistoryUnchanged(t *testing.T) {
	f := newFixture(t, &stubModel{err: errors.New("connection refused")})

	res, err := f.agent.Respond(context.Background(), "latest news")
	if !errors.Is(err, ErrModelInvocation) {
		t.Fatalf("expected ErrModelInvocation, got %v", err)
	}
	if res.Reply != "" {
		t.Fatalf("expected no reply, got %q", res.Reply)
	}
	if f.history.Len() != 0 {
		t.Fatalf("expected history untouched, got %d entries", f.history.Len())
	}
}

func TestRespondCommitsHistory(t *testing.T) {
	f := newFixture(t, &stubModel{})

	if _, err := f.agent.Respond(context.Background(), "latest news"); err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if _, err := f.agent.Respond(context.Background(), "hello"); err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}

	entries := f.history.Entries()
	if len(entries) != 5 {
		t.Fatalf("expected 5 history entries, got %d", len(entries))
	}
	if entries[0].TurnID != "turn-1" {
		t.Fatalf("expected turn id on entries, got %q", entries[0].TurnID)
	}
}

type stubGenerator struct {
	gotMessage, gotResult string
}

func (g *stubGenerator) Generate(_ context.Context, message, toolResult string) (string, error) {
	g.gotMessage, g.gotResult = message, toolResult
	return "ok", nil
}

func TestRespondUsesCustomGenerator(t *testing.T) {
	gen := &stubGenerator{}
	a, err := New(Options{Generator: gen})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := a.Respond(context.Background(), "hello"); err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if gen.gotMessage != "hello" || gen.gotResult != "" {
		t.Fatalf("unexpected generator input %q / %q", gen.gotMessage, gen.gotResult)
	}
}

func TestRespondSerializesConcurrentTurns(t *testing.T) {
	f := newFixture(t, &stubModel{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.agent.Respond(context.Background(), "hello"); err != nil {
				t.Errorf("Respond returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	entries := f.history.Entries()
	if len(entries) != 20 {
		t.Fatalf("expected 20 entries, got %d", len(entries))
	}
	for i := 0; i < len(entries); i += 2 {
		if entries[i].Role != RoleUser || entries[i+1].Role != RoleAssistant {
			t.Fatalf("turns interleaved at entry %d", i)
		}
	}
}

func TestModelGeneratorWrapsErrors(t *testing.T) {
	gen := NewModelGenerator(&stubModel{err: errors.New("boom")})
	_, err := gen.Generate(context.Background(), "q", "")
	if !errors.Is(err, ErrModelInvocation) {
		t.Fatalf("expected ErrModelInvocation, got %v", err)
	}
}

func TestModelGeneratorTemplate(t *testing.T) {
	gen := NewModelGenerator(&stubModel{}).WithTemplate("Q=%s R=%s")
	if got := gen.Prompt("where", "here"); got != "Q=where R=here" {
		t.Fatalf("unexpected prompt %q", got)
	}
	if got := gen.Prompt("where", ""); got != "where" {
		t.Fatalf("expected raw message without tool output, got %q", got)
	}
}

func TestStaticToolCatalog(t *testing.T) {
	catalog := NewStaticToolCatalog()
	if err := catalog.Register(&stubTool{name: "Web_Search"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := catalog.Register(&stubTool{name: "web_search"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := catalog.Register(&stubTool{name: "  "}); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	if _, spec, found := catalog.Lookup("WEB_SEARCH"); !found || spec.Name != "Web_Search" {
		t.Fatalf("expected case-insensitive lookup, got %+v %v", spec, found)
	}
	if len(catalog.Specs()) != 1 {
		t.Fatalf("expected one spec")
	}
}
