package agent

import (
	"context"
	"strings"
	"testing"

	utcp "github.com/universal-tool-calling-protocol/go-utcp"
	"github.com/universal-tool-calling-protocol/go-utcp/src/providers/base"
)

func TestAgent_AsUTCPTool(t *testing.T) {
	f := newFixture(t, &stubModel{})

	utcpTool := f.agent.AsUTCPTool("waypoint.ask", "desc")
	if utcpTool.Name != "waypoint.ask" {
		t.Fatalf("expected tool name waypoint.ask, got %q", utcpTool.Name)
	}
	if utcpTool.Provider == nil || utcpTool.Provider.Type() != base.ProviderCLI {
		t.Fatalf("expected CLI provider, got %#v", utcpTool.Provider)
	}

	result, err := utcpTool.Handler(nil, map[string]interface{}{"message": "hello there"})
	if err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}
	if resp, _ := result["response"].(string); !strings.Contains(resp, "hello there") {
		t.Fatalf("expected reply to echo the message, got %q", resp)
	}
	if result["intent"] != "none" {
		t.Fatalf("expected intent none, got %#v", result["intent"])
	}
	if result["turn_id"] != "turn-1" {
		t.Fatalf("expected turn id, got %#v", result["turn_id"])
	}
}

func TestAgent_AsUTCPTool_ValidatesMessage(t *testing.T) {
	f := newFixture(t, &stubModel{})

	utcpTool := f.agent.AsUTCPTool("waypoint.ask", "desc")
	if _, err := utcpTool.Handler(nil, map[string]interface{}{}); err == nil {
		t.Fatalf("expected error for missing message")
	}
	if _, err := utcpTool.Handler(nil, map[string]interface{}{"message": "   "}); err == nil {
		t.Fatalf("expected error for blank message")
	}
}

func TestAgent_RegisterAsUTCPProvider(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &stubModel{})

	client, err := utcp.NewUTCPClient(ctx, nil, nil, nil)
	if err != nil {
		t.Fatalf("failed to create utcp client: %v", err)
	}

	if err := f.agent.RegisterAsUTCPProvider(ctx, client, "waypoint.ask", "desc"); err != nil {
		t.Fatalf("register as utcp provider: %v", err)
	}

	out, err := client.CallTool(ctx, "waypoint.ask", map[string]any{"message": "latest news"})
	if err != nil {
		t.Fatalf("CallTool error: %v", err)
	}
	result, isMap := out.(map[string]any)
	if !isMap {
		t.Fatalf("expected map result, got %#v", out)
	}
	if result["intent"] != "web_search" {
		t.Fatalf("expected web_search intent, got %#v", result["intent"])
	}
	if len(f.web.requests) != 1 {
		t.Fatalf("expected the call to reach the web search tool")
	}
}

type ctxKey struct{}

type ctxRecordingModel struct {
	seen any
}

func (m *ctxRecordingModel) Generate(ctx context.Context, prompt string) (any, error) {
	m.seen = ctx.Value(ctxKey{})
	return "ok", nil
}

func TestAgent_RegisterAsUTCPProvider_UsesCallerContext(t *testing.T) {
	model := &ctxRecordingModel{}
	a, err := New(Options{Model: model})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	client, err := utcp.NewUTCPClient(context.Background(), nil, nil, nil)
	if err != nil {
		t.Fatalf("failed to create utcp client: %v", err)
	}
	if err := a.RegisterAsUTCPProvider(context.Background(), client, "waypoint.ask", "desc"); err != nil {
		t.Fatalf("register as utcp provider: %v", err)
	}

	ctx := context.WithValue(context.Background(), ctxKey{}, "caller")
	if _, err := client.CallTool(ctx, "waypoint.ask", map[string]any{"message": "hello"}); err != nil {
		t.Fatalf("CallTool error: %v", err)
	}
	if model.seen != "caller" {
		t.Fatalf("expected the caller's context to reach the model, got %#v", model.seen)
	}
}

func TestAgent_RegisterAsUTCPProvider_NilClient(t *testing.T) {
	f := newFixture(t, &stubModel{})
	if err := f.agent.RegisterAsUTCPProvider(context.Background(), nil, "waypoint.ask", "desc"); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestProviderName(t *testing.T) {
	cases := map[string]string{
		"waypoint.ask": "waypoint",
		"ask":          "ask",
		" a.b.c ":      "a",
	}
	for in, want := range cases {
		if got := providerName(in); got != want {
			t.Errorf("providerName(%q) = %q, want %q", in, got, want)
		}
	}
}
