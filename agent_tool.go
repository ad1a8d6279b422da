package agent

import (
	"context"
	"fmt"
	"strings"

	utcp "github.com/universal-tool-calling-protocol/go-utcp"
	"github.com/universal-tool-calling-protocol/go-utcp/src/providers/base"
	"github.com/universal-tool-calling-protocol/go-utcp/src/providers/cli"
	"github.com/universal-tool-calling-protocol/go-utcp/src/repository"
	utcptools "github.com/universal-tool-calling-protocol/go-utcp/src/tools"
	"github.com/universal-tool-calling-protocol/go-utcp/src/transports"
)

// inProcessTransport serves tools whose handlers live in this process and
// delegates everything else to the transport it replaced.
type inProcessTransport struct {
	inner repository.ClientTransport
	tools map[string][]inProcessTool
}

// inProcessTool pairs an advertised tool with a call that receives the
// caller's context, which utcptools.ToolHandler cannot carry.
type inProcessTool struct {
	tool utcptools.Tool
	call func(ctx context.Context, inputs map[string]any) (map[string]any, error)
}

func (t *inProcessTransport) owned(prov base.Provider) ([]inProcessTool, bool) {
	p, isCLI := prov.(*cli.CliProvider)
	if !isCLI {
		return nil, false
	}
	list, found := t.tools[p.Name]
	return list, found
}

func (t *inProcessTransport) RegisterToolProvider(ctx context.Context, prov base.Provider) ([]utcptools.Tool, error) {
	if list, found := t.owned(prov); found {
		advertised := make([]utcptools.Tool, 0, len(list))
		for _, entry := range list {
			advertised = append(advertised, entry.tool)
		}
		return advertised, nil
	}
	if t.inner != nil {
		return t.inner.RegisterToolProvider(ctx, prov)
	}
	return nil, fmt.Errorf("no in-process tools for provider %T", prov)
}

func (t *inProcessTransport) DeregisterToolProvider(ctx context.Context, prov base.Provider) error {
	if _, found := t.owned(prov); found {
		delete(t.tools, prov.(*cli.CliProvider).Name)
		return nil
	}
	if t.inner != nil {
		return t.inner.DeregisterToolProvider(ctx, prov)
	}
	return nil
}

func (t *inProcessTransport) CallTool(ctx context.Context, toolName string, args map[string]any, prov base.Provider, l *string) (any, error) {
	if list, found := t.owned(prov); found {
		for _, entry := range list {
			if entry.tool.Name == toolName || strings.HasSuffix(entry.tool.Name, "."+toolName) {
				return entry.call(ctx, args)
			}
		}
		return nil, fmt.Errorf("tool %s not found", toolName)
	}
	if t.inner != nil {
		return t.inner.CallTool(ctx, toolName, args, prov, l)
	}
	return nil, fmt.Errorf("unsupported provider type %T", prov)
}

func (t *inProcessTransport) CallToolStream(ctx context.Context, toolName string, args map[string]any, prov base.Provider) (transports.StreamResult, error) {
	if _, found := t.owned(prov); found {
		return nil, fmt.Errorf("streaming not supported for tool %s", toolName)
	}
	if t.inner != nil {
		return t.inner.CallToolStream(ctx, toolName, args, prov)
	}
	return nil, fmt.Errorf("unsupported provider type %T", prov)
}

func providerName(toolName string) string {
	name := strings.TrimSpace(toolName)
	if before, _, found := strings.Cut(name, "."); found {
		return before
	}
	return name
}

// AsUTCPTool exposes the assistant as a UTCP tool with an in-process handler.
// The tool takes a single "message" input and returns the reply together
// with the routed intent and turn id. The standalone Handler runs without a
// deadline; calls routed through RegisterAsUTCPProvider use the caller's
// context.
func (a *Agent) AsUTCPTool(name, description string) utcptools.Tool {
	return utcptools.Tool{
		Name:        name,
		Description: description,
		Provider: &base.BaseProvider{
			Name:         providerName(name),
			ProviderType: base.ProviderCLI,
		},
		Inputs: utcptools.ToolInputOutputSchema{
			Type: "object",
			Properties: map[string]any{
				"message": map[string]any{
					"type":        "string",
					"description": "A question about news, places or how to get somewhere.",
				},
			},
			Required: []string{"message"},
		},
		Outputs: utcptools.ToolInputOutputSchema{
			Type: "object",
			Properties: map[string]any{
				"response": map[string]any{"type": "string"},
				"intent":   map[string]any{"type": "string"},
				"turn_id":  map[string]any{"type": "string"},
			},
		},
		Handler: func(_ map[string]interface{}, inputs map[string]interface{}) (map[string]interface{}, error) {
			return a.callUTCP(context.Background(), inputs)
		},
	}
}

// callUTCP runs one turn for a UTCP invocation.
func (a *Agent) callUTCP(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	message, isString := inputs["message"].(string)
	if !isString || strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("missing or invalid 'message'")
	}

	res, err := a.Respond(ctx, message)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"response": res.Reply,
		"intent":   string(res.Intent),
		"turn_id":  res.TurnID,
	}, nil
}

// RegisterAsUTCPProvider registers the assistant on client under name. Calls
// are routed straight to Respond through an in-process CLI transport.
func (a *Agent) RegisterAsUTCPProvider(ctx context.Context, client utcp.UtcpClientInterface, name, description string) error {
	if client == nil {
		return fmt.Errorf("utcp client is nil")
	}

	transportsMap := client.GetTransports()
	if transportsMap == nil {
		return fmt.Errorf("utcp client transports map is nil")
	}

	shim, installed := transportsMap[string(base.ProviderCLI)].(*inProcessTransport)
	if !installed {
		shim = &inProcessTransport{inner: transportsMap[string(base.ProviderCLI)]}
		transportsMap[string(base.ProviderCLI)] = shim
	}
	if shim.tools == nil {
		shim.tools = make(map[string][]inProcessTool)
	}

	prov := &cli.CliProvider{
		BaseProvider: base.BaseProvider{
			Name:         providerName(name),
			ProviderType: base.ProviderCLI,
		},
	}
	shim.tools[prov.Name] = []inProcessTool{{tool: a.AsUTCPTool(name, description), call: a.callUTCP}}

	_, err := client.RegisterToolProvider(ctx, prov)
	return err
}
