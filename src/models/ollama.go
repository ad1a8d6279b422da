package models

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// DefaultOllamaHost is used when no host is configured.
const DefaultOllamaHost = "http://localhost:11434"

// ---------------------------- Ollama -----------------------------------------

type OllamaLLM struct {
	Client       *ollama.Client
	Model        string
	PromptPrefix string
	Temperature  float64
}

func NewOllamaLLM(cfg Config) (*OllamaLLM, error) {
	client, err := NewOllamaClient(cfg.Host, 120*time.Second)
	if err != nil {
		return nil, err
	}
	return &OllamaLLM{
		Client:       client,
		Model:        cfg.Model,
		PromptPrefix: cfg.PromptPrefix,
		Temperature:  cfg.Temperature,
	}, nil
}

// NewOllamaClient builds an API client for host, falling back to DefaultOllamaHost.
func NewOllamaClient(host string, timeout time.Duration) (*ollama.Client, error) {
	if strings.TrimSpace(host) == "" {
		host = DefaultOllamaHost
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}
	return ollama.NewClient(u, &http.Client{Timeout: timeout}), nil
}

func (o *OllamaLLM) Generate(ctx context.Context, prompt string) (any, error) {
	var (
		text strings.Builder
		last ollama.GenerateResponse
	)

	stream := false
	req := &ollama.GenerateRequest{
		Model:  o.Model,
		Prompt: withPrefix(o.PromptPrefix, prompt, "\n\n"),
		Stream: &stream,
		Options: map[string]any{
			"temperature": o.Temperature,
		},
	}

	if err := o.Client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		text.WriteString(gr.Response)
		last = gr
		return nil
	}); err != nil {
		return nil, fmt.Errorf("ollama generate: %w", err)
	}

	return Completion{
		Text:       text.String(),
		Done:       last.Done,
		DoneReason: last.DoneReason,
	}, nil
}
