package models

import (
	"context"
	"fmt"
	"strings"
)

// Config selects and parameterises a provider.
type Config struct {
	Provider     string
	Model        string
	Host         string
	APIKey       string
	PromptPrefix string
	Temperature  float64
}

// NewLLMProvider returns a concrete Agent.
func NewLLMProvider(ctx context.Context, cfg Config) (Agent, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "ollama":
		return NewOllamaLLM(cfg)
	case "openai":
		return NewOpenAILLM(cfg), nil
	case "gemini", "google":
		return NewGeminiLLM(ctx, cfg)
	case "anthropic", "claude":
		return NewAnthropicLLM(cfg), nil
	case "dummy":
		return NewDummyLLM(cfg.PromptPrefix), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

func withPrefix(prefix, prompt, sep string) string {
	if strings.TrimSpace(prefix) == "" {
		return prompt
	}
	return prefix + sep + prompt
}
