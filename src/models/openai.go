package models

import (
	"context"
	"errors"
	"math"

	"github.com/sashabaranov/go-openai"
)

type OpenAILLM struct {
	Client       *openai.Client
	Model        string
	PromptPrefix string
	Temperature  float64
}

func NewOpenAILLM(cfg Config) *OpenAILLM {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.Host != "" {
		oc.BaseURL = cfg.Host
	}
	return &OpenAILLM{
		Client:       openai.NewClientWithConfig(oc),
		Model:        cfg.Model,
		PromptPrefix: cfg.PromptPrefix,
		Temperature:  cfg.Temperature,
	}
}

func (o *OpenAILLM) Generate(ctx context.Context, prompt string) (any, error) {
	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.Model,
		Temperature: openAITemperature(o.Temperature),
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: withPrefix(o.PromptPrefix, prompt, "\n"),
		}},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// A zero temperature is dropped by omitempty and the API would apply its default of 1.
func openAITemperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}
