package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	agent "github.com/Protocol-Lattice/waypoint"
	"github.com/Protocol-Lattice/waypoint/src/config"
	"github.com/Protocol-Lattice/waypoint/src/conversation"
	"github.com/Protocol-Lattice/waypoint/src/intent"
	"github.com/Protocol-Lattice/waypoint/src/models"
	"github.com/Protocol-Lattice/waypoint/src/observability"
	"github.com/Protocol-Lattice/waypoint/src/tools"
)

// historyLimit bounds the in-memory history of an interactive session.
const historyLimit = 200

// buildAgent wires the assistant from configuration. Missing tool
// credentials are logged and leave the affected tool disabled.
func buildAgent(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*agent.Agent, error) {
	model, err := models.NewLLMProvider(ctx, cfg.Model())
	if err != nil {
		return nil, fmt.Errorf("init model: %w", err)
	}
	model = models.WrapCached(model, cfg.LLMCacheSize, cfg.LLMCacheTTL, cfg.LLMCachePath)

	webSearch, err := tools.NewWebSearchTool(cfg.WebSearch())
	if err != nil {
		return nil, fmt.Errorf("init web search: %w", err)
	}
	places, directions, err := tools.NewMapsTools(cfg.GoogleMapsAPIKey, cfg.PlacesRadius, cfg.DirectionsMode)
	if err != nil {
		if !errors.Is(err, tools.ErrMissingCredential) {
			return nil, fmt.Errorf("init google maps: %w", err)
		}
		logger.Warn().Msg("GOOGLE_MAPS_API_KEY not set, place search and directions are disabled")
	}
	if !webSearch.Spec().Enabled {
		logger.Warn().Str("backend", cfg.WebSearchBackend).Msg("web search API key not set, web search is disabled")
	}

	lexicons, err := cfg.Lexicons()
	if err != nil {
		return nil, err
	}
	extractor := intent.NewPatternExtractor(intent.ExtractorOptions{
		MaxResults: cfg.WebSearchMaxResults,
		Radius:     cfg.PlacesRadius,
		Mode:       cfg.DirectionsMode,
	}, lexicons...)

	return agent.New(agent.Options{
		Model:      model,
		Classifier: intent.NewKeywordClassifier(lexicons...),
		Extractor:  extractor,
		Tools:      []tools.Tool{webSearch, places, directions},
		History:    conversation.NewLog(historyLimit),
		Logger:     &logger,
	})
}

// diagnose runs the status probes for cfg.
func diagnose(ctx context.Context, cfg *config.Config) (observability.Report, error) {
	probes := observability.Probes{
		Model: cfg.LLMModel,
		Credentials: map[string]bool{
			"GOOGLE_MAPS_API_KEY": cfg.GoogleMapsAPIKey != "",
			webSearchKeyName(cfg): cfg.WebSearch().APIKey != "",
		},
	}
	if cfg.Model().Provider == "ollama" {
		client, err := models.NewOllamaClient(cfg.OllamaHost, 2*observability.ProbeTimeout)
		if err != nil {
			return observability.Report{}, err
		}
		probes.Ollama = client
	}
	return observability.Diagnose(ctx, probes), nil
}

func webSearchKeyName(cfg *config.Config) string {
	if cfg.WebSearch().Backend == "ollama" {
		return "OLLAMA_API_KEY"
	}
	return "TAVILY_API_KEY"
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
