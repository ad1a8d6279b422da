package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Protocol-Lattice/waypoint/src/intent"
	"github.com/Protocol-Lattice/waypoint/src/models"
	"github.com/Protocol-Lattice/waypoint/src/tools"
)

// Config is read once at process start and passed to every constructor.
type Config struct {
	// Language model
	LLMProvider     string  `envconfig:"LLM_PROVIDER" default:"ollama"` // ollama, openai, anthropic, gemini, dummy
	LLMModel        string  `envconfig:"LLM_MODEL" default:"gpt-oss:20b-cloud"`
	LLMTemperature  float64 `envconfig:"LLM_TEMPERATURE" default:"0"`
	LLMPromptPrefix string  `envconfig:"LLM_PROMPT_PREFIX" default:""`
	OllamaHost      string  `envconfig:"OLLAMA_HOST" default:"http://localhost:11434"`
	OllamaAPIKey    string  `envconfig:"OLLAMA_API_KEY"`
	OpenAIAPIKey    string  `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL   string  `envconfig:"OPENAI_BASE_URL"`
	AnthropicAPIKey string  `envconfig:"ANTHROPIC_API_KEY"`
	GeminiAPIKey    string  `envconfig:"GEMINI_API_KEY"`

	// Completion cache (0 disables it)
	LLMCacheSize int           `envconfig:"LLM_CACHE_SIZE" default:"0"`
	LLMCacheTTL  time.Duration `envconfig:"LLM_CACHE_TTL" default:"5m"`
	LLMCachePath string        `envconfig:"LLM_CACHE_PATH" default:""`

	// Web search
	WebSearchBackend    string `envconfig:"WEB_SEARCH_BACKEND" default:"tavily"` // tavily, ollama
	WebSearchMaxResults int    `envconfig:"WEB_SEARCH_MAX_RESULTS" default:"5"`
	TavilyAPIKey        string `envconfig:"TAVILY_API_KEY"`

	// Google Maps
	GoogleMapsAPIKey string `envconfig:"GOOGLE_MAPS_API_KEY"`
	PlacesRadius     uint   `envconfig:"PLACES_RADIUS" default:"5000"` // meters
	DirectionsMode   string `envconfig:"DIRECTIONS_MODE" default:"driving"`

	// Routing vocabulary, in priority order
	Languages []string `envconfig:"LANGUAGES" default:"en,es"`

	// Observability
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty   bool   `envconfig:"LOG_PRETTY" default:"false"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:""`
}

// Load reads configuration from the environment, after loading .env if present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv reads configuration without touching .env files.
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no component can work with. Missing tool
// credentials are allowed: the affected tool reports itself as disabled.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LLMProvider) {
	case "ollama", "openai", "anthropic", "claude", "gemini", "google", "dummy":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	if strings.TrimSpace(c.LLMModel) == "" && !strings.EqualFold(c.LLMProvider, "dummy") {
		return fmt.Errorf("LLM_MODEL is required")
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be within [0, 2], got %v", c.LLMTemperature)
	}
	if c.LLMCacheSize < 0 {
		return fmt.Errorf("LLM_CACHE_SIZE must not be negative")
	}
	switch strings.ToLower(c.WebSearchBackend) {
	case "tavily", "ollama":
	default:
		return fmt.Errorf("unsupported WEB_SEARCH_BACKEND %q", c.WebSearchBackend)
	}
	if c.WebSearchMaxResults <= 0 {
		return fmt.Errorf("WEB_SEARCH_MAX_RESULTS must be positive")
	}
	switch strings.ToLower(c.DirectionsMode) {
	case "driving", "walking", "bicycling", "transit":
	default:
		return fmt.Errorf("unsupported DIRECTIONS_MODE %q", c.DirectionsMode)
	}
	if _, err := c.Lexicons(); err != nil {
		return err
	}
	return nil
}

// Model returns the provider settings for the configured LLM.
func (c *Config) Model() models.Config {
	mc := models.Config{
		Provider:     strings.ToLower(c.LLMProvider),
		Model:        c.LLMModel,
		PromptPrefix: c.LLMPromptPrefix,
		Temperature:  c.LLMTemperature,
	}
	switch mc.Provider {
	case "ollama":
		mc.Host = c.OllamaHost
	case "openai":
		mc.APIKey = c.OpenAIAPIKey
		mc.Host = c.OpenAIBaseURL
	case "anthropic", "claude":
		mc.APIKey = c.AnthropicAPIKey
	case "gemini", "google":
		mc.APIKey = c.GeminiAPIKey
	}
	return mc
}

// WebSearch returns the search adapter settings with the key for the chosen backend.
func (c *Config) WebSearch() tools.WebSearchConfig {
	ws := tools.WebSearchConfig{
		Backend:    strings.ToLower(c.WebSearchBackend),
		MaxResults: c.WebSearchMaxResults,
	}
	switch ws.Backend {
	case "ollama":
		ws.APIKey = c.OllamaAPIKey
	default:
		ws.APIKey = c.TavilyAPIKey
	}
	return ws
}

// Lexicons resolves Languages into routing vocabularies.
func (c *Config) Lexicons() ([]intent.Lexicon, error) {
	out := make([]intent.Lexicon, 0, len(c.Languages))
	for _, name := range c.Languages {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		lx, ok := intent.LexiconByName(name)
		if !ok {
			return nil, fmt.Errorf("unsupported language %q in LANGUAGES", name)
		}
		out = append(out, lx)
	}
	if len(out) == 0 {
		out = append(out, intent.English)
	}
	return out, nil
}
