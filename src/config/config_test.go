package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LLM_PROVIDER", "LLM_MODEL", "LLM_TEMPERATURE", "LLM_PROMPT_PREFIX", "OLLAMA_HOST",
		"OLLAMA_API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL", "ANTHROPIC_API_KEY", "GEMINI_API_KEY",
		"LLM_CACHE_SIZE", "LLM_CACHE_TTL", "LLM_CACHE_PATH",
		"WEB_SEARCH_BACKEND", "WEB_SEARCH_MAX_RESULTS", "TAVILY_API_KEY",
		"GOOGLE_MAPS_API_KEY", "PLACES_RADIUS", "DIRECTIONS_MODE", "LANGUAGES",
		"LOG_LEVEL", "LOG_PRETTY", "METRICS_ADDR",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.LLMProvider)
	assert.Equal(t, "gpt-oss:20b-cloud", cfg.LLMModel)
	assert.Equal(t, 0.0, cfg.LLMTemperature)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaHost)
	assert.Equal(t, "tavily", cfg.WebSearchBackend)
	assert.Equal(t, 5, cfg.WebSearchMaxResults)
	assert.Equal(t, uint(5000), cfg.PlacesRadius)
	assert.Equal(t, "driving", cfg.DirectionsMode)
	assert.Equal(t, []string{"en", "es"}, cfg.Languages)
	assert.Equal(t, 5*time.Minute, cfg.LLMCacheTTL)
	assert.Empty(t, cfg.GoogleMapsAPIKey)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("WEB_SEARCH_BACKEND", "ollama")
	t.Setenv("OLLAMA_API_KEY", "ollama-key")
	t.Setenv("TAVILY_API_KEY", "tvly-unused")
	t.Setenv("LANGUAGES", "es")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	mc := cfg.Model()
	assert.Equal(t, "openai", mc.Provider)
	assert.Equal(t, "sk-test", mc.APIKey)

	ws := cfg.WebSearch()
	assert.Equal(t, "ollama", ws.Backend)
	assert.Equal(t, "ollama-key", ws.APIKey)

	lexicons, err := cfg.Lexicons()
	require.NoError(t, err)
	require.Len(t, lexicons, 1)
	assert.Equal(t, "es", lexicons[0].Name)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"provider":    {"LLM_PROVIDER": "mystery"},
		"temperature": {"LLM_TEMPERATURE": "3"},
		"backend":     {"WEB_SEARCH_BACKEND": "bing"},
		"mode":        {"DIRECTIONS_MODE": "flying"},
		"language":    {"LANGUAGES": "en,fr"},
		"results":     {"WEB_SEARCH_MAX_RESULTS": "0"},
		"cache":       {"LLM_CACHE_SIZE": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}

func TestModelPicksProviderCredentials(t *testing.T) {
	cfg := &Config{
		LLMProvider:     "anthropic",
		LLMModel:        "claude-sonnet-4-5",
		AnthropicAPIKey: "ant-key",
		OpenAIAPIKey:    "sk-other",
		LLMTemperature:  0.2,
	}
	mc := cfg.Model()
	assert.Equal(t, "ant-key", mc.APIKey)
	assert.Equal(t, 0.2, mc.Temperature)
	assert.Empty(t, mc.Host)
}
