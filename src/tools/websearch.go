package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alpkeskin/gotoon"
)

const (
	DefaultTavilyEndpoint       = "https://api.tavily.com/search"
	DefaultOllamaSearchEndpoint = "https://ollama.com/api/web_search"

	defaultMaxResults = 5
	// maxSearchChars bounds the text handed to the model.
	maxSearchChars = 8000
)

// SearchResult is one web hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Searcher is a web search backend.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// WebSearchConfig selects and authenticates the search backend.
type WebSearchConfig struct {
	Backend    string // "tavily" or "ollama"
	APIKey     string
	Endpoint   string
	MaxResults int
	HTTPClient *http.Client
}

// WebSearchTool answers general information and news queries.
type WebSearchTool struct {
	searcher       Searcher
	backend        string
	maxResults     int
	missingMessage string
}

// NewWebSearchTool builds the adapter for cfg. Without an API key the tool
// stays registered but every call reports the missing credential.
func NewWebSearchTool(cfg WebSearchConfig) (*WebSearchTool, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = "tavily"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	var (
		searcher Searcher
		envVar   string
	)
	switch backend {
	case "tavily":
		envVar = "TAVILY_API_KEY"
		if cfg.APIKey != "" {
			searcher = &TavilySearcher{APIKey: cfg.APIKey, Endpoint: cfg.Endpoint, HTTPClient: client}
		}
	case "ollama":
		envVar = "OLLAMA_API_KEY"
		if cfg.APIKey != "" {
			searcher = &OllamaSearcher{APIKey: cfg.APIKey, Endpoint: cfg.Endpoint, HTTPClient: client}
		}
	default:
		return nil, fmt.Errorf("unknown web search backend: %s", cfg.Backend)
	}

	t := NewWebSearchToolWith(searcher, cfg.MaxResults)
	t.backend = backend
	t.missingMessage = fmt.Sprintf("Please add your %s to the .env file to enable web search.", envVar)
	return t, nil
}

// NewWebSearchToolWith wires an explicit backend. A nil searcher disables the tool.
func NewWebSearchToolWith(searcher Searcher, maxResults int) *WebSearchTool {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &WebSearchTool{
		searcher:       searcher,
		backend:        "custom",
		maxResults:     maxResults,
		missingMessage: "Web search is disabled: no search API key is configured.",
	}
}

func (t *WebSearchTool) Spec() Spec {
	return Spec{
		Name:        NameWebSearch,
		Description: "Searches the web for general information, news, current events and unstructured data (" + t.backend + ").",
		Enabled:     t.searcher != nil,
	}
}

func (t *WebSearchTool) Invoke(ctx context.Context, req Request) Response {
	r, isWeb := req.(WebSearchRequest)
	if !isWeb {
		return badRequest(NameWebSearch, req)
	}
	if t.searcher == nil {
		return missing(t.missingMessage)
	}

	limit := r.MaxResults
	if limit <= 0 {
		limit = t.maxResults
	}
	results, err := t.searcher.Search(ctx, r.Query, limit)
	if err != nil {
		return failed(fmt.Sprintf("Error running web search: %v", err))
	}
	if len(results) == 0 {
		return empty("No results found.")
	}
	if len(results) > limit {
		results = results[:limit]
	}

	text, err := gotoon.Encode(map[string]any{"results": toonRows(results)})
	if err != nil {
		return failed(fmt.Sprintf("Error formatting web search results: %v", err))
	}
	return ok(truncate(text, maxSearchChars))
}

// toonRows flattens results into plain maps so the encoder can emit them as
// one tabular array.
func toonRows(results []SearchResult) []map[string]any {
	rows := make([]map[string]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, map[string]any{"title": r.Title, "url": r.URL, "content": r.Content})
	}
	return rows
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

// TavilySearcher calls the Tavily search API.
type TavilySearcher struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client
}

func (s *TavilySearcher) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultTavilyEndpoint
	}
	var data struct {
		Results []SearchResult `json:"results"`
	}
	body := map[string]any{"query": query, "max_results": maxResults}
	if err := postJSON(ctx, s.HTTPClient, endpoint, s.APIKey, body, &data); err != nil {
		return nil, err
	}
	return data.Results, nil
}

// OllamaSearcher calls Ollama's hosted web search API.
type OllamaSearcher struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client
}

func (s *OllamaSearcher) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultOllamaSearchEndpoint
	}
	var data struct {
		Results []SearchResult `json:"results"`
	}
	body := map[string]any{"query": query, "max_results": maxResults}
	if err := postJSON(ctx, s.HTTPClient, endpoint, s.APIKey, body, &data); err != nil {
		return nil, err
	}
	return data.Results, nil
}

func postJSON(ctx context.Context, client *http.Client, endpoint, apiKey string, body, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, buf)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvocationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%w: %s %s", ErrInvocationFailed, resp.Status, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
