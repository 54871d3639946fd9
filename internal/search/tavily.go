package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"aibrief/internal/core"
	"aibrief/internal/logger"
)

const defaultTavilyEndpoint = "https://api.tavily.com/search"

// TavilyProvider implements Provider using the Tavily search API
type TavilyProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewTavilyProvider creates a new Tavily search provider. An empty endpoint
// uses the public API.
func NewTavilyProvider(apiKey, endpoint string) *TavilyProvider {
	if endpoint == "" {
		endpoint = defaultTavilyEndpoint
	}
	return &TavilyProvider{
		apiKey:   apiKey,
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetName returns the name of this provider
func (t *TavilyProvider) GetName() string {
	return "Tavily"
}

type tavilyRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	MaxResults     int      `json:"max_results"`
	SearchDepth    string   `json:"search_depth"`
	Days           int      `json:"days,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		Content       string `json:"content"`
		PublishedDate string `json:"published_date"`
	} `json:"results"`
}

// Search performs a search using the Tavily API
func (t *TavilyProvider) Search(ctx context.Context, query string, config Config) ([]core.CandidateItem, error) {
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	payload := tavilyRequest{
		APIKey:         t.apiKey,
		Query:          query,
		MaxResults:     maxResults,
		SearchDepth:    "advanced",
		Days:           config.Days,
		IncludeDomains: config.IncludeDomains,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode Tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create Tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute Tavily request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, ErrProviderUnavailable
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("tavily request failed with status: %d", resp.StatusCode)
	}

	var apiResponse tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse Tavily response: %w", err)
	}

	var items []core.CandidateItem
	for _, result := range apiResponse.Results {
		if result.URL == "" {
			continue
		}
		items = append(items, core.CandidateItem{
			ID:        uuid.NewString(),
			Title:     strings.TrimSpace(result.Title),
			URL:       result.URL,
			Snippet:   strings.TrimSpace(result.Content),
			Source:    "Tavily",
			Published: result.PublishedDate,
		})
	}

	logger.Info("Tavily search completed", "query", query, "results_found", len(items))

	return items, nil
}
