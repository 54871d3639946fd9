package search

import (
	"context"
	"fmt"
	"time"

	"aibrief/internal/core"
)

// MockProvider implements Provider for testing purposes
type MockProvider struct {
	name    string
	results []core.CandidateItem
}

// NewMockProvider creates a new mock search provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name: "Mock",
		results: []core.CandidateItem{
			{
				ID:        "mock-1",
				URL:       "https://example.com/article1",
				Title:     "Example Article 1",
				Snippet:   "This is a mock search result for testing purposes.",
				Source:    "Mock",
				Published: time.Now().Add(-24 * time.Hour).Format(time.RFC3339),
			},
			{
				ID:        "mock-2",
				URL:       "https://test.org/article2",
				Title:     "Test Article 2",
				Snippet:   "Another mock search result with different content.",
				Source:    "Mock",
				Published: time.Now().Add(-48 * time.Hour).Format(time.RFC3339),
			},
			{
				ID:        "mock-3",
				URL:       "https://demo.net/article3",
				Title:     "Demo Article 3",
				Snippet:   "Third mock result to simulate multiple search results.",
				Source:    "Mock",
				Published: time.Now().Add(-72 * time.Hour).Format(time.RFC3339),
			},
		},
	}
}

// GetName returns the name of this provider
func (m *MockProvider) GetName() string {
	return m.name
}

// Search returns mock search results
func (m *MockProvider) Search(ctx context.Context, query string, config Config) ([]core.CandidateItem, error) {
	maxResults := config.MaxResults
	if maxResults <= 0 || maxResults > len(m.results) {
		maxResults = len(m.results)
	}

	results := make([]core.CandidateItem, maxResults)
	for i := 0; i < maxResults; i++ {
		result := m.results[i]
		result.Title = fmt.Sprintf("%s (for query: %s)", result.Title, query)
		results[i] = result
	}

	return results, nil
}

// SetResults allows customization of mock results for testing
func (m *MockProvider) SetResults(results []core.CandidateItem) {
	m.results = results
}

// SetName allows customization of provider name for testing
func (m *MockProvider) SetName(name string) {
	m.name = name
}
