package search

import (
	"context"

	"aibrief/internal/core"
)

// Provider defines the unified interface for search providers
type Provider interface {
	// Search performs a search and returns candidate items for curation
	Search(ctx context.Context, query string, config Config) ([]core.CandidateItem, error)

	// GetName returns the name of the search provider
	GetName() string
}

// Config holds configuration for search requests
type Config struct {
	MaxResults     int      // Maximum number of results to return
	Days           int      // Only return results newer than this many days
	IncludeDomains []string // Restrict results to these domains when non-empty
}

// ProviderType represents the type of search provider
type ProviderType string

const (
	ProviderTypeTavily ProviderType = "tavily"
	ProviderTypeMock   ProviderType = "mock"
)

// ProviderFactory creates search providers based on type and configuration
type ProviderFactory struct{}

// NewProviderFactory creates a new provider factory
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

// CreateProvider creates a search provider of the specified type
func (f *ProviderFactory) CreateProvider(providerType ProviderType, config map[string]string) (Provider, error) {
	switch providerType {
	case ProviderTypeTavily:
		apiKey, exists := config["api_key"]
		if !exists || apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		endpoint := config["endpoint"]
		return NewTavilyProvider(apiKey, endpoint), nil
	case ProviderTypeMock:
		return NewMockProvider(), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// GetAvailableProviders returns a list of available provider types
func (f *ProviderFactory) GetAvailableProviders() []ProviderType {
	return []ProviderType{
		ProviderTypeTavily,
		ProviderTypeMock,
	}
}
