package pipeline

import (
	"context"
	"time"

	"aibrief/internal/core"
	"aibrief/internal/curate"
	"aibrief/internal/feeds"
	"aibrief/internal/logger"
	"aibrief/internal/search"
)

// Collectors gathers candidate items for each section from its mix of
// alert feeds, curated feeds, public APIs and the search provider.
type Collectors struct {
	feeds        *feeds.Fetcher
	search       search.Provider
	maxPerStream int
}

// NewCollectors creates the per-section collector set. maxPerStream
// overrides the search result count when positive.
func NewCollectors(fetcher *feeds.Fetcher, provider search.Provider, maxPerStream int) *Collectors {
	return &Collectors{feeds: fetcher, search: provider, maxPerStream: maxPerStream}
}

// Collect gathers candidates for one section. Upstream failures yield
// fewer candidates, never an error; a section with no reachable source
// simply starts its pipeline empty.
func (c *Collectors) Collect(ctx context.Context, section core.SectionConfig, days int) []core.CandidateItem {
	var hits []core.CandidateItem

	switch section.Key {
	case core.SectionTrending:
		hits = append(hits, c.feeds.FetchGoogleAlerts(ctx, section.Key, 10, days)...)
		hits = append(hits, c.feeds.FetchHackerNewsTrending(ctx, 20, days)...)
		hits = append(hits, c.feeds.FetchProductHuntTrending(ctx, 10, days)...)
		hits = append(hits, c.feeds.FetchCuratedFeeds(ctx, 15, days)...)
		hits = append(hits, c.searchStream(ctx, section, days)...)
	case core.SectionCanadian, core.SectionGlobal:
		hits = append(hits, c.feeds.FetchGoogleAlerts(ctx, section.Key, 10, days)...)
		hits = append(hits, c.searchStream(ctx, section, days)...)
	case core.SectionAgri:
		hits = append(hits, c.feeds.FetchGoogleAlerts(ctx, section.Key, 15, days)...)
		hits = append(hits, c.searchStream(ctx, section, days)...)
	case core.SectionResearchPlain:
		hits = c.feeds.FetchArxivRecent(ctx, days)
	case core.SectionAIProgress:
		hits = c.feeds.FetchPapersWithCodeTrending(ctx, 15)
	default:
		// events, events_public, deep_dive and any future section are
		// pure search streams
		hits = c.searchStream(ctx, section, days)
	}

	return curate.DedupeIdentity(hits)
}

// searchStream queries the search provider for a section and applies
// the blocklist and date window to its results
func (c *Collectors) searchStream(ctx context.Context, section core.SectionConfig, days int) []core.CandidateItem {
	maxResults := c.maxPerStream
	if maxResults <= 0 {
		maxResults = section.Limit * 3
	}

	items, err := c.search.Search(ctx, section.Query, search.Config{
		MaxResults:     maxResults,
		Days:           days,
		IncludeDomains: section.IncludeDomains,
	})
	if err != nil {
		logger.Warn("Search stream failed", "section", string(section.Key), "error", err.Error())
		return nil
	}

	items = curate.FilterBlocked(items)
	items = curate.FilterByDate(items, days, time.Now().UTC())
	return items
}
