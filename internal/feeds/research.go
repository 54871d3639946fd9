package feeds

import (
	"context"
	"fmt"

	"aibrief/internal/core"
	"aibrief/internal/logger"
)

const (
	arxivQuery      = "cat:cs.AI+OR+cat:cs.LG+OR+cat:stat.ML"
	arxivMaxResults = 25
	arxivKeep       = 12
)

// FetchArxivRecent fetches recent AI/ML submissions from the arXiv API.
// The API serves Atom, so the regular feed path applies.
func (f *Fetcher) FetchArxivRecent(ctx context.Context, days int) []core.CandidateItem {
	queryURL := fmt.Sprintf("%s?search_query=%s&sortBy=submittedDate&sortOrder=descending&max_results=%d",
		f.arxivEndpoint, arxivQuery, arxivMaxResults)

	items, err := f.FetchFeed(ctx, queryURL, FeedOptions{
		SourceTag:  core.SourceArxiv,
		Limit:      arxivKeep,
		Days:       days,
		SnippetLen: 600,
	})
	if err != nil {
		logger.Warn("arXiv fetch failed", "error", err.Error())
		return nil
	}
	return items
}

// FetchPapersWithCodeTrending fetches trending papers. The trending feed
// carries no publish dates, so entries are kept undated.
func (f *Fetcher) FetchPapersWithCodeTrending(ctx context.Context, limit int) []core.CandidateItem {
	items, err := f.FetchFeed(ctx, f.pwcEndpoint, FeedOptions{
		SourceTag:   core.SourcePapersWithCode,
		Limit:       limit,
		KeepUndated: true,
		SnippetLen:  400,
	})
	if err != nil {
		logger.Warn("PapersWithCode fetch failed", "error", err.Error())
		return nil
	}
	return items
}
