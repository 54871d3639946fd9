// Package feeds collects newsletter candidates from RSS/Atom feeds and
// related public APIs: Google Alerts, curated vendor blogs, arXiv,
// PapersWithCode, Product Hunt and Hacker News.
package feeds

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"aibrief/internal/core"
	"aibrief/internal/curate"
	"aibrief/internal/logger"
)

// Fetcher collects candidate items from feed sources
type Fetcher struct {
	parser *gofeed.Parser
	client *http.Client
	now    func() time.Time

	// Endpoints are fields so tests can point them at local servers.
	arxivEndpoint       string
	pwcEndpoint         string
	productHuntEndpoint string
	hnEndpoint          string
}

// NewFetcher creates a feed fetcher with default endpoints
func NewFetcher() *Fetcher {
	client := &http.Client{Timeout: 15 * time.Second}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "aibrief feed reader/1.0"
	return &Fetcher{
		parser:              parser,
		client:              client,
		now:                 time.Now,
		arxivEndpoint:       "http://export.arxiv.org/api/query",
		pwcEndpoint:         "https://paperswithcode.com/trending?format=rss",
		productHuntEndpoint: "https://www.producthunt.com/feeds/topic/artificial-intelligence",
		hnEndpoint:          "https://hacker-news.firebaseio.com/v0",
	}
}

// FeedOptions controls how entries of a single feed are converted to candidates
type FeedOptions struct {
	SourceTag   string // Source label stamped on every item
	Limit       int    // Stop after this many accepted entries (0 = no cap)
	Days        int    // Reject entries older than this window (0 = no date filter)
	KeepUndated bool   // Keep entries without a publish date
	SnippetLen  int    // Truncate entry summaries to this many runes (0 = no cap)
}

// FetchFeed fetches one feed and converts its entries to candidate items.
// Entries without a publish date are skipped unless KeepUndated is set;
// blocked URLs are dropped.
func (f *Fetcher) FetchFeed(ctx context.Context, feedURL string, opts FeedOptions) ([]core.CandidateItem, error) {
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	var cutoff time.Time
	if opts.Days > 0 {
		cutoff = f.now().UTC().AddDate(0, 0, -opts.Days)
	}

	var items []core.CandidateItem
	for _, entry := range feed.Items {
		published := entryTime(entry)
		if published == nil {
			if !opts.KeepUndated {
				continue
			}
		} else if !cutoff.IsZero() && published.Before(cutoff) {
			continue
		}

		link := UnwrapGoogleRedirect(entry.Link)
		if link == "" || curate.IsBlockedURL(link) {
			continue
		}

		item := core.CandidateItem{
			ID:      uuid.NewString(),
			Title:   strings.TrimSpace(strings.ReplaceAll(entry.Title, "\n", " ")),
			URL:     link,
			Snippet: truncate(entry.Description, opts.SnippetLen),
			Source:  opts.SourceTag,
		}
		if published != nil {
			item.Published = published.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
		if opts.Limit > 0 && len(items) >= opts.Limit {
			break
		}
	}
	return items, nil
}

// entryTime prefers the published timestamp and falls back to updated
func entryTime(entry *gofeed.Item) *time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed
	}
	return entry.UpdatedParsed
}

// UnwrapGoogleRedirect resolves Google Alert redirect links
// (google.com/url?url=...) to the real article URL. Other URLs pass
// through unchanged.
func UnwrapGoogleRedirect(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	host := strings.ToLower(parsed.Hostname())
	if host != "google.com" && !strings.HasSuffix(host, ".google.com") {
		return rawURL
	}
	if parsed.Path != "/url" {
		return rawURL
	}
	if target := parsed.Query().Get("url"); target != "" {
		return target
	}
	return rawURL
}

// fetchMany walks a list of feed URLs until limit items are collected.
// Individual feed failures are logged and skipped.
func (f *Fetcher) fetchMany(ctx context.Context, urls []string, limit int, opts FeedOptions) []core.CandidateItem {
	var items []core.CandidateItem
	for _, feedURL := range urls {
		remaining := 0
		if limit > 0 {
			remaining = limit - len(items)
			if remaining <= 0 {
				break
			}
		}
		perFeed := opts
		perFeed.Limit = remaining
		fetched, err := f.FetchFeed(ctx, feedURL, perFeed)
		if err != nil {
			logger.Warn("Feed fetch failed", "url", feedURL, "error", err.Error())
			continue
		}
		items = append(items, fetched...)
	}
	return curate.DedupeIdentity(items)
}

// truncate caps a string at n runes; n <= 0 means no cap
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
