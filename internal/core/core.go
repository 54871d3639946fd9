package core

import (
	"strings"
	"time"
)

// CandidateItem represents an unverified article reference produced by a
// collector (search provider, RSS feed, alert feed, trending board).
// Multiple candidates for the same real-world story may coexist until the
// deduplication stages run.
type CandidateItem struct {
	ID        string `json:"id"`        // Unique identifier for the candidate
	Title     string `json:"title"`     // Title as reported by the source
	URL       string `json:"url"`       // Link to the article
	Snippet   string `json:"snippet"`   // Short summary or search snippet
	Source    string `json:"source"`    // Source tag (e.g. "Google Alert", "arXiv")
	Published string `json:"published"` // Free-text publish date, may be empty
}

// VerifiedArticle is a candidate whose backing page was confirmed reachable,
// with readable body text extracted. Created from exactly one CandidateItem.
type VerifiedArticle struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Snippet   string `json:"snippet"`
	Content   string `json:"content"`   // Extracted body text, length-capped
	Published string `json:"published"` // Date carried over from the candidate
	// ScrapedPublishedDate is extracted independently from page metadata and
	// may disagree with Published.
	ScrapedPublishedDate string `json:"scraped_published_date,omitempty"`
}

// SummaryItem is the unit that flows into final newsletter assembly.
type SummaryItem struct {
	Headline    string `json:"Headline"`
	SummaryText string `json:"Summary_Text"`
	LiveLink    string `json:"Live_Link"` // Must resolve to a specific article
	Date        string `json:"Date,omitempty"`
	Relevance   int    `json:"Relevance,omitempty"` // 1-10, LLM-assigned
	Source      string `json:"Source,omitempty"`
}

// Well-known source tags assigned by the collectors. The curation filters
// key trust and priority decisions off these values.
const (
	SourceGoogleAlert    = "Google Alert"
	SourceRSS            = "RSS"
	SourceArxiv          = "arXiv"
	SourcePapersWithCode = "PapersWithCode"
	SourceHackerNews     = "Hacker News"
	SourceProductHunt    = "Product Hunt"
)

// ParseDate attempts to parse a free-text publish date as reported by a
// search provider, feed entry, or page metadata. Returns the zero time and
// false when no known layout matches.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 02 Jan 2006 15:04:05",
		"January 2, 2006",
		"Jan 2, 2006",
		"2 January 2006",
		"2 Jan 2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	// Timestamps sometimes carry trailing timezone noise no layout covers;
	// retry on the date-time prefix alone.
	if len(raw) > 19 {
		for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, raw[:19]); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
