// Package sourcequality tracks domain-level historical relevance and reader
// feedback, producing a ranking boost used by the curation filters.
package sourcequality

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"aibrief/internal/logger"
)

const (
	// scoreWindow is the rolling window for relevance history.
	scoreWindow = 90 * 24 * time.Hour
	// feedbackWindow is the shorter window during which thumbs-down
	// feedback penalizes a domain.
	feedbackWindow = 7 * 24 * time.Hour
	// flagPenalty is subtracted from the boost per recent down-rating.
	flagPenalty = 0.2

	qualityFile  = "source_quality.json"
	feedbackFile = "feedback.json"
)

// RatingDown is the feedback rating that penalizes a domain.
const RatingDown = "down"

// ScoreEntry is one recorded relevance observation for a domain.
type ScoreEntry struct {
	Domain    string  `json:"domain"`
	Score     int     `json:"score"`
	Timestamp float64 `json:"timestamp"` // Unix seconds
}

// FeedbackEntry is one recorded reader rating for a domain.
type FeedbackEntry struct {
	Domain    string  `json:"domain"`
	URL       string  `json:"url"`
	Rating    string  `json:"rating"` // "up" or "down"
	Timestamp float64 `json:"timestamp"`
}

// DomainStats summarizes a domain's recent history.
type DomainStats struct {
	Count    int     `json:"count"`
	AvgScore float64 `json:"avg_score"`
	Boost    float64 `json:"boost"`
}

// Tracker is the file-backed source-quality ledger. Read-append-write of
// the underlying log is a single logical transaction guarded by one mutex;
// write failures are logged and ignored.
type Tracker struct {
	mu           sync.Mutex
	qualityPath  string
	feedbackPath string
	now          func() time.Time
}

// NewTracker creates a tracker rooted at dir. When dir is not writable the
// tracker falls back to the OS temp directory, matching the behavior of
// read-only serverless filesystems.
func NewTracker(dir string) *Tracker {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		dir = filepath.Join(os.TempDir(), "aibrief-logs")
		_ = os.MkdirAll(dir, 0o755)
	}
	return &Tracker{
		qualityPath:  filepath.Join(dir, qualityFile),
		feedbackPath: filepath.Join(dir, feedbackFile),
		now:          time.Now,
	}
}

// Record appends a relevance score observation for the URL's domain and
// prunes entries older than the rolling window.
func (t *Tracker) Record(rawURL string, score int) {
	domain := ExtractDomain(rawURL)
	if domain == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var entries []ScoreEntry
	loadJSON(t.qualityPath, &entries)
	entries = append(entries, ScoreEntry{
		Domain:    domain,
		Score:     score,
		Timestamp: float64(t.now().Unix()),
	})

	cutoff := float64(t.now().Add(-scoreWindow).Unix())
	kept := entries[:0]
	for _, e := range entries {
		if e.Timestamp > cutoff {
			kept = append(kept, e)
		}
	}
	saveJSON(t.qualityPath, kept)
}

// Boost returns the quality boost in [0,1] for the URL's domain.
// Unknown domains score 0; consistently relevant domains approach 1.
// Recent down-ratings subtract a penalty.
func (t *Tracker) Boost(rawURL string) float64 {
	domain := ExtractDomain(rawURL)
	if domain == "" {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.boostLocked(domain)
}

func (t *Tracker) boostLocked(domain string) float64 {
	var entries []ScoreEntry
	loadJSON(t.qualityPath, &entries)

	cutoff := float64(t.now().Add(-scoreWindow).Unix())
	var sum, count float64
	for _, e := range entries {
		if e.Domain == domain && e.Timestamp > cutoff {
			sum += float64(e.Score)
			count++
		}
	}
	if count == 0 {
		return 0
	}

	avg := sum / count
	// Scores run 1-10; only above-average history earns a boost.
	boost := (avg - 5.0) / 5.0
	if boost < 0 {
		boost = 0
	}
	boost -= t.penaltyLocked(domain)
	if boost < 0 {
		boost = 0
	}
	return boost
}

func (t *Tracker) penaltyLocked(domain string) float64 {
	var entries []FeedbackEntry
	loadJSON(t.feedbackPath, &entries)

	cutoff := float64(t.now().Add(-feedbackWindow).Unix())
	flags := 0
	for _, e := range entries {
		if e.Domain == domain && e.Rating == RatingDown && e.Timestamp > cutoff {
			flags++
		}
	}
	penalty := float64(flags) * flagPenalty
	if penalty > 1.0 {
		penalty = 1.0
	}
	return penalty
}

// RecordFeedback appends a reader rating ("up" or "down") for the URL's
// domain.
func (t *Tracker) RecordFeedback(rawURL, rating string) {
	domain := ExtractDomain(rawURL)
	if domain == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var entries []FeedbackEntry
	loadJSON(t.feedbackPath, &entries)
	entries = append(entries, FeedbackEntry{
		Domain:    domain,
		URL:       rawURL,
		Rating:    rating,
		Timestamp: float64(t.now().Unix()),
	})
	saveJSON(t.feedbackPath, entries)
}

// DomainStats returns summary stats for all tracked domains.
func (t *Tracker) DomainStats() map[string]DomainStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	var entries []ScoreEntry
	loadJSON(t.qualityPath, &entries)

	cutoff := float64(t.now().Add(-scoreWindow).Unix())
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, e := range entries {
		if e.Timestamp <= cutoff {
			continue
		}
		sums[e.Domain] += float64(e.Score)
		counts[e.Domain]++
	}

	stats := make(map[string]DomainStats, len(counts))
	for domain, count := range counts {
		stats[domain] = DomainStats{
			Count:    count,
			AvgScore: sums[domain] / float64(count),
			Boost:    t.boostLocked(domain),
		}
	}
	return stats
}

// ExtractDomain returns the lowercased hostname of a URL with any leading
// "www." stripped, or "" when the URL cannot be parsed.
func ExtractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func loadJSON(path string, out any) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("Discarding unreadable quality data", "path", path)
	}
}

func saveJSON(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Warn("Could not write source quality data", "path", path)
	}
}
