package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"aibrief/internal/core"
	"aibrief/internal/curate"
	"aibrief/internal/logger"
)

// aiKeywords gates Hacker News titles; the firehose is mostly off-topic
var aiKeywords = []string{"ai", "artificial", "llm", "model", "gpt", "transformer", "openai", "anthropic", "gemini"}

type hnStory struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Time  int64  `json:"time"`
}

// FetchHackerNewsTrending fetches AI stories from the Hacker News API,
// merging the top and best story lists.
func (f *Fetcher) FetchHackerNewsTrending(ctx context.Context, limit, days int) []core.CandidateItem {
	cutoff := f.now().UTC().AddDate(0, 0, -days).Unix()

	topIDs, err := f.fetchStoryIDs(ctx, "topstories", limit*2)
	if err != nil {
		logger.Warn("Hacker News top stories fetch failed", "error", err.Error())
		return nil
	}
	bestIDs, err := f.fetchStoryIDs(ctx, "beststories", limit)
	if err != nil {
		bestIDs = nil
	}

	seen := make(map[int]bool)
	var ids []int
	for _, id := range append(topIDs, bestIDs...) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	var items []core.CandidateItem
	for _, id := range ids {
		story, err := f.fetchStory(ctx, id)
		if err != nil {
			continue
		}
		if story.Title == "" || !matchesAIKeywords(story.Title) {
			continue
		}
		if story.Time < cutoff {
			continue
		}
		link := story.URL
		if link == "" {
			link = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", id)
		}
		if curate.IsBlockedURL(link) {
			continue
		}
		items = append(items, core.CandidateItem{
			ID:        uuid.NewString(),
			Title:     story.Title,
			URL:       link,
			Snippet:   "Hacker News trending",
			Source:    core.SourceHackerNews,
			Published: time.Unix(story.Time, 0).UTC().Format(time.RFC3339),
		})
		if len(items) >= limit {
			break
		}
	}
	return items
}

func (f *Fetcher) fetchStoryIDs(ctx context.Context, list string, max int) ([]int, error) {
	var ids []int
	if err := f.getJSON(ctx, fmt.Sprintf("%s/%s.json", f.hnEndpoint, list), &ids); err != nil {
		return nil, err
	}
	if len(ids) > max {
		ids = ids[:max]
	}
	return ids, nil
}

func (f *Fetcher) fetchStory(ctx context.Context, id int) (*hnStory, error) {
	var story hnStory
	if err := f.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", f.hnEndpoint, id), &story); err != nil {
		return nil, err
	}
	return &story, nil
}

func (f *Fetcher) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed with status: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func matchesAIKeywords(title string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range aiKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
