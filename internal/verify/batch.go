package verify

import (
	"context"
	"sync"

	"aibrief/internal/core"
)

const defaultWorkers = 10

// Snippet-fallback thresholds: a failed fetch still yields a degraded
// article when the candidate's own snippet is substantial enough.
const (
	snippetFallbackFetch  = 80
	snippetFallbackScrape = 40
)

// SkipFunc records why a candidate was dropped. Implementations must be
// safe for concurrent use; batch workers call it from multiple goroutines.
type SkipFunc func(reason, url string)

// Candidate verifies a single candidate. The bool result reports whether a
// usable article was produced; failures are recorded via skip and are
// never fatal.
func (v *Verifier) Candidate(ctx context.Context, item core.CandidateItem, skip SkipFunc) (core.VerifiedArticle, bool) {
	if skip == nil {
		skip = func(string, string) {}
	}
	if item.URL == "" {
		skip("missing_url", "")
		return core.VerifiedArticle{}, false
	}

	html, err := v.FetchHTML(ctx, item.URL)
	if err != nil {
		// Link unreachable or rejected — but a substantial feed snippet is
		// still worth carrying as degraded content.
		if len(item.Snippet) > snippetFallbackFetch {
			skip("verify_failed_using_snippet", item.URL)
			return core.VerifiedArticle{
				Title:     item.Title,
				URL:       item.URL,
				Snippet:   item.Snippet,
				Content:   item.Snippet,
				Published: item.Published,
			}, true
		}
		skip("verify_failed", item.URL)
		return core.VerifiedArticle{}, false
	}

	content := ExtractText(html, item.URL)
	if len(content) < minTextLength {
		if len(item.Snippet) > snippetFallbackScrape {
			skip("scrape_failed_using_snippet", item.URL)
			content = item.Snippet
		} else {
			skip("scrape_failed", item.URL)
			return core.VerifiedArticle{}, false
		}
	}

	return core.VerifiedArticle{
		Title:                item.Title,
		URL:                  item.URL,
		Snippet:              item.Snippet,
		Content:              content,
		Published:            item.Published,
		ScrapedPublishedDate: ExtractPublishedDate(html),
	}, true
}

// Batch verifies candidates with bounded parallelism and returns up to
// target verified articles. Once the target is reached the remaining
// in-flight work is cancelled and its results discarded; skip logging from
// abandoned workers stays safe because SkipFunc is concurrency-safe.
func (v *Verifier) Batch(ctx context.Context, candidates []core.CandidateItem, target int, skip SkipFunc) []core.VerifiedArticle {
	if target <= 0 || len(candidates) == 0 {
		return nil
	}
	// Fetch a bit more than the target so verification failures still
	// leave enough to fill it.
	if max := target * 3; len(candidates) > max {
		candidates = candidates[:max]
	}

	workers := v.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan core.CandidateItem)
	results := make(chan core.VerifiedArticle)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				article, ok := v.Candidate(ctx, item, skip)
				if !ok {
					continue
				}
				select {
				case results <- article:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, item := range candidates {
			select {
			case jobs <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	verified := make([]core.VerifiedArticle, 0, target)
	for article := range results {
		verified = append(verified, article)
		if len(verified) >= target {
			cancel()
			break
		}
	}
	return verified
}
