// Package pipeline orchestrates the per-section curation pipeline:
// collect, curate, verify, deduplicate, rerank, summarize, with a
// retry ladder that widens the time window when a section comes up
// empty.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aibrief/internal/core"
	"aibrief/internal/curate"
	"aibrief/internal/dedup"
	"aibrief/internal/logger"
	"aibrief/internal/rerank"
	"aibrief/internal/sourcequality"
	"aibrief/internal/summarize"
	"aibrief/internal/verify"
)

// relaxedThresholdFloor is the lowest the relevance threshold may drop
// on the final retry attempt
const relaxedThresholdFloor = 4

// scrapedDateGrace buffers the scraped-date re-filter against timezone
// differences and late scraping
const scrapedDateGrace = 24 * time.Hour

// TextGenerator produces text from a system instruction and user prompt
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Options controls a newsletter run
type Options struct {
	Days        int    // Default search window in days
	MaxAttempts int    // Retry ladder depth per section (1 in latency-bound deployments)
	Workers     int    // Concurrent section workers
	Language    string // "en" or "fr"
}

// Pipeline wires the pipeline stages together for a run
type Pipeline struct {
	collectors *Collectors
	verifier   *verify.Verifier
	gen        TextGenerator
	tracker    *sourcequality.Tracker
	skipLog    *SkipLog
	opts       Options
	now        func() time.Time
}

// New creates a pipeline. tracker and skipLog may not be nil; pass a
// tracker on a throwaway directory and a log on an unwritable path to
// disable their effects.
func New(collectors *Collectors, verifier *verify.Verifier, gen TextGenerator, tracker *sourcequality.Tracker, skipLog *SkipLog, opts Options) *Pipeline {
	if opts.Days <= 0 {
		opts.Days = 7
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Pipeline{
		collectors: collectors,
		verifier:   verifier,
		gen:        gen,
		tracker:    tracker,
		skipLog:    skipLog,
		opts:       opts,
		now:        time.Now,
	}
}

// RunSection executes the full pipeline for one section. Each attempt
// is independent; the first attempt yielding items with a live link
// wins. An empty result after all attempts means the section renders
// empty, never an error.
func (p *Pipeline) RunSection(ctx context.Context, section core.SectionConfig) []core.SummaryItem {
	baseDays := section.WindowDays(p.opts.Days)

	for attempt := 0; attempt < p.opts.MaxAttempts; attempt++ {
		days := baseDays * (1 + attempt)

		threshold := section.RelevanceThreshold
		if attempt > 0 && attempt == p.opts.MaxAttempts-1 {
			threshold = section.RelevanceThreshold - 2
			if threshold < relaxedThresholdFloor {
				threshold = relaxedThresholdFloor
			}
		}

		runCfg := section
		runCfg.Days = days
		runCfg.RelevanceThreshold = threshold

		items := p.runAttempt(ctx, runCfg, days)
		if len(items) > 0 {
			if attempt > 0 {
				logger.Info("Section populated on retry",
					"section", string(section.Key), "attempt", attempt, "days", days, "threshold", threshold)
			}
			p.recordSourceQuality(items)
			return items
		}
	}
	return nil
}

// runAttempt is one pass through the pipeline stages
func (p *Pipeline) runAttempt(ctx context.Context, cfg core.SectionConfig, days int) []core.SummaryItem {
	now := p.now().UTC()

	hits := p.collectors.Collect(ctx, cfg, days)

	// Curation passes in their fixed order: filters before reorders so
	// scores are never computed over items that get dropped, reorders
	// stable so each earlier pass survives as the tie-break chain.
	hits = curate.FilterBlocked(hits)
	hits = curate.FilterExcludedDomains(hits, cfg.ExcludeDomains)
	hits = curate.FilterRejectKeywords(hits, cfg.RejectKeywords)
	hits = curate.FilterByDate(hits, days, now)
	hits = curate.BoostByKeywords(hits, cfg.BoostKeywords)
	hits = curate.BoostBySourceQuality(hits, p.tracker.Boost)
	hits = curate.SortBySourcePriority(hits)
	hits = curate.ApplyTimeDecay(hits, days, now)
	hits = curate.DedupeIdentity(hits)

	p.skipLog.Record(fmt.Sprintf("section_%s_hits=%d", cfg.Key, len(hits)), "")

	verified := p.verifier.Batch(ctx, hits, cfg.Limit*2, p.skipLog.Record)
	verified = dedup.Deduplicate(verified)
	verified = filterVerifiedByDate(verified, days, now)
	verified = rerank.Rerank(ctx, p.gen, verified, cfg)
	if len(verified) > cfg.Limit {
		verified = verified[:cfg.Limit]
	}

	items, err := summarize.Section(ctx, p.gen, cfg.Name, cfg.Key, verified, summarize.Options{
		RequireDate:        cfg.RequireDate,
		Language:           p.opts.Language,
		RelevanceThreshold: cfg.RelevanceThreshold,
	})
	if err != nil {
		logger.Error("Summarization failed", err, "section", string(cfg.Key))
		return nil
	}

	items = summarize.BackfillLinks(items, verified)
	items = filterItemsByDate(items, days, now)

	final := make([]core.SummaryItem, 0, len(items))
	for _, item := range items {
		if item.LiveLink != "" {
			final = append(final, item)
		}
	}
	return final
}

func (p *Pipeline) recordSourceQuality(items []core.SummaryItem) {
	for _, item := range items {
		if item.LiveLink != "" && item.Relevance > 0 {
			p.tracker.Record(item.LiveLink, item.Relevance)
		}
	}
}

// Run processes all default sections with a fixed-size worker pool and
// reassembles results in canonical section order.
func (p *Pipeline) Run(ctx context.Context) map[core.SectionKey][]core.SummaryItem {
	return p.RunSections(ctx, core.DefaultSections())
}

// RunSections processes the given sections concurrently. A panic in
// one section yields an empty section, never a failed run.
func (p *Pipeline) RunSections(ctx context.Context, sections map[core.SectionKey]core.SectionConfig) map[core.SectionKey][]core.SummaryItem {
	jobs := make(chan core.SectionKey)
	results := make(map[core.SectionKey][]core.SummaryItem, len(core.SectionOrder))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < p.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range jobs {
				items := p.runSectionSafe(ctx, sections[key])
				mu.Lock()
				results[key] = items
				mu.Unlock()
			}
		}()
	}

	for _, key := range core.SectionOrder {
		if _, ok := sections[key]; ok {
			jobs <- key
		}
	}
	close(jobs)
	wg.Wait()

	ordered := make(map[core.SectionKey][]core.SummaryItem, len(sections))
	for _, key := range core.SectionOrder {
		if _, ok := sections[key]; ok {
			ordered[key] = results[key]
		}
	}
	return ordered
}

// runSectionSafe isolates section failures from each other
func (p *Pipeline) runSectionSafe(ctx context.Context, section core.SectionConfig) (items []core.SummaryItem) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Section panicked", fmt.Errorf("%v", r), "section", string(section.Key))
			items = nil
		}
	}()
	items = p.RunSection(ctx, section)
	logger.Info("Section done", "section", string(section.Key), "items", len(items))
	return items
}

// filterVerifiedByDate drops articles whose scraped publish date is
// definitely older than the window, with a grace buffer. Articles
// without a parseable scraped date are kept.
func filterVerifiedByDate(articles []core.VerifiedArticle, days int, now time.Time) []core.VerifiedArticle {
	cutoff := now.AddDate(0, 0, -days).Add(-scrapedDateGrace)
	kept := make([]core.VerifiedArticle, 0, len(articles))
	for _, a := range articles {
		if a.ScrapedPublishedDate != "" {
			if published, ok := core.ParseDate(a.ScrapedPublishedDate); ok && published.Before(cutoff) {
				continue
			}
		}
		kept = append(kept, a)
	}
	return kept
}

// filterItemsByDate drops summary items whose LLM-reported date is
// older than the window; the model occasionally hallucinates dates on
// stale content. Undated items are kept.
func filterItemsByDate(items []core.SummaryItem, days int, now time.Time) []core.SummaryItem {
	cutoff := now.AddDate(0, 0, -days).Truncate(24 * time.Hour)
	kept := make([]core.SummaryItem, 0, len(items))
	for _, item := range items {
		if item.Date != "" {
			if published, ok := core.ParseDate(item.Date); ok && published.Before(cutoff) {
				continue
			}
		}
		kept = append(kept, item)
	}
	return kept
}
