package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"aibrief/internal/config"
	"aibrief/internal/core"
	"aibrief/internal/feeds"
	"aibrief/internal/llm"
	"aibrief/internal/pipeline"
	"aibrief/internal/search"
	"aibrief/internal/sourcequality"
	"aibrief/internal/verify"
)

// buildPipeline assembles the run pipeline from configuration. The
// returned llm.Client is also used directly for the TL;DR pass.
func buildPipeline(ctx context.Context, cfg *config.Config, opts pipeline.Options) (*pipeline.Pipeline, *llm.Client, error) {
	provider, err := search.NewProviderFactory().CreateProvider(
		search.ProviderType(cfg.Search.DefaultProvider),
		map[string]string{
			"api_key":  cfg.Search.Tavily.APIKey,
			"endpoint": cfg.Search.Tavily.Endpoint,
		})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create search provider: %w", err)
	}

	gen, err := llm.NewClient(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	collectors := pipeline.NewCollectors(feeds.NewFetcher(), provider, cfg.Run.MaxPerSection)
	verifier := verify.NewVerifier(cfg.SearchTimeout())
	tracker := sourcequality.NewTracker(cfg.Quality.Dir)
	skipLog := pipeline.NewSkipLog(skipLogPath(cfg))

	return pipeline.New(collectors, verifier, gen, tracker, skipLog, opts), gen, nil
}

func skipLogPath(cfg *config.Config) string {
	name := fmt.Sprintf("skipped_articles_%s.jsonl", time.Now().Format("2006-01-02"))
	return filepath.Join(cfg.App.LogDir, name)
}

// sectionsForRun returns the default sections with any configured
// per-section limit override applied.
func sectionsForRun(cfg *config.Config) map[core.SectionKey]core.SectionConfig {
	sections := core.DefaultSections()
	if cfg.Run.MaxPerSection > 0 {
		for key, section := range sections {
			section.Limit = cfg.Run.MaxPerSection
			sections[key] = section
		}
	}
	return sections
}
