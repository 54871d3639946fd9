// Package summarize turns verified articles into structured newsletter
// items via an LLM call, with JSON repair and relevance filtering.
package summarize

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"aibrief/internal/core"
	"aibrief/internal/llm"
	"aibrief/internal/logger"
)

// maxParseAttempts bounds the JSON repair loop
const maxParseAttempts = 2

// tldrItemCount is how many top items feed the TL;DR block
const tldrItemCount = 6

// TextGenerator produces text from a system instruction and user prompt
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Options controls section summarization
type Options struct {
	RequireDate        bool   // Ask the model to include a Date field
	Language           string // "en" or "fr"
	RelevanceThreshold int    // Drop items scored below this (scored items only)
}

// Section summarizes verified articles for one newsletter section.
// Malformed model output triggers a bounded repair loop; if the output
// still cannot be parsed, the section yields no items rather than an
// error.
func Section(ctx context.Context, gen TextGenerator, sectionName string, sectionKey core.SectionKey, articles []core.VerifiedArticle, opts Options) ([]core.SummaryItem, error) {
	if len(articles) == 0 {
		return nil, nil
	}

	system := buildSystemPrompt(sectionKey, opts.RequireDate, opts.Language)
	user := buildUserPrompt(sectionName, articles)

	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		raw, err := gen.Generate(ctx, system, user)
		if err != nil {
			return nil, err
		}

		items, parseErr := parseItems(raw)
		if parseErr != nil {
			logger.Warn("Summarizer returned invalid JSON, retrying",
				"section", sectionName, "attempt", attempt, "error", parseErr.Error())
			system += "\n" + repairInstruction
			continue
		}
		return filterByRelevance(items, opts.RelevanceThreshold, sectionName), nil
	}

	logger.Warn("Summarizer output unparseable after repair attempts", "section", sectionName)
	return nil, nil
}

// parseItems decodes the model's JSON array, tolerating code fences
func parseItems(raw string) ([]core.SummaryItem, error) {
	cleaned := llm.StripCodeFences(raw)
	var items []core.SummaryItem
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Headline = strings.TrimSpace(items[i].Headline)
		items[i].SummaryText = strings.TrimSpace(items[i].SummaryText)
		items[i].LiveLink = strings.TrimSpace(items[i].LiveLink)
	}
	return items, nil
}

// filterByRelevance drops scored items below the threshold. Items the
// model left unscored pass through.
func filterByRelevance(items []core.SummaryItem, threshold int, sectionName string) []core.SummaryItem {
	if threshold <= 0 {
		return items
	}
	kept := make([]core.SummaryItem, 0, len(items))
	for _, item := range items {
		if item.Relevance > 0 && item.Relevance < threshold {
			logger.Debug("Dropping low-relevance item",
				"section", sectionName, "headline", item.Headline, "relevance", item.Relevance)
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// BackfillLinks repairs items whose Live_Link came back empty by
// matching headlines against the source articles, falling back to the
// first article URL.
func BackfillLinks(items []core.SummaryItem, articles []core.VerifiedArticle) []core.SummaryItem {
	for i := range items {
		if items[i].LiveLink != "" {
			continue
		}
		for _, article := range articles {
			title := strings.ToLower(strings.TrimSpace(article.Title))
			if title != "" && strings.Contains(strings.ToLower(items[i].Headline), title) {
				items[i].LiveLink = article.URL
				break
			}
		}
		if items[i].LiveLink == "" && len(articles) > 0 {
			items[i].LiveLink = articles[0].URL
		}
	}
	return items
}

// TLDR generates the briefing's TL;DR bullets from the highest-relevance
// items across all sections. Best-effort; returns nil on any failure.
func TLDR(ctx context.Context, gen TextGenerator, items []core.SummaryItem, language string) []string {
	if len(items) == 0 {
		return nil
	}

	top := append([]core.SummaryItem(nil), items...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Relevance > top[j].Relevance })
	if len(top) > tldrItemCount {
		top = top[:tldrItemCount]
	}

	raw, err := gen.Generate(ctx, tldrSystemPrompt, buildTLDRPrompt(top, language))
	if err != nil {
		logger.Warn("TL;DR generation failed", "error", err.Error())
		return nil
	}

	var bullets []string
	if err := json.Unmarshal([]byte(llm.StripCodeFences(raw)), &bullets); err != nil {
		logger.Warn("TL;DR response unparseable", "error", err.Error())
		return nil
	}
	return bullets
}
