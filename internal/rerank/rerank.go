// Package rerank scores verified articles by LLM-judged relevance
// before summarization, filtering out low-relevance items.
package rerank

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"aibrief/internal/core"
	"aibrief/internal/llm"
	"aibrief/internal/logger"
)

const defaultScore = 5

const systemPrompt = `You are a relevance-scoring assistant. You will receive a section topic and a numbered list of article titles and snippets. For EACH article, return a JSON array of objects with keys: {"index": <int>, "score": <1-10>}.
Score meaning:
  1-3: Off-topic or very low relevance
  4-5: Tangentially related
  6-7: Relevant
  8-10: Highly relevant, must-include
Return ONLY valid JSON. No markdown, no commentary.`

// TextGenerator produces text from a system instruction and user prompt
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Rerank scores and filters articles by LLM-judged relevance. Only
// invoked when more articles survive than the section can carry, to
// avoid wasting tokens. On any error the input is returned unchanged;
// this stage must never be fatal to a section.
func Rerank(ctx context.Context, gen TextGenerator, articles []core.VerifiedArticle, section core.SectionConfig) []core.VerifiedArticle {
	if len(articles) <= section.Limit {
		return articles
	}

	raw, err := gen.Generate(ctx, systemPrompt, buildPrompt(section.Name, articles))
	if err != nil {
		logger.Warn("Reranking failed, returning articles unchanged", "section", section.Name, "error", err.Error())
		return articles
	}

	scores, err := parseScores(raw, len(articles))
	if err != nil {
		logger.Warn("Reranking response unparseable, returning articles unchanged", "section", section.Name, "error", err.Error())
		return articles
	}

	type scored struct {
		article core.VerifiedArticle
		score   int
	}
	var kept []scored
	for i, article := range articles {
		if scores[i] >= section.RelevanceThreshold {
			kept = append(kept, scored{article, scores[i]})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].score > kept[j].score })

	result := make([]core.VerifiedArticle, len(kept))
	for i, s := range kept {
		result[i] = s.article
	}
	logger.Info("Reranked articles",
		"section", section.Name,
		"before", len(articles),
		"after", len(result),
		"threshold", section.RelevanceThreshold)
	return result
}

// buildPrompt numbers articles from 1 and truncates snippets so the
// prompt stays small
func buildPrompt(sectionName string, articles []core.VerifiedArticle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Section topic: %s\n\nArticles:", sectionName)
	for i, a := range articles {
		snippet := a.Snippet
		if snippet == "" {
			snippet = a.Content
		}
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		fmt.Fprintf(&b, "\n%d. Title: %s\n   Snippet: %s", i+1, a.Title, snippet)
	}
	return b.String()
}

// parseScores aligns the model's 1-indexed scores with article
// positions, defaulting unmentioned articles to a neutral score
func parseScores(raw string, count int) ([]int, error) {
	cleaned := llm.StripCodeFences(raw)

	var entries []struct {
		Index int `json:"index"`
		Score int `json:"score"`
	}
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		return nil, fmt.Errorf("failed to parse rerank scores: %w", err)
	}

	scores := make([]int, count)
	for i := range scores {
		scores[i] = defaultScore
	}
	for _, entry := range entries {
		idx := entry.Index - 1
		if idx >= 0 && idx < count {
			scores[idx] = entry.Score
		}
	}
	return scores, nil
}
