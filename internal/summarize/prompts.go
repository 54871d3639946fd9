package summarize

import (
	"fmt"
	"strings"

	"aibrief/internal/core"
)

const systemPromptBase = `You are a concise analyst producing copy for a Canadian public-sector weekly AI briefing.
Requirements:
- Output ONLY valid JSON array (no prose) of objects with keys: "Headline", "Summary_Text", "Live_Link", "Relevance", "Source"%s.
- "Headline" must be at most 12 words.
- "Summary_Text" must be 1-2 crisp sentences, neutral tone, no sales language.
- "Relevance" is an integer 1-10 estimating importance for public-sector readers.
- "Source" is a short label for the publisher or origin.
- Skip articles that are low-value, outdated, or generic marketing.
- Preserve URLs exactly as provided.
- Do not invent facts or links; rely solely on provided article content.`

const repairInstruction = "Your previous output was not valid JSON. Respond with JSON only, no prose."

const frenchInstruction = "\n- Write all headlines and summaries in French (Canadian French), keeping URLs and source labels unchanged."

// buildSystemPrompt assembles the section-specific system instruction
func buildSystemPrompt(sectionKey core.SectionKey, requireDate bool, language string) string {
	dateKey := ""
	if requireDate {
		dateKey = `, and "Date" (YYYY-MM-DD) if present`
	}
	prompt := fmt.Sprintf(systemPromptBase, dateKey)

	switch sectionKey {
	case core.SectionResearchPlain:
		prompt += "\n- Make summaries plain-language for non-technical readers; avoid jargon; include a short 'Why it matters for public service' clause."
	case core.SectionAIProgress:
		prompt += "\n- Mention the benchmark or metric and what improved; one sentence impact for government services."
	case core.SectionEvents, core.SectionEventsPublic:
		prompt += "\n- Highlight what/when/who in one sentence; include Date in JSON."
	}

	if language == "fr" {
		prompt += frenchInstruction
	}
	return prompt
}

// buildUserPrompt lists the verified articles with truncated content
func buildUserPrompt(sectionName string, articles []core.VerifiedArticle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Section: %s\nSummarize the following verified articles:\n", sectionName)
	for i, article := range articles {
		if i > 0 {
			b.WriteString("\n\n")
		}
		content := article.Content
		if len(content) > 4000 {
			content = content[:4000]
		}
		fmt.Fprintf(&b, "Title: %s\nURL: %s\nSnippet: %s\nContent: %s",
			article.Title, article.URL, article.Snippet, content)
	}
	return b.String()
}

const tldrSystemPrompt = `You produce the TL;DR block for a weekly AI briefing.
Requirements:
- Output ONLY a valid JSON array of 3-5 strings, each a single punchy sentence.
- Each sentence captures one headline-worthy development from the provided items.
- Neutral tone, no sales language, no URLs.`

func buildTLDRPrompt(items []core.SummaryItem, language string) string {
	var b strings.Builder
	b.WriteString("Top stories this week:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, item.Headline, item.SummaryText)
	}
	if language == "fr" {
		b.WriteString("\nWrite the TL;DR sentences in French (Canadian French).")
	}
	return b.String()
}
