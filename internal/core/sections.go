package core

// SectionKey identifies one themed subset of the newsletter. The set of
// keys is closed; the pipeline dispatches collectors with an exhaustive
// switch over these values.
type SectionKey string

const (
	SectionTrending      SectionKey = "trending"
	SectionCanadian      SectionKey = "canadian"
	SectionGlobal        SectionKey = "global"
	SectionEvents        SectionKey = "events"
	SectionEventsPublic  SectionKey = "events_public"
	SectionAgri          SectionKey = "agri"
	SectionAIProgress    SectionKey = "ai_progress"
	SectionResearchPlain SectionKey = "research_plain"
	SectionDeepDive      SectionKey = "deep_dive"
)

// SectionOrder is the canonical rendering order of newsletter sections.
// Sections are processed concurrently and reassembled in this order.
var SectionOrder = []SectionKey{
	SectionTrending,
	SectionCanadian,
	SectionGlobal,
	SectionEvents,
	SectionEventsPublic,
	SectionAgri,
	SectionAIProgress,
	SectionResearchPlain,
	SectionDeepDive,
}

// MaxWindowDays caps any per-section search window override.
const MaxWindowDays = 30

// DefaultRelevanceThreshold is the minimum LLM relevance score an item
// needs to survive reranking and summarization, absent a section override.
const DefaultRelevanceThreshold = 6

// SectionConfig is the per-section configuration. The shared defaults
// returned by DefaultSections are read-only at run time; the retry
// controller adjusts copies only.
type SectionConfig struct {
	Key                SectionKey
	Name               string   // Display name
	Query              string   // Base search query
	Limit              int      // Target item count
	RequireDate        bool     // Whether an item date is mandatory
	Days               int      // Search-window override in days (0 = run default)
	RelevanceThreshold int      // 1-10
	BoostKeywords      []string // Reorder signal, not a filter
	RejectKeywords     []string // Hard filter over title+snippet
	IncludeDomains     []string // Restrict search to these domains
	ExcludeDomains     []string // Drop results from these domains
}

// WindowDays resolves the effective search window for this section given
// the run-level default, enforcing the sane maximum.
func (c SectionConfig) WindowDays(runDefault int) int {
	days := runDefault
	if c.Days > 0 {
		days = c.Days
	}
	if days > MaxWindowDays {
		days = MaxWindowDays
	}
	if days <= 0 {
		days = 7
	}
	return days
}

// DefaultSections returns a fresh copy of the built-in section set keyed by
// section, so callers may adjust limits without mutating shared state.
func DefaultSections() map[SectionKey]SectionConfig {
	sections := map[SectionKey]SectionConfig{
		SectionTrending: {
			Name:          "Trending AI",
			Query:         "AI artificial intelligence top news of the week",
			Limit:         8,
			BoostKeywords: []string{"launch", "release", "breakthrough", "open source"},
		},
		SectionCanadian: {
			Name:          "Canadian News",
			Query:         `"Artificial Intelligence" AND (Canada OR "federal government" OR "public service")`,
			Limit:         5,
			BoostKeywords: []string{"canada", "canadian", "federal", "public service"},
		},
		SectionGlobal: {
			Name:          "Global News",
			Query:         `("AI" OR "Artificial Intelligence") AND (release OR policy OR workforce)`,
			Limit:         5,
			RejectKeywords: []string{
				"horoscope", "betting", "casino",
			},
		},
		SectionEvents: {
			Name:        "Events",
			Query:       `AI webinar OR AI conference OR "artificial intelligence" talk`,
			Limit:       4,
			RequireDate: true,
		},
		SectionEventsPublic: {
			Name:           "Public-Servant Events",
			Query:          `"artificial intelligence" AND (webinar OR event OR course OR training) site:csps-efpc.gc.ca`,
			Limit:          4,
			RequireDate:    true,
			Days:           30,
			IncludeDomains: []string{"csps-efpc.gc.ca", "canada.ca"},
		},
		SectionAgri: {
			Name:          "Grain / Agri-Tech",
			Query:         `("Machine Learning" OR "AI") AND ("Grain Quality" OR Agriculture)`,
			Limit:         3,
			BoostKeywords: []string{"grain", "wheat", "crop", "agriculture"},
		},
		SectionAIProgress: {
			Name:  "AI Progress",
			Query: "AI benchmark results",
			Limit: 3,
			Days:  30,
		},
		SectionResearchPlain: {
			Name:  "Plain-Language Research",
			Query: "arXiv AI",
			Limit: 3,
		},
		SectionDeepDive: {
			Name:  "Deep Dive",
			Query: `(OECD OR Anthropic OR MIT OR METR) AND ("AI" OR "Artificial Intelligence") report`,
			Limit: 2,
		},
	}

	for key, cfg := range sections {
		cfg.Key = key
		if cfg.RelevanceThreshold == 0 {
			cfg.RelevanceThreshold = DefaultRelevanceThreshold
		}
		sections[key] = cfg
	}
	return sections
}
