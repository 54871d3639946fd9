// Package curate implements the pure, order-sensitive candidate filters
// and reorder passes applied between collection and verification.
//
// Ordering matters: filtering passes (blocklist, reject keywords, date
// window) run before any reorder pass so scores are never computed over
// items that would be dropped, and every reorder is a stable sort so the
// previous pass's relative order acts as the tie-break.
package curate

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"aibrief/internal/core"
)

// trustedSources are feed types granted benefit of the doubt when an item
// carries no parseable publish date.
var trustedSources = map[string]bool{
	core.SourceGoogleAlert:    true,
	core.SourceArxiv:          true,
	core.SourcePapersWithCode: true,
	core.SourceRSS:            true,
}

// IsTrustedSource reports whether a source tag is in the undated-item
// allow-list.
func IsTrustedSource(source string) bool {
	return trustedSources[source]
}

// FilterBlocked removes items from blocked domains or URL patterns.
func FilterBlocked(items []core.CandidateItem) []core.CandidateItem {
	kept := make([]core.CandidateItem, 0, len(items))
	for _, item := range items {
		if IsBlockedURL(item.URL) {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// FilterExcludedDomains removes items whose host ends with any of the
// section's excluded domains.
func FilterExcludedDomains(items []core.CandidateItem, domains []string) []core.CandidateItem {
	if len(domains) == 0 {
		return items
	}
	kept := make([]core.CandidateItem, 0, len(items))
	for _, item := range items {
		parsed, err := url.Parse(item.URL)
		if err != nil {
			continue
		}
		host := strings.ToLower(parsed.Hostname())
		excluded := false
		for _, d := range domains {
			if strings.HasSuffix(host, strings.ToLower(d)) {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, item)
		}
	}
	return kept
}

// FilterRejectKeywords removes items whose combined title and snippet text
// contains any reject keyword (case-insensitive substring match).
func FilterRejectKeywords(items []core.CandidateItem, keywords []string) []core.CandidateItem {
	if len(keywords) == 0 {
		return items
	}
	kept := make([]core.CandidateItem, 0, len(items))
	for _, item := range items {
		haystack := strings.ToLower(item.Title + " " + item.Snippet)
		rejected := false
		for _, kw := range keywords {
			if kw != "" && strings.Contains(haystack, strings.ToLower(kw)) {
				rejected = true
				break
			}
		}
		if !rejected {
			kept = append(kept, item)
		}
	}
	return kept
}

// FilterByDate removes items whose parsed publish date falls before
// now - windowDays. Undated items are dropped unless their source tag is
// in the trusted-source allow-list.
func FilterByDate(items []core.CandidateItem, windowDays int, now time.Time) []core.CandidateItem {
	cutoff := now.AddDate(0, 0, -windowDays)
	kept := make([]core.CandidateItem, 0, len(items))
	for _, item := range items {
		published, ok := core.ParseDate(item.Published)
		if !ok {
			if IsTrustedSource(item.Source) {
				kept = append(kept, item)
			}
			continue
		}
		if published.Before(cutoff) {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// BoostByKeywords stable-sorts items by descending count of boost-keyword
// matches in title+snippet. Items with equal counts retain relative order.
func BoostByKeywords(items []core.CandidateItem, keywords []string) []core.CandidateItem {
	if len(keywords) == 0 {
		return items
	}
	sorted := append([]core.CandidateItem(nil), items...)
	counts := make([]int, len(sorted))
	for i, item := range sorted {
		haystack := strings.ToLower(item.Title + " " + item.Snippet)
		for _, kw := range keywords {
			if kw != "" && strings.Contains(haystack, strings.ToLower(kw)) {
				counts[i]++
			}
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return counts[i] > counts[j] })
	return sorted
}

// BoostBySourceQuality stable-sorts items by a continuing quality boost in
// [0,1] looked up per item URL; higher boost sorts earlier. Unseen domains
// score 0 and keep their relative order.
func BoostBySourceQuality(items []core.CandidateItem, boost func(string) float64) []core.CandidateItem {
	if boost == nil {
		return items
	}
	sorted := append([]core.CandidateItem(nil), items...)
	scores := make([]float64, len(sorted))
	for i, item := range sorted {
		scores[i] = boost(item.URL)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return scores[i] > scores[j] })
	return sorted
}

// sourceRank orders high-trust feed types before generic search results.
var sourceRank = map[string]int{
	core.SourceGoogleAlert:    0,
	core.SourceRSS:            1,
	core.SourceArxiv:          2,
	core.SourcePapersWithCode: 3,
	core.SourceHackerNews:     4,
	core.SourceProductHunt:    5,
}

const unknownSourceRank = 100

// SortBySourcePriority stable-sorts so that designated high-trust feed
// types precede generic search-engine results; unknown sources sort last.
func SortBySourcePriority(items []core.CandidateItem) []core.CandidateItem {
	sorted := append([]core.CandidateItem(nil), items...)
	rank := func(item core.CandidateItem) int {
		if r, ok := sourceRank[item.Source]; ok {
			return r
		}
		return unknownSourceRank
	}
	sort.SliceStable(sorted, func(i, j int) bool { return rank(sorted[i]) < rank(sorted[j]) })
	return sorted
}

// undatedFreshness is the neutral score for items with no parseable date,
// placing them exactly between a fresh item and a near-expired one.
const undatedFreshness = 0.5

// FreshnessScore computes max(0, 1 - age_days/window_days) for a published
// string, or the neutral score when the date cannot be parsed.
func FreshnessScore(published string, windowDays int, now time.Time) float64 {
	t, ok := core.ParseDate(published)
	if !ok {
		return undatedFreshness
	}
	ageDays := now.Sub(t).Hours() / 24
	score := 1 - ageDays/float64(windowDays)
	if score < 0 {
		return 0
	}
	return score
}

// ApplyTimeDecay stable-sorts items by descending freshness score.
func ApplyTimeDecay(items []core.CandidateItem, windowDays int, now time.Time) []core.CandidateItem {
	sorted := append([]core.CandidateItem(nil), items...)
	scores := make([]float64, len(sorted))
	for i, item := range sorted {
		scores[i] = FreshnessScore(item.Published, windowDays, now)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return scores[i] > scores[j] })
	return sorted
}

// DedupeIdentity collapses items whose normalized URL plus lowercased
// trimmed title matches a previously seen key; the first occurrence wins.
func DedupeIdentity(items []core.CandidateItem) []core.CandidateItem {
	seen := make(map[string]bool, len(items))
	unique := make([]core.CandidateItem, 0, len(items))
	for _, item := range items {
		key := NormalizeURL(item.URL) + "|" + strings.ToLower(strings.TrimSpace(item.Title))
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, item)
	}
	return unique
}

// NormalizeURL strips the query and fragment and case-folds the result,
// producing the identity key used by DedupeIdentity.
func NormalizeURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return strings.ToLower(parsed.String())
}
