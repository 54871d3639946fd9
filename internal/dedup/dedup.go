// Package dedup removes near-duplicate verified articles covering the same
// story, keeping the richest-content representative per cluster.
package dedup

import (
	"strings"

	"aibrief/internal/core"
	"aibrief/internal/logger"
)

// SimilarityThreshold is the title-similarity ratio at or above which two
// articles are considered duplicates.
const SimilarityThreshold = 0.6

// TitleSimilarity returns the case-insensitive sequence-similarity ratio
// between two titles: 2*M / (len(a)+len(b)), where M is the total length
// of the recursive longest-common-block matching.
func TitleSimilarity(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	if len(ra)+len(rb) == 0 {
		return 1.0
	}
	matched := matchTotal(ra, rb)
	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

// matchTotal sums matching characters by finding the longest common block
// and recursing on the unmatched left and right remainders.
func matchTotal(a, b []rune) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchTotal(a[:ai], b[:bi])
	total += matchTotal(a[ai+size:], b[bi+size:])
	return total
}

// longestCommonBlock finds the longest common contiguous run between a and
// b, returning its start offsets and length. Earliest run wins ties.
func longestCommonBlock(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// lengths[j] holds the length of the common run ending at a[i-1], b[j-1].
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > size {
					size = curr[j]
					ai = i - size
					bi = j - size
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return ai, bi, size
}

// Deduplicate removes near-duplicate articles, keeping the version with
// the longest content from each cluster (first-seen wins ties) and
// preserving the original relative order of the survivors. Running it on
// an already-deduplicated list returns the same list.
func Deduplicate(articles []core.VerifiedArticle) []core.VerifiedArticle {
	return DeduplicateThreshold(articles, SimilarityThreshold)
}

// DeduplicateThreshold is Deduplicate with an explicit similarity threshold.
func DeduplicateThreshold(articles []core.VerifiedArticle, threshold float64) []core.VerifiedArticle {
	if len(articles) <= 1 {
		return articles
	}

	// Single-pass clustering: each unassigned article seeds a cluster and
	// claims all later unassigned articles with similar titles. O(n²)
	// comparisons; per-section candidate counts are tens, not thousands.
	assigned := make([]bool, len(articles))
	result := make([]core.VerifiedArticle, 0, len(articles))
	for i := range articles {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		best := i
		removed := 0
		for j := i + 1; j < len(articles); j++ {
			if assigned[j] {
				continue
			}
			if TitleSimilarity(articles[i].Title, articles[j].Title) >= threshold {
				assigned[j] = true
				removed++
				if len(articles[j].Content) > len(articles[best].Content) {
					best = j
				}
			}
		}
		result = append(result, articles[best])
		if removed > 0 {
			logger.Debug("Removed near-duplicate articles",
				"kept", articles[best].Title, "removed", removed)
		}
	}

	if len(result) < len(articles) {
		logger.Info("Deduplicated articles", "before", len(articles), "after", len(result))
	}
	return result
}
