package dedup

import (
	"testing"

	"aibrief/internal/core"
)

func article(title, url, content string) core.VerifiedArticle {
	return core.VerifiedArticle{Title: title, URL: url, Snippet: "", Content: content}
}

func TestTitleSimilarityIdentical(t *testing.T) {
	if got := TitleSimilarity("Hello World", "Hello World"); got != 1.0 {
		t.Errorf("Expected similarity 1.0, got %f", got)
	}
}

func TestTitleSimilarityCaseInsensitive(t *testing.T) {
	if got := TitleSimilarity("Hello World", "hello world"); got != 1.0 {
		t.Errorf("Expected similarity 1.0 across case, got %f", got)
	}
}

func TestTitleSimilarityDifferent(t *testing.T) {
	if got := TitleSimilarity("AI revolution", "cooking recipes"); got >= 0.4 {
		t.Errorf("Expected low similarity, got %f", got)
	}
}

func TestTitleSimilarityPartial(t *testing.T) {
	got := TitleSimilarity(
		"OpenAI launches GPT-5 model",
		"OpenAI launches new GPT-5 AI model",
	)
	if got < 0.7 {
		t.Errorf("Expected similarity >= 0.7, got %f", got)
	}
}

func TestDeduplicateRemovesNearDuplicates(t *testing.T) {
	articles := []core.VerifiedArticle{
		article("OpenAI launches GPT-5", "https://a.com/1", "Full article text here with details"),
		article("OpenAI launches GPT-5 model today", "https://b.com/2", "Short"),
		article("Totally different article about farming", "https://c.com/3", "Farming content"),
	}
	result := Deduplicate(articles)
	if len(result) != 2 {
		t.Fatalf("Expected 2 articles after dedup, got %d", len(result))
	}
	if result[0].URL != "https://a.com/1" {
		t.Errorf("Expected richest-content duplicate kept, got %s", result[0].URL)
	}
	if result[1].URL != "https://c.com/3" {
		t.Errorf("Expected farming article preserved in order, got %s", result[1].URL)
	}
}

func TestDeduplicateKeepsUnique(t *testing.T) {
	articles := []core.VerifiedArticle{
		article("Google unveils quantum computing breakthrough", "https://a.com/1", ""),
		article("New recipe book wins culinary award", "https://b.com/2", ""),
		article("FIFA World Cup 2030 venues announced", "https://c.com/3", ""),
	}
	if got := Deduplicate(articles); len(got) != 3 {
		t.Errorf("Expected all 3 unique articles kept, got %d", len(got))
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	articles := []core.VerifiedArticle{
		article("OpenAI launches GPT-5", "https://a.com/1", "Full article text here with details"),
		article("OpenAI launches GPT-5 model today", "https://b.com/2", "Short"),
		article("Totally different article about farming", "https://c.com/3", "Farming content"),
	}
	once := Deduplicate(articles)
	twice := Deduplicate(once)
	if len(once) != len(twice) {
		t.Fatalf("Expected idempotent dedup, got %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].URL != twice[i].URL {
			t.Errorf("Expected stable result at %d, got %s then %s", i, once[i].URL, twice[i].URL)
		}
	}
}

func TestDeduplicateEmptyAndSingle(t *testing.T) {
	if got := Deduplicate(nil); len(got) != 0 {
		t.Errorf("Expected empty result, got %d items", len(got))
	}
	one := []core.VerifiedArticle{article("Only one", "https://a.com/1", "x")}
	if got := Deduplicate(one); len(got) != 1 || got[0].Title != "Only one" {
		t.Errorf("Expected single article unchanged, got %v", got)
	}
}

func TestDeduplicateTieKeepsFirstSeen(t *testing.T) {
	articles := []core.VerifiedArticle{
		article("Same headline again", "https://a.com/1", "equal"),
		article("Same headline again", "https://b.com/2", "equal"),
	}
	result := Deduplicate(articles)
	if len(result) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(result))
	}
	if result[0].URL != "https://a.com/1" {
		t.Errorf("Expected first-seen article on content tie, got %s", result[0].URL)
	}
}
