package rerank

import (
	"context"
	"errors"
	"testing"

	"aibrief/internal/core"
)

type stubGenerator struct {
	response string
	err      error
	called   bool
}

func (s *stubGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	s.called = true
	return s.response, s.err
}

func testArticles(titles ...string) []core.VerifiedArticle {
	articles := make([]core.VerifiedArticle, len(titles))
	for i, title := range titles {
		articles[i] = core.VerifiedArticle{Title: title, URL: "https://example.com/" + title, Snippet: "snippet"}
	}
	return articles
}

func testSection(limit, threshold int) core.SectionConfig {
	return core.SectionConfig{Key: core.SectionTrending, Name: "Trending AI", Limit: limit, RelevanceThreshold: threshold}
}

func TestRerankSkipsWhenUnderLimit(t *testing.T) {
	gen := &stubGenerator{}
	articles := testArticles("a", "b")
	result := Rerank(context.Background(), gen, articles, testSection(5, 6))
	if gen.called {
		t.Error("Expected no LLM call when article count is within the limit")
	}
	if len(result) != 2 {
		t.Errorf("Expected articles unchanged, got %d", len(result))
	}
}

func TestRerankFiltersAndSorts(t *testing.T) {
	gen := &stubGenerator{response: `[{"index": 1, "score": 7}, {"index": 2, "score": 3}, {"index": 3, "score": 9}]`}
	articles := testArticles("relevant", "offtopic", "must-include")
	result := Rerank(context.Background(), gen, articles, testSection(2, 6))

	if len(result) != 2 {
		t.Fatalf("Expected 2 articles above threshold, got %d", len(result))
	}
	if result[0].Title != "must-include" {
		t.Errorf("Expected highest score first, got %q", result[0].Title)
	}
	if result[1].Title != "relevant" {
		t.Errorf("Expected score 7 second, got %q", result[1].Title)
	}
}

func TestRerankDefaultsMissingIndices(t *testing.T) {
	// Article 2 is never mentioned so it gets the neutral score of 5,
	// which is below the threshold of 6
	gen := &stubGenerator{response: `[{"index": 1, "score": 8}, {"index": 3, "score": 6}]`}
	articles := testArticles("a", "b", "c")
	result := Rerank(context.Background(), gen, articles, testSection(2, 6))

	if len(result) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(result))
	}
	for _, article := range result {
		if article.Title == "b" {
			t.Error("Expected unmentioned article filtered at threshold 6")
		}
	}
}

func TestRerankFailOpenOnError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("rate limited")}
	articles := testArticles("a", "b", "c")
	result := Rerank(context.Background(), gen, articles, testSection(1, 6))
	if len(result) != 3 {
		t.Errorf("Expected input unchanged on LLM error, got %d articles", len(result))
	}
}

func TestRerankFailOpenOnMalformedJSON(t *testing.T) {
	gen := &stubGenerator{response: "I think article 1 is the best"}
	articles := testArticles("a", "b", "c")
	result := Rerank(context.Background(), gen, articles, testSection(1, 6))
	if len(result) != 3 {
		t.Errorf("Expected input unchanged on malformed response, got %d articles", len(result))
	}
}

func TestRerankHandlesCodeFences(t *testing.T) {
	gen := &stubGenerator{response: "```json\n[{\"index\": 1, \"score\": 9}, {\"index\": 2, \"score\": 2}, {\"index\": 3, \"score\": 2}]\n```"}
	articles := testArticles("a", "b", "c")
	result := Rerank(context.Background(), gen, articles, testSection(1, 6))
	if len(result) != 1 || result[0].Title != "a" {
		t.Errorf("Expected fenced response parsed, got %v", result)
	}
}
