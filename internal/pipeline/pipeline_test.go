package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"aibrief/internal/core"
	"aibrief/internal/feeds"
	"aibrief/internal/search"
	"aibrief/internal/sourcequality"
	"aibrief/internal/verify"
)

type stubProvider struct {
	mu      sync.Mutex
	results []core.CandidateItem
	calls   int
	days    []int
	panics  bool
}

func (s *stubProvider) Search(ctx context.Context, query string, config search.Config) ([]core.CandidateItem, error) {
	s.mu.Lock()
	s.calls++
	s.days = append(s.days, config.Days)
	s.mu.Unlock()
	if s.panics {
		panic("provider exploded")
	}
	return s.results, nil
}

func (s *stubProvider) GetName() string { return "Stub" }

type stubGenerator struct {
	mu        sync.Mutex
	responses map[string]string // substring of system prompt -> response
	fallback  string
}

func (s *stubGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for needle, response := range s.responses {
		if strings.Contains(system, needle) {
			return response, nil
		}
	}
	return s.fallback, nil
}

func articleServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body><article><p>%s</p></article></body></html>",
			strings.Repeat("Substantial article body text for verification. ", 20))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func candidates(baseURL string, n int, published time.Time) []core.CandidateItem {
	items := make([]core.CandidateItem, n)
	for i := range items {
		items[i] = core.CandidateItem{
			ID:        fmt.Sprintf("c%d", i),
			Title:     fmt.Sprintf("AI development number %d", i),
			URL:       fmt.Sprintf("%s/article/%d", baseURL, i),
			Snippet:   "A search snippet about an AI development.",
			Published: published.Format(time.RFC3339),
		}
	}
	return items
}

func testPipeline(t *testing.T, provider search.Provider, gen TextGenerator, opts Options) *Pipeline {
	t.Helper()
	dir := t.TempDir()
	collectors := NewCollectors(feeds.NewFetcher(), provider, 0)
	verifier := verify.NewVerifier(5 * time.Second)
	tracker := sourcequality.NewTracker(filepath.Join(dir, "quality"))
	skipLog := NewSkipLog(filepath.Join(dir, "logs", "run.jsonl"))
	return New(collectors, verifier, gen, tracker, skipLog, opts)
}

func eventsSection(limit int) core.SectionConfig {
	return core.SectionConfig{
		Key:                core.SectionEvents,
		Name:               "AI Events",
		Query:              "AI events this week",
		Limit:              limit,
		RelevanceThreshold: 6,
	}
}

func TestRunSectionHappyPath(t *testing.T) {
	srv := articleServer(t)
	provider := &stubProvider{results: candidates(srv.URL, 2, time.Now().UTC().Add(-24*time.Hour))}
	gen := &stubGenerator{
		fallback: fmt.Sprintf(`[{"Headline": "AI event announced", "Summary_Text": "Something happened.", "Live_Link": "%s/article/0", "Relevance": 8, "Source": "Example"}]`, srv.URL),
	}
	p := testPipeline(t, provider, gen, Options{Days: 7, MaxAttempts: 1, Workers: 1})

	items := p.RunSection(context.Background(), eventsSection(4))
	if len(items) != 1 {
		t.Fatalf("Expected 1 summary item, got %d", len(items))
	}
	if items[0].LiveLink == "" {
		t.Error("Expected live link on final item")
	}

	// Successful items feed the source-quality ledger
	if boost := p.tracker.Boost(srv.URL + "/article/0"); boost <= 0 {
		t.Errorf("Expected positive quality boost after recording, got %f", boost)
	}
}

func TestRunSectionRetryLadderWidensWindow(t *testing.T) {
	provider := &stubProvider{} // no results, every attempt comes up empty
	gen := &stubGenerator{fallback: "[]"}
	p := testPipeline(t, provider, gen, Options{Days: 7, MaxAttempts: 3, Workers: 1})

	items := p.RunSection(context.Background(), eventsSection(4))
	if items != nil {
		t.Errorf("Expected no items, got %v", items)
	}
	if provider.calls != 3 {
		t.Fatalf("Expected 3 attempts, got %d", provider.calls)
	}
	if provider.days[0] != 7 || provider.days[1] != 14 || provider.days[2] != 21 {
		t.Errorf("Expected widening windows 7/14/21, got %v", provider.days)
	}
}

func TestRunSectionsIsolatesFailures(t *testing.T) {
	srv := articleServer(t)
	good := &stubProvider{results: candidates(srv.URL, 2, time.Now().UTC().Add(-24*time.Hour))}
	bad := &stubProvider{panics: true}
	gen := &stubGenerator{
		fallback: fmt.Sprintf(`[{"Headline": "Still standing", "Summary_Text": "s", "Live_Link": "%s/article/0", "Relevance": 7}]`, srv.URL),
	}

	dir := t.TempDir()
	tracker := sourcequality.NewTracker(filepath.Join(dir, "quality"))
	skipLog := NewSkipLog(filepath.Join(dir, "logs", "run.jsonl"))
	verifier := verify.NewVerifier(5 * time.Second)

	// events uses the failing provider, deep_dive the good one, by
	// giving each its own pipeline stage set through RunSections
	pGood := New(NewCollectors(feeds.NewFetcher(), good, 0), verifier, gen, tracker, skipLog, Options{Days: 7, MaxAttempts: 1, Workers: 2})
	pBad := New(NewCollectors(feeds.NewFetcher(), bad, 0), verifier, gen, tracker, skipLog, Options{Days: 7, MaxAttempts: 1, Workers: 2})

	badResults := pBad.RunSections(context.Background(), map[core.SectionKey]core.SectionConfig{
		core.SectionEvents: eventsSection(4),
	})
	if len(badResults[core.SectionEvents]) != 0 {
		t.Error("Expected empty result from panicking section")
	}

	goodResults := pGood.RunSections(context.Background(), map[core.SectionKey]core.SectionConfig{
		core.SectionEvents: eventsSection(4),
	})
	if len(goodResults[core.SectionEvents]) != 1 {
		t.Errorf("Expected healthy section unaffected, got %d items", len(goodResults[core.SectionEvents]))
	}
}

func TestFilterVerifiedByDate(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	articles := []core.VerifiedArticle{
		{Title: "fresh", ScrapedPublishedDate: now.AddDate(0, 0, -2).Format(time.RFC3339)},
		{Title: "stale", ScrapedPublishedDate: now.AddDate(0, 0, -20).Format(time.RFC3339)},
		{Title: "undated"},
		{Title: "garbled", ScrapedPublishedDate: "last Tuesday"},
	}
	kept := filterVerifiedByDate(articles, 7, now)
	if len(kept) != 3 {
		t.Fatalf("Expected 3 articles kept, got %d", len(kept))
	}
	for _, a := range kept {
		if a.Title == "stale" {
			t.Error("Expected stale article dropped")
		}
	}
}

func TestFilterVerifiedByDateGracePeriod(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	// Just past the window but inside the 24h grace buffer
	borderline := []core.VerifiedArticle{
		{Title: "borderline", ScrapedPublishedDate: now.AddDate(0, 0, -7).Add(-2 * time.Hour).Format(time.RFC3339)},
	}
	if kept := filterVerifiedByDate(borderline, 7, now); len(kept) != 1 {
		t.Error("Expected borderline article kept inside the grace buffer")
	}
}

func TestFilterItemsByDate(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	items := []core.SummaryItem{
		{Headline: "fresh", Date: "2026-08-29"},
		{Headline: "hallucinated-old", Date: "2026-01-01"},
		{Headline: "undated"},
	}
	kept := filterItemsByDate(items, 7, now)
	if len(kept) != 2 {
		t.Fatalf("Expected 2 items kept, got %d", len(kept))
	}
	for _, item := range kept {
		if item.Headline == "hallucinated-old" {
			t.Error("Expected stale-dated item dropped")
		}
	}
}

func TestSkipLogWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.jsonl")
	log := NewSkipLog(path)
	log.Record("verify_failed", "https://example.com/a")
	log.Record("missing_url", "")

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Expected log file created, got %v", err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "verify_failed") {
		t.Errorf("Expected reason in first line, got %q", lines[0])
	}
}

func TestSkipLogFallsBackOnUnwritablePath(t *testing.T) {
	log := NewSkipLog("/proc/definitely/not/writable/run.jsonl")
	// Must not panic or error; the fallback lands in the temp dir
	log.Record("verify_failed", "https://example.com/a")
	log.Record("verify_failed", "https://example.com/b")
}

func TestSkipLogConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	log := NewSkipLog(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			log.Record("concurrent", fmt.Sprintf("https://example.com/%d", n))
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file, got %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 20 {
		t.Errorf("Expected 20 intact lines, got %d", len(lines))
	}
}
