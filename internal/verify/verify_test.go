package verify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"aibrief/internal/core"
)

func articleHTML(body string) string {
	return fmt.Sprintf(`<html><head><title>t</title></head><body><article>%s</article></body></html>`, body)
}

func longArticle() string {
	return articleHTML("<p>" + strings.Repeat("Real article text with substance. ", 40) + "</p>")
}

func TestFetchHTMLOk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, longArticle())
	}))
	defer srv.Close()

	v := NewVerifier(5 * time.Second)
	html, err := v.FetchHTML(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Expected fetch to succeed, got %v", err)
	}
	if !strings.Contains(html, "Real article text") {
		t.Error("Expected body text in fetched HTML")
	}
}

func TestFetchHTMLRejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "%PDF-1.4")
	}))
	defer srv.Close()

	v := NewVerifier(5 * time.Second)
	if _, err := v.FetchHTML(context.Background(), srv.URL); !errors.Is(err, ErrNotHTML) {
		t.Errorf("Expected ErrNotHTML, got %v", err)
	}
}

func TestFetchHTMLRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	v := NewVerifier(5 * time.Second)
	if _, err := v.FetchHTML(context.Background(), srv.URL); !errors.Is(err, ErrUnreachable) {
		t.Errorf("Expected ErrUnreachable, got %v", err)
	}
}

func TestFetchHTMLRejectsPaywall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, articleHTML("Subscribe to read this article"))
	}))
	defer srv.Close()

	v := NewVerifier(5 * time.Second)
	if _, err := v.FetchHTML(context.Background(), srv.URL); !errors.Is(err, ErrPaywalled) {
		t.Errorf("Expected ErrPaywalled, got %v", err)
	}
}

func TestFetchHTMLRejectsSoft404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, articleHTML("Sorry, this content is no longer available."))
	}))
	defer srv.Close()

	v := NewVerifier(5 * time.Second)
	if _, err := v.FetchHTML(context.Background(), srv.URL); !errors.Is(err, ErrSoft404) {
		t.Errorf("Expected ErrSoft404, got %v", err)
	}
}

func TestIsPaywalledStructuredData(t *testing.T) {
	html := `<script type="application/ld+json">{"isAccessibleForFree": false}</script>`
	if !isPaywalled(strings.ToLower(html)) {
		t.Error("Expected JSON-LD paywall flag to be detected")
	}
	if isPaywalled("<html><body>This article is free to read</body></html>") {
		t.Error("Expected free article to pass")
	}
}

// ── Metadata extraction ──

func TestExtractPublishedDateMetaProperty(t *testing.T) {
	html := `<html><head><meta property="article:published_time" content="2023-10-27T10:00:00Z" /></head><body></body></html>`
	if got := ExtractPublishedDate(html); got != "2023-10-27T10:00:00Z" {
		t.Errorf("Expected meta property date, got %q", got)
	}
}

func TestExtractPublishedDateMetaName(t *testing.T) {
	html := `<html><head><meta name="pubdate" content="2023-10-26" /></head></html>`
	if got := ExtractPublishedDate(html); got != "2023-10-26" {
		t.Errorf("Expected pubdate meta date, got %q", got)
	}
}

func TestExtractPublishedDateJSONLD(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
	{"@context": "https://schema.org", "@type": "NewsArticle", "headline": "AI is cool", "datePublished": "2023-10-25T09:30:00+00:00"}
	</script></head></html>`
	if got := ExtractPublishedDate(html); got != "2023-10-25T09:30:00+00:00" {
		t.Errorf("Expected JSON-LD date, got %q", got)
	}
}

func TestExtractPublishedDateTimeTag(t *testing.T) {
	html := `<html><body><h1>Title</h1><time datetime="2023-10-24">Oct 24, 2023</time></body></html>`
	if got := ExtractPublishedDate(html); got != "2023-10-24" {
		t.Errorf("Expected time element date, got %q", got)
	}
}

func TestExtractPublishedDateMissing(t *testing.T) {
	if got := ExtractPublishedDate("<html><body><p>no date here</p></body></html>"); got != "" {
		t.Errorf("Expected empty date, got %q", got)
	}
}

func TestExtractTextStripsBoilerplate(t *testing.T) {
	html := `<html><body>
	<script>var x = "ignore me";</script>
	<nav>Menu</nav>
	<article><p>` + strings.Repeat("Body sentence with enough words to count. ", 20) + `</p></article>
	<footer>Copyright</footer>
	</body></html>`
	text := ExtractText(html, "https://example.com/a")
	if !strings.Contains(text, "Body sentence") {
		t.Error("Expected article text in extraction")
	}
	if strings.Contains(text, "ignore me") {
		t.Error("Expected script content stripped")
	}
}

func TestExtractTextCapped(t *testing.T) {
	html := articleHTML("<p>" + strings.Repeat("x", MaxContentLength*2) + "</p>")
	if got := ExtractText(html, "https://example.com/a"); len(got) > MaxContentLength {
		t.Errorf("Expected content capped at %d, got %d", MaxContentLength, len(got))
	}
}

// ── Candidate / batch ──

type recordedSkips struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordedSkips) record(reason, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

func TestCandidateSnippetFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	skips := &recordedSkips{}
	v := NewVerifier(2 * time.Second)
	snippet := strings.Repeat("A rich feed snippet. ", 10)
	article, ok := v.Candidate(context.Background(), core.CandidateItem{
		Title:   "Down but summarized",
		URL:     srv.URL,
		Snippet: snippet,
	}, skips.record)
	if !ok {
		t.Fatal("Expected snippet fallback to produce an article")
	}
	if article.Content != snippet {
		t.Error("Expected snippet used as content")
	}
	if len(skips.reasons) != 1 || skips.reasons[0] != "verify_failed_using_snippet" {
		t.Errorf("Expected verify_failed_using_snippet skip, got %v", skips.reasons)
	}
}

func TestCandidateShortSnippetDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	v := NewVerifier(2 * time.Second)
	_, ok := v.Candidate(context.Background(), core.CandidateItem{
		Title:   "Down",
		URL:     srv.URL,
		Snippet: "too short",
	}, nil)
	if ok {
		t.Error("Expected candidate with thin snippet to be dropped")
	}
}

func TestCandidateMissingURL(t *testing.T) {
	skips := &recordedSkips{}
	v := NewVerifier(time.Second)
	if _, ok := v.Candidate(context.Background(), core.CandidateItem{Title: "x"}, skips.record); ok {
		t.Error("Expected candidate without URL to be dropped")
	}
	if len(skips.reasons) != 1 || skips.reasons[0] != "missing_url" {
		t.Errorf("Expected missing_url skip, got %v", skips.reasons)
	}
}

func TestBatchStopsAtTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, longArticle())
	}))
	defer srv.Close()

	v := NewVerifier(5 * time.Second)
	var candidates []core.CandidateItem
	for i := 0; i < 20; i++ {
		candidates = append(candidates, core.CandidateItem{
			Title: fmt.Sprintf("Article %d", i),
			URL:   fmt.Sprintf("%s/%d", srv.URL, i),
		})
	}
	verified := v.Batch(context.Background(), candidates, 3, nil)
	if len(verified) != 3 {
		t.Errorf("Expected exactly 3 verified articles, got %d", len(verified))
	}
}

func TestBatchEmptyInput(t *testing.T) {
	v := NewVerifier(time.Second)
	if got := v.Batch(context.Background(), nil, 5, nil); len(got) != 0 {
		t.Errorf("Expected no results for empty input, got %d", len(got))
	}
}
