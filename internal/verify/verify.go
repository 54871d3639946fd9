// Package verify confirms that candidate articles are backed by reachable,
// readable, free pages, and extracts their body text and publish date.
package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrUnreachable is returned when the page cannot be fetched.
	ErrUnreachable = errors.New("page unreachable")

	// ErrNotHTML is returned for non-HTML content types.
	ErrNotHTML = errors.New("content is not HTML")

	// ErrPaywalled is returned when paywall heuristics match.
	ErrPaywalled = errors.New("page is paywalled")

	// ErrSoft404 is returned when the page reports 200 but its text matches
	// not-found phrasing.
	ErrSoft404 = errors.New("page is a soft 404")

	// ErrTooThin is returned when the page has too little visible text to
	// be an article.
	ErrTooThin = errors.New("page text below minimum length")
)

const (
	defaultTimeout = 10 * time.Second
	maxRedirects   = 5
	// maxBodyBytes bounds how much HTML is read from any page.
	maxBodyBytes = 2 << 20
	// phraseSampleBytes bounds how much HTML the phrase heuristics scan.
	phraseSampleBytes = 100_000
	// MaxContentLength caps extracted body text, keeping LLM cost bounded.
	MaxContentLength = 20_000
	// minTextLength rejects stub and placeholder pages.
	minTextLength = 200

	userAgent = "Mozilla/5.0 (compatible; aibrief/1.0; +https://example.com)"
)

var paywallPhrases = []string{
	"subscribe to read",
	"log in to continue",
	"isaccessibleforfree\":false",
	"paywall",
	"subscriber-only",
	"subscription required",
	"already a subscriber",
}

var soft404Phrases = []string{
	"page not found",
	"404 not found",
	"no longer available",
	"this page doesn't exist",
	"the page you requested",
}

// Verifier fetches candidate pages and extracts readable content.
type Verifier struct {
	client  *http.Client
	Workers int // Bounded parallelism for batch verification
}

// NewVerifier creates a verifier with the default timeout and redirect cap.
func NewVerifier(timeout time.Duration) *Verifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Verifier{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		Workers: defaultWorkers,
	}
}

// FetchHTML fetches the URL and returns its HTML when the page is
// reachable, is HTML, and is not behind a paywall or a soft 404.
func (v *Verifier) FetchHTML(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		return "", fmt.Errorf("%w: %s", ErrNotHTML, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	html := string(body)

	sample := html
	if len(sample) > phraseSampleBytes {
		sample = sample[:phraseSampleBytes]
	}
	if isPaywalled(sample) {
		return "", ErrPaywalled
	}
	if isSoft404(sample) {
		return "", ErrSoft404
	}
	return html, nil
}

// isPaywalled reports whether the HTML matches paywall phrase heuristics
// or carries the JSON-LD isAccessibleForFree:false flag.
func isPaywalled(html string) bool {
	haystack := strings.ToLower(html)
	for _, phrase := range paywallPhrases {
		if strings.Contains(haystack, phrase) {
			return true
		}
	}
	// Structured-data flag with whitespace between key and value.
	return strings.Contains(strings.ReplaceAll(haystack, " ", ""), `"isaccessibleforfree":false`)
}

// isSoft404 reports whether a 200 page actually presents not-found copy.
func isSoft404(html string) bool {
	haystack := strings.ToLower(html)
	for _, phrase := range soft404Phrases {
		if strings.Contains(haystack, phrase) {
			return true
		}
	}
	return false
}
