package verify

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

var (
	collapseBlank = regexp.MustCompile(`\n{2,}`)
	trailingWS    = regexp.MustCompile(`[ \t]+\n`)
)

// ExtractText extracts readable body text from HTML, capped to
// MaxContentLength. Readability extraction is tried first; a plain
// strip-and-collapse pass over the document is the fallback.
func ExtractText(html, pageURL string) string {
	if text := readableText(html, pageURL); len(text) >= minTextLength {
		return capLength(text)
	}
	return capLength(strippedText(html))
}

func readableText(html, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = nil
	}
	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

// strippedText removes boilerplate elements and collapses whitespace.
func strippedText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, header, footer, aside, nav").Remove()
	text := doc.Find("body").Text()
	if text == "" {
		text = doc.Text()
	}
	text = trailingWS.ReplaceAllString(text, "\n")
	text = collapseBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func capLength(text string) string {
	if len(text) > MaxContentLength {
		return text[:MaxContentLength]
	}
	return text
}

// dateMetaSelectors are tried in priority order; the first match wins.
var dateMetaSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[name="pubdate"]`,
	`meta[name="publishdate"]`,
	`meta[name="date"]`,
	`meta[itemprop="datePublished"]`,
}

// ExtractPublishedDate attempts to extract a canonical publish date from
// page metadata: meta tags first, then JSON-LD structured data, then a
// <time> element. Returns "" when nothing matches.
func ExtractPublishedDate(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	for _, selector := range dateMetaSelectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok && content != "" {
			return strings.TrimSpace(content)
		}
	}

	if date := jsonLDPublishedDate(doc); date != "" {
		return date
	}

	if datetime, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok && datetime != "" {
		return strings.TrimSpace(datetime)
	}
	return ""
}

func jsonLDPublishedDate(doc *goquery.Document) string {
	var found string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var payload struct {
			DatePublished string `json:"datePublished"`
		}
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return true
		}
		if payload.DatePublished != "" {
			found = payload.DatePublished
			return false
		}
		return true
	})
	return found
}
