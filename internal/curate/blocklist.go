package curate

import (
	"net/url"
	"strings"
)

// blockedDomains lists evergreen / non-news hosts that pollute results.
var blockedDomains = []string{
	"en.wikipedia.org",
	"wikipedia.org",
	"investopedia.com",
	"techopedia.com",
	"builtin.com",
	"coursera.org",
	"udemy.com",
	"medium.com", // often paywalled or generic
	"quora.com",
}

// blockedURLPatterns are path fragments marking legal boilerplate or
// evergreen reference pages.
var blockedURLPatterns = []string{
	"/wiki/",
	"/about",
	"/contact",
	"/careers",
	"/privacy",
	"/terms",
}

// IsBlockedURL reports whether the URL belongs to a blocked domain or
// matches a blocked path pattern. Unparseable URLs are not blocked.
func IsBlockedURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, domain := range blockedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	path := strings.ToLower(parsed.Path)
	for _, pattern := range blockedURLPatterns {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}
