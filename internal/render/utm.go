package render

import "net/url"

// Tracking parameter values stamped on every outgoing newsletter link.
const (
	utmSource = "ai_this_week"
	utmMedium = "email"
)

// AddUTM appends tracking parameters to an article URL. Existing query
// parameters, including already-present utm_* values, are never
// overwritten, so applying twice is a no-op for params already set.
// An empty URL stays empty.
func AddUTM(rawURL, sectionKey, runDate string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	query := parsed.Query()
	setIfAbsent(query, "utm_source", utmSource)
	setIfAbsent(query, "utm_medium", utmMedium)
	setIfAbsent(query, "utm_campaign", runDate)
	setIfAbsent(query, "utm_content", sectionKey)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func setIfAbsent(query url.Values, key, value string) {
	if query.Get(key) == "" {
		query.Set(key, value)
	}
}
