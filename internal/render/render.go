// Package render assembles the final newsletter HTML from per-section
// summary items.
package render

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"aibrief/internal/core"
)

// sectionTitles maps section keys to display titles per language
var sectionTitles = map[string]map[core.SectionKey]string{
	"en": {
		core.SectionTrending:      "Trending in AI",
		core.SectionCanadian:      "Canadian AI News",
		core.SectionGlobal:        "Global AI Policy & Governance",
		core.SectionEvents:        "Upcoming AI Events",
		core.SectionEventsPublic:  "Public Service Learning & Events",
		core.SectionAgri:          "AI in Agriculture & Grain",
		core.SectionAIProgress:    "AI Progress & Benchmarks",
		core.SectionResearchPlain: "Research, in Plain Language",
		core.SectionDeepDive:      "Deep Dive",
	},
	"fr": {
		core.SectionTrending:      "Tendances en IA",
		core.SectionCanadian:      "Nouvelles canadiennes en IA",
		core.SectionGlobal:        "Politique et gouvernance mondiales de l'IA",
		core.SectionEvents:        "Événements IA à venir",
		core.SectionEventsPublic:  "Apprentissage et événements de la fonction publique",
		core.SectionAgri:          "L'IA en agriculture et dans le secteur céréalier",
		core.SectionAIProgress:    "Progrès et bancs d'essai en IA",
		core.SectionResearchPlain: "La recherche, en langage clair",
		core.SectionDeepDive:      "Analyse approfondie",
	},
}

// Newsletter is the data handed to the HTML template
type Newsletter struct {
	RunDate  string
	Lang     string
	TLDR     []string
	Sections []Section
}

// Section is one rendered newsletter block
type Section struct {
	Key   string
	Title string
	Items []core.SummaryItem
}

const newsletterTemplate = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>AI This Week — {{.RunDate}}</title>
<style>
body { font-family: -apple-system, Segoe UI, Arial, sans-serif; color: #1a1a1a; max-width: 720px; margin: 0 auto; padding: 24px; }
h1 { font-size: 1.5em; border-bottom: 2px solid #26374a; padding-bottom: 8px; }
h2 { font-size: 1.15em; color: #26374a; margin-top: 28px; }
.tldr { background: #f5f7fa; border-left: 4px solid #26374a; padding: 12px 16px; }
.item { margin-bottom: 16px; }
.headline { font-weight: 600; }
.meta { color: #666; font-size: 0.85em; }
</style>
</head>
<body>
<h1>AI This Week &mdash; {{.RunDate}}</h1>
{{if .TLDR}}<div class="tldr"><ul>{{range .TLDR}}<li>{{.}}</li>{{end}}</ul></div>{{end}}
{{range .Sections}}{{if .Items}}
<h2>{{.Title}}</h2>
{{range .Items}}<div class="item">
<div class="headline"><a href="{{.LiveLink}}">{{.Headline}}</a></div>
<div>{{.SummaryText}}</div>
<div class="meta">{{if .Date}}{{.Date}}{{end}}{{if and .Date .Source}} &middot; {{end}}{{if .Source}}{{.Source}}{{end}}</div>
</div>
{{end}}{{end}}{{end}}
</body>
</html>
`

// Render produces the newsletter HTML. Sections appear in canonical
// order, empty sections are omitted, events are sorted by date, and
// every link carries tracking parameters.
func Render(sections map[core.SectionKey][]core.SummaryItem, runDate string, tldr []string, lang string) (string, error) {
	titles, ok := sectionTitles[lang]
	if !ok {
		titles = sectionTitles["en"]
	}

	data := Newsletter{RunDate: runDate, Lang: lang, TLDR: tldr}
	for _, key := range core.SectionOrder {
		items := append([]core.SummaryItem(nil), sections[key]...)
		if len(items) == 0 {
			continue
		}
		if key == core.SectionEvents || key == core.SectionEventsPublic {
			sort.SliceStable(items, func(i, j int) bool { return items[i].Date < items[j].Date })
		}
		for i := range items {
			items[i].LiveLink = AddUTM(items[i].LiveLink, string(key), runDate)
		}
		data.Sections = append(data.Sections, Section{
			Key:   string(key),
			Title: titles[key],
			Items: items,
		})
	}

	tmpl, err := template.New("newsletter").Parse(newsletterTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse newsletter template: %w", err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render newsletter: %w", err)
	}
	return b.String(), nil
}

// WriteNewsletter writes rendered HTML to the output directory,
// suffixing the filename for non-English editions. Returns the path.
func WriteNewsletter(html, outputDir, lang string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	suffix := ""
	if lang != "" && lang != "en" {
		suffix = "-" + lang
	}
	path := filepath.Join(outputDir, fmt.Sprintf("newsletter%s.html", suffix))
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("failed to write newsletter: %w", err)
	}
	return path, nil
}
