package feeds

import (
	"context"

	"aibrief/internal/core"
)

// CuratedFeeds are hand-picked vendor and research blogs
var CuratedFeeds = []string{
	"https://blog.openai.com/rss/",
	"https://feedproxy.feedly.com/5b36e586-cfce-45df-9d64-1cf9fed78e5b", // Anthropic
	"https://deepmind.com/blog/feed/basic/",
	"http://research.microsoft.com/rss/news.xml",
	"http://www.technologyreview.com/rss/rss.aspx",
	"https://ai.facebook.com/blog/rss",
	"https://ai.googleblog.com/atom.xml",
	"https://www.oecd.ai/feed",
	"https://hai.stanford.edu/rss.xml",
}

// GoogleAlertFeeds maps newsletter sections to their Google Alert RSS feeds
var GoogleAlertFeeds = map[core.SectionKey][]string{
	core.SectionTrending: {
		"https://www.google.com/alerts/feeds/03030665084568507357/6619274340374812968",  // AGI
		"https://www.google.com/alerts/feeds/03030665084568507357/5237285988387868375",  // ASI
		"https://www.google.com/alerts/feeds/03030665084568507357/11653796448320099668", // Job Replacement - AI
	},
	core.SectionCanadian: {
		"https://www.google.com/alerts/feeds/03030665084568507357/8343122122122789666", // Canada - AI
		"https://www.google.com/alerts/feeds/03030665084568507357/5306089899663451631", // Public Sector - AI
	},
	core.SectionGlobal: {
		"https://www.google.com/alerts/feeds/03030665084568507357/2891758781116511337",  // Ethics - AI
		"https://www.google.com/alerts/feeds/03030665084568507357/2278791836030122678",  // Governance - AI
		"https://www.google.com/alerts/feeds/03030665084568507357/16866512384761599386", // Privacy - AI
		"https://www.google.com/alerts/feeds/03030665084568507357/7622957089141856354",  // Regulation - AI
		"https://www.google.com/alerts/feeds/03030665084568507357/15942459126004772098", // Security - AI
	},
	core.SectionAgri: {
		"https://www.google.com/alerts/feeds/03030665084568507357/15755737833312608799", // Agriculture - AI
		"https://www.google.com/alerts/feeds/03030665084568507357/3281559451078185126",  // Crops - AI
		"https://www.google.com/alerts/feeds/03030665084568507357/5761797510369087166",  // Grain - AI
		"https://www.google.com/alerts/feeds/03030665084568507357/9368672943932362999",  // Grain Industry - AI
		"https://www.google.com/alerts/feeds/03030665084568507357/12957642636281638741", // Oil seeds - AI
		"https://www.google.com/alerts/feeds/03030665084568507357/12957642636281637464", // Wheat - AI
		"https://www.google.com/alerts/feeds/03030665084568507357/14624198102712688249", // Canadian Grain Commission
		"https://www.google.com/alerts/feeds/03030665084568507357/13610686801601706073", // Canadian Grain Industry
		"https://www.google.com/alerts/feeds/03030665084568507357/17711904352499016105", // Grain Discovery/Inarix
	},
}

// FetchGoogleAlerts fetches the Google Alert feeds mapped to a section
func (f *Fetcher) FetchGoogleAlerts(ctx context.Context, section core.SectionKey, limit, days int) []core.CandidateItem {
	urls := GoogleAlertFeeds[section]
	if len(urls) == 0 {
		return nil
	}
	return f.fetchMany(ctx, urls, limit, FeedOptions{
		SourceTag:  core.SourceGoogleAlert,
		Days:       days,
		SnippetLen: 500,
	})
}

// FetchCuratedFeeds fetches the curated vendor blogs
func (f *Fetcher) FetchCuratedFeeds(ctx context.Context, limit, days int) []core.CandidateItem {
	return f.fetchMany(ctx, CuratedFeeds, limit, FeedOptions{
		SourceTag:  core.SourceRSS,
		Days:       days,
		SnippetLen: 500,
	})
}

// FetchProductHuntTrending fetches AI product launches from Product Hunt
func (f *Fetcher) FetchProductHuntTrending(ctx context.Context, limit, days int) []core.CandidateItem {
	items, err := f.FetchFeed(ctx, f.productHuntEndpoint, FeedOptions{
		SourceTag: core.SourceProductHunt,
		Limit:     limit,
		Days:      days,
	})
	if err != nil {
		return nil
	}
	for i := range items {
		items[i].Snippet = "Product Hunt AI launch"
	}
	return items
}
