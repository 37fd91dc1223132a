package news

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/Kevinjiang991217/stock-dashboard/models"
	"github.com/mmcdole/gofeed"
)

// DefaultFeedGroups are the headline feeds polled by the aggregator,
// keyed by the language tag attached to every item from the group.
var DefaultFeedGroups = map[string][]string{
	"english": {
		"https://feeds.reuters.com/reuters/businessNews",
		"https://feeds.bloomberg.com/markets/news.rss",
	},
}

// Service aggregates headlines from a set of RSS feed groups.
type Service struct {
	parser       *gofeed.Parser
	feedGroups   map[string][]string
	perFeedLimit int
	totalLimit   int
}

func NewService(feedGroups map[string][]string, perFeedLimit, totalLimit int) *Service {
	return &Service{
		parser:       gofeed.NewParser(),
		feedGroups:   feedGroups,
		perFeedLimit: perFeedLimit,
		totalLimit:   totalLimit,
	}
}

// FetchNews fetches every configured feed, takes the first perFeedLimit
// items from each, merges and returns the totalLimit most recent. A
// failing feed is skipped; it never aborts the aggregation. The result
// is never nil, so even a total outage caches an empty list and renders
// as [] rather than null.
func (s *Service) FetchNews(ctx context.Context) []models.NewsItem {
	all := make([]models.NewsItem, 0)

	for language, urls := range s.feedGroups {
		for _, feedURL := range urls {
			feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
			if err != nil {
				log.Printf("Error fetching feed %s: %v", feedURL, err)
				continue
			}

			sourceName := feed.Title
			if sourceName == "" {
				sourceName = language + " news"
			}

			items := feed.Items
			if len(items) > s.perFeedLimit {
				items = items[:s.perFeedLimit]
			}
			for _, item := range items {
				pubDate := time.Now()
				if item.PublishedParsed != nil {
					pubDate = *item.PublishedParsed
				}
				all = append(all, models.NewsItem{
					Title:    item.Title,
					Link:     item.Link,
					PubDate:  pubDate,
					Source:   sourceName,
					Language: language,
				})
			}
		}
	}

	return SortAndTrim(all, s.totalLimit)
}

// SortAndTrim stable-sorts items by publish time descending and caps
// the result at totalLimit.
func SortAndTrim(items []models.NewsItem, totalLimit int) []models.NewsItem {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PubDate.After(items[j].PubDate)
	})
	if len(items) > totalLimit {
		items = items[:totalLimit]
	}
	return items
}
