package source

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSFeed is a named RSS/Atom feed URL.
type RSSFeed struct {
	Name string
	URL  string
}

// RSSNews serves news items from RSS/Atom feeds. It backs the news
// filter when no NewsAPI key is configured: all feeds are fetched and
// the combined entries windowed by page/pageSize.
type RSSNews struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  []RSSFeed
}

// NewRSSNews creates an RSS-backed news provider.
func NewRSSNews(feeds []RSSFeed) *RSSNews {
	return &RSSNews{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		feeds:  feeds,
	}
}

func (r *RSSNews) Name() SourceType { return SourceNews }

func (r *RSSNews) FetchDefault(ctx context.Context, page, pageSize int) ([]Item, error) {
	all, err := r.collect(ctx)
	if err != nil {
		return nil, err
	}

	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (r *RSSNews) Search(ctx context.Context, query string, page, pageSize int) ([]Item, error) {
	all, err := r.collect(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	var matched []Item
	for _, item := range all {
		if strings.Contains(strings.ToLower(item.Title), q) ||
			strings.Contains(strings.ToLower(item.Description), q) {
			matched = append(matched, item)
		}
	}

	start := (page - 1) * pageSize
	if start >= len(matched) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (r *RSSNews) collect(ctx context.Context) ([]Item, error) {
	var allItems []Item
	var lastErr error

	for _, feed := range r.feeds {
		items, err := r.collectFeed(ctx, feed)
		if err != nil {
			lastErr = err
			fmt.Fprintf(os.Stderr, "rss feed %s error: %v\n", feed.Name, err)
			continue
		}
		allItems = append(allItems, items...)
	}

	if len(allItems) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return allItems, nil
}

func (r *RSSNews) collectFeed(ctx context.Context, feed RSSFeed) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create rss request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", "dashboard/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rss %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse rss %s: %w", feed.Name, err)
	}

	var items []Item
	for _, entry := range parsed.Items {
		if entry.Title == "" || entry.Description == "" {
			continue
		}

		link := entry.Link
		if link == "" && len(entry.Links) > 0 {
			link = entry.Links[0]
		}

		imageURL := ""
		if entry.Image != nil {
			imageURL = entry.Image.URL
		}
		if imageURL == "" {
			// Feeds rarely carry images; a placeholder keeps the card layout.
			imageURL = "https://placehold.co/600x400.png"
		}

		id := entry.GUID
		if id == "" {
			id = link
		}

		items = append(items, Item{
			ID:          "news-" + id,
			Type:        TypeNews,
			Title:       entry.Title,
			Description: truncate(entry.Description, 500),
			ImageURL:    imageURL,
			ImageHint:   "news article",
			Source:      feed.Name,
			URL:         link,
		})
	}

	return items, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
