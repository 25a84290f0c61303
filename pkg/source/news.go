package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const newsAPIBaseURL = "https://newsapi.org/v2"

// News fetches articles from NewsAPI. The default feed pulls US
// top-headlines for a configurable category; search hits /everything.
type News struct {
	client   *http.Client
	apiKey   string
	category string
	baseURL  string
}

// NewsOption configures a News provider.
type NewsOption func(*News)

// WithNewsBaseURL overrides the NewsAPI endpoint. Used in tests.
func WithNewsBaseURL(u string) NewsOption {
	return func(n *News) { n.baseURL = u }
}

// WithNewsCategory sets the top-headlines category for the default feed.
func WithNewsCategory(category string) NewsOption {
	return func(n *News) { n.category = category }
}

// NewNews creates a NewsAPI provider.
func NewNews(apiKey string, opts ...NewsOption) *News {
	n := &News{
		client:   &http.Client{Timeout: 30 * time.Second},
		apiKey:   apiKey,
		category: "technology",
		baseURL:  newsAPIBaseURL,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *News) Name() SourceType { return SourceNews }

func (n *News) FetchDefault(ctx context.Context, page, pageSize int) ([]Item, error) {
	if n.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("country", "us")
	params.Set("category", n.category)
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))

	return n.fetch(ctx, n.baseURL+"/top-headlines?"+params.Encode())
}

func (n *News) Search(ctx context.Context, query string, page, pageSize int) ([]Item, error) {
	if n.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))

	return n.fetch(ctx, n.baseURL+"/everything?"+params.Encode())
}

func (n *News) fetch(ctx context.Context, reqURL string) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create newsapi request: %w", err)
	}
	req.Header.Set("X-Api-Key", n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch newsapi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi status %d", resp.StatusCode)
	}

	var result newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}

	var items []Item
	for _, article := range result.Articles {
		// Items without an image, title or description never reach the feed.
		if article.URLToImage == "" || article.Title == "" || article.Description == "" {
			continue
		}
		items = append(items, Item{
			ID:          "news-" + article.URL,
			Type:        TypeNews,
			Title:       article.Title,
			Description: article.Description,
			ImageURL:    article.URLToImage,
			ImageHint:   "news article",
			Source:      article.Source.Name,
			URL:         article.URL,
		})
	}

	return items, nil
}

type newsResponse struct {
	Status   string        `json:"status"`
	Articles []newsArticle `json:"articles"`
}

type newsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}
