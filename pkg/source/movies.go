package source

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p/w500"
)

// Movies fetches movie recommendations from TMDB.
type Movies struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// MoviesOption configures a Movies provider.
type MoviesOption func(*Movies)

// WithMoviesBaseURL overrides the TMDB endpoint. Used in tests.
func WithMoviesBaseURL(u string) MoviesOption {
	return func(m *Movies) { m.baseURL = u }
}

// NewMovies creates a TMDB provider.
func NewMovies(apiKey string, opts ...MoviesOption) *Movies {
	m := &Movies{
		client:  &http.Client{Timeout: 30 * time.Second},
		apiKey:  apiKey,
		baseURL: tmdbBaseURL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Movies) Name() SourceType { return SourceMovie }

// FetchDefault pulls a page of popular movies. A random page offset keeps
// the default feed varied between refreshes. pageSize is fixed by TMDB.
func (m *Movies) FetchDefault(ctx context.Context, page, _ int) ([]Item, error) {
	if m.apiKey == "" {
		return nil, nil
	}

	fetchPage := page + rand.Intn(10)

	params := url.Values{}
	params.Set("language", "en-US")
	params.Set("page", strconv.Itoa(fetchPage))
	params.Set("api_key", m.apiKey)

	return m.fetch(ctx, m.baseURL+"/movie/popular?"+params.Encode(), 0)
}

func (m *Movies) Search(ctx context.Context, query string, page, _ int) ([]Item, error) {
	if m.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("language", "en-US")
	params.Set("page", strconv.Itoa(page))
	params.Set("api_key", m.apiKey)

	return m.fetch(ctx, m.baseURL+"/search/movie?"+params.Encode(), 0)
}

// Trending returns today's top 10 trending movies.
func (m *Movies) Trending(ctx context.Context) ([]Item, error) {
	if m.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("language", "en-US")
	params.Set("api_key", m.apiKey)

	return m.fetch(ctx, m.baseURL+"/trending/movie/day?"+params.Encode(), 10)
}

func (m *Movies) fetch(ctx context.Context, reqURL string, limit int) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create tmdb request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tmdb: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb status %d", resp.StatusCode)
	}

	var result tmdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode tmdb response: %w", err)
	}

	var items []Item
	for _, movie := range result.Results {
		if movie.PosterPath == "" || movie.Title == "" || movie.Overview == "" {
			continue
		}
		items = append(items, Item{
			ID:          fmt.Sprintf("movie-%d", movie.ID),
			Type:        TypeRecommendation,
			Title:       movie.Title,
			Description: movie.Overview,
			ImageURL:    tmdbImageBaseURL + movie.PosterPath,
			ImageHint:   "movie poster",
			Source:      "TMDB",
			URL:         fmt.Sprintf("https://www.themoviedb.org/movie/%d", movie.ID),
		})
		if limit > 0 && len(items) >= limit {
			break
		}
	}

	return items, nil
}

type tmdbResponse struct {
	Results []tmdbMovie `json:"results"`
}

type tmdbMovie struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Overview   string `json:"overview"`
	PosterPath string `json:"poster_path"`
}
