package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	spotifyAPIBaseURL = "https://api.spotify.com/v1"
	spotifyTokenURL   = "https://accounts.spotify.com/api/token"
	musicImageHint    = "album cover music"
	playlistImageHint = "playlist cover music"
)

// Music fetches albums, playlists and tracks from Spotify using a
// client-credentials bearer token held by the injected TokenCache.
type Music struct {
	client  *http.Client
	tokens  *TokenCache
	baseURL string
}

// MusicOption configures a Music provider.
type MusicOption func(*Music)

// WithMusicBaseURL overrides the Spotify API endpoint. Used in tests.
func WithMusicBaseURL(u string) MusicOption {
	return func(m *Music) { m.baseURL = u }
}

// NewSpotifyTokenCache creates a TokenCache for Spotify's accounts service.
func NewSpotifyTokenCache(clientID, clientSecret string) *TokenCache {
	return NewTokenCache(spotifyTokenURL, clientID, clientSecret)
}

// NewMusic creates a Spotify provider. tokens must not be nil.
func NewMusic(tokens *TokenCache, opts ...MusicOption) *Music {
	m := &Music{
		client:  &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
		baseURL: spotifyAPIBaseURL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Music) Name() SourceType { return SourceMusic }

// FetchDefault returns a page of new album releases.
func (m *Music) FetchDefault(ctx context.Context, page, pageSize int) ([]Item, error) {
	body, err := m.get(ctx, "/browse/new-releases", page, pageSize, nil)
	if err != nil || body == nil {
		return nil, err
	}

	var result struct {
		Albums struct {
			Items []spotifyAlbum `json:"items"`
		} `json:"albums"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode spotify new releases: %w", err)
	}

	var items []Item
	for _, album := range result.Albums.Items {
		if len(album.Images) == 0 || album.Images[0].URL == "" {
			continue
		}
		items = append(items, Item{
			ID:          "spotify-album-" + album.ID,
			Type:        TypeRecommendation,
			Title:       album.Name,
			Description: "A new album by " + joinArtists(album.Artists),
			ImageURL:    album.Images[0].URL,
			ImageHint:   musicImageHint,
			Source:      "Spotify",
			URL:         album.ExternalURLs.Spotify,
		})
	}
	return items, nil
}

// Search returns tracks matching the query.
func (m *Music) Search(ctx context.Context, query string, page, pageSize int) ([]Item, error) {
	body, err := m.get(ctx, "/search", page, pageSize, url.Values{
		"q":    {query},
		"type": {"track"},
	})
	if err != nil || body == nil {
		return nil, err
	}

	var result struct {
		Tracks struct {
			Items []spotifyTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode spotify search: %w", err)
	}

	var items []Item
	for _, track := range result.Tracks.Items {
		if len(track.Album.Images) == 0 || track.Album.Images[0].URL == "" {
			continue
		}
		items = append(items, Item{
			ID:          "spotify-track-" + track.ID,
			Type:        TypeRecommendation,
			Title:       track.Name,
			Description: fmt.Sprintf("By %s from the album %q", joinArtists(track.Artists), track.Album.Name),
			ImageURL:    track.Album.Images[0].URL,
			ImageHint:   musicImageHint,
			Source:      "Spotify",
			URL:         track.ExternalURLs.Spotify,
		})
	}
	return items, nil
}

// Featured returns a page of featured playlists, used by the trending feed.
func (m *Music) Featured(ctx context.Context, page, pageSize int) ([]Item, error) {
	body, err := m.get(ctx, "/browse/featured-playlists", page, pageSize, nil)
	if err != nil || body == nil {
		return nil, err
	}

	var result struct {
		Playlists struct {
			Items []spotifyPlaylist `json:"items"`
		} `json:"playlists"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode spotify featured playlists: %w", err)
	}

	var items []Item
	for _, playlist := range result.Playlists.Items {
		if len(playlist.Images) == 0 || playlist.Images[0].URL == "" {
			continue
		}
		description := playlist.Description
		if description == "" {
			description = "A featured playlist by Spotify."
		}
		items = append(items, Item{
			ID:          "spotify-playlist-" + playlist.ID,
			Type:        TypeRecommendation,
			Title:       playlist.Name,
			Description: description,
			ImageURL:    playlist.Images[0].URL,
			ImageHint:   playlistImageHint,
			Source:      "Spotify",
			URL:         playlist.ExternalURLs.Spotify,
		})
	}
	return items, nil
}

// get performs an authenticated GET against the Spotify API. A nil body
// with nil error means credentials are not configured.
func (m *Music) get(ctx context.Context, path string, page, pageSize int, extra url.Values) ([]byte, error) {
	token, err := m.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("spotify auth: %w", err)
	}
	if token == "" {
		return nil, nil
	}

	params := url.Values{}
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	params.Set("limit", strconv.Itoa(pageSize))
	params.Set("offset", strconv.Itoa((page-1)*pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		m.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create spotify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch spotify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read spotify response: %w", err)
	}
	return body, nil
}

func joinArtists(artists []spotifyArtist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

type spotifyArtist struct {
	Name string `json:"name"`
}

type spotifyImage struct {
	URL string `json:"url"`
}

type spotifyExternalURLs struct {
	Spotify string `json:"spotify"`
}

type spotifyAlbum struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Artists      []spotifyArtist     `json:"artists"`
	Images       []spotifyImage      `json:"images"`
	ExternalURLs spotifyExternalURLs `json:"external_urls"`
}

type spotifyTrack struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Artists      []spotifyArtist     `json:"artists"`
	ExternalURLs spotifyExternalURLs `json:"external_urls"`
	Album        struct {
		Name   string         `json:"name"`
		Images []spotifyImage `json:"images"`
	} `json:"album"`
}

type spotifyPlaylist struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Images       []spotifyImage      `json:"images"`
	ExternalURLs spotifyExternalURLs `json:"external_urls"`
}
