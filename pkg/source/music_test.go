package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func musicTestServer(t *testing.T, handler http.HandlerFunc) *Music {
	t.Helper()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token": "test-token", "expires_in": 3600}`))
	}))
	t.Cleanup(tokenSrv.Close)

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("expected bearer token, got %q", got)
		}
		handler(w, r)
	}))
	t.Cleanup(apiSrv.Close)

	tokens := NewTokenCache(tokenSrv.URL, "id", "secret")
	return NewMusic(tokens, WithMusicBaseURL(apiSrv.URL))
}

func TestMusic_FetchDefaultReturnsNewReleases(t *testing.T) {
	music := musicTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/browse/new-releases" {
			t.Errorf("expected /browse/new-releases, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("limit") != "10" || q.Get("offset") != "10" {
			t.Errorf("expected limit=10 offset=10, got %v", q)
		}

		w.Write([]byte(`{
			"albums": {
				"items": [
					{
						"id": "alb1",
						"name": "First Album",
						"artists": [{"name": "Artist A"}, {"name": "Artist B"}],
						"images": [{"url": "https://img/alb1.jpg"}],
						"external_urls": {"spotify": "https://open.spotify.com/album/alb1"}
					},
					{
						"id": "alb2",
						"name": "No Art",
						"artists": [{"name": "Artist C"}],
						"images": [],
						"external_urls": {"spotify": "https://open.spotify.com/album/alb2"}
					}
				]
			}
		}`))
	})

	items, err := music.FetchDefault(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item after filtering, got %d", len(items))
	}

	item := items[0]
	if item.ID != "spotify-album-alb1" {
		t.Errorf("unexpected id %q", item.ID)
	}
	if item.Description != "A new album by Artist A, Artist B" {
		t.Errorf("unexpected description %q", item.Description)
	}
	if item.Source != "Spotify" {
		t.Errorf("unexpected source %q", item.Source)
	}
}

func TestMusic_SearchReturnsTracks(t *testing.T) {
	music := musicTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("expected /search, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "daft punk" || q.Get("type") != "track" {
			t.Errorf("unexpected search params: %v", q)
		}

		w.Write([]byte(`{
			"tracks": {
				"items": [
					{
						"id": "trk1",
						"name": "One More Time",
						"artists": [{"name": "Daft Punk"}],
						"album": {"name": "Discovery", "images": [{"url": "https://img/trk1.jpg"}]},
						"external_urls": {"spotify": "https://open.spotify.com/track/trk1"}
					}
				]
			}
		}`))
	})

	items, err := music.Search(context.Background(), "daft punk", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.ID != "spotify-track-trk1" {
		t.Errorf("unexpected id %q", item.ID)
	}
	if item.Description != `By Daft Punk from the album "Discovery"` {
		t.Errorf("unexpected description %q", item.Description)
	}
}

func TestMusic_FeaturedFillsMissingDescriptions(t *testing.T) {
	music := musicTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/browse/featured-playlists" {
			t.Errorf("expected /browse/featured-playlists, got %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"playlists": {
				"items": [
					{
						"id": "pl1",
						"name": "Lo-fi Beats",
						"description": "",
						"images": [{"url": "https://img/pl1.jpg"}],
						"external_urls": {"spotify": "https://open.spotify.com/playlist/pl1"}
					}
				]
			}
		}`))
	})

	items, err := music.Featured(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].ID != "spotify-playlist-pl1" {
		t.Errorf("unexpected id %q", items[0].ID)
	}
	if items[0].Description != "A featured playlist by Spotify." {
		t.Errorf("expected fallback description, got %q", items[0].Description)
	}
}

func TestMusic_NoCredentialsIsSilentlyEmpty(t *testing.T) {
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made without credentials")
	}))
	defer apiSrv.Close()

	tokens := NewTokenCache(apiSrv.URL, "", "")
	music := NewMusic(tokens, WithMusicBaseURL(apiSrv.URL))

	items, err := music.FetchDefault(context.Background(), 1, 10)
	if err != nil || items != nil {
		t.Fatalf("expected nil, nil without credentials, got %v, %v", items, err)
	}
}
