// Package server provides the HTTP API for the dashboard.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sakhareritesh/dashboard/internal/profile"
	"github.com/sakhareritesh/dashboard/internal/store"
	"github.com/sakhareritesh/dashboard/pkg/aggregator"
	"github.com/sakhareritesh/dashboard/pkg/feed"
	"github.com/sakhareritesh/dashboard/pkg/source"
)

// Server provides the HTTP API.
type Server struct {
	agg      *aggregator.Aggregator
	trending *aggregator.Trending
	snapshot *aggregator.Snapshot
	store    store.Store
	profiles *profile.Manager
	avatars  *profile.AvatarGenerator
	notifier *feed.Notifier
	port     int
}

// New creates a new HTTP server. avatars may be nil when no image API
// key is configured.
func New(
	agg *aggregator.Aggregator,
	trending *aggregator.Trending,
	snapshot *aggregator.Snapshot,
	st store.Store,
	profiles *profile.Manager,
	avatars *profile.AvatarGenerator,
	notifier *feed.Notifier,
	port int,
) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		agg:      agg,
		trending: trending,
		snapshot: snapshot,
		store:    st,
		profiles: profiles,
		avatars:  avatars,
		notifier: notifier,
		port:     port,
	}
}

// Handler returns the route mux. Split out so tests can drive it with
// httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/content", s.handleContent)
	mux.HandleFunc("/api/trending", s.handleTrending)
	mux.HandleFunc("/api/favorites", s.handleFavorites)
	mux.HandleFunc("/api/favorites/toggle", s.handleFavoriteToggle)
	mux.HandleFunc("/api/preferences/theme", s.handleTheme)
	mux.HandleFunc("/api/profile", s.handleProfile)
	mux.HandleFunc("/api/profile/avatar", s.handleAvatar)
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("dashboard server listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
		return
	}

	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}

	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = aggregator.FilterAll
	}
	if !source.ValidFilter(filter) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": fmt.Sprintf("unknown filter %q", filter),
		})
		return
	}

	items, err := s.agg.Fetch(r.Context(), aggregator.Request{
		Page:   page,
		Query:  r.URL.Query().Get("search"),
		Filter: filter,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}

	writeItems(w, items)
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
		return
	}

	if s.snapshot != nil {
		if items, ok := s.snapshot.Get(); ok {
			writeItems(w, items)
			return
		}
	}

	items, err := s.trending.Fetch(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}

	if s.snapshot != nil {
		s.snapshot.Set(items)
	}
	writeItems(w, items)
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		favorites, err := s.store.ListFavorites(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
			return
		}
		writeItems(w, favorites)

	case http.MethodPut:
		var items []source.Item
		if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid favorites payload"})
			return
		}
		if err := s.store.ReplaceFavorites(r.Context(), items); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
			return
		}
		s.notifier.Notify()
		writeJSON(w, http.StatusOK, map[string]int{"count": len(items)})

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
	}
}

// handleFavoriteToggle adds or removes one item from the favorites
// document. The whole document is rewritten; the store copy is the
// source of truth for favorite status.
func (s *Server) handleFavoriteToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
		return
	}

	var item source.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil || item.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid item payload"})
		return
	}

	favorites, err := s.store.ListFavorites(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}

	present := false
	kept := favorites[:0]
	for _, fav := range favorites {
		if fav.ID == item.ID {
			present = true
			continue
		}
		kept = append(kept, fav)
	}
	if !present {
		item.IsFavorite = true
		kept = append(kept, item)
	}

	if err := s.store.ReplaceFavorites(r.Context(), kept); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}

	s.notifier.Notify()
	writeJSON(w, http.StatusOK, map[string]bool{"isFavorite": !present})
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		theme, err := s.store.GetTheme(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"theme": theme})

	case http.MethodPut:
		var body struct {
			Theme string `json:"theme"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid theme payload"})
			return
		}
		if err := s.store.SetTheme(r.Context(), body.Theme); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"theme": body.Theme})

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
	}
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		p := s.profiles.Current()
		if p == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "profile not found"})
			return
		}
		writeJSON(w, http.StatusOK, p)

	case http.MethodPut:
		var body struct {
			Name   *string `json:"name"`
			Avatar *string `json:"avatar"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid profile payload"})
			return
		}

		result, err := s.profiles.UpdateProfile(r.Context(), profile.Update{
			Name:   body.Name,
			Avatar: body.Avatar,
		})
		if err != nil {
			status := http.StatusInternalServerError
			if result.RolledBack {
				// The optimistic change was reverted; tell the client
				// which state it is back on.
				writeJSON(w, status, map[string]any{
					"message":  err.Error(),
					"previous": result.Previous,
				})
				return
			}
			writeJSON(w, status, map[string]string{"message": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, result.Profile)

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
	}
}

func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
		return
	}
	if s.avatars == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "avatar generation not configured"})
		return
	}

	var body struct {
		Hint string `json:"hint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Hint == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "hint is required"})
		return
	}

	avatar, err := s.avatars.Generate(r.Context(), body.Hint)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"avatar": avatar})
}

// writeItems always serializes a JSON array, never null.
func writeItems(w http.ResponseWriter, items []source.Item) {
	if items == nil {
		items = []source.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
