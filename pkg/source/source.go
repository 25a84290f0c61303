package source

import "context"

// SourceType identifies which platform a content item came from. The
// values double as the recognized feed filter values.
type SourceType string

const (
	SourceNews   SourceType = "news"
	SourceMovie  SourceType = "movie"
	SourceMusic  SourceType = "music"
	SourceSocial SourceType = "social"
)

// ItemType classifies an item for display. Closed enumeration.
type ItemType string

const (
	TypeNews           ItemType = "news"
	TypeRecommendation ItemType = "recommendation"
	TypeSocial         ItemType = "social"
)

// Item is the standardized data model for all providers. IDs are
// namespaced by provider (news-<url>, movie-<id>, spotify-track-<id>,
// social-<n>) so they stay unique across the whole feed.
type Item struct {
	ID          string   `json:"id"`
	Type        ItemType `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	ImageHint   string   `json:"imageHint"`
	Source      string   `json:"source"`
	URL         string   `json:"url"`
	IsFavorite  bool     `json:"isFavorite"`
}

// Provider is the interface every content provider must implement.
// Both operations return normalized items. A provider with missing
// credentials returns an empty slice and no error.
type Provider interface {
	Name() SourceType
	FetchDefault(ctx context.Context, page, pageSize int) ([]Item, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]Item, error)
}

// AllSourceTypes returns all known source types.
func AllSourceTypes() []SourceType {
	return []SourceType{SourceNews, SourceMovie, SourceMusic, SourceSocial}
}

// ValidFilter reports whether f is "all" or one of the known source types.
func ValidFilter(f string) bool {
	if f == "all" {
		return true
	}
	for _, st := range AllSourceTypes() {
		if f == string(st) {
			return true
		}
	}
	return false
}
