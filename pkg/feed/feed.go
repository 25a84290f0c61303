// Package feed implements the session state machine behind an
// infinite-scroll content view: pagination, fresh-load vs append
// decisions, id-deduplicated merges and the favorite projection.
package feed

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sakhareritesh/dashboard/pkg/aggregator"
	"github.com/sakhareritesh/dashboard/pkg/source"
)

// Status is the lifecycle state of a feed.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusLoading     Status = "loading"
	StatusLoadingMore Status = "loadingMore"
	StatusSucceeded   Status = "succeeded"
	StatusFailed      Status = "failed"
)

// Fetcher produces one page of content for a request.
type Fetcher interface {
	Fetch(ctx context.Context, req aggregator.Request) ([]source.Item, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req aggregator.Request) ([]source.Item, error)

func (f FetcherFunc) Fetch(ctx context.Context, req aggregator.Request) ([]source.Item, error) {
	return f(ctx, req)
}

// FavoritesStore is the durable favorites document: full item records
// under one key, always written back in full.
type FavoritesStore interface {
	ListFavorites(ctx context.Context) ([]source.Item, error)
	ReplaceFavorites(ctx context.Context, items []source.Item) error
}

// State is a point-in-time snapshot of a feed.
type State struct {
	Items   []source.Item
	Status  Status
	Page    int
	HasMore bool
	Query   string
	Filter  string
	Error   string
}

// Feed tracks one content view. Created on view mount, discarded on
// unmount; favorites outlive it in the durable store.
type Feed struct {
	fetcher   Fetcher
	favorites FavoritesStore
	notifier  *Notifier

	mu          sync.Mutex
	items       []source.Item
	status      Status
	page        int
	hasMore     bool
	query       string
	filter      string
	err         string
	generation  uint64
	unsubscribe func()
}

// New creates a feed and subscribes it to favorites-changed broadcasts
// so its projection stays current without re-fetching content.
func New(fetcher Fetcher, favorites FavoritesStore, notifier *Notifier) *Feed {
	f := &Feed{
		fetcher:   fetcher,
		favorites: favorites,
		notifier:  notifier,
		status:    StatusIdle,
		page:      1,
		hasMore:   true,
		filter:    aggregator.FilterAll,
	}
	if notifier != nil {
		f.unsubscribe = notifier.Subscribe(func() {
			f.refreshFavorites(context.Background())
		})
	}
	return f
}

// Close detaches the feed from the notifier.
func (f *Feed) Close() {
	if f.unsubscribe != nil {
		f.unsubscribe()
	}
}

// State returns a snapshot of the feed.
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]source.Item, len(f.items))
	copy(items, f.items)
	return State{
		Items:   items,
		Status:  f.status,
		Page:    f.page,
		HasMore: f.hasMore,
		Query:   f.query,
		Filter:  f.filter,
		Error:   f.err,
	}
}

// Load requests a page for the given query/filter. A request is a fresh
// load when the query or filter changed or page is 1; the feed is then
// reset before the fetch is dispatched so stale items never linger. Any
// other request appends. Responses from superseded requests are
// discarded on arrival.
func (f *Feed) Load(ctx context.Context, page int, query, filter string) error {
	if page < 1 {
		page = 1
	}
	if filter == "" {
		filter = aggregator.FilterAll
	}

	f.mu.Lock()
	f.generation++
	gen := f.generation

	fresh := query != f.query || filter != f.filter || page == 1
	if fresh {
		f.status = StatusLoading
		f.query = query
		f.filter = filter
		f.items = nil
		f.page = 1
	} else {
		f.status = StatusLoadingMore
	}
	f.mu.Unlock()

	raw, err := f.fetcher.Fetch(ctx, aggregator.Request{Page: page, Query: query, Filter: filter})

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.generation {
		// A newer request took over while this one was in flight.
		return nil
	}

	if err != nil {
		f.status = StatusFailed
		f.err = err.Error()
		return err
	}

	processed := f.withFavorites(ctx, raw)

	if page == 1 {
		f.items = processed
	} else {
		seen := make(map[string]bool, len(f.items))
		for _, item := range f.items {
			seen[item.ID] = true
		}
		for _, item := range processed {
			if !seen[item.ID] {
				f.items = append(f.items, item)
			}
		}
	}

	f.page = page
	f.hasMore = len(raw) > 0
	f.err = ""
	f.status = StatusSucceeded
	return nil
}

// LoadMore requests the next page with the current query/filter. It is
// level-triggered: a no-op unless there is more content and no request
// is already in flight.
func (f *Feed) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if !f.hasMore || f.status == StatusLoading || f.status == StatusLoadingMore {
		f.mu.Unlock()
		return nil
	}
	page := f.page + 1
	query := f.query
	filter := f.filter
	f.mu.Unlock()

	return f.Load(ctx, page, query, filter)
}

// ToggleFavorite adds or removes the item from the durable favorites
// document (full overwrite), mirrors the flag on the in-memory copy and
// broadcasts the change to other mounted views.
func (f *Feed) ToggleFavorite(ctx context.Context, item source.Item) error {
	favorites, err := f.favorites.ListFavorites(ctx)
	if err != nil {
		return fmt.Errorf("read favorites: %w", err)
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
		stored := item
		stored.IsFavorite = true
		kept = append(kept, stored)
	}

	if err := f.favorites.ReplaceFavorites(ctx, kept); err != nil {
		return fmt.Errorf("write favorites: %w", err)
	}

	f.mu.Lock()
	for i := range f.items {
		if f.items[i].ID == item.ID {
			f.items[i].IsFavorite = !present
			break
		}
	}
	f.mu.Unlock()

	if f.notifier != nil {
		f.notifier.Notify()
	}
	return nil
}

// withFavorites stamps favorite status onto incoming items from the
// durable store, ignoring whatever the raw payload carried.
func (f *Feed) withFavorites(ctx context.Context, raw []source.Item) []source.Item {
	ids := f.favoriteIDs(ctx)

	processed := make([]source.Item, len(raw))
	for i, item := range raw {
		item.IsFavorite = ids[item.ID]
		processed[i] = item
	}
	return processed
}

// refreshFavorites re-derives the projection for items already in the
// feed. Runs on favorites-changed broadcasts from other views.
func (f *Feed) refreshFavorites(ctx context.Context) {
	ids := f.favoriteIDs(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		f.items[i].IsFavorite = ids[f.items[i].ID]
	}
}

func (f *Feed) favoriteIDs(ctx context.Context) map[string]bool {
	favorites, err := f.favorites.ListFavorites(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "feed: read favorites: %v\n", err)
		return nil
	}

	ids := make(map[string]bool, len(favorites))
	for _, fav := range favorites {
		ids[fav.ID] = true
	}
	return ids
}
