package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sakhareritesh/dashboard/pkg/aggregator"
	"github.com/sakhareritesh/dashboard/pkg/source"
)

// memFavorites is an in-memory favorites document.
type memFavorites struct {
	mu    sync.Mutex
	items []source.Item
}

func (m *memFavorites) ListFavorites(context.Context) ([]source.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]source.Item, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *memFavorites) ReplaceFavorites(_ context.Context, items []source.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
	return nil
}

func itemsOf(ids ...string) []source.Item {
	out := make([]source.Item, len(ids))
	for i, id := range ids {
		out[i] = source.Item{ID: id, Title: id, Description: id}
	}
	return out
}

func staticFetcher(items []source.Item) Fetcher {
	return FetcherFunc(func(context.Context, aggregator.Request) ([]source.Item, error) {
		return items, nil
	})
}

func TestLoad_FreshLoadReplacesItems(t *testing.T) {
	f := New(staticFetcher(itemsOf("news-1", "movie-2", "social-3")), &memFavorites{}, nil)

	if err := f.Load(context.Background(), 1, "Technology", "news"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := f.State()
	if state.Status != StatusSucceeded {
		t.Errorf("expected succeeded, got %s", state.Status)
	}
	if len(state.Items) != 3 {
		t.Errorf("expected 3 items, got %d", len(state.Items))
	}
	if state.Page != 1 || !state.HasMore {
		t.Errorf("expected page=1 hasMore=true, got page=%d hasMore=%v", state.Page, state.HasMore)
	}
	if state.Query != "Technology" || state.Filter != "news" {
		t.Errorf("query/filter not recorded: %q %q", state.Query, state.Filter)
	}
}

func TestLoad_EmptyFirstPageEndsFeed(t *testing.T) {
	f := New(staticFetcher(nil), &memFavorites{}, nil)

	if err := f.Load(context.Background(), 1, "no such thing", "all"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := f.State()
	if state.Status != StatusSucceeded {
		t.Errorf("empty page is a success, got %s", state.Status)
	}
	if state.HasMore {
		t.Error("empty page must clear hasMore")
	}
	if len(state.Items) != 0 {
		t.Errorf("expected no items, got %d", len(state.Items))
	}
}

func TestLoad_AppendSkipsDuplicateIDs(t *testing.T) {
	pages := map[int][]source.Item{
		1: itemsOf("a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8", "a9"),
		// Page 2 overlaps page 1 on three ids.
		2: itemsOf("a0", "a1", "a2", "b0", "b1", "b2", "b3", "b4", "b5", "b6"),
	}
	fetcher := FetcherFunc(func(_ context.Context, req aggregator.Request) ([]source.Item, error) {
		return pages[req.Page], nil
	})

	f := New(fetcher, &memFavorites{}, nil)
	ctx := context.Background()

	if err := f.Load(ctx, 1, "", "all"); err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if err := f.Load(ctx, 2, "", "all"); err != nil {
		t.Fatalf("page 2: %v", err)
	}

	state := f.State()
	if len(state.Items) != 17 {
		t.Fatalf("expected 17 items after deduplicated append, got %d", len(state.Items))
	}
	if state.Page != 2 {
		t.Errorf("expected page 2, got %d", state.Page)
	}

	seen := make(map[string]int)
	for _, item := range state.Items {
		seen[item.ID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("item %s appears %d times", id, n)
		}
	}
}

func TestLoad_QueryChangeResetsFeed(t *testing.T) {
	fetcher := FetcherFunc(func(_ context.Context, req aggregator.Request) ([]source.Item, error) {
		if req.Query == "first" {
			return itemsOf("f1", "f2", "f3"), nil
		}
		return itemsOf("s1", "s2"), nil
	})

	f := New(fetcher, &memFavorites{}, nil)
	ctx := context.Background()

	if err := f.Load(ctx, 1, "first", "all"); err != nil {
		t.Fatalf("first query: %v", err)
	}
	// A new query counts as a fresh load even on a later page number.
	if err := f.Load(ctx, 2, "second", "all"); err != nil {
		t.Fatalf("second query: %v", err)
	}

	state := f.State()
	if len(state.Items) != 2 {
		t.Fatalf("expected only the new query's items, got %d", len(state.Items))
	}
	for _, item := range state.Items {
		if item.ID == "f1" || item.ID == "f2" || item.ID == "f3" {
			t.Errorf("stale item %s survived a query change", item.ID)
		}
	}
}

func TestLoad_FailurePreservesExistingItems(t *testing.T) {
	calls := 0
	fetcher := FetcherFunc(func(context.Context, aggregator.Request) ([]source.Item, error) {
		calls++
		if calls == 1 {
			return itemsOf("a", "b", "c"), nil
		}
		return nil, errors.New("network down")
	})

	f := New(fetcher, &memFavorites{}, nil)
	ctx := context.Background()

	if err := f.Load(ctx, 1, "", "all"); err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if err := f.Load(ctx, 2, "", "all"); err == nil {
		t.Fatal("expected an error on page 2")
	}

	state := f.State()
	if state.Status != StatusFailed {
		t.Errorf("expected failed, got %s", state.Status)
	}
	if state.Error == "" {
		t.Error("error message must be stored")
	}
	if len(state.Items) != 3 {
		t.Errorf("failed append must keep prior items, got %d", len(state.Items))
	}
	if state.Page != 1 {
		t.Errorf("failed append must not advance page, got %d", state.Page)
	}
}

func TestLoad_FavoriteStatusComesFromStoreNotPayload(t *testing.T) {
	favs := &memFavorites{items: []source.Item{{ID: "movie-42", IsFavorite: true}}}

	raw := []source.Item{
		{ID: "movie-42", IsFavorite: false}, // store says favorite
		{ID: "news-7", IsFavorite: true},    // payload lies
	}

	f := New(staticFetcher(raw), favs, nil)
	if err := f.Load(context.Background(), 1, "", "all"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, item := range f.State().Items {
		switch item.ID {
		case "movie-42":
			if !item.IsFavorite {
				t.Error("movie-42 is in the favorites store, projection must be true")
			}
		case "news-7":
			if item.IsFavorite {
				t.Error("news-7 is not stored, payload flag must be ignored")
			}
		}
	}
}

func TestToggleFavorite_RoundTrip(t *testing.T) {
	favs := &memFavorites{}
	item := source.Item{ID: "movie-42", Title: "The Answer"}

	f := New(staticFetcher([]source.Item{item}), favs, NewNotifier())
	defer f.Close()
	ctx := context.Background()

	if err := f.Load(ctx, 1, "", "all"); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := f.ToggleFavorite(ctx, item); err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	stored, _ := favs.ListFavorites(ctx)
	if len(stored) != 1 || !stored[0].IsFavorite {
		t.Fatalf("expected one stored favorite with flag set, got %+v", stored)
	}
	if !f.State().Items[0].IsFavorite {
		t.Error("in-memory flag must mirror the toggle")
	}

	if err := f.ToggleFavorite(ctx, item); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	stored, _ = favs.ListFavorites(ctx)
	if len(stored) != 0 {
		t.Fatalf("double toggle must restore the original store, got %+v", stored)
	}
	if f.State().Items[0].IsFavorite {
		t.Error("double toggle must restore the projection")
	}
}

func TestToggleFavorite_OtherViewsReDeriveWithoutRefetch(t *testing.T) {
	favs := &memFavorites{}
	notifier := NewNotifier()
	item := source.Item{ID: "movie-42", Title: "The Answer"}

	var dashboardFetches, trendingFetches int
	dashboard := New(FetcherFunc(func(context.Context, aggregator.Request) ([]source.Item, error) {
		dashboardFetches++
		return []source.Item{item}, nil
	}), favs, notifier)
	defer dashboard.Close()

	trending := New(FetcherFunc(func(context.Context, aggregator.Request) ([]source.Item, error) {
		trendingFetches++
		return []source.Item{item}, nil
	}), favs, notifier)
	defer trending.Close()

	ctx := context.Background()
	if err := dashboard.Load(ctx, 1, "", "all"); err != nil {
		t.Fatalf("dashboard load: %v", err)
	}
	if err := trending.Load(ctx, 1, "", "all"); err != nil {
		t.Fatalf("trending load: %v", err)
	}

	if err := dashboard.ToggleFavorite(ctx, item); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if !trending.State().Items[0].IsFavorite {
		t.Error("other view must re-derive its projection from the broadcast")
	}
	if trendingFetches != 1 {
		t.Errorf("projection refresh must not re-fetch content, got %d fetches", trendingFetches)
	}
	if dashboardFetches != 1 {
		t.Errorf("toggling must not re-fetch content, got %d fetches", dashboardFetches)
	}
}

func TestLoadMore_RequestsNextPageWithCurrentContext(t *testing.T) {
	var lastReq aggregator.Request
	fetcher := FetcherFunc(func(_ context.Context, req aggregator.Request) ([]source.Item, error) {
		lastReq = req
		return itemsOf(fmt.Sprintf("p%d", req.Page)), nil
	})

	f := New(fetcher, &memFavorites{}, nil)
	ctx := context.Background()

	if err := f.Load(ctx, 1, "golang", "news"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := f.LoadMore(ctx); err != nil {
		t.Fatalf("load more: %v", err)
	}

	if lastReq.Page != 2 || lastReq.Query != "golang" || lastReq.Filter != "news" {
		t.Errorf("expected page=2 query=golang filter=news, got %+v", lastReq)
	}
}

func TestLoadMore_NoopWhenFeedIsExhausted(t *testing.T) {
	calls := 0
	fetcher := FetcherFunc(func(context.Context, aggregator.Request) ([]source.Item, error) {
		calls++
		return nil, nil
	})

	f := New(fetcher, &memFavorites{}, nil)
	ctx := context.Background()

	if err := f.Load(ctx, 1, "", "all"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := f.LoadMore(ctx); err != nil {
		t.Fatalf("load more: %v", err)
	}

	if calls != 1 {
		t.Errorf("exhausted feed must not fetch again, got %d calls", calls)
	}
}

func TestLoad_StaleResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	fetcher := FetcherFunc(func(_ context.Context, req aggregator.Request) ([]source.Item, error) {
		if req.Query == "slow" {
			<-release
			return itemsOf("stale-1", "stale-2"), nil
		}
		return itemsOf("fresh-1"), nil
	})

	f := New(fetcher, &memFavorites{}, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- f.Load(ctx, 1, "slow", "all") }()

	// Wait until the slow request owns the feed before superseding it.
	for f.State().Query != "slow" {
		time.Sleep(time.Millisecond)
	}

	if err := f.Load(ctx, 1, "fresh", "all"); err != nil {
		t.Fatalf("fresh load: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("slow load: %v", err)
	}

	state := f.State()
	if len(state.Items) != 1 || state.Items[0].ID != "fresh-1" {
		t.Fatalf("stale response overwrote the newer one: %+v", state.Items)
	}
	if state.Query != "fresh" {
		t.Errorf("expected query fresh, got %q", state.Query)
	}
}
