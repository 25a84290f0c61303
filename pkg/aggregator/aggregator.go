// Package aggregator fans out to the content providers and merges their
// results into a single blended feed.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"github.com/sakhareritesh/dashboard/pkg/source"
)

// ErrNoContent is returned when every active provider failed or came
// back empty on the first page of a fresh load.
var ErrNoContent = errors.New("failed to fetch content from external sources")

// FilterAll activates every provider.
const FilterAll = "all"

// Request describes one aggregation call.
type Request struct {
	Page   int
	Query  string
	Filter string
}

// defaultPageSizes mirrors the per-provider page sizes of the default
// (no-query) feed. Movies ignores the size, TMDB pages are fixed.
var defaultPageSizes = map[source.SourceType]int{
	source.SourceNews:   10,
	source.SourceMovie:  20,
	source.SourceMusic:  10,
	source.SourceSocial: 5,
}

const searchPageSize = 10

// Aggregator invokes a filtered subset of providers concurrently and
// returns their combined, shuffled results.
type Aggregator struct {
	providers []source.Provider
}

// New creates an aggregator over the given providers.
func New(providers []source.Provider) *Aggregator {
	return &Aggregator{providers: providers}
}

// Fetch runs one aggregation call. All active providers are invoked in
// parallel and every call runs to completion; a failing provider
// contributes zero items. The call as a whole fails only when an error
// occurred, nothing at all was returned, and this is page 1.
func (a *Aggregator) Fetch(ctx context.Context, req Request) ([]source.Item, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Filter == "" {
		req.Filter = FilterAll
	}

	active := a.selectProviders(req.Filter)

	results := make([][]source.Item, len(active))
	errs := make([]error, len(active))

	var wg sync.WaitGroup
	for i, p := range active {
		wg.Add(1)
		go func(i int, p source.Provider) {
			defer wg.Done()
			if req.Query != "" {
				results[i], errs[i] = p.Search(ctx, req.Query, req.Page, searchPageSize)
			} else {
				results[i], errs[i] = p.FetchDefault(ctx, req.Page, defaultPageSizes[p.Name()])
			}
		}(i, p)
	}
	wg.Wait()

	var combined []source.Item
	failed := false
	for i := range active {
		if errs[i] != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "aggregator: %s error: %v\n", active[i].Name(), errs[i])
			continue
		}
		combined = append(combined, results[i]...)
	}

	if failed && len(combined) == 0 && req.Page == 1 {
		return nil, ErrNoContent
	}

	shuffle(combined)
	return combined, nil
}

// selectProviders returns the providers matching the filter. "all"
// activates everything; any recognized source type exactly that one.
func (a *Aggregator) selectProviders(filter string) []source.Provider {
	if filter == FilterAll {
		return a.providers
	}

	var active []source.Provider
	for _, p := range a.providers {
		if string(p.Name()) == filter {
			active = append(active, p)
		}
	}
	return active
}

// shuffle applies a uniform permutation so the feed blends sources
// instead of grouping them. Re-applied on every call; order is not
// stable across pages.
func shuffle(items []source.Item) {
	rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
