package aggregator

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sakhareritesh/dashboard/pkg/source"
)

// TrendingSource is one fixed endpoint contributing to the trending feed.
type TrendingSource struct {
	Name  source.SourceType
	Fetch func(ctx context.Context) ([]source.Item, error)
}

// Trending aggregates a fixed set of endpoints, one per source category,
// with no query or filter dimension. Partial-failure and shuffle
// semantics match the general aggregator; there is only one "page".
type Trending struct {
	sources []TrendingSource
}

// NewTrending creates the trending aggregator.
func NewTrending(sources []TrendingSource) *Trending {
	return &Trending{sources: sources}
}

// Fetch fans out to every trending endpoint and returns the combined,
// shuffled results. Fails only when an error occurred and nothing at
// all was returned.
func (t *Trending) Fetch(ctx context.Context) ([]source.Item, error) {
	results := make([][]source.Item, len(t.sources))
	errs := make([]error, len(t.sources))

	var wg sync.WaitGroup
	for i, src := range t.sources {
		wg.Add(1)
		go func(i int, src TrendingSource) {
			defer wg.Done()
			results[i], errs[i] = src.Fetch(ctx)
		}(i, src)
	}
	wg.Wait()

	var combined []source.Item
	failed := false
	for i := range t.sources {
		if errs[i] != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "trending: %s error: %v\n", t.sources[i].Name, errs[i])
			continue
		}
		combined = append(combined, results[i]...)
	}

	if failed && len(combined) == 0 {
		return nil, ErrNoContent
	}

	shuffle(combined)
	return combined, nil
}
