package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sakhareritesh/dashboard/pkg/aggregator"
)

// Scheduler periodically refreshes the trending snapshot so the API can
// serve trending content without fanning out on every request.
type Scheduler struct {
	trending *aggregator.Trending
	snapshot *aggregator.Snapshot
	interval time.Duration
}

// New creates a scheduler.
func New(trending *aggregator.Trending, snapshot *aggregator.Snapshot, interval time.Duration) *Scheduler {
	if interval == 0 {
		interval = 10 * time.Minute
	}
	return &Scheduler{
		trending: trending,
		snapshot: snapshot,
		interval: interval,
	}
}

// Run starts the refresh loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Warm the snapshot immediately on start.
	s.refresh(ctx)
	fmt.Fprintf(os.Stderr, "scheduler: running (trending refresh every %s)\n", s.interval)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "scheduler: stopped")
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Scheduler) refresh(ctx context.Context) {
	items, err := s.trending.Fetch(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scheduler: trending refresh error: %v\n", err)
		return
	}
	s.snapshot.Set(items)
	fmt.Fprintf(os.Stderr, "scheduler: trending snapshot refreshed (%d items)\n", len(items))
}
