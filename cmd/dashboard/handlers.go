package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/sakhareritesh/dashboard/internal/config"
	"github.com/sakhareritesh/dashboard/internal/profile"
	"github.com/sakhareritesh/dashboard/internal/scheduler"
	"github.com/sakhareritesh/dashboard/internal/store"
	"github.com/sakhareritesh/dashboard/pkg/aggregator"
	"github.com/sakhareritesh/dashboard/pkg/feed"
	"github.com/sakhareritesh/dashboard/pkg/server"
	"github.com/sakhareritesh/dashboard/pkg/source"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

// buildProviders assembles the content providers. The news slot falls
// back to configured RSS feeds when no NewsAPI key is present.
func buildProviders(cfg *config.Config) []source.Provider {
	var providers []source.Provider

	if cfg.Sources.News.APIKey != "" {
		providers = append(providers, source.NewNews(
			cfg.Sources.News.APIKey,
			source.WithNewsCategory(cfg.Sources.News.Category),
		))
	} else if len(cfg.Sources.News.Feeds) > 0 {
		feeds := make([]source.RSSFeed, len(cfg.Sources.News.Feeds))
		for i, f := range cfg.Sources.News.Feeds {
			feeds[i] = source.RSSFeed{Name: f.Name, URL: f.URL}
		}
		providers = append(providers, source.NewRSSNews(feeds))
	}

	if cfg.Sources.Movies.APIKey != "" {
		providers = append(providers, source.NewMovies(cfg.Sources.Movies.APIKey))
	}

	tokens := source.NewSpotifyTokenCache(cfg.Sources.Music.ClientID, cfg.Sources.Music.ClientSecret)
	providers = append(providers, source.NewMusic(tokens))

	if cfg.Sources.Social.Enabled {
		providers = append(providers, source.NewSocial())
	}

	return providers
}

// buildTrending wires the fixed trending endpoints: general news,
// today's trending movies, the social feed and featured playlists.
func buildTrending(cfg *config.Config) *aggregator.Trending {
	var sources []aggregator.TrendingSource

	if cfg.Sources.News.APIKey != "" {
		news := source.NewNews(cfg.Sources.News.APIKey, source.WithNewsCategory("general"))
		sources = append(sources, aggregator.TrendingSource{
			Name: source.SourceNews,
			Fetch: func(ctx context.Context) ([]source.Item, error) {
				return news.FetchDefault(ctx, 1, 10)
			},
		})
	} else if len(cfg.Sources.News.Feeds) > 0 {
		feeds := make([]source.RSSFeed, len(cfg.Sources.News.Feeds))
		for i, f := range cfg.Sources.News.Feeds {
			feeds[i] = source.RSSFeed{Name: f.Name, URL: f.URL}
		}
		rss := source.NewRSSNews(feeds)
		sources = append(sources, aggregator.TrendingSource{
			Name: source.SourceNews,
			Fetch: func(ctx context.Context) ([]source.Item, error) {
				return rss.FetchDefault(ctx, 1, 10)
			},
		})
	}

	if cfg.Sources.Movies.APIKey != "" {
		movies := source.NewMovies(cfg.Sources.Movies.APIKey)
		sources = append(sources, aggregator.TrendingSource{
			Name:  source.SourceMovie,
			Fetch: movies.Trending,
		})
	}

	if cfg.Sources.Social.Enabled {
		social := source.NewSocial()
		sources = append(sources, aggregator.TrendingSource{
			Name: source.SourceSocial,
			Fetch: func(ctx context.Context) ([]source.Item, error) {
				return social.FetchDefault(ctx, 1, 5)
			},
		})
	}

	tokens := source.NewSpotifyTokenCache(cfg.Sources.Music.ClientID, cfg.Sources.Music.ClientSecret)
	music := source.NewMusic(tokens)
	sources = append(sources, aggregator.TrendingSource{
		Name: source.SourceMusic,
		Fetch: func(ctx context.Context) ([]source.Item, error) {
			return music.Featured(ctx, 1, 10)
		},
	})

	return aggregator.NewTrending(sources)
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	profiles := profile.NewManager(db)
	if err := profiles.Load(context.Background()); err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	var avatars *profile.AvatarGenerator
	if cfg.Avatar.APIKey != "" {
		avatars = profile.NewAvatarGenerator(cfg.Avatar.APIKey)
		fmt.Fprintln(os.Stderr, "avatar generation enabled")
	}

	agg := aggregator.New(buildProviders(cfg))
	trending := buildTrending(cfg)
	snapshot := aggregator.NewSnapshot(cfg.Schedule.ParseTrendingTTL())
	notifier := feed.NewNotifier()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(trending, snapshot, cfg.Schedule.ParseTrendingRefresh())
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "scheduler error: %v\n", err)
		}
	}()

	srv := server.New(agg, trending, snapshot, db, profiles, avatars, notifier, port)
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	return srv.ListenAndServe()
}

func runFetch(page int, query, filter string, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if !source.ValidFilter(filter) {
		return fmt.Errorf("unknown filter %q (want all|news|movie|music|social)", filter)
	}

	agg := aggregator.New(buildProviders(cfg))
	items, err := agg.Fetch(context.Background(), aggregator.Request{
		Page:   page,
		Query:  query,
		Filter: filter,
	})
	if err != nil {
		return fmt.Errorf("fetch content: %w", err)
	}

	return printItems(items, jsonOutput)
}

func runTrending(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	items, err := buildTrending(cfg).Fetch(context.Background())
	if err != nil {
		return fmt.Errorf("fetch trending: %w", err)
	}

	return printItems(items, jsonOutput)
}

func printItems(items []source.Item, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	if len(items) == 0 {
		fmt.Println("no content found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tSOURCE\tTITLE")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", item.Type, item.Source, item.Title)
	}
	return w.Flush()
}
