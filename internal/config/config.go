package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Sources  SourcesConfig  `yaml:"sources"`
	Avatar   AvatarConfig   `yaml:"avatar"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// ScheduleConfig configures the trending snapshot refresher.
type ScheduleConfig struct {
	TrendingRefresh string `yaml:"trending_refresh"`
	TrendingTTL     string `yaml:"trending_ttl"`
}

// ParseTrendingRefresh returns the refresh interval as time.Duration.
func (s ScheduleConfig) ParseTrendingRefresh() time.Duration {
	d, err := time.ParseDuration(s.TrendingRefresh)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

// ParseTrendingTTL returns the snapshot TTL as time.Duration.
func (s ScheduleConfig) ParseTrendingTTL() time.Duration {
	d, err := time.ParseDuration(s.TrendingTTL)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// SourcesConfig holds configuration for all content providers.
type SourcesConfig struct {
	News   NewsConfig   `yaml:"news"`
	Movies MoviesConfig `yaml:"movies"`
	Music  MusicConfig  `yaml:"music"`
	Social SocialConfig `yaml:"social"`
}

// NewsConfig for the NewsAPI provider, with RSS feeds as the keyless
// fallback.
type NewsConfig struct {
	APIKey   string     `yaml:"api_key"`
	Category string     `yaml:"category"`
	Feeds    []FeedItem `yaml:"feeds"`
}

// FeedItem is a single RSS feed entry.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// MoviesConfig for the TMDB provider.
type MoviesConfig struct {
	APIKey string `yaml:"api_key"`
}

// MusicConfig for the Spotify provider.
type MusicConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// SocialConfig for the mock social provider.
type SocialConfig struct {
	Enabled bool `yaml:"enabled"`
}

// AvatarConfig for AI avatar generation.
type AvatarConfig struct {
	APIKey string `yaml:"api_key"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./dashboard.db"},
		Server:   ServerConfig{Port: 8080},
		Schedule: ScheduleConfig{
			TrendingRefresh: "10m",
			TrendingTTL:     "5m",
		},
		Sources: SourcesConfig{
			News: NewsConfig{
				Category: "technology",
				Feeds: []FeedItem{
					{Name: "TechCrunch", URL: "https://techcrunch.com/feed/"},
					{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml"},
					{Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/index"},
				},
			},
			Social: SocialConfig{Enabled: true},
		},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DASHBOARD_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		cfg.Sources.News.APIKey = v
	}
	if v := os.Getenv("TMDB_API_KEY"); v != "" {
		cfg.Sources.Movies.APIKey = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Sources.Music.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		cfg.Sources.Music.ClientSecret = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Avatar.APIKey = v
	}
}
