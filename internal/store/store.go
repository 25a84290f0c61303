package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/sakhareritesh/dashboard/pkg/source"
)

const (
	keyFavorites = "favorite_items"
	keyTheme     = "theme"
)

// ErrProfileNotFound is returned when no profile has been saved yet.
var ErrProfileNotFound = errors.New("profile not found")

// Profile holds the authenticated user's editable fields.
type Profile struct {
	UID       string    `db:"uid" json:"uid"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Avatar    string    `db:"avatar" json:"avatar"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// Store is the persistence interface. Favorites live under a single key
// as one JSON document and are always written back in full; the stored
// copy is the source of truth for favorite status.
type Store interface {
	ListFavorites(ctx context.Context) ([]source.Item, error)
	ReplaceFavorites(ctx context.Context, items []source.Item) error

	GetTheme(ctx context.Context) (string, error)
	SetTheme(ctx context.Context, theme string) error

	GetProfile(ctx context.Context) (*Profile, error)
	SaveProfile(ctx context.Context, p *Profile) error

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListFavorites(ctx context.Context) ([]source.Item, error) {
	doc, err := s.getPreference(ctx, keyFavorites)
	if err != nil {
		return nil, err
	}
	if doc == "" {
		return nil, nil
	}

	var items []source.Item
	if err := json.Unmarshal([]byte(doc), &items); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	return items, nil
}

func (s *SQLiteStore) ReplaceFavorites(ctx context.Context, items []source.Item) error {
	if items == nil {
		items = []source.Item{}
	}
	doc, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	return s.setPreference(ctx, keyFavorites, string(doc))
}

func (s *SQLiteStore) GetTheme(ctx context.Context) (string, error) {
	theme, err := s.getPreference(ctx, keyTheme)
	if err != nil {
		return "", err
	}
	if theme == "" {
		theme = "light"
	}
	return theme, nil
}

func (s *SQLiteStore) SetTheme(ctx context.Context, theme string) error {
	if theme != "light" && theme != "dark" {
		return fmt.Errorf("unknown theme %q", theme)
	}
	return s.setPreference(ctx, keyTheme, theme)
}

func (s *SQLiteStore) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	err := s.db.GetContext(ctx, &p, "SELECT * FROM profiles LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, p *Profile) error {
	p.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (uid, name, email, avatar, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			avatar = excluded.avatar,
			updated_at = excluded.updated_at
	`, p.UID, p.Name, p.Email, p.Avatar, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save profile %s: %w", p.UID, err)
	}
	return nil
}

func (s *SQLiteStore) getPreference(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM preferences WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get preference %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) setPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}
