// Package newsdb persists collected news articles in SQLite so the news
// analysis stage reads a stable, deduplicated window instead of raw API output.
package newsdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Article is one stored news item.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PublishedAt time.Time `json:"published_at"`
}

// Store is a small append-mostly SQLite table with title+date dedup.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("news db path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path))
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS news (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		published_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL,
		UNIQUE(title, published_at)
	)`)
	if err != nil {
		return fmt.Errorf("initializing news table failed: %w", err)
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_news_published_at ON news(published_at DESC)`)
	return err
}

// Save inserts the given articles, skipping any title+published_at duplicate,
// and returns the number actually written.
func (s *Store) Save(ctx context.Context, items []Article) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO news (title, description, published_at, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	saved := 0
	for _, it := range items {
		res, err := stmt.ExecContext(ctx, it.Title, it.Description, it.PublishedAt.UTC(), now)
		if err != nil {
			return saved, fmt.Errorf("saving news failed: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			saved++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return saved, nil
}

// Recent returns up to limit articles, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = 20
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT title, description, published_at FROM news ORDER BY published_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.Title, &a.Description, &a.PublishedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
