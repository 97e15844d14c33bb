// Package storage implements the SQLite-backed content store searched by the
// engine. Each searchable entity (posts, activities, users, tags) has a base
// table plus an FTS5 shadow table aligned on rowid and maintained by the
// write path. Every search is available in two modes sharing one filter
// construction per entity: ModeFTS ranks with bm25 blended with recency,
// ModeLike falls back to case-insensitive substring matching over the same
// columns.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/yj147/jikns-blog-sub011/pkg/log"
)

// Store wraps the SQLite database holding all indexed content.
type Store struct {
	db   *sql.DB
	rank RankParams
}

// Open opens (creating if needed) the database at dbPath and ensures the
// schema exists.
func Open(dbPath string, rank RankParams) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Apply performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA cache_size = -64000", // 64MB cache
		"PRAGMA temp_store = memory",
		"PRAGMA optimize",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	s := &Store{db: db, rank: rank}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL DEFAULT '',
			excerpt TEXT NOT NULL DEFAULT '',
			seo_description TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			author_id TEXT NOT NULL DEFAULT '',
			published INTEGER NOT NULL DEFAULT 0,
			published_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			author_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			deleted_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS tags (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS post_tags (
			post_id TEXT NOT NULL,
			tag_id TEXT NOT NULL,
			PRIMARY KEY (post_id, tag_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_published_at ON posts(published_at)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_author ON activities(author_id)`,
		`CREATE INDEX IF NOT EXISTS idx_post_tags_tag ON post_tags(tag_id)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS posts_fts USING fts5(title, excerpt, seo_description, content)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS activities_fts USING fts5(content)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS users_fts USING fts5(name, bio)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS tags_fts USING fts5(name, description)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// Stats returns per-table row counts plus the newest and oldest post
// timestamps.
func (s *Store) Stats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	counts := map[string]string{
		"posts":      "SELECT COUNT(*) FROM posts",
		"activities": "SELECT COUNT(*) FROM activities WHERE deleted_at IS NULL",
		"users":      "SELECT COUNT(*) FROM users",
		"tags":       "SELECT COUNT(*) FROM tags",
	}
	for name, query := range counts {
		var n int
		if err := s.db.QueryRow(query).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s: %w", name, err)
		}
		stats[name] = n
	}

	var oldestStr, newestStr sql.NullString
	err := s.db.QueryRow("SELECT MIN(created_at), MAX(created_at) FROM posts").Scan(&oldestStr, &newestStr)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("getting post date range: %w", err)
	}
	if oldestStr.Valid && newestStr.Valid {
		oldest, err := time.Parse(time.RFC3339, oldestStr.String)
		if err != nil {
			return nil, fmt.Errorf("parsing oldest post time: %w", err)
		}
		newest, err := time.Parse(time.RFC3339, newestStr.String)
		if err != nil {
			return nil, fmt.Errorf("parsing newest post time: %w", err)
		}
		stats["oldest_post"] = oldest
		stats["newest_post"] = newest
	}

	return stats, nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.ForComponent("storage").Warnf("failed to close rows: %v", err)
	}
}

// Optimize runs SQLite housekeeping after large imports.
func (s *Store) Optimize() error {
	if _, err := s.db.Exec("PRAGMA optimize"); err != nil {
		return err
	}
	_, err := s.db.Exec("ANALYZE")
	return err
}

// RebuildFTS rebuilds every full-text index from its base table. Useful
// after bulk imports or when an index check reports corruption.
func (s *Store) RebuildFTS() error {
	for _, table := range []string{"posts_fts", "activities_fts", "users_fts", "tags_fts"} {
		cmd := fmt.Sprintf("INSERT INTO %s(%s) VALUES('rebuild')", table, table)
		if _, err := s.db.Exec(cmd); err != nil {
			return fmt.Errorf("rebuilding %s: %w", table, err)
		}
	}
	return nil
}
