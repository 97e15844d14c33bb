package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/yj147/jikns-blog-sub011/pkg/core"
	"github.com/yj147/jikns-blog-sub011/pkg/log"
)

// The write path is the external indexing step the searchers depend on:
// every upsert refreshes the entity's FTS shadow row in the same
// transaction, so the tokenized columns never drift from the source content.

// normTime stores timestamps in UTC at second precision so that RFC3339
// string comparisons in the filter layer stay exact.
func normTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func (s *Store) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				log.ForComponent("storage").Warnf("failed to rollback transaction: %v", err)
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	err = tx.Commit()
	if err == nil {
		committed = true
	}
	return err
}

// UpsertUser inserts or replaces a user and its FTS row.
func (s *Store) UpsertUser(u core.User) error {
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM users_fts WHERE rowid = (SELECT rowid FROM users WHERE id = ?)`, u.ID); err != nil {
			return fmt.Errorf("clearing user FTS row: %w", err)
		}
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO users (id, name, email, bio, avatar_url, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, u.ID, u.Name, u.Email, u.Bio, u.AvatarURL, normTime(u.CreatedAt)); err != nil {
			return fmt.Errorf("inserting user %s: %w", u.ID, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO users_fts (rowid, name, bio)
			VALUES ((SELECT rowid FROM users WHERE id = ?), ?, ?)
		`, u.ID, u.Name, u.Bio); err != nil {
			return fmt.Errorf("inserting user %s into FTS: %w", u.ID, err)
		}
		return nil
	})
}

// UpsertTag inserts or replaces a canonical tag and its FTS row.
func (s *Store) UpsertTag(t core.Tag) error {
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM tags_fts WHERE rowid = (SELECT rowid FROM tags WHERE id = ?)`, t.ID); err != nil {
			return fmt.Errorf("clearing tag FTS row: %w", err)
		}
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO tags (id, name, description, created_at)
			VALUES (?, ?, ?, ?)
		`, t.ID, t.Name, t.Description, normTime(t.CreatedAt)); err != nil {
			return fmt.Errorf("inserting tag %s: %w", t.ID, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO tags_fts (rowid, name, description)
			VALUES ((SELECT rowid FROM tags WHERE id = ?), ?, ?)
		`, t.ID, t.Name, t.Description); err != nil {
			return fmt.Errorf("inserting tag %s into FTS: %w", t.ID, err)
		}
		return nil
	})
}

// UpsertPost inserts or replaces a post, its FTS row, and its tag
// associations. Tag IDs that are not (yet) in the canonical tag table are
// kept in post_tags but never surface in search results.
func (s *Store) UpsertPost(p core.Post) error {
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM posts_fts WHERE rowid = (SELECT rowid FROM posts WHERE id = ?)`, p.ID); err != nil {
			return fmt.Errorf("clearing post FTS row: %w", err)
		}

		var publishedAt interface{}
		if p.PublishedAt != nil {
			publishedAt = normTime(*p.PublishedAt)
		}
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO posts
				(id, title, slug, excerpt, seo_description, content, author_id, published, published_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.Title, p.Slug, p.Excerpt, p.SEODescription, p.Content, p.AuthorID,
			p.Published, publishedAt, normTime(p.CreatedAt), normTime(p.UpdatedAt)); err != nil {
			return fmt.Errorf("inserting post %s: %w", p.ID, err)
		}

		if _, err := tx.Exec(`
			INSERT INTO posts_fts (rowid, title, excerpt, seo_description, content)
			VALUES ((SELECT rowid FROM posts WHERE id = ?), ?, ?, ?, ?)
		`, p.ID, p.Title, p.Excerpt, p.SEODescription, p.Content); err != nil {
			return fmt.Errorf("inserting post %s into FTS: %w", p.ID, err)
		}

		if _, err := tx.Exec(`DELETE FROM post_tags WHERE post_id = ?`, p.ID); err != nil {
			return fmt.Errorf("clearing tags for post %s: %w", p.ID, err)
		}
		for _, tagID := range p.TagIDs {
			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)
			`, p.ID, tagID); err != nil {
				return fmt.Errorf("tagging post %s with %s: %w", p.ID, tagID, err)
			}
		}
		return nil
	})
}

// UpsertActivity inserts or replaces an activity and its FTS row.
func (s *Store) UpsertActivity(a core.Activity) error {
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM activities_fts WHERE rowid = (SELECT rowid FROM activities WHERE id = ?)`, a.ID); err != nil {
			return fmt.Errorf("clearing activity FTS row: %w", err)
		}

		var deletedAt interface{}
		if a.DeletedAt != nil {
			deletedAt = normTime(*a.DeletedAt)
		}
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO activities (id, content, author_id, created_at, deleted_at)
			VALUES (?, ?, ?, ?, ?)
		`, a.ID, a.Content, a.AuthorID, normTime(a.CreatedAt), deletedAt); err != nil {
			return fmt.Errorf("inserting activity %s: %w", a.ID, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO activities_fts (rowid, content)
			VALUES ((SELECT rowid FROM activities WHERE id = ?), ?)
		`, a.ID, a.Content); err != nil {
			return fmt.Errorf("inserting activity %s into FTS: %w", a.ID, err)
		}
		return nil
	})
}

// DeleteActivity soft-deletes an activity. The row and its FTS entry remain
// but the deleted_at filter keeps it out of every search path.
func (s *Store) DeleteActivity(id string, when time.Time) error {
	_, err := s.db.Exec(`UPDATE activities SET deleted_at = ? WHERE id = ?`, normTime(when), id)
	if err != nil {
		return fmt.Errorf("soft-deleting activity %s: %w", id, err)
	}
	return nil
}
