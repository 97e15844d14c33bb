package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/yj147/jikns-blog-sub011/pkg/core"
)

// postBM25 weights the FTS columns title, excerpt, seo_description, content
// so that title matches outrank excerpt matches, which outrank body matches.
const postBM25 = "bm25(posts_fts, 10.0, 5.0, 3.0, 1.0)"

// postDateExpr is the recency timestamp for ranking and ordering. Published
// posts use published_at, drafts fall back to created_at.
const postDateExpr = "COALESCE(p.published_at, p.created_at)"

// SearchPosts returns one page of post hits plus the total number of
// matching posts for the given mode. limit and offset are the SQL page
// bounds; the caller derives them from the pagination mode.
func (s *Store) SearchPosts(ctx context.Context, req core.SearchRequest, mode QueryMode, limit, offset int) ([]core.PostHit, int, error) {
	conds, condArgs := postFilters(req)

	var sqlQuery string
	var args []interface{}

	if mode == ModeFTS {
		rankExpr := s.rank.rankSQL(postBM25, postDateExpr)
		orderClause := "ORDER BY rank DESC, " + postDateExpr + " DESC, p.id ASC"
		if req.Sort == core.SortRecency {
			orderClause = "ORDER BY " + postDateExpr + " DESC, p.id ASC"
		}
		sqlQuery = `
			SELECT p.id, p.title, p.slug, p.excerpt, p.author_id, COALESCE(u.name, ''),
			       p.published, p.published_at, p.created_at, ` + rankExpr + ` AS rank
			FROM posts p
			JOIN posts_fts fts ON p.rowid = fts.rowid
			LEFT JOIN users u ON u.id = p.author_id
			WHERE posts_fts MATCH ?` + whereAnd(conds) + `
			` + orderClause + `
			LIMIT ? OFFSET ?`
		args = append(args, s.rank.rankArgs()...)
		args = append(args, matchQuery(req.Query))
		args = append(args, condArgs...)
		args = append(args, limit, offset)
	} else {
		pattern := likePattern(req.Query)
		sqlQuery = `
			SELECT p.id, p.title, p.slug, p.excerpt, p.author_id, COALESCE(u.name, ''),
			       p.published, p.published_at, p.created_at
			FROM posts p
			LEFT JOIN users u ON u.id = p.author_id
			WHERE ` + postLikeClause + whereAnd(conds) + `
			ORDER BY ` + postDateExpr + ` DESC, p.id ASC
			LIMIT ? OFFSET ?`
		args = append(args, pattern, pattern, pattern, pattern)
		args = append(args, condArgs...)
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying posts: %w", err)
	}
	defer closeRows(rows)

	var hits []core.PostHit
	for rows.Next() {
		var hit core.PostHit
		var publishedAt sql.NullTime
		var published int
		var rank float64

		dest := []interface{}{
			&hit.ID, &hit.Title, &hit.Slug, &hit.Excerpt, &hit.AuthorID, &hit.AuthorName,
			&published, &publishedAt, &hit.CreatedAt,
		}
		if mode == ModeFTS {
			dest = append(dest, &rank)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scanning post row: %w", err)
		}

		hit.Published = published != 0
		if publishedAt.Valid {
			t := publishedAt.Time
			hit.PublishedAt = &t
		}
		if mode == ModeFTS {
			hit.Rank = &rank
		} else {
			recency := hit.CreatedAt
			if hit.PublishedAt != nil {
				recency = *hit.PublishedAt
			}
			score := s.rank.Score(1.0, time.Since(recency))
			hit.Rank = &score
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	total, err := s.countPosts(ctx, req, mode, conds, condArgs)
	if err != nil {
		return nil, 0, err
	}

	if err := s.attachPostTags(ctx, hits); err != nil {
		return nil, 0, err
	}

	return hits, total, nil
}

// postLikeClause spans the same columns the FTS table indexes.
const postLikeClause = `(lower(p.title) LIKE ? ESCAPE '\' OR lower(p.excerpt) LIKE ? ESCAPE '\' OR lower(p.seo_description) LIKE ? ESCAPE '\' OR lower(p.content) LIKE ? ESCAPE '\')`

func (s *Store) countPosts(ctx context.Context, req core.SearchRequest, mode QueryMode, conds []string, condArgs []interface{}) (int, error) {
	var sqlQuery string
	var args []interface{}

	if mode == ModeFTS {
		sqlQuery = `
			SELECT COUNT(*)
			FROM posts p
			JOIN posts_fts fts ON p.rowid = fts.rowid
			WHERE posts_fts MATCH ?` + whereAnd(conds)
		args = append(args, matchQuery(req.Query))
		args = append(args, condArgs...)
	} else {
		pattern := likePattern(req.Query)
		sqlQuery = `
			SELECT COUNT(*)
			FROM posts p
			WHERE ` + postLikeClause + whereAnd(conds)
		args = append(args, pattern, pattern, pattern, pattern)
		args = append(args, condArgs...)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return total, nil
}

// attachPostTags fills each hit's Tags with the canonical tags it carries.
// Joining through the tag table means candidate tag IDs that were never
// registered do not surface.
func (s *Store) attachPostTags(ctx context.Context, hits []core.PostHit) error {
	if len(hits) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(hits)-1) + "?"
	args := make([]interface{}, 0, len(hits))
	index := make(map[string]int, len(hits))
	for i := range hits {
		hits[i].Tags = []core.TagRef{}
		args = append(args, hits[i].ID)
		index[hits[i].ID] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pt.post_id, t.id, t.name
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (`+placeholders+`)
		ORDER BY t.name ASC`, args...)
	if err != nil {
		return fmt.Errorf("querying post tags: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var postID string
		var tag core.TagRef
		if err := rows.Scan(&postID, &tag.ID, &tag.Name); err != nil {
			return fmt.Errorf("scanning post tag row: %w", err)
		}
		if i, ok := index[postID]; ok {
			hits[i].Tags = append(hits[i].Tags, tag)
		}
	}
	return rows.Err()
}
