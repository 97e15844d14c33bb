package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/yj147/jikns-blog-sub011/pkg/core"
)

// tagBM25 weights name above description.
const tagBM25 = "bm25(tags_fts, 5.0, 1.0)"

const tagLikeClause = `(lower(t.name) LIKE ? ESCAPE '\' OR lower(t.description) LIKE ? ESCAPE '\')`

// SearchTags returns one page of tag hits plus the total count.
func (s *Store) SearchTags(ctx context.Context, req core.SearchRequest, mode QueryMode, limit, offset int) ([]core.TagHit, int, error) {
	var sqlQuery string
	var args []interface{}

	if mode == ModeFTS {
		rankExpr := s.rank.rankSQL(tagBM25, "t.created_at")
		orderClause := "ORDER BY rank DESC, t.created_at DESC, t.id ASC"
		if req.Sort == core.SortRecency {
			orderClause = "ORDER BY t.created_at DESC, t.id ASC"
		}
		sqlQuery = `
			SELECT t.id, t.name, t.description, t.created_at, ` + rankExpr + ` AS rank
			FROM tags t
			JOIN tags_fts fts ON t.rowid = fts.rowid
			WHERE tags_fts MATCH ?
			` + orderClause + `
			LIMIT ? OFFSET ?`
		args = append(args, s.rank.rankArgs()...)
		args = append(args, matchQuery(req.Query), limit, offset)
	} else {
		pattern := likePattern(req.Query)
		sqlQuery = `
			SELECT t.id, t.name, t.description, t.created_at
			FROM tags t
			WHERE ` + tagLikeClause + `
			ORDER BY t.created_at DESC, t.id ASC
			LIMIT ? OFFSET ?`
		args = append(args, pattern, pattern, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying tags: %w", err)
	}
	defer closeRows(rows)

	var hits []core.TagHit
	for rows.Next() {
		var hit core.TagHit
		var rank float64

		dest := []interface{}{&hit.ID, &hit.Name, &hit.Description, &hit.CreatedAt}
		if mode == ModeFTS {
			dest = append(dest, &rank)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scanning tag row: %w", err)
		}

		if mode == ModeFTS {
			hit.Rank = &rank
		} else {
			score := s.rank.Score(1.0, time.Since(hit.CreatedAt))
			hit.Rank = &score
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	total, err := s.countTags(ctx, req, mode)
	if err != nil {
		return nil, 0, err
	}

	return hits, total, nil
}

func (s *Store) countTags(ctx context.Context, req core.SearchRequest, mode QueryMode) (int, error) {
	var sqlQuery string
	var args []interface{}

	if mode == ModeFTS {
		sqlQuery = `
			SELECT COUNT(*)
			FROM tags t
			JOIN tags_fts fts ON t.rowid = fts.rowid
			WHERE tags_fts MATCH ?`
		args = append(args, matchQuery(req.Query))
	} else {
		pattern := likePattern(req.Query)
		sqlQuery = `SELECT COUNT(*) FROM tags t WHERE ` + tagLikeClause
		args = append(args, pattern, pattern)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting tags: %w", err)
	}
	return total, nil
}
