package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/yj147/jikns-blog-sub011/pkg/core"
)

// userBM25 weights name above bio.
const userBM25 = "bm25(users_fts, 5.0, 1.0)"

const userLikeClause = `(lower(u.name) LIKE ? ESCAPE '\' OR lower(u.bio) LIKE ? ESCAPE '\')`

// SearchUsers returns one page of user hits plus the total count. Users have
// no structural filters beyond the text match.
func (s *Store) SearchUsers(ctx context.Context, req core.SearchRequest, mode QueryMode, limit, offset int) ([]core.UserHit, int, error) {
	var sqlQuery string
	var args []interface{}

	if mode == ModeFTS {
		rankExpr := s.rank.rankSQL(userBM25, "u.created_at")
		orderClause := "ORDER BY rank DESC, u.created_at DESC, u.id ASC"
		if req.Sort == core.SortRecency {
			orderClause = "ORDER BY u.created_at DESC, u.id ASC"
		}
		sqlQuery = `
			SELECT u.id, u.name, u.bio, u.avatar_url, u.created_at, ` + rankExpr + ` AS rank
			FROM users u
			JOIN users_fts fts ON u.rowid = fts.rowid
			WHERE users_fts MATCH ?
			` + orderClause + `
			LIMIT ? OFFSET ?`
		args = append(args, s.rank.rankArgs()...)
		args = append(args, matchQuery(req.Query), limit, offset)
	} else {
		pattern := likePattern(req.Query)
		sqlQuery = `
			SELECT u.id, u.name, u.bio, u.avatar_url, u.created_at
			FROM users u
			WHERE ` + userLikeClause + `
			ORDER BY u.created_at DESC, u.id ASC
			LIMIT ? OFFSET ?`
		args = append(args, pattern, pattern, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying users: %w", err)
	}
	defer closeRows(rows)

	var hits []core.UserHit
	for rows.Next() {
		var hit core.UserHit
		var rank float64

		dest := []interface{}{&hit.ID, &hit.Name, &hit.Bio, &hit.AvatarURL, &hit.CreatedAt}
		if mode == ModeFTS {
			dest = append(dest, &rank)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scanning user row: %w", err)
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

	total, err := s.countUsers(ctx, req, mode)
	if err != nil {
		return nil, 0, err
	}

	return hits, total, nil
}

func (s *Store) countUsers(ctx context.Context, req core.SearchRequest, mode QueryMode) (int, error) {
	var sqlQuery string
	var args []interface{}

	if mode == ModeFTS {
		sqlQuery = `
			SELECT COUNT(*)
			FROM users u
			JOIN users_fts fts ON u.rowid = fts.rowid
			WHERE users_fts MATCH ?`
		args = append(args, matchQuery(req.Query))
	} else {
		pattern := likePattern(req.Query)
		sqlQuery = `SELECT COUNT(*) FROM users u WHERE ` + userLikeClause
		args = append(args, pattern, pattern)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return total, nil
}
