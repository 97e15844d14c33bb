package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/yj147/jikns-blog-sub011/pkg/core"
)

const activityLikeClause = `lower(a.content) LIKE ? ESCAPE '\'`

// SearchActivities returns one page of activity hits plus the total count.
// Soft-deleted activities are excluded by the shared filter set.
func (s *Store) SearchActivities(ctx context.Context, req core.SearchRequest, mode QueryMode, limit, offset int) ([]core.ActivityHit, int, error) {
	conds, condArgs := activityFilters(req)

	var sqlQuery string
	var args []interface{}

	if mode == ModeFTS {
		rankExpr := s.rank.rankSQL("bm25(activities_fts)", "a.created_at")
		orderClause := "ORDER BY rank DESC, a.created_at DESC, a.id ASC"
		if req.Sort == core.SortRecency {
			orderClause = "ORDER BY a.created_at DESC, a.id ASC"
		}
		sqlQuery = `
			SELECT a.id, a.content, a.author_id, COALESCE(u.name, ''), a.created_at, ` + rankExpr + ` AS rank
			FROM activities a
			JOIN activities_fts fts ON a.rowid = fts.rowid
			LEFT JOIN users u ON u.id = a.author_id
			WHERE activities_fts MATCH ?` + whereAnd(conds) + `
			` + orderClause + `
			LIMIT ? OFFSET ?`
		args = append(args, s.rank.rankArgs()...)
		args = append(args, matchQuery(req.Query))
		args = append(args, condArgs...)
		args = append(args, limit, offset)
	} else {
		sqlQuery = `
			SELECT a.id, a.content, a.author_id, COALESCE(u.name, ''), a.created_at
			FROM activities a
			LEFT JOIN users u ON u.id = a.author_id
			WHERE ` + activityLikeClause + whereAnd(conds) + `
			ORDER BY a.created_at DESC, a.id ASC
			LIMIT ? OFFSET ?`
		args = append(args, likePattern(req.Query))
		args = append(args, condArgs...)
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying activities: %w", err)
	}
	defer closeRows(rows)

	var hits []core.ActivityHit
	for rows.Next() {
		var hit core.ActivityHit
		var rank float64

		dest := []interface{}{&hit.ID, &hit.Content, &hit.AuthorID, &hit.AuthorName, &hit.CreatedAt}
		if mode == ModeFTS {
			dest = append(dest, &rank)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scanning activity row: %w", err)
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

	total, err := s.countActivities(ctx, req, mode, conds, condArgs)
	if err != nil {
		return nil, 0, err
	}

	return hits, total, nil
}

func (s *Store) countActivities(ctx context.Context, req core.SearchRequest, mode QueryMode, conds []string, condArgs []interface{}) (int, error) {
	var sqlQuery string
	var args []interface{}

	if mode == ModeFTS {
		sqlQuery = `
			SELECT COUNT(*)
			FROM activities a
			JOIN activities_fts fts ON a.rowid = fts.rowid
			WHERE activities_fts MATCH ?` + whereAnd(conds)
		args = append(args, matchQuery(req.Query))
		args = append(args, condArgs...)
	} else {
		sqlQuery = `
			SELECT COUNT(*)
			FROM activities a
			WHERE ` + activityLikeClause + whereAnd(conds)
		args = append(args, likePattern(req.Query))
		args = append(args, condArgs...)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting activities: %w", err)
	}
	return total, nil
}
