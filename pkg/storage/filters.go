package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/yj147/jikns-blog-sub011/pkg/core"
)

// QueryMode selects how textual matching is executed. Both modes run the
// same structural filters; only the text-match mechanism and ranking differ.
type QueryMode int

const (
	// ModeFTS matches against the FTS5 shadow tables and ranks with bm25
	// blended with recency.
	ModeFTS QueryMode = iota

	// ModeLike is the fallback: case-insensitive substring containment
	// over the same columns, ordered by recency, binary relevance.
	ModeLike
)

// postFilters builds the structural predicates for post searches. Both query
// modes and both the page and count queries go through this one function so
// the two paths cannot drift apart.
func postFilters(req core.SearchRequest) ([]string, []interface{}) {
	var conds []string
	var args []interface{}

	if req.OnlyPublished {
		conds = append(conds, "p.published = 1")
	}
	if req.AuthorID != "" {
		conds = append(conds, "p.author_id = ?")
		args = append(args, req.AuthorID)
	}
	if tagIDs := req.DedupedTagIDs(); len(tagIDs) > 0 {
		// Intersection semantics: the post must carry every requested tag.
		placeholders := strings.Repeat("?,", len(tagIDs)-1) + "?"
		conds = append(conds, fmt.Sprintf(
			"p.id IN (SELECT post_id FROM post_tags WHERE tag_id IN (%s) GROUP BY post_id HAVING COUNT(DISTINCT tag_id) = ?)",
			placeholders))
		for _, id := range tagIDs {
			args = append(args, id)
		}
		args = append(args, len(tagIDs))
	}

	dateCol := postDateColumn(req)
	if req.PublishedFrom != nil {
		conds = append(conds, dateCol+" >= ?")
		args = append(args, req.PublishedFrom.UTC().Format(time.RFC3339))
	}
	if req.PublishedTo != nil {
		conds = append(conds, dateCol+" <= ?")
		args = append(args, req.PublishedTo.UTC().Format(time.RFC3339))
	}

	return conds, args
}

// postDateColumn picks the timeline the date range applies to. Drafts have
// no meaningful published_at, so requests that include them filter on
// created_at instead.
func postDateColumn(req core.SearchRequest) string {
	if req.OnlyPublished {
		return "p.published_at"
	}
	return "p.created_at"
}

// activityFilters builds the structural predicates for activity searches.
// Soft-deleted rows never match.
func activityFilters(req core.SearchRequest) ([]string, []interface{}) {
	conds := []string{"a.deleted_at IS NULL"}
	var args []interface{}

	if req.AuthorID != "" {
		conds = append(conds, "a.author_id = ?")
		args = append(args, req.AuthorID)
	}
	if req.PublishedFrom != nil {
		conds = append(conds, "a.created_at >= ?")
		args = append(args, req.PublishedFrom.UTC().Format(time.RFC3339))
	}
	if req.PublishedTo != nil {
		conds = append(conds, "a.created_at <= ?")
		args = append(args, req.PublishedTo.UTC().Format(time.RFC3339))
	}

	return conds, args
}

// whereAnd renders conds as an " AND ..." suffix for queries that already
// have a WHERE clause.
func whereAnd(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " AND " + strings.Join(conds, " AND ")
}

// matchQuery turns raw user input into an FTS5 MATCH string. Every
// whitespace-separated term becomes a quoted string literal, so user
// punctuation cannot be parsed as FTS5 syntax; terms are implicitly ANDed.
func matchQuery(q string) string {
	fields := strings.Fields(q)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " ")
}

// likePattern builds a case-insensitive containment pattern for the
// fallback path. Columns are compared with lower(col) LIKE pattern
// ESCAPE '\'.
func likePattern(q string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(q))
	return "%" + escaped + "%"
}
