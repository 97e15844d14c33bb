package core

import "time"

// TagRef is the denormalized tag carried on a post hit. Only tags present in
// the canonical tag table appear here.
type TagRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PostHit is a post search result with enough denormalized data for display.
// Rank is nil when the hit came from the substring fallback path without a
// computed score.
type PostHit struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	AuthorID    string     `json:"authorId"`
	AuthorName  string     `json:"authorName"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	Tags        []TagRef   `json:"tags"`
	Rank        *float64   `json:"rank"`
}

// ActivityHit is an activity search result.
type ActivityHit struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
	Rank       *float64  `json:"rank"`
}

// UserHit is a user search result.
type UserHit struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
	Rank      *float64  `json:"rank"`
}

// TagHit is a tag search result.
type TagHit struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	Rank        *float64  `json:"rank"`
}

// Bucket is one entity type's slice of a unified search response. Total is
// the size of the full matching set, not the number of items returned on
// this page.
type Bucket[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

// NewBucket builds a bucket with HasMore derived from the pagination mode.
// In all-buckets mode each bucket is a single fixed-size slice, so HasMore
// means "anything beyond what was returned". In single-type mode the page
// offset counts against the total.
func NewBucket[T any](items []T, total, page, limit int, allMode bool) Bucket[T] {
	if items == nil {
		items = []T{}
	}
	hasMore := total > len(items)
	if !allMode {
		hasMore = total > (page-1)*limit+len(items)
	}
	return Bucket[T]{
		Items:   items,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: hasMore,
	}
}

// EmptyBucket returns a zero-result bucket for entity types that were not
// queried. The response shape always carries all four buckets.
func EmptyBucket[T any](page, limit int) Bucket[T] {
	return Bucket[T]{Items: []T{}, Page: page, Limit: limit}
}

// SearchResults is the unified response across all four buckets.
// OverallTotal is always the sum of the bucket totals regardless of the
// requested type; buckets that were not queried contribute zero.
type SearchResults struct {
	Query        string              `json:"query"`
	Type         EntityType          `json:"type"`
	Page         int                 `json:"page"`
	Limit        int                 `json:"limit"`
	OverallTotal int                 `json:"overallTotal"`
	Posts        Bucket[PostHit]     `json:"posts"`
	Activities   Bucket[ActivityHit] `json:"activities"`
	Users        Bucket[UserHit]     `json:"users"`
	Tags         Bucket[TagHit]      `json:"tags"`
}
