package core

import "time"

// Request bounds enforced by the validator.
const (
	MaxQueryLength = 100
	MaxLimit       = 50
	DefaultLimit   = 20
	MaxTagFilters  = 10
	MaxTagIDLength = 64
)

// SearchRequest is a normalized, validated search query. Construct one
// through search.ParseParams (or fill it directly and pass it through
// search.Validate) before handing it to the engine; the storage layer
// assumes the bounds documented here already hold.
type SearchRequest struct {
	// Query is the trimmed search term, 1 to MaxQueryLength characters.
	Query string `json:"query"`

	// Type selects the buckets to search. TypeAll fans out to all four.
	Type EntityType `json:"type"`

	// Page is the 1-based page number. Ignored per bucket in TypeAll mode,
	// which always returns the first fixed-size slice of each bucket.
	Page int `json:"page"`

	// Limit is the page size for single-type requests, 1 to MaxLimit.
	Limit int `json:"limit"`

	// Sort orders results by blended relevance (default) or pure recency.
	Sort SortMode `json:"sort"`

	// AuthorID restricts posts and activities to a single author when set.
	// An unknown author simply matches nothing.
	AuthorID string `json:"authorId,omitempty"`

	// TagIDs restricts posts to those carrying every listed tag
	// (intersection, not union). Deduplicated by the validator.
	TagIDs []string `json:"tagIds,omitempty"`

	// PublishedFrom and PublishedTo bound the post timeline: published_at
	// when OnlyPublished is set, created_at when drafts are included.
	// When both are present, PublishedFrom <= PublishedTo.
	PublishedFrom *time.Time `json:"publishedFrom,omitempty"`
	PublishedTo   *time.Time `json:"publishedTo,omitempty"`

	// OnlyPublished excludes draft posts. Defaults to true.
	OnlyPublished bool `json:"onlyPublished"`
}

// DedupedTagIDs returns TagIDs with duplicates removed, preserving first
// occurrence order. Duplicate filters must not change intersection semantics.
func (r SearchRequest) DedupedTagIDs() []string {
	if len(r.TagIDs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(r.TagIDs))
	deduped := make([]string, 0, len(r.TagIDs))
	for _, id := range r.TagIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}
	return deduped
}
