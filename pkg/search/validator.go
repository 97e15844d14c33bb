package search

import (
	"strconv"
	"strings"
	"time"

	"github.com/yj147/jikns-blog-sub011/pkg/core"
)

// RawParams carries unvalidated search input, string-typed the way it
// arrives from a CLI or query string. Empty fields get defaults; present
// but malformed fields are rejected, never silently corrected.
type RawParams struct {
	Query         string
	Type          string
	Page          string
	Limit         string
	Sort          string
	AuthorID      string
	TagIDs        []string
	PublishedFrom string
	PublishedTo   string
	OnlyPublished string
}

// ParseParams validates raw input into a normalized SearchRequest. All
// failures are *core.ValidationError values carrying the offending field.
func ParseParams(raw RawParams) (core.SearchRequest, error) {
	var req core.SearchRequest

	req.Query = strings.TrimSpace(raw.Query)

	entityType, err := core.ParseEntityType(raw.Type)
	if err != nil {
		return req, core.NewValidationError("type", "%v", err)
	}
	req.Type = entityType

	sort, err := core.ParseSortMode(raw.Sort)
	if err != nil {
		return req, core.NewValidationError("sort", "%v", err)
	}
	req.Sort = sort

	req.Page = 1
	if raw.Page != "" {
		page, err := strconv.Atoi(raw.Page)
		if err != nil {
			return req, core.NewValidationError("page", "not a number: %q", raw.Page)
		}
		req.Page = page
	}

	req.Limit = core.DefaultLimit
	if raw.Limit != "" {
		limit, err := strconv.Atoi(raw.Limit)
		if err != nil {
			return req, core.NewValidationError("limit", "not a number: %q", raw.Limit)
		}
		req.Limit = limit
	}

	req.AuthorID = strings.TrimSpace(raw.AuthorID)
	req.TagIDs = raw.TagIDs

	if raw.PublishedFrom != "" {
		from, err := parseTimestamp(raw.PublishedFrom, false)
		if err != nil {
			return req, core.NewValidationError("publishedFrom", "invalid timestamp %q", raw.PublishedFrom)
		}
		req.PublishedFrom = &from
	}
	if raw.PublishedTo != "" {
		to, err := parseTimestamp(raw.PublishedTo, true)
		if err != nil {
			return req, core.NewValidationError("publishedTo", "invalid timestamp %q", raw.PublishedTo)
		}
		req.PublishedTo = &to
	}

	req.OnlyPublished = true
	if raw.OnlyPublished != "" {
		only, err := strconv.ParseBool(raw.OnlyPublished)
		if err != nil {
			return req, core.NewValidationError("onlyPublished", "not a boolean: %q", raw.OnlyPublished)
		}
		req.OnlyPublished = only
	}

	if err := Validate(req); err != nil {
		return req, err
	}

	// Normalize the tag set once so duplicate filters cannot change
	// intersection semantics downstream.
	req.TagIDs = req.DedupedTagIDs()

	return req, nil
}

// Validate bounds-checks an already-typed SearchRequest. It runs before any
// query executes; violations are never retried.
func Validate(req core.SearchRequest) error {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return core.NewValidationError("query", "must not be empty")
	}
	if n := len([]rune(query)); n > core.MaxQueryLength {
		return core.NewValidationError("query", "exceeds %d characters (%d)", core.MaxQueryLength, n)
	}
	if err := checkQueryText(query); err != nil {
		return err
	}

	if _, err := core.ParseEntityType(string(req.Type)); err != nil {
		return core.NewValidationError("type", "%v", err)
	}
	if _, err := core.ParseSortMode(string(req.Sort)); err != nil {
		return core.NewValidationError("sort", "%v", err)
	}

	if req.Page < 1 {
		return core.NewValidationError("page", "must be >= 1, got %d", req.Page)
	}
	if req.Limit < 1 || req.Limit > core.MaxLimit {
		return core.NewValidationError("limit", "must be between 1 and %d, got %d", core.MaxLimit, req.Limit)
	}

	deduped := req.DedupedTagIDs()
	if len(deduped) > core.MaxTagFilters {
		return core.NewValidationError("tagIds", "at most %d tag filters allowed, got %d", core.MaxTagFilters, len(deduped))
	}
	for _, id := range deduped {
		if strings.TrimSpace(id) == "" {
			return core.NewValidationError("tagIds", "contains an empty tag ID")
		}
		if len(id) > core.MaxTagIDLength {
			return core.NewValidationError("tagIds", "tag ID exceeds %d characters", core.MaxTagIDLength)
		}
	}

	if req.PublishedFrom != nil && req.PublishedTo != nil && req.PublishedFrom.After(*req.PublishedTo) {
		return core.NewValidationError("publishedFrom", "must not be after publishedTo")
	}

	return nil
}

// checkQueryText rejects characters that have no business in a search term.
func checkQueryText(q string) error {
	for _, r := range q {
		if r < 0x20 || r == 0x7f {
			return core.NewValidationError("query", "contains control characters")
		}
		if r == ';' {
			return core.NewValidationError("query", "contains illegal character %q", r)
		}
	}
	return nil
}

// parseTimestamp accepts RFC3339 or a plain date. Plain end dates cover the
// whole day.
func parseTimestamp(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
	}
	return t, nil
}
