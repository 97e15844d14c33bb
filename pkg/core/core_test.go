package core

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestParseEntityType(t *testing.T) {
	tests := []struct {
		input   string
		want    EntityType
		wantErr bool
	}{
		{"", TypeAll, false},
		{"all", TypeAll, false},
		{"posts", TypePosts, false},
		{"activities", TypeActivities, false},
		{"users", TypeUsers, false},
		{"tags", TypeTags, false},
		{"comments", "", true},
		{"POSTS", "", true},
	}
	for _, tt := range tests {
		got, err := ParseEntityType(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseEntityType(%q) should fail", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseEntityType(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEntityType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseSortMode(t *testing.T) {
	if got, err := ParseSortMode(""); err != nil || got != SortRelevance {
		t.Errorf("empty sort should default to relevance, got %q, %v", got, err)
	}
	if got, err := ParseSortMode("recency"); err != nil || got != SortRecency {
		t.Errorf("ParseSortMode(recency) = %q, %v", got, err)
	}
	if _, err := ParseSortMode("popularity"); err == nil {
		t.Error("unknown sort mode should fail")
	}
}

func TestDedupedTagIDs(t *testing.T) {
	req := SearchRequest{TagIDs: []string{"t1", "t2", "t1", "t3", "t2", "t1"}}
	got := req.DedupedTagIDs()
	want := []string{"t1", "t2", "t3"}
	if len(got) != len(want) {
		t.Fatalf("expected %d ids, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q (order must be preserved)", i, want[i], got[i])
		}
	}

	if got := (SearchRequest{}).DedupedTagIDs(); len(got) != 0 {
		t.Errorf("nil tag list should dedup to empty, got %v", got)
	}
}

func TestBucketHasMoreSingleType(t *testing.T) {
	items := func(n int) []PostHit { return make([]PostHit, n) }

	tests := []struct {
		name    string
		items   int
		total   int
		page    int
		limit   int
		hasMore bool
	}{
		{"first page of many", 20, 100, 1, 20, true},
		{"exact final page", 20, 100, 5, 20, false},
		{"short final page", 10, 90, 5, 20, false},
		{"middle page", 20, 90, 4, 20, true},
		{"single page", 7, 7, 1, 20, false},
		{"empty", 0, 0, 1, 20, false},
		{"page past the end", 0, 10, 9, 20, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBucket(items(tt.items), tt.total, tt.page, tt.limit, false)
			if b.HasMore != tt.hasMore {
				t.Errorf("hasMore = %v, want %v", b.HasMore, tt.hasMore)
			}
		})
	}
}

func TestBucketHasMoreAllMode(t *testing.T) {
	b := NewBucket(make([]PostHit, 5), 12, 1, 5, true)
	if !b.HasMore {
		t.Error("5 of 12 should report hasMore")
	}
	b = NewBucket(make([]PostHit, 4), 4, 1, 5, true)
	if b.HasMore {
		t.Error("complete bucket should not report hasMore")
	}
}

func TestBucketNilItemsNormalized(t *testing.T) {
	b := NewBucket[PostHit](nil, 0, 1, 20, false)
	if b.Items == nil {
		t.Error("nil items should serialize as an empty array, not null")
	}
	if EmptyBucket[TagHit](1, 3).Items == nil {
		t.Error("empty bucket items should be non-nil")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("limit", "must be between 1 and %d", 50)
	if err.Field != "limit" {
		t.Errorf("field = %q", err.Field)
	}
	if !IsValidationError(err) {
		t.Error("IsValidationError should match")
	}
	if IsValidationError(errors.New("boom")) {
		t.Error("IsValidationError should not match arbitrary errors")
	}
	wrapped := fmt.Errorf("handling request: %w", err)
	if !IsValidationError(wrapped) {
		t.Error("IsValidationError should see through wrapping")
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	cause := errors.New("disk I/O error on page 42")
	err := NewInternalError(cause)
	if msg := err.Error(); msg != "internal search error" {
		t.Errorf("internal error message must stay generic, got %q", msg)
	}
	if !errors.Is(err, cause) {
		t.Error("cause should remain reachable through Unwrap")
	}
}

func TestRateLimitedError(t *testing.T) {
	err := &RateLimitedError{RetryAfter: 2 * time.Second}
	if err.RetryAfter != 2*time.Second {
		t.Errorf("retryAfter = %v", err.RetryAfter)
	}
	if err.Error() == "" {
		t.Error("rate limited error should carry a message")
	}
}
