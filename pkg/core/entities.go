// Package core defines the domain model shared by the storage layer and the
// search engine: the indexed entities (posts, activities, users, tags), the
// normalized search request, result buckets, and the error taxonomy exposed
// to callers.
package core

import (
	"fmt"
	"time"
)

// EntityType selects which buckets a search request targets.
type EntityType string

const (
	TypeAll        EntityType = "all"
	TypePosts      EntityType = "posts"
	TypeActivities EntityType = "activities"
	TypeUsers      EntityType = "users"
	TypeTags       EntityType = "tags"
)

// ParseEntityType validates a raw type string. The empty string maps to
// TypeAll.
func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case "":
		return TypeAll, nil
	case TypeAll, TypePosts, TypeActivities, TypeUsers, TypeTags:
		return EntityType(s), nil
	default:
		return "", fmt.Errorf("unknown entity type %q", s)
	}
}

// SortMode controls result ordering within a bucket.
type SortMode string

const (
	SortRelevance SortMode = "relevance"
	SortRecency   SortMode = "recency"
)

// ParseSortMode validates a raw sort string. The empty string maps to
// SortRelevance.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortRecency:
		return SortMode(s), nil
	default:
		return "", fmt.Errorf("unknown sort mode %q", s)
	}
}

// Post is a full blog post record as stored. The search layer returns the
// denormalized PostHit projection instead.
type Post struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Excerpt        string     `json:"excerpt"`
	SEODescription string     `json:"seoDescription"`
	Content        string     `json:"content"`
	AuthorID       string     `json:"authorId"`
	Published      bool       `json:"published"`
	PublishedAt    *time.Time `json:"publishedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	TagIDs         []string   `json:"tagIds,omitempty"`
}

// Activity is a social-feed entry. Soft-deleted activities keep their row but
// carry a DeletedAt timestamp and never surface in search results.
type Activity struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	AuthorID  string     `json:"authorId"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// User is an account searchable by name and bio.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// Tag is a canonical content tag searchable by name and description. Only
// tags present in the tag table surface in search results.
type Tag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
