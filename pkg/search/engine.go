// Package search implements the unified multi-entity search engine. One
// request searches posts, activities, users and tags, ranked by a blend of
// textual relevance and recency, with transparent degradation from the
// full-text path to a substring fallback when FTS fails or is disabled.
//
// The Engine holds one typed searcher per entity kind. In "all" mode the
// four searchers run concurrently with small fixed per-bucket limits; a
// single-type request uses standard page/limit pagination. An "all"-mode
// bucket that fails degrades to an empty bucket, while a single-type
// request propagates the failure as an InternalError.
package search

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yj147/jikns-blog-sub011/pkg/core"
	"github.com/yj147/jikns-blog-sub011/pkg/log"
	"github.com/yj147/jikns-blog-sub011/pkg/storage"
)

// Options tunes engine behavior. Zero fields fall back to defaults.
type Options struct {
	// DisableFTS skips the full-text path entirely, running every search
	// on the substring fallback.
	DisableFTS bool

	// BucketTimeout bounds each per-bucket query attempt.
	BucketTimeout time.Duration

	// Per-bucket limits for TypeAll requests.
	PostsLimit      int
	ActivitiesLimit int
	UsersLimit      int
	TagsLimit       int
}

func (o Options) withDefaults() Options {
	if o.BucketTimeout == 0 {
		o.BucketTimeout = 5 * time.Second
	}
	if o.PostsLimit == 0 {
		o.PostsLimit = 5
	}
	if o.ActivitiesLimit == 0 {
		o.ActivitiesLimit = 5
	}
	if o.UsersLimit == 0 {
		o.UsersLimit = 3
	}
	if o.TagsLimit == 0 {
		o.TagsLimit = 3
	}
	return o
}

// Engine fans search requests out to the per-entity searchers and
// assembles the unified response.
type Engine struct {
	store  *storage.Store
	opts   Options
	logger *log.Logger
}

// NewEngine creates a search engine over the given store.
func NewEngine(store *storage.Store, opts Options) *Engine {
	return &Engine{
		store:  store,
		opts:   opts.withDefaults(),
		logger: log.ForComponent("search"),
	}
}

// Search validates the request and executes it. The response always carries
// all four buckets; buckets that were not queried report zero totals.
// OverallTotal is the sum of the four bucket totals.
func (e *Engine) Search(ctx context.Context, req core.SearchRequest) (*core.SearchResults, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	req.TagIDs = req.DedupedTagIDs()

	// Zero-valued enums pass validation the same way empty strings parse,
	// so a directly-filled request gets the same defaults here.
	if req.Type == "" {
		req.Type = core.TypeAll
	}
	if req.Sort == "" {
		req.Sort = core.SortRelevance
	}

	res := &core.SearchResults{
		Query:      req.Query,
		Type:       req.Type,
		Page:       req.Page,
		Limit:      req.Limit,
		Posts:      core.EmptyBucket[core.PostHit](req.Page, req.Limit),
		Activities: core.EmptyBucket[core.ActivityHit](req.Page, req.Limit),
		Users:      core.EmptyBucket[core.UserHit](req.Page, req.Limit),
		Tags:       core.EmptyBucket[core.TagHit](req.Page, req.Limit),
	}

	if req.Type == core.TypeAll {
		e.searchAll(ctx, req, res)
	} else if err := e.searchOne(ctx, req, res); err != nil {
		return nil, err
	}

	res.OverallTotal = res.Posts.Total + res.Activities.Total + res.Users.Total + res.Tags.Total
	return res, nil
}

// searchAll runs all four searchers concurrently, each with a fixed
// per-bucket limit. A failing bucket degrades to an empty result; the
// goroutines touch disjoint response fields so no locking is needed.
func (e *Engine) searchAll(ctx context.Context, req core.SearchRequest, res *core.SearchResults) {
	var g errgroup.Group

	g.Go(func() error {
		return fillBucket(ctx, req, "posts", e.opts.PostsLimit, &res.Posts, e.searchPosts)
	})
	g.Go(func() error {
		return fillBucket(ctx, req, "activities", e.opts.ActivitiesLimit, &res.Activities, e.searchActivities)
	})
	g.Go(func() error {
		return fillBucket(ctx, req, "users", e.opts.UsersLimit, &res.Users, e.searchUsers)
	})
	g.Go(func() error {
		return fillBucket(ctx, req, "tags", e.opts.TagsLimit, &res.Tags, e.searchTags)
	})

	if err := g.Wait(); err != nil {
		e.logger.Warnf("bucket degraded to empty: %v", err)
	}
}

// fillBucket runs one searcher and stores its bucket. On failure the bucket
// degrades to empty and the error is reported to the group for logging.
func fillBucket[T any](ctx context.Context, req core.SearchRequest, name string, limit int,
	dst *core.Bucket[T], search func(context.Context, core.SearchRequest, int, int) ([]T, int, error)) error {

	items, total, err := search(ctx, req, limit, 0)
	if err != nil {
		*dst = core.EmptyBucket[T](1, limit)
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = core.NewBucket(items, total, 1, limit, true)
	return nil
}

// searchOne runs the single requested searcher with full pagination. A
// failure here is a hard error for the whole request.
func (e *Engine) searchOne(ctx context.Context, req core.SearchRequest, res *core.SearchResults) error {
	offset := (req.Page - 1) * req.Limit

	switch req.Type {
	case core.TypePosts:
		items, total, err := e.searchPosts(ctx, req, req.Limit, offset)
		if err != nil {
			return core.NewInternalError(err)
		}
		res.Posts = core.NewBucket(items, total, req.Page, req.Limit, false)
	case core.TypeActivities:
		items, total, err := e.searchActivities(ctx, req, req.Limit, offset)
		if err != nil {
			return core.NewInternalError(err)
		}
		res.Activities = core.NewBucket(items, total, req.Page, req.Limit, false)
	case core.TypeUsers:
		items, total, err := e.searchUsers(ctx, req, req.Limit, offset)
		if err != nil {
			return core.NewInternalError(err)
		}
		res.Users = core.NewBucket(items, total, req.Page, req.Limit, false)
	case core.TypeTags:
		items, total, err := e.searchTags(ctx, req, req.Limit, offset)
		if err != nil {
			return core.NewInternalError(err)
		}
		res.Tags = core.NewBucket(items, total, req.Page, req.Limit, false)
	}
	return nil
}

// runWithFallback is the explicit primary-then-fallback composition shared
// by all four searchers. The fallback runs at most once, only after the
// primary path fails, and never when the caller's context is already gone.
func runWithFallback[T any](e *Engine, ctx context.Context, name string,
	query func(context.Context, storage.QueryMode) ([]T, int, error)) ([]T, int, error) {

	if !e.opts.DisableFTS {
		bctx, cancel := context.WithTimeout(ctx, e.opts.BucketTimeout)
		items, total, err := query(bctx, storage.ModeFTS)
		cancel()
		if err == nil {
			return items, total, nil
		}
		if ctx.Err() != nil {
			return nil, 0, err
		}
		log.ForComponent(name).Warnf("full-text path failed, falling back to substring match: %v", err)
	}

	bctx, cancel := context.WithTimeout(ctx, e.opts.BucketTimeout)
	defer cancel()
	return query(bctx, storage.ModeLike)
}

func (e *Engine) searchPosts(ctx context.Context, req core.SearchRequest, limit, offset int) ([]core.PostHit, int, error) {
	return runWithFallback(e, ctx, "posts", func(qctx context.Context, mode storage.QueryMode) ([]core.PostHit, int, error) {
		return e.store.SearchPosts(qctx, req, mode, limit, offset)
	})
}

func (e *Engine) searchActivities(ctx context.Context, req core.SearchRequest, limit, offset int) ([]core.ActivityHit, int, error) {
	return runWithFallback(e, ctx, "activities", func(qctx context.Context, mode storage.QueryMode) ([]core.ActivityHit, int, error) {
		return e.store.SearchActivities(qctx, req, mode, limit, offset)
	})
}

func (e *Engine) searchUsers(ctx context.Context, req core.SearchRequest, limit, offset int) ([]core.UserHit, int, error) {
	return runWithFallback(e, ctx, "users", func(qctx context.Context, mode storage.QueryMode) ([]core.UserHit, int, error) {
		return e.store.SearchUsers(qctx, req, mode, limit, offset)
	})
}

func (e *Engine) searchTags(ctx context.Context, req core.SearchRequest, limit, offset int) ([]core.TagHit, int, error) {
	return runWithFallback(e, ctx, "tags", func(qctx context.Context, mode storage.QueryMode) ([]core.TagHit, int, error) {
		return e.store.SearchTags(qctx, req, mode, limit, offset)
	})
}
