package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yj147/jikns-blog-sub011/pkg/core"
	"github.com/yj147/jikns-blog-sub011/pkg/ratelimit"
	"github.com/yj147/jikns-blog-sub011/pkg/search"
)

// Define styles using lipgloss
var (
	bucketHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("214")).
				Margin(1, 0, 0, 0)

	hitTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("32")).
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("32")).
			Padding(0, 1).
			Margin(1, 0, 1, 0)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search posts, activities, users and tags",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "query",
				Usage: "Search query",
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Entity type to search (all, posts, activities, users, tags)",
			},
			&cli.StringFlag{
				Name:  "page",
				Usage: "Result page, starting at 1",
			},
			&cli.StringFlag{
				Name:  "limit",
				Usage: "Results per page (single-type searches only)",
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Sort order (relevance or recency)",
			},
			&cli.StringFlag{
				Name:  "author",
				Usage: "Filter posts and activities by author ID",
			},
			&cli.StringSliceFlag{
				Name:  "tag",
				Usage: "Filter posts by tag ID. Can be used multiple times",
			},
			&cli.StringFlag{
				Name:  "from",
				Usage: "Only posts published at or after this date (RFC3339 or YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "to",
				Usage: "Only posts published at or before this date (RFC3339 or YYYY-MM-DD)",
			},
			&cli.BoolFlag{
				Name:  "drafts",
				Usage: "Include unpublished posts",
				Value: false,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the raw response as JSON",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runSearch(ctx, c)
		},
	}
}

func runSearch(ctx context.Context, c *cli.Command) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	gate := ratelimit.NewGate(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	if d := gate.Check("cli"); !d.Allowed {
		return &core.RateLimitedError{RetryAfter: d.RetryAfter}
	}

	onlyPublished := ""
	if c.Bool("drafts") {
		onlyPublished = "false"
	}
	req, err := search.ParseParams(search.RawParams{
		Query:         c.String("query"),
		Type:          c.String("type"),
		Page:          c.String("page"),
		Limit:         c.String("limit"),
		Sort:          c.String("sort"),
		AuthorID:      c.String("author"),
		TagIDs:        c.StringSlice("tag"),
		PublishedFrom: c.String("from"),
		PublishedTo:   c.String("to"),
		OnlyPublished: onlyPublished,
	})
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close store: %v\n", err)
		}
	}()

	results, err := newEngine(store, cfg).Search(ctx, req)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	printResults(results)
	return nil
}

func printResults(res *core.SearchResults) {
	if res.OverallTotal == 0 {
		fmt.Println(noDataStyle.Render(fmt.Sprintf("No results for %q", res.Query)))
		return
	}

	title := cases.Title(language.English)

	if len(res.Posts.Items) > 0 {
		fmt.Println(bucketHeaderStyle.Render(bucketHeader(title, "posts", res.Posts.Total, res.Posts.HasMore)))
		for i, hit := range res.Posts.Items {
			fmt.Printf("%d. %s\n", i+1, hitTitleStyle.Render(hit.Title))
			var tagNames []string
			for _, tag := range hit.Tags {
				tagNames = append(tagNames, tag.Name)
			}
			meta := fmt.Sprintf("by %s · %s", hit.AuthorName, formatTime(postDate(hit)))
			if len(tagNames) > 0 {
				meta += " · " + strings.Join(tagNames, ", ")
			}
			fmt.Println("   " + metaStyle.Render(meta))
			if hit.Excerpt != "" {
				fmt.Println("   " + hit.Excerpt)
			}
		}
	}

	if len(res.Activities.Items) > 0 {
		fmt.Println(bucketHeaderStyle.Render(bucketHeader(title, "activities", res.Activities.Total, res.Activities.HasMore)))
		for i, hit := range res.Activities.Items {
			fmt.Printf("%d. %s\n", i+1, hit.Content)
			fmt.Println("   " + metaStyle.Render(fmt.Sprintf("by %s · %s", hit.AuthorName, formatTime(hit.CreatedAt))))
		}
	}

	if len(res.Users.Items) > 0 {
		fmt.Println(bucketHeaderStyle.Render(bucketHeader(title, "users", res.Users.Total, res.Users.HasMore)))
		for i, hit := range res.Users.Items {
			fmt.Printf("%d. %s\n", i+1, hitTitleStyle.Render(hit.Name))
			if hit.Bio != "" {
				fmt.Println("   " + metaStyle.Render(hit.Bio))
			}
		}
	}

	if len(res.Tags.Items) > 0 {
		fmt.Println(bucketHeaderStyle.Render(bucketHeader(title, "tags", res.Tags.Total, res.Tags.HasMore)))
		for i, hit := range res.Tags.Items {
			fmt.Printf("%d. %s\n", i+1, hitTitleStyle.Render("#"+hit.Name))
			if hit.Description != "" {
				fmt.Println("   " + metaStyle.Render(hit.Description))
			}
		}
	}

	fmt.Println(summaryStyle.Render(fmt.Sprintf("Total: %s results", formatNumber(res.OverallTotal))))
}

func bucketHeader(title cases.Caser, name string, total int, hasMore bool) string {
	header := fmt.Sprintf("%s (%d)", title.String(name), total)
	if hasMore {
		header += " …"
	}
	return header
}

func postDate(hit core.PostHit) time.Time {
	if hit.PublishedAt != nil {
		return *hit.PublishedAt
	}
	return hit.CreatedAt
}
