package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

// StatsCommand creates the stats command
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show index statistics",
		Action: func(ctx context.Context, c *cli.Command) error {
			return showStats(c)
		},
	}
}

func showStats(c *cli.Command) error {
	cfg, err := loadConfig(c)
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

	stats, err := store.Stats()
	if err != nil {
		return fmt.Errorf("collecting stats: %w", err)
	}

	fmt.Printf("📊 Index Statistics\n")
	fmt.Printf("═══════════════════\n\n")
	for _, name := range []string{"posts", "activities", "users", "tags"} {
		n, _ := stats[name].(int)
		fmt.Printf("%-12s %s\n", name+":", formatNumber(n))
	}

	if oldest, ok := stats["oldest_post"].(time.Time); ok {
		newest, _ := stats["newest_post"].(time.Time)
		fmt.Printf("\nPosts span %s to %s\n", oldest.Format("Jan 2, 2006"), newest.Format("Jan 2, 2006"))
	}
	return nil
}
