package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// OptimizeCommand creates the optimize command
func OptimizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "optimize",
		Usage: "Run database housekeeping",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rebuild-fts",
				Usage: "Rebuild full-text indexes from their base tables",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return optimizeDatabase(c, c.Bool("rebuild-fts"))
		},
	}
}

func optimizeDatabase(c *cli.Command, rebuildFTS bool) error {
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

	if rebuildFTS {
		if err := store.RebuildFTS(); err != nil {
			return fmt.Errorf("rebuilding full-text indexes: %w", err)
		}
		fmt.Println("Full-text indexes rebuilt")
	}

	if err := store.Optimize(); err != nil {
		return fmt.Errorf("optimizing database: %w", err)
	}
	fmt.Println("Database optimized")
	return nil
}
