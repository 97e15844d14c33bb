package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/yj147/jikns-blog-sub011/pkg/config"
)

// InitCommand creates the init command
func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize configuration and the search database",
		Action: func(ctx context.Context, c *cli.Command) error {
			return initConfig(c.String("config"))
		},
	}
}

// initConfig writes the template configuration and creates an empty database
// with the full schema so later imports and searches have a target.
func initConfig(configPath string) error {
	cfg, err := config.GetDefaultConfig()
	if err != nil {
		return fmt.Errorf("building default config: %w", err)
	}
	if err := cfg.SaveTemplateConfig(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration initialized at %s\n", configPath)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	fmt.Printf("Database initialized at %s\n", cfg.DBPath)
	return nil
}
