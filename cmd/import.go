package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/yj147/jikns-blog-sub011/pkg/core"
	"github.com/yj147/jikns-blog-sub011/pkg/log"
)

// contentDump is the JSON shape accepted by the import command. All
// sections are optional.
type contentDump struct {
	Users      []core.User     `json:"users"`
	Tags       []core.Tag      `json:"tags"`
	Posts      []core.Post     `json:"posts"`
	Activities []core.Activity `json:"activities"`
}

// ImportCommand creates the import command
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import content from a JSON dump into the search index",
		ArgsUsage: "<dump.json>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one dump file argument")
			}
			return importDump(c, c.Args().First())
		},
	}
}

func importDump(c *cli.Command, path string) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading dump: %w", err)
	}
	var dump contentDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return fmt.Errorf("parsing dump: %w", err)
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

	logger := log.ForComponent("import")

	// Users and tags first so posts and activities can reference them.
	for i := range dump.Users {
		if dump.Users[i].ID == "" {
			dump.Users[i].ID = uuid.NewString()
		}
		if err := store.UpsertUser(dump.Users[i]); err != nil {
			return fmt.Errorf("importing user %s: %w", dump.Users[i].ID, err)
		}
	}
	for i := range dump.Tags {
		if dump.Tags[i].ID == "" {
			dump.Tags[i].ID = uuid.NewString()
		}
		if err := store.UpsertTag(dump.Tags[i]); err != nil {
			return fmt.Errorf("importing tag %s: %w", dump.Tags[i].ID, err)
		}
	}
	for i := range dump.Posts {
		if dump.Posts[i].ID == "" {
			dump.Posts[i].ID = uuid.NewString()
		}
		if err := store.UpsertPost(dump.Posts[i]); err != nil {
			return fmt.Errorf("importing post %s: %w", dump.Posts[i].ID, err)
		}
	}
	for i := range dump.Activities {
		if dump.Activities[i].ID == "" {
			dump.Activities[i].ID = uuid.NewString()
		}
		if err := store.UpsertActivity(dump.Activities[i]); err != nil {
			return fmt.Errorf("importing activity %s: %w", dump.Activities[i].ID, err)
		}
	}

	logger.Infof("imported %d users, %d tags, %d posts, %d activities",
		len(dump.Users), len(dump.Tags), len(dump.Posts), len(dump.Activities))
	fmt.Printf("Imported %d users, %d tags, %d posts, %d activities from %s\n",
		len(dump.Users), len(dump.Tags), len(dump.Posts), len(dump.Activities), path)
	return nil
}
