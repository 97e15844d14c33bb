package cmd

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/yj147/jikns-blog-sub011/pkg/config"
	"github.com/yj147/jikns-blog-sub011/pkg/log"
	"github.com/yj147/jikns-blog-sub011/pkg/search"
	"github.com/yj147/jikns-blog-sub011/pkg/storage"
)

// loadConfig reads the config file named by the root --config flag and
// applies the root --debug flag to logging.
func loadConfig(c *cli.Command) (*config.Config, error) {
	log.SetGlobalDebug(c.Bool("debug"))

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// openStore opens the search database described by the config.
func openStore(cfg *config.Config) (*storage.Store, error) {
	store, err := storage.Open(cfg.DBPath, storage.RankParams{
		RelevanceWeight: cfg.Search.RelevanceWeight,
		RecencyWeight:   cfg.Search.RecencyWeight,
		HalfLifeDays:    cfg.Search.HalfLifeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.DBPath, err)
	}
	return store, nil
}

// newEngine builds a search engine wired with the config's tuning knobs.
func newEngine(store *storage.Store, cfg *config.Config) *search.Engine {
	return search.NewEngine(store, search.Options{
		DisableFTS:      cfg.DisableFTS,
		BucketTimeout:   cfg.Search.BucketTimeout.Duration,
		PostsLimit:      cfg.Search.PostsLimit,
		ActivitiesLimit: cfg.Search.ActivitiesLimit,
		UsersLimit:      cfg.Search.UsersLimit,
		TagsLimit:       cfg.Search.TagsLimit,
	})
}
