package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

// Config holds all settings for the search engine and its CLI.
type Config struct {
	// DBPath is the SQLite database file holding the indexed content.
	DBPath string `toml:"db_path"`

	// DisableFTS forces every searcher onto the substring fallback path.
	// Useful when the FTS tables are being rebuilt.
	DisableFTS bool `toml:"disable_fts"`

	Search    SearchConfig    `toml:"search"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

// SearchConfig tunes ranking and unified-search behavior.
type SearchConfig struct {
	// RelevanceWeight and RecencyWeight blend textual relevance with
	// content age. They should sum to 1 so ranks stay in [0,1].
	RelevanceWeight float64 `toml:"relevance_weight"`
	RecencyWeight   float64 `toml:"recency_weight"`

	// HalfLifeDays is the age at which the recency score halves.
	HalfLifeDays float64 `toml:"half_life_days"`

	// Per-bucket result limits used when searching all entity types at
	// once. Posts get the largest share of the combined payload.
	PostsLimit      int `toml:"posts_limit"`
	ActivitiesLimit int `toml:"activities_limit"`
	UsersLimit      int `toml:"users_limit"`
	TagsLimit       int `toml:"tags_limit"`

	// BucketTimeout bounds each per-bucket query.
	BucketTimeout Duration `toml:"bucket_timeout"`
}

// RateLimitConfig configures the per-identity search rate gate.
type RateLimitConfig struct {
	PerSecond float64 `toml:"per_second"`
	Burst     int     `toml:"burst"`
}

// Duration wraps time.Duration for TOML round-tripping.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// GetDefaultConfig returns a config with all defaults applied.
func GetDefaultConfig() (*Config, error) {
	dbPath, err := GetDefaultDBPath()
	if err != nil {
		return nil, fmt.Errorf("getting default database path: %w", err)
	}
	cfg := &Config{DBPath: dbPath}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadConfig reads configPath, falling back to defaults when the file does
// not exist. Missing keys fall back to their defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.DBPath == "" {
		dbPath, err := GetDefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("getting default database path: %w", err)
		}
		config.DBPath = dbPath
	}
	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Search.RelevanceWeight == 0 && c.Search.RecencyWeight == 0 {
		c.Search.RelevanceWeight = 0.7
		c.Search.RecencyWeight = 0.3
	}
	if c.Search.HalfLifeDays == 0 {
		c.Search.HalfLifeDays = 30
	}
	if c.Search.PostsLimit == 0 {
		c.Search.PostsLimit = 5
	}
	if c.Search.ActivitiesLimit == 0 {
		c.Search.ActivitiesLimit = 5
	}
	if c.Search.UsersLimit == 0 {
		c.Search.UsersLimit = 3
	}
	if c.Search.TagsLimit == 0 {
		c.Search.TagsLimit = 3
	}
	if c.Search.BucketTimeout.Duration == 0 {
		c.Search.BucketTimeout = Duration{5 * time.Second}
	}
	if c.RateLimit.PerSecond == 0 {
		c.RateLimit.PerSecond = 5
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
}

// SaveConfig writes the config as TOML.
func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveTemplateConfig writes the commented sample config with the database
// path filled in.
func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	dbPath := c.DBPath
	if dbPath == "" {
		var err error
		dbPath, err = GetDefaultDBPath()
		if err != nil {
			return fmt.Errorf("getting default database path: %w", err)
		}
	}

	template := strings.Replace(configTemplate, "/home/user/.local/share/blogsearch/blog.db", dbPath, 1)
	return os.WriteFile(configPath, []byte(template), 0644)
}

// GetDefaultStorageDir returns the default directory for the database file.
func GetDefaultStorageDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	storageDir := filepath.Join(dataDir, "blogsearch")

	if err := os.MkdirAll(storageDir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", storageDir, err)
	}

	return storageDir, nil
}

// GetDefaultDBPath returns the default database path in the user's data
// directory.
func GetDefaultDBPath() (string, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(storageDir, "blog.db"), nil
}

// GetConfigDir returns the configuration directory.
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	appConfigDir := filepath.Join(configDir, "blogsearch")

	if err := os.MkdirAll(appConfigDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", appConfigDir, err)
	}

	return appConfigDir, nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
