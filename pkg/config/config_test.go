package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.DBPath == "" {
		t.Error("expected default db path")
	}
	if cfg.Search.RelevanceWeight != 0.7 || cfg.Search.RecencyWeight != 0.3 {
		t.Errorf("unexpected default weights: %v/%v", cfg.Search.RelevanceWeight, cfg.Search.RecencyWeight)
	}
	if cfg.Search.PostsLimit != 5 || cfg.Search.TagsLimit != 3 {
		t.Errorf("unexpected default bucket limits: %+v", cfg.Search)
	}
	if cfg.Search.BucketTimeout.Duration != 5*time.Second {
		t.Errorf("unexpected default bucket timeout: %v", cfg.Search.BucketTimeout)
	}
	if cfg.RateLimit.PerSecond != 5 || cfg.RateLimit.Burst != 10 {
		t.Errorf("unexpected default rate limit: %+v", cfg.RateLimit)
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
db_path = "` + filepath.Join(dir, "blog.db") + `"
disable_fts = true

[search]
posts_limit = 8
bucket_timeout = "2s"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !cfg.DisableFTS {
		t.Error("expected disable_fts to be true")
	}
	if cfg.Search.PostsLimit != 8 {
		t.Errorf("expected posts_limit 8, got %d", cfg.Search.PostsLimit)
	}
	if cfg.Search.BucketTimeout.Duration != 2*time.Second {
		t.Errorf("expected 2s bucket timeout, got %v", cfg.Search.BucketTimeout)
	}
	// Unset keys fall back to defaults.
	if cfg.Search.ActivitiesLimit != 5 {
		t.Errorf("expected default activities_limit, got %d", cfg.Search.ActivitiesLimit)
	}
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := &Config{DBPath: filepath.Join(dir, "blog.db")}
	cfg.applyDefaults()
	cfg.Search.HalfLifeDays = 14

	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	reloaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if reloaded.Search.HalfLifeDays != 14 {
		t.Errorf("expected half_life_days 14, got %v", reloaded.Search.HalfLifeDays)
	}
	if reloaded.DBPath != cfg.DBPath {
		t.Errorf("expected db path %q, got %q", cfg.DBPath, reloaded.DBPath)
	}
}

func TestSaveTemplateConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := &Config{DBPath: filepath.Join(dir, "blog.db")}
	if err := cfg.SaveTemplateConfig(path); err != nil {
		t.Fatalf("SaveTemplateConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading template: %v", err)
	}
	if !strings.Contains(string(data), cfg.DBPath) {
		t.Errorf("template should embed the db path, got:\n%s", data)
	}
}
