package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines configuration for the billfetch CLI.
type Config struct {
	// Root is the project root. The downloader tool runs here and
	// writes under <Root>/data.
	Root string `yaml:"root"`

	// Tool is the path to the downloader executable, relative to Root
	// unless absolute.
	Tool string `yaml:"tool"`

	// Category is the govinfo bulk-data collection to fetch.
	Category string `yaml:"category"`

	// Sessions is the inclusive range of congresses to fetch.
	Sessions SessionRange `yaml:"sessions"`

	// DatabaseURL is the Postgres connection string for ingest.
	DatabaseURL string `yaml:"database_url"`

	// Bucket is the object storage URL for mirror (s3://, gs://, file://).
	Bucket string `yaml:"bucket"`

	// Prefix is the object key prefix used by mirror.
	Prefix string `yaml:"prefix"`

	// Workers is the number of parallel upload workers for mirror.
	Workers int `yaml:"workers"`

	// Ingest tunes the ETL batching behavior.
	Ingest IngestConfig `yaml:"ingest"`
}

// SessionRange is an inclusive range of congress numbers.
type SessionRange struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// IngestConfig defines batching behavior for the BILLSTATUS ETL.
type IngestConfig struct {
	// CommitEvery commits the transaction after this many bills.
	CommitEvery int `yaml:"commit_every"`

	// FlushRows flushes buffered action/cosponsor rows once their
	// combined count exceeds this threshold.
	FlushRows int `yaml:"flush_rows"`
}

// Default returns a Config with sensible defaults. The session range and
// category match the standing bulk fetch: bill text for the 93rd through
// 119th congresses.
func Default() Config {
	return Config{
		Root:     ".",
		Tool:     filepath.Join("env", "bin", "usc-run"),
		Category: "BILLS",
		Sessions: SessionRange{Start: 93, End: 119},
		Workers:  8,
		Ingest: IngestConfig{
			CommitEvery: 5000,
			FlushRows:   20000,
		},
	}
}

// LoadFromFile loads configuration from a YAML file, applied on top of
// defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc Config
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	return Default().Merge(yc), nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the BILLFETCH_ prefix, except DATABASE_URL
// which keeps its conventional name.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("BILLFETCH_ROOT"); v != "" {
		c.Root = v
	}
	if v := os.Getenv("BILLFETCH_TOOL"); v != "" {
		c.Tool = v
	}
	if v := os.Getenv("BILLFETCH_CATEGORY"); v != "" {
		c.Category = v
	}
	if v := os.Getenv("BILLFETCH_SESSION_START"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse BILLFETCH_SESSION_START: %w", err)
		}
		c.Sessions.Start = n
	}
	if v := os.Getenv("BILLFETCH_SESSION_END"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse BILLFETCH_SESSION_END: %w", err)
		}
		c.Sessions.End = n
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("BILLFETCH_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("BILLFETCH_PREFIX"); v != "" {
		c.Prefix = v
	}
	if v := os.Getenv("BILLFETCH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse BILLFETCH_WORKERS: %w", err)
		}
		c.Workers = n
	}
	return nil
}

// LoadDotenv loads <Root>/.env into the process environment if it exists,
// without overriding variables already set. The project keeps
// DATABASE_URL there.
func (c *Config) LoadDotenv() error {
	path := filepath.Join(c.Root, ".env")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ToolPath returns the path to the downloader tool, resolving relative
// paths against Root.
func (c *Config) ToolPath() string {
	if filepath.IsAbs(c.Tool) {
		return c.Tool
	}
	return filepath.Join(c.Root, c.Tool)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Root == "" {
		return errors.New("config: root is required")
	}
	if c.Tool == "" {
		return errors.New("config: tool is required")
	}
	if c.Category == "" {
		return errors.New("config: category is required")
	}
	if c.Sessions.Start <= 0 || c.Sessions.End <= 0 {
		return errors.New("config: session numbers must be positive")
	}
	if c.Sessions.Start > c.Sessions.End {
		return errors.New("config: session range start must not exceed end")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.Ingest.CommitEvery <= 0 {
		return errors.New("config: ingest.commit_every must be positive")
	}
	if c.Ingest.FlushRows <= 0 {
		return errors.New("config: ingest.flush_rows must be positive")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.Root != "" {
		c.Root = override.Root
	}
	if override.Tool != "" {
		c.Tool = override.Tool
	}
	if override.Category != "" {
		c.Category = override.Category
	}
	if override.Sessions.Start != 0 {
		c.Sessions.Start = override.Sessions.Start
	}
	if override.Sessions.End != 0 {
		c.Sessions.End = override.Sessions.End
	}
	if override.DatabaseURL != "" {
		c.DatabaseURL = override.DatabaseURL
	}
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	if override.Prefix != "" {
		c.Prefix = override.Prefix
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.Ingest.CommitEvery != 0 {
		c.Ingest.CommitEvery = override.Ingest.CommitEvery
	}
	if override.Ingest.FlushRows != 0 {
		c.Ingest.FlushRows = override.Ingest.FlushRows
	}
	return c
}
