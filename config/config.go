package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for vsearch.
type Config struct {
	Index   IndexConfig   `yaml:"index"`
	Search  SearchConfig  `yaml:"search"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// IndexConfig holds indexing configuration.
type IndexConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
	Workers  int      `yaml:"workers"` // concordance builders; 0 = GOMAXPROCS
}

// SearchConfig holds query and presentation configuration.
type SearchConfig struct {
	TopK              int     `yaml:"top_k"`     // 0 = all results
	MinScore          float64 `yaml:"min_score"` // results below this are hidden; zero scores always are
	Workers           int     `yaml:"workers"`
	ParallelThreshold int     `yaml:"parallel_threshold"` // score on the worker pool above this many documents
}

// CacheConfig holds query cache configuration.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Includes: []string{"**/*.txt", "**/*.md", "**/*.rst", "**/*.text"},
			Excludes: []string{"**/.git/**", "**/.vsearch/**", "**/node_modules/**", "**/vendor/**"},
			Workers:  0,
		},
		Search: SearchConfig{
			TopK:              10,
			MinScore:          0,
			Workers:           4,
			ParallelThreshold: 2000,
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    256,
			TTL:     5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for vsearch.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "vsearch.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".vsearch", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// ApplyEnv overrides fields from VSEARCH_* environment variables.
func (c *Config) ApplyEnv() error {
	var errs []error

	if v, ok := os.LookupEnv("VSEARCH_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv("VSEARCH_LOG_FORMAT"); ok {
		c.Logging.Format = v
	}
	if v, ok := os.LookupEnv("VSEARCH_TOP_K"); ok {
		n, err := strconv.Atoi(v)
		errs = append(errs, envErr("VSEARCH_TOP_K", err))
		if err == nil {
			c.Search.TopK = n
		}
	}
	if v, ok := os.LookupEnv("VSEARCH_MIN_SCORE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		errs = append(errs, envErr("VSEARCH_MIN_SCORE", err))
		if err == nil {
			c.Search.MinScore = f
		}
	}
	if v, ok := os.LookupEnv("VSEARCH_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		errs = append(errs, envErr("VSEARCH_WORKERS", err))
		if err == nil {
			c.Index.Workers = n
			c.Search.Workers = n
		}
	}
	if v, ok := os.LookupEnv("VSEARCH_CACHE"); ok {
		b, err := strconv.ParseBool(v)
		errs = append(errs, envErr("VSEARCH_CACHE", err))
		if err == nil {
			c.Cache.Enabled = b
		}
	}
	if v, ok := os.LookupEnv("VSEARCH_INCLUDES"); ok {
		c.Index.Includes = splitList(v)
	}

	return errors.Join(errs...)
}

func envErr(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("invalid %s: %w", name, err)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that values are within range.
func (c *Config) Validate() error {
	var errs []error
	if c.Index.Workers < 0 {
		errs = append(errs, fmt.Errorf("index.workers must be >= 0, got %d", c.Index.Workers))
	}
	if c.Search.Workers < 1 {
		errs = append(errs, fmt.Errorf("search.workers must be >= 1, got %d", c.Search.Workers))
	}
	if c.Search.TopK < 0 {
		errs = append(errs, fmt.Errorf("search.top_k must be >= 0, got %d", c.Search.TopK))
	}
	if c.Search.MinScore < 0 || c.Search.MinScore > 1 {
		errs = append(errs, fmt.Errorf("search.min_score must be within [0, 1], got %g", c.Search.MinScore))
	}
	if c.Cache.Enabled && c.Cache.Size < 1 {
		errs = append(errs, fmt.Errorf("cache.size must be >= 1, got %d", c.Cache.Size))
	}
	return errors.Join(errs...)
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexDBPath returns the path to the index database.
func IndexDBPath(dir string) string {
	return filepath.Join(dir, ".vsearch", "index.db")
}

// EnsureIndexDir ensures the .vsearch directory exists.
func EnsureIndexDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".vsearch"), 0755)
}
