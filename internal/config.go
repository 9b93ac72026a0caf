package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/dossier/internal/blog"
	"github.com/starford/dossier/internal/cache"
	"github.com/starford/dossier/internal/search"
	"github.com/starford/dossier/internal/searchindex"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app" toml:"app"`
	Notes     NotesConfig       `yaml:"notes" toml:"notes"`
	Blog      BlogConfig        `yaml:"blog" toml:"blog"`
	Cache     CacheConfig       `yaml:"cache" toml:"cache"`
	Search    SearchConfig      `yaml:"search" toml:"search"`
	Index     IndexConfig       `yaml:"index" toml:"index"`
	RateLimit RateLimitConfig   `yaml:"rate_limit" toml:"rate_limit"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		v    validation.Validatable
	}{
		{"app", &c.App},
		{"notes", &c.Notes},
		{"blog", &c.Blog},
		{"cache", &c.Cache},
		{"search", &c.Search},
		{"index", &c.Index},
		{"rate_limit", &c.RateLimit},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NotesConfig points at the Markdown notes root.
type NotesConfig struct {
	Path string `yaml:"path" toml:"path"`
	// Exclude lists doublestar patterns, relative to Path, of files to skip.
	Exclude []string `yaml:"exclude" toml:"exclude"`
	// SeedExamples writes a few example notes into an empty root on start.
	SeedExamples bool `yaml:"seed_examples" toml:"seed_examples"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Exclude, validation.Each(validation.By(validPattern))),
	)
}

func validPattern(v any) error {
	p, _ := v.(string)
	if !doublestar.ValidatePattern(p) {
		return fmt.Errorf("invalid pattern %q", p)
	}
	return nil
}

// BlogConfig controls fetching of external blog posts.
type BlogConfig struct {
	Enabled      bool          `yaml:"enabled" toml:"enabled"`
	Handle       string        `yaml:"handle" toml:"handle"`
	ProxyURL     string        `yaml:"proxy_url" toml:"proxy_url"`
	FeedTemplate string        `yaml:"feed_template" toml:"feed_template"`
	Timeout      time.Duration `yaml:"timeout" toml:"timeout"`
}

// Validate validates the blog configuration.
func (c *BlogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Handle, validation.When(c.Enabled, validation.Required)),
		validation.Field(&c.ProxyURL, is.URL),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// CacheConfig holds the TTL of every in-memory cache.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" toml:"ttl"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Second)),
	)
}

// SearchConfig tunes query results.
type SearchConfig struct {
	MaxResults    int `yaml:"max_results" toml:"max_results"`
	SnippetLength int `yaml:"snippet_length" toml:"snippet_length"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxResults, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.SnippetLength, validation.Required, validation.Min(40), validation.Max(1000)),
	)
}

// IndexConfig controls the static search index artifact.
type IndexConfig struct {
	// Output is the file the artifact is written to.
	Output string `yaml:"output" toml:"output"`
	// RebuildOnChange rewrites Output whenever notes change while serving.
	RebuildOnChange bool `yaml:"rebuild_on_change" toml:"rebuild_on_change"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	if c.RebuildOnChange && c.Output == "" {
		return errors.New("output: required when rebuild_on_change is set")
	}
	return nil
}

// RateLimitConfig holds per-client request limits for the API. Zero
// requests per minute disables limiting.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" toml:"requests_per_minute"`
	Burst             int `yaml:"burst" toml:"burst"`
}

// Validate validates the rate limit configuration.
func (c *RateLimitConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RequestsPerMinute, validation.Min(0)),
		validation.Field(&c.Burst, validation.Min(0)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Notes: NotesConfig{
			Path: "./content/notes",
		},
		Blog: BlogConfig{
			ProxyURL:     blog.DefaultProxyURL,
			FeedTemplate: blog.DefaultFeedTemplate,
			Timeout:      blog.DefaultTimeout,
		},
		Cache: CacheConfig{
			TTL: cache.DefaultTTL,
		},
		Search: SearchConfig{
			MaxResults:    20,
			SnippetLength: search.DefaultSnippetLength,
		},
		Index: IndexConfig{
			Output:          "./public/" + searchindex.DefaultArtifactName,
			RebuildOnChange: true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			Burst:             20,
		},
	}
}
