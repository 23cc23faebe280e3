// Package config loads the list of tracked categories and the extraction
// settings shared by every category.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // timezone names must resolve on hosts without zoneinfo

	"github.com/pfrederiksen/club-fixtures/internal/logger"
	"github.com/pfrederiksen/club-fixtures/internal/match"
	"gopkg.in/yaml.v3"
)

// Defaults applied to values the file leaves empty
const (
	DefaultTimezone  = "Europe/Madrid"
	DefaultOutputDir = "."
	DefaultTimeout   = 20 * time.Second
)

// Configuration validation errors.
var (
	ErrNoCategories        = errors.New("at least one category is required")
	ErrCategoryMissingSlug = errors.New("category slug is required")
	ErrCategoryMissingURL  = errors.New("category url is required")
	ErrInvalidSlug         = errors.New("category slug may only contain letters, digits, '-' and '_'")
	ErrDuplicateSlug       = errors.New("category slug is duplicated")
	ErrNoKeywords          = errors.New("at least one keyword is required")
	ErrInvalidTimeout      = errors.New("http.timeout must be positive")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Config is the complete run configuration
type Config struct {
	// Organization is the tracked club's canonical name
	Organization string `yaml:"organization"`
	// Keywords are substrings identifying the organization in row text
	Keywords   []string         `yaml:"keywords"`
	Timezone   string           `yaml:"timezone"`
	OutputDir  string           `yaml:"output_dir"`
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
	Categories []match.Category `yaml:"categories"`
}

// HTTPConfig controls page downloads
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a configuration with every default filled in and no
// categories
func Default() *Config {
	return &Config{
		Timezone:  DefaultTimezone,
		OutputDir: DefaultOutputDir,
		HTTP: HTTPConfig{
			Timeout: DefaultTimeout,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a configuration file. The file is either a full Config
// document or a bare list of categories; JSON is accepted as well as YAML.
// The result is not validated so that command-line overrides can be applied
// first.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration bytes, see Load
func Parse(data []byte) (*Config, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg := Default()
	if len(root.Content) == 0 {
		return cfg, nil
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&cfg.Categories); err != nil {
			return nil, fmt.Errorf("parsing categories: %w", err)
		}
	case yaml.MappingNode:
		if err := doc.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	default:
		return nil, fmt.Errorf("parsing config: unexpected top-level %s", kindName(doc.Kind))
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = DefaultTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	for i := range c.Categories {
		c.Categories[i].Slug = strings.TrimSpace(c.Categories[i].Slug)
		c.Categories[i].URL = strings.TrimSpace(c.Categories[i].URL)
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Categories) == 0 {
		return ErrNoCategories
	}

	seen := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		if cat.Slug == "" {
			return fmt.Errorf("%w: categories[%d]", ErrCategoryMissingSlug, i)
		}
		if !slugPattern.MatchString(cat.Slug) {
			return fmt.Errorf("%w: %q", ErrInvalidSlug, cat.Slug)
		}
		if seen[cat.Slug] {
			return fmt.Errorf("%w: %q", ErrDuplicateSlug, cat.Slug)
		}
		seen[cat.Slug] = true

		if cat.URL == "" {
			return fmt.Errorf("%w: categories[%d]", ErrCategoryMissingURL, i)
		}
	}

	hasKeyword := false
	for _, kw := range c.Keywords {
		if strings.TrimSpace(kw) != "" {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return ErrNoKeywords
	}

	if c.HTTP.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return ErrInvalidLogLevel
	}

	return nil
}

// Location resolves Timezone. An empty timezone yields nil, meaning
// floating local times.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// CanonicalName returns the name substituted for the organization's missing
// side of a row. It falls back to the first keyword, upper-cased.
func (c *Config) CanonicalName() string {
	if name := strings.TrimSpace(c.Organization); name != "" {
		return name
	}
	for _, kw := range c.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			return strings.ToUpper(kw)
		}
	}
	return ""
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Organization: %q, Categories: %d, Keywords: %d, Output: %s}",
		c.Organization,
		len(c.Categories),
		len(c.Keywords),
		c.OutputDir,
	)
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return fmt.Sprintf("node kind %d", k)
	}
}
