// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/folderize/lib/livelist"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "FOLDERIZE_CONFIG"

// Config is the complete folderize configuration.
type Config struct {
	// Delimiter splits a name into folder and display label.
	// Default: "/"
	Delimiter string `yaml:"delimiter"`

	// Placement is where new folders go: first-member, end-anchor or
	// top. Default: first-member
	Placement string `yaml:"placement"`

	// PreserveExpansion keeps a folder open across passes when the
	// user opened it. Default: false
	PreserveExpansion bool `yaml:"preserve_expansion"`

	// Debounce is the quiet period before a mutation triggers a pass.
	// Default: 200ms
	Debounce string `yaml:"debounce"`

	// LogLevel is debug, info, warn or error. Default: info
	LogLevel string `yaml:"log_level"`

	HTML    HTMLConfig    `yaml:"html"`
	Fetch   FetchConfig   `yaml:"fetch"`
	GitHub  GitHubConfig  `yaml:"github"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// HTMLConfig configures the HTML document adapter.
type HTMLConfig struct {
	// ItemSelector matches the link inside each item row.
	ItemSelector string `yaml:"item_selector"`

	// ActiveSelector matches the row (or link) of the current item.
	ActiveSelector string `yaml:"active_selector"`

	// PaginationSelector matches the "load more" control.
	PaginationSelector string `yaml:"pagination_selector"`

	// OriginalAttribute stores a row's full name while it is grouped.
	OriginalAttribute string `yaml:"original_attribute"`

	// FolderClass is the class of inserted folder elements.
	FolderClass string `yaml:"folder_class"`
}

// FetchConfig configures page fetching.
type FetchConfig struct {
	// Timeout bounds one page request. Default: 30s
	Timeout string `yaml:"timeout"`

	// UserAgent is sent with every page request.
	UserAgent string `yaml:"user_agent"`

	// MaxConcurrency bounds concurrent page fetches. Zero means one
	// request per remaining page. Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// MaxPages is the highest page number loaded, whatever total the
	// pagination control claims. Default: 100
	MaxPages int `yaml:"max_pages"`

	// MaxResponseBytes bounds one page body. Default: 8 MiB
	MaxResponseBytes int64 `yaml:"max_response_bytes"`

	// AllowFiles permits file:// page URLs. Default: false
	AllowFiles bool `yaml:"allow_files"`
}

// GitHubConfig configures the workflows source.
type GitHubConfig struct {
	// BaseURL is the REST API root. Default: https://api.github.com
	BaseURL string `yaml:"base_url"`

	// TokenEnv names the environment variable holding an API token.
	// An unset variable means unauthenticated requests.
	// Default: GITHUB_TOKEN
	TokenEnv string `yaml:"token_env"`

	// PerPage is the workflows page size, 1 to 100. Default: 30
	PerPage int `yaml:"per_page"`
}

// MetricsConfig configures the Prometheus endpoint of watch mode.
type MetricsConfig struct {
	// Listen is the address for /metrics, or empty to disable.
	Listen string `yaml:"listen"`
}

// Default returns a configuration with every value set.
func Default() *Config {
	return &Config{
		Delimiter: "/",
		Placement: livelist.PlaceFirstMember.String(),
		Debounce:  "200ms",
		LogLevel:  "info",
		HTML: HTMLConfig{
			ItemSelector:       `a[href*="/actions/workflows/"]`,
			ActiveSelector:     `[aria-current="page"], .selected`,
			PaginationSelector: `[data-total-pages]`,
			OriginalAttribute:  "data-folderize-original",
			FolderClass:        "folderize-folder",
		},
		Fetch: FetchConfig{
			Timeout:          "30s",
			UserAgent:        "folderize",
			MaxConcurrency:   4,
			MaxPages:         100,
			MaxResponseBytes: 8 << 20,
		},
		GitHub: GitHubConfig{
			BaseURL:  "https://api.github.com",
			TokenEnv: "GITHUB_TOKEN",
			PerPage:  30,
		},
	}
}

// Load loads configuration from the file named by FOLDERIZE_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your folderize.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, merged over Default.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// Resolve picks the configuration source for a command: flagPath when
// non-empty, then FOLDERIZE_CONFIG, then Default.
func Resolve(flagPath string) (*Config, error) {
	if flagPath != "" {
		return LoadFile(flagPath)
	}
	if os.Getenv(EnvironmentVariable) != "" {
		return Load()
	}
	return Default(), nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in the
// fields that name addresses and URLs.
func (c *Config) expandVariables() {
	c.GitHub.BaseURL = expandVars(c.GitHub.BaseURL)
	c.Metrics.Listen = expandVars(c.Metrics.Listen)
	c.Fetch.UserAgent = expandVars(c.Fetch.UserAgent)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns from the
// environment. An unset or empty variable takes the default.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if c.Delimiter == "" {
		errs = append(errs, errors.New("delimiter is required"))
	}
	if _, err := livelist.ParsePlacement(c.Placement); err != nil {
		errs = append(errs, fmt.Errorf("placement: %w", err))
	}
	if err := validateDuration("debounce", c.Debounce, true); err != nil {
		errs = append(errs, err)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be one of debug, info, warn, error (got %q)", c.LogLevel))
	}

	if c.HTML.ItemSelector == "" {
		errs = append(errs, errors.New("html.item_selector is required"))
	}
	if c.HTML.OriginalAttribute == "" {
		errs = append(errs, errors.New("html.original_attribute is required"))
	}
	if c.HTML.FolderClass == "" {
		errs = append(errs, errors.New("html.folder_class is required"))
	}

	if err := validateDuration("fetch.timeout", c.Fetch.Timeout, false); err != nil {
		errs = append(errs, err)
	}
	if c.Fetch.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("fetch.max_concurrency must not be negative (got %d)", c.Fetch.MaxConcurrency))
	}
	if c.Fetch.MaxPages <= 0 {
		errs = append(errs, fmt.Errorf("fetch.max_pages must be positive (got %d)", c.Fetch.MaxPages))
	}
	if c.Fetch.MaxResponseBytes <= 0 {
		errs = append(errs, fmt.Errorf("fetch.max_response_bytes must be positive (got %d)", c.Fetch.MaxResponseBytes))
	}

	if parsed, err := url.Parse(c.GitHub.BaseURL); err != nil || parsed.Scheme != "https" || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("github.base_url must be an https URL (got %q)", c.GitHub.BaseURL))
	}
	if c.GitHub.PerPage < 1 || c.GitHub.PerPage > 100 {
		errs = append(errs, fmt.Errorf("github.per_page must be between 1 and 100 (got %d)", c.GitHub.PerPage))
	}

	return errors.Join(errs...)
}

func validateDuration(field, value string, allowZero bool) error {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if duration < 0 || (duration == 0 && !allowZero) {
		return fmt.Errorf("%s must be positive (got %s)", field, value)
	}
	return nil
}

// PlacementValue returns the parsed placement. Call Validate first.
func (c *Config) PlacementValue() livelist.Placement {
	placement, _ := livelist.ParsePlacement(c.Placement)
	return placement
}

// DebounceDuration returns the parsed debounce. Call Validate first.
func (c *Config) DebounceDuration() time.Duration {
	duration, _ := time.ParseDuration(c.Debounce)
	return duration
}

// FetchTimeout returns the parsed fetch timeout. Call Validate first.
func (c *Config) FetchTimeout() time.Duration {
	duration, _ := time.ParseDuration(c.Fetch.Timeout)
	return duration
}

// GitHubToken returns the token from the environment variable named by
// github.token_env, or "" when unset.
func (c *Config) GitHubToken() string {
	if c.GitHub.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.GitHub.TokenEnv)
}
