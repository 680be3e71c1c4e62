// Package config carries the runtime settings for the scraper: the target
// site and its URL conventions, fetch behavior and the HTTP API.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Fetcher backends accepted in configuration.
const (
	FetcherHTTP    = "http"
	FetcherBrowser = "browser"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:134.0) Gecko/20100101 Firefox/134.0"

// Site identifies the scraped site and owns its URL conventions. Pages link
// to each other with site-relative hrefs, so everything that touches a URL
// goes through here.
type Site struct {
	Domain     string `mapstructure:"domain"`
	Scheme     string `mapstructure:"scheme"`
	SearchPath string `mapstructure:"search_path"`
}

// Base returns the fully qualified site base, e.g. "http://www.morningstar.co.uk".
func (s Site) Base() string {
	return s.Scheme + "://www." + s.Domain
}

// FixURL fully qualifies a site-relative URL. Anything that does not start
// with a slash is returned unchanged.
func (s Site) FixURL(u string) string {
	if strings.HasPrefix(u, "/") {
		return s.Base() + u
	}
	return u
}

// SearchURL builds the search endpoint URL for a free-text query.
func (s Site) SearchURL(query string) string {
	return s.Base() + s.SearchPath + url.QueryEscape(query)
}

// Owns reports whether host is the site domain or one of its subdomains.
func (s Site) Owns(host string) bool {
	return host == s.Domain || strings.HasSuffix(host, "."+s.Domain)
}

// Config holds every runtime setting. Components receive it explicitly;
// there is no package-level instance.
type Config struct {
	Site Site `mapstructure:"site"`

	UserAgent   string        `mapstructure:"user_agent"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit"`
	Fetcher     string        `mapstructure:"fetcher"`
	PoolSize    int           `mapstructure:"pool_size"`
	Concurrency int           `mapstructure:"concurrency"`

	Listen   string `mapstructure:"listen"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// Load reads configuration from defaults, an optional config.yaml and
// MORNINGSCRAPER_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("site.domain", "morningstar.co.uk")
	v.SetDefault("site.scheme", "http")
	v.SetDefault("site.search_path", "/uk/funds/SecuritySearchResults.aspx?search=")
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("rate_limit", 4.0)
	v.SetDefault("fetcher", FetcherHTTP)
	v.SetDefault("pool_size", 2)
	v.SetDefault("concurrency", 1)
	v.SetDefault("listen", ":8000")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.morningscraper")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("MORNINGSCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Site.Domain == "" {
		return fmt.Errorf("site.domain must not be empty")
	}
	if c.Site.Scheme != "http" && c.Site.Scheme != "https" {
		return fmt.Errorf("site.scheme must be http or https, got %q", c.Site.Scheme)
	}
	switch c.Fetcher {
	case FetcherHTTP, FetcherBrowser:
	default:
		return fmt.Errorf("fetcher must be %q or %q, got %q", FetcherHTTP, FetcherBrowser, c.Fetcher)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}
