package github

import (
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPerPage is the number of code search results requested per page.
	DefaultPerPage = 100

	// DefaultMaxPages bounds how many result pages a single search reads.
	DefaultMaxPages = 1

	// DefaultContentRate is the proactive throttle for content fetches (~1.2 req/sec).
	DefaultContentRate = 1.2

	// DefaultCacheTTL is how long fetched file contents are reused.
	DefaultCacheTTL = 10 * time.Minute

	// DefaultCacheSize caps the number of cached file contents.
	DefaultCacheSize = 512
)

// Config holds the options shared by every client a Factory builds.
type Config struct {
	// BaseURL overrides the REST endpoint (GitHub Enterprise or tests).
	// Empty means api.github.com.
	BaseURL string

	// SearchRate is the proactive code search throttle in requests per second.
	// Zero or negative disables throttling.
	SearchRate float64

	// SearchBurst is the token bucket size for searches.
	SearchBurst int

	// ContentRate is the proactive throttle for content fetches.
	ContentRate float64

	// PerPage and MaxPages control search pagination.
	PerPage  int
	MaxPages int

	// Timeout applies to each HTTP request.
	Timeout time.Duration

	// CacheTTL and CacheSize configure the shared content cache.
	// A zero CacheSize disables caching.
	CacheTTL  time.Duration
	CacheSize uint64

	// HTTPClient, when set, supplies the base transport under the oauth2 wrapper.
	HTTPClient *http.Client
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		SearchRate:  domain.DefaultSearchRate,
		SearchBurst: 10,
		ContentRate: DefaultContentRate,
		PerPage:     DefaultPerPage,
		MaxPages:    DefaultMaxPages,
		Timeout:     DefaultTimeout,
		CacheTTL:    DefaultCacheTTL,
		CacheSize:   DefaultCacheSize,
	}
}

// withDefaults fills zero-valued fields. Rates are left alone so callers
// can disable throttling with a negative value.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SearchBurst <= 0 {
		c.SearchBurst = d.SearchBurst
	}
	if c.PerPage <= 0 || c.PerPage > DefaultPerPage {
		c.PerPage = d.PerPage
	}
	if c.MaxPages <= 0 {
		c.MaxPages = d.MaxPages
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	return c
}

// baseURL returns the configured endpoint with the trailing slash go-github requires.
func (c Config) baseURL() string {
	if c.BaseURL == "" || strings.HasSuffix(c.BaseURL, "/") {
		return c.BaseURL
	}
	return c.BaseURL + "/"
}
