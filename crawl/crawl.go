// Package crawl fetches the full content of a web page as markdown.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned by New when the selected provider has no
// credential.
var ErrNotConfigured = errors.New("crawl provider is not configured")

// Result is the outcome of one scrape. A provider level failure (page could
// not be rendered, blocked, ...) is Success=false with Error set; transport
// failures are returned as errors instead.
type Result struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Markdown string `json:"markdown"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	// Provider is the scraper that produced a successful result.
	Provider Provider `json:"provider,omitempty"`
}

// Scraper fetches one URL.
type Scraper interface {
	Scrape(ctx context.Context, url string) (Result, error)
}

type Provider string

const (
	ProviderFirecrawl   Provider = "firecrawl"
	ProviderReadability Provider = "readability"
)

// Options selects and configures a Scraper.
type Options struct {
	Provider        Provider
	FirecrawlAPIKey string
	FirecrawlAPIURL string
	Timeout         time.Duration
	Redis           redis.Cmdable // optional result cache
	CacheTTL        time.Duration
	Logger          *zap.Logger
}

// New builds the scraper for opts. It returns ErrNotConfigured when the
// Firecrawl provider is selected without an API key; callers treat that as
// "no crawl capability" rather than a failure.
func New(opts Options) (Scraper, error) {
	var s Scraper
	switch Provider(strings.ToLower(string(opts.Provider))) {
	case ProviderFirecrawl, "":
		if opts.FirecrawlAPIKey == "" {
			return nil, ErrNotConfigured
		}
		fc, err := NewFirecrawlScraper(opts.FirecrawlAPIKey, opts.FirecrawlAPIURL)
		if err != nil {
			return nil, err
		}
		s = fc
	case ProviderReadability:
		s = NewReadabilityScraper(opts.Timeout)
	default:
		return nil, fmt.Errorf("unsupported crawl provider %q", opts.Provider)
	}

	if opts.Redis != nil && opts.CacheTTL > 0 {
		s = NewCachedScraper(s, opts.Redis, opts.CacheTTL, opts.Logger)
	}
	return s, nil
}
