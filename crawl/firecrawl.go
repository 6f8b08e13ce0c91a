package crawl

import (
	"context"
	"errors"
	"fmt"

	"github.com/mendableai/firecrawl-go"
)

// FirecrawlScraper scrapes pages through the Firecrawl API, which returns
// rendered pages as markdown.
type FirecrawlScraper struct {
	app *firecrawl.FirecrawlApp
}

func NewFirecrawlScraper(apiKey, apiURL string) (*FirecrawlScraper, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	app, err := firecrawl.NewFirecrawlApp(apiKey, apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create firecrawl client: %w", err)
	}
	return &FirecrawlScraper{app: app}, nil
}

func (f *FirecrawlScraper) Scrape(ctx context.Context, url string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	doc, err := f.app.ScrapeURL(url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("firecrawl scrape %s: %w", url, err)
	}
	if doc == nil {
		return Result{URL: url, Error: errors.New("empty firecrawl response").Error()}, nil
	}
	return Result{URL: url, Markdown: doc.Markdown, Success: true, Provider: ProviderFirecrawl}, nil
}
