package crawl

import (
	"context"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

const defaultReadabilityTimeout = 15 * time.Second

// ReadabilityScraper downloads a page directly and extracts the main article
// text. It needs no credential.
type ReadabilityScraper struct {
	Timeout time.Duration
}

func NewReadabilityScraper(timeout time.Duration) *ReadabilityScraper {
	if timeout <= 0 {
		timeout = defaultReadabilityTimeout
	}
	return &ReadabilityScraper{Timeout: timeout}
}

func (r *ReadabilityScraper) Scrape(ctx context.Context, url string) (Result, error) {
	if strings.TrimSpace(url) == "" {
		return Result{URL: url, Error: "invalid url"}, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	article, err := readability.FromURL(url, r.Timeout)
	if err != nil {
		return Result{URL: url, Error: err.Error()}, nil
	}

	return Result{
		URL:      url,
		Title:    strings.TrimSpace(article.Title),
		Markdown: articleMarkdown(article.Title, article.TextContent),
		Success:  true,
		Provider: ProviderReadability,
	}, nil
}

// articleMarkdown renders extracted text as a markdown document headed by
// the article title.
func articleMarkdown(title, text string) string {
	title = strings.TrimSpace(title)
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if title == "" {
		return text
	}
	return "# " + title + "\n\n" + text
}
