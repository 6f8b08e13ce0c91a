package enhancement

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/zaynkorai/gemini-deepcrawl-research/crawl"
	"github.com/zaynkorai/gemini-deepcrawl-research/llm"
	"github.com/zaynkorai/gemini-deepcrawl-research/logging"
	"github.com/zaynkorai/gemini-deepcrawl-research/metrics"
)

const (
	analysisTemperature = 0.3
	analysisMaxRetries  = 2
)

// ErrDecisionFailed wraps a model failure that outlasted the retry budget.
var ErrDecisionFailed = errors.New("enhancement decision failed")

// DecisionMaker assesses research depth with a language model and fetches
// full page content for the sources it ranks highest. It holds no per-run
// state and can be shared by concurrent workflows.
type DecisionMaker struct {
	gen         llm.Generator
	scraper     crawl.Scraper
	logger      *zap.Logger
	chatOptions []llm.ChatOption
	now         func() time.Time
}

type Option func(*DecisionMaker)

// WithChatOptions forwards options to the chat model used for analysis.
func WithChatOptions(opts ...llm.ChatOption) Option {
	return func(d *DecisionMaker) { d.chatOptions = append(d.chatOptions, opts...) }
}

// WithClock overrides the timestamp source of enhanced results.
func WithClock(now func() time.Time) Option {
	return func(d *DecisionMaker) { d.now = now }
}

// NewDecisionMaker builds a decision maker. scraper may be nil, meaning no
// crawl capability is configured.
func NewDecisionMaker(gen llm.Generator, scraper crawl.Scraper, logger *zap.Logger, opts ...Option) *DecisionMaker {
	d := &DecisionMaker{
		gen:     gen,
		scraper: scraper,
		logger:  logging.OrNop(logger),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CrawlAvailable reports whether deep content can be fetched at all.
func (d *DecisionMaker) CrawlAvailable() bool {
	return d != nil && d.scraper != nil
}

// Analyze asks model whether the findings on topic are deep enough and,
// when they are not, ranks sources for crawling.
func (d *DecisionMaker) Analyze(ctx context.Context, topic string, findings []string, sources []Source, model string) (Decision, error) {
	prompt := BuildAnalysisPrompt(topic, findings, sources)

	chat := llm.NewChatModel(d.gen, model, analysisTemperature, analysisMaxRetries, d.chatOptions...)
	msg, err := chat.Invoke(ctx, prompt)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %w", ErrDecisionFailed, err)
	}

	return decide(ParseDecision(msg.Content), sources), nil
}

func decide(p ParsedDecision, sources []Source) Decision {
	d := Decision{
		NeedsEnhancement: p.NeedsEnhancement,
		PriorityURLs:     []PriorityURL{},
		Reasoning:        p.Text,
		ConfidenceScore:  p.Confidence.Value,
		EnhancementType:  p.Type.Value,
	}
	if d.NeedsEnhancement && len(sources) > 0 {
		d.PriorityURLs = rank(sources, d.EnhancementType, Score)
	}
	return d
}

// FetchEnhancedContent crawls the priority URLs in order. A URL that fails
// or yields no markdown is logged and skipped; the rest are still fetched.
// Without a crawl capability it returns nothing.
func (d *DecisionMaker) FetchEnhancedContent(ctx context.Context, priorityURLs []PriorityURL) []EnhancedResult {
	results := []EnhancedResult{}
	if !d.CrawlAvailable() {
		return results
	}

	for _, p := range priorityURLs {
		if p.URL == "" {
			continue
		}
		if ctx.Err() != nil {
			d.logger.Warn("stopping enhancement, context done", zap.Error(ctx.Err()))
			break
		}
		if r, ok := d.fetchOne(ctx, p); ok {
			results = append(results, r)
		}
	}
	return results
}

func (d *DecisionMaker) fetchOne(ctx context.Context, p PriorityURL) (res EnhancedResult, ok bool) {
	log := d.logger.With(zap.String("url", p.URL), zap.String("title", p.Title))

	defer func() {
		if r := recover(); r != nil {
			metrics.CrawlRequests.WithLabelValues(metrics.CrawlError).Inc()
			log.Warn("enhancement crawl panicked", zap.Any("panic", r))
			ok = false
		}
	}()

	log.Info("fetching enhanced content")
	out, err := d.scraper.Scrape(ctx, p.URL)
	if err != nil {
		metrics.CrawlRequests.WithLabelValues(metrics.CrawlError).Inc()
		log.Warn("enhancement crawl error", zap.Error(err))
		return EnhancedResult{}, false
	}
	if !out.Success || out.Markdown == "" {
		metrics.CrawlRequests.WithLabelValues(metrics.CrawlFailure).Inc()
		log.Warn("enhancement crawl failed", zap.String("error", orUnknown(out.Error)))
		return EnhancedResult{}, false
	}

	metrics.CrawlRequests.WithLabelValues(metrics.CrawlSuccess).Inc()
	length := utf8.RuneCountInString(out.Markdown)
	log.Info("enhanced content fetched", zap.Int("characters", length))

	return EnhancedResult{
		URL:                p.URL,
		Title:              p.Title,
		OriginalPriority:   p.PriorityScore,
		EnhancedContent:    out.Markdown,
		ContentLength:      length,
		EnhancementQuality: AssessQuality(out.Markdown),
		SourceType:         sourceType(out.Provider),
		Timestamp:          d.now(),
	}, true
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown error"
	}
	return s
}
