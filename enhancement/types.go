// Package enhancement decides whether gathered research is too shallow and,
// if so, which sources are worth fetching in full.
package enhancement

import (
	"time"

	"github.com/zaynkorai/gemini-deepcrawl-research/crawl"
)

// Source is a grounding source in the shape the decision maker consumes.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Type governs how many priority URLs are crawled.
type Type string

const (
	TypeNone          Type = "none"
	TypeSelective     Type = "selective"
	TypeComprehensive Type = "comprehensive"
)

// MaxURLs is the crawl cap for the enhancement type.
func (t Type) MaxURLs() int {
	if t == TypeComprehensive {
		return 3
	}
	return 2
}

// PriorityURL is a crawl candidate picked by the scorer.
type PriorityURL struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	PriorityScore float64 `json:"priority_score"`
	Reasoning     string  `json:"reasoning"`
}

// Decision is the outcome of one analysis. It is built once and not
// modified afterwards.
type Decision struct {
	NeedsEnhancement bool          `json:"needs_enhancement"`
	PriorityURLs     []PriorityURL `json:"priority_urls"`
	Reasoning        string        `json:"reasoning"`
	ConfidenceScore  float64       `json:"confidence_score"`
	EnhancementType  Type          `json:"enhancement_type"`
}

// Quality grades fetched content.
type Quality string

const (
	QualityPoor      Quality = "poor"
	QualityFair      Quality = "fair"
	QualityGood      Quality = "good"
	QualityExcellent Quality = "excellent"
)

// Source types tag enhanced content with the scraper that fetched it.
const (
	SourceTypeFirecrawlEnhanced   = "firecrawl_enhanced"
	SourceTypeReadabilityEnhanced = "readability_enhanced"
)

func sourceType(p crawl.Provider) string {
	if p == crawl.ProviderReadability {
		return SourceTypeReadabilityEnhanced
	}
	return SourceTypeFirecrawlEnhanced
}

// EnhancedResult is one successfully crawled priority URL.
type EnhancedResult struct {
	URL                string    `json:"url"`
	Title              string    `json:"title"`
	OriginalPriority   float64   `json:"original_priority"`
	EnhancedContent    string    `json:"enhanced_content"`
	ContentLength      int       `json:"content_length"`
	EnhancementQuality Quality   `json:"enhancement_quality"`
	SourceType         string    `json:"source_type"`
	Timestamp          time.Time `json:"timestamp"`
}
