package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/zaynkorai/gemini-deepcrawl-research/enhancement"
	"github.com/zaynkorai/gemini-deepcrawl-research/logging"
	"github.com/zaynkorai/gemini-deepcrawl-research/metrics"
)

// Routes out of web_research.
const (
	RouteAnalyzeEnhancement     = "analyze_enhancement_need"
	RouteContinueWithoutEnhance = "continue_without_enhancement"
)

const (
	maxAnalyzedSources     = 10
	maxEnhancedBlockLength = 3000

	enhancementBoostPerSource = 0.3
	maxEnhancementBoost       = 0.8
	sufficientBoost           = 0.6

	SupplementedKnowledgeGap = "Content has been sufficiently supplemented through deep crawling"
)

var errNoDecisionMaker = errors.New("no enhancement decision maker configured")

// Reflector produces a sufficiency verdict for the state.
type Reflector func(ctx context.Context, state OverallState) (ReflectionState, error)

// ContentEnhancementAnalysis decides whether the findings need deep content
// and, if so, crawls the ranked sources and replaces the findings with the
// crawled blocks. It never returns an error: failures and panics become an
// error status in the update.
func (n *Nodes) ContentEnhancementAnalysis(ctx context.Context, state OverallState) (update StateUpdate, err error) {
	log := n.logger.With(zap.String("node", "content_enhancement_analysis"))

	defer func() {
		if r := recover(); r != nil {
			update = enhancementErrorUpdate(log, fmt.Errorf("panic: %v", r))
			err = nil
		}
	}()

	if n.enhancer == nil {
		return enhancementErrorUpdate(log, errNoDecisionMaker), nil
	}

	topic := researchTopic(state)
	sources := recentSources(state.SourcesGathered, maxAnalyzedSources)

	log.Info("analyzing content enhancement need",
		zap.String("topic", topic),
		zap.Int("findings", len(state.WebResearchResults)),
		zap.Int("sources", len(sources)))

	decision, aerr := n.enhancer.Analyze(ctx, topic, state.WebResearchResults, sources, n.config.ReflectionModel)
	if aerr != nil {
		return enhancementErrorUpdate(log, aerr), nil
	}
	log.Debug(enhancement.FormatDecisionReport(decision))

	update.EnhancementDecision = Set(&decision)

	if !decision.NeedsEnhancement {
		log.Info("content is sufficient, no enhancement needed")
		return finishEnhancement(update, EnhancementSkipped), nil
	}
	if !n.enhancer.CrawlAvailable() {
		log.Warn("no crawl capability configured, skipping content enhancement")
		return finishEnhancement(update, EnhancementSkippedNoAPI), nil
	}

	log.Info("fetching enhanced content", zap.Int("priority_urls", len(decision.PriorityURLs)))
	results := n.enhancer.FetchEnhancedContent(ctx, decision.PriorityURLs)
	if len(results) == 0 {
		log.Warn("content enhancement failed, nothing was crawled")
		return finishEnhancement(update, EnhancementFailed), nil
	}

	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, FormatEnhancedBlock(r))
	}
	update.EnhancedContentResults = Set(results)
	update.WebResearchResults = Set(blocks)
	update.EnhancedSourcesCount = Set(len(results))

	log.Info("content enhancement completed", zap.Int("enhanced_sources", len(results)))
	return finishEnhancement(update, EnhancementCompleted), nil
}

func finishEnhancement(u StateUpdate, status EnhancementStatus) StateUpdate {
	metrics.EnhancementRuns.WithLabelValues(string(status)).Inc()
	u.EnhancementStatus = Set(status)
	return u
}

func enhancementErrorUpdate(log *zap.Logger, err error) StateUpdate {
	msg := "content enhancement analysis failed: " + err.Error()
	log.Error("content enhancement analysis failed", zap.Error(err))
	return finishEnhancement(StateUpdate{EnhancementError: Set(msg)}, EnhancementError)
}

// recentSources converts the last limit gathered sources to the shape the
// decision maker scores.
func recentSources(gathered []Source, limit int) []enhancement.Source {
	if len(gathered) > limit {
		gathered = gathered[len(gathered)-limit:]
	}
	out := make([]enhancement.Source, 0, len(gathered))
	for _, s := range gathered {
		out = append(out, enhancement.Source{Title: s.Title, URL: s.URL, Snippet: s.Snippet})
	}
	return out
}

// FormatEnhancedBlock renders crawled content as a findings block. Content
// past 3000 characters is cut and marked with an ellipsis.
func FormatEnhancedBlock(r enhancement.EnhancedResult) string {
	content := r.EnhancedContent
	if utf8.RuneCountInString(content) > maxEnhancedBlockLength {
		content = string([]rune(content)[:maxEnhancedBlockLength]) + "..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n\n## Deep Content Enhancement - %s\n\n", r.Title)
	fmt.Fprintf(&b, "Source: %s\n", r.URL)
	fmt.Fprintf(&b, "Content Length: %d characters\n\n", r.ContentLength)
	b.WriteString(content)
	b.WriteString("\n\n---\n")
	return b.String()
}

// ShouldEnhanceContent gates the analysis node. Conditions are checked in
// order and the first failing one continues without enhancement. Crawling
// is available when a scraper is configured, not when a Firecrawl key is
// set: the readability provider needs no credential.
func (n *Nodes) ShouldEnhanceContent(ctx context.Context, state OverallState) (string, error) {
	log := n.logger.With(zap.String("node", "should_enhance_content"))

	switch {
	case !n.enhancer.CrawlAvailable():
		log.Debug("skipping content enhancement, no crawl capability configured")
	case state.ResearchLoopCount < 1:
		log.Debug("skipping content enhancement, research loop count is insufficient",
			zap.Int("research_loop_count", state.ResearchLoopCount))
	case state.EnhancementStatus == EnhancementCompleted || state.EnhancementStatus == EnhancementSkipped:
		log.Debug("skipping content enhancement, already done",
			zap.String("status", string(state.EnhancementStatus)))
	case len(state.WebResearchResults) == 0:
		log.Debug("skipping content enhancement, no research findings yet")
	default:
		return RouteAnalyzeEnhancement, nil
	}
	return RouteContinueWithoutEnhance, nil
}

// EnhancedReflection runs base and, when enough sources were crawled,
// turns an insufficient verdict into a sufficient one. Errors from base are
// returned as is.
func EnhancedReflection(ctx context.Context, state OverallState, base Reflector, logger *zap.Logger) (ReflectionState, error) {
	log := logging.OrNop(logger).With(zap.String("node", "reflection"))

	result, err := base(ctx, state)
	if err != nil {
		return ReflectionState{}, err
	}

	switch state.EnhancementStatus {
	case EnhancementCompleted:
		if state.EnhancedSourcesCount <= 0 || result.IsSufficient {
			break
		}
		boost := min(float64(state.EnhancedSourcesCount)*enhancementBoostPerSource, maxEnhancementBoost)
		log.Info("boosting sufficiency for enhanced content",
			zap.Int("enhanced_sources", state.EnhancedSourcesCount),
			zap.Float64("boost", boost))
		if boost >= sufficientBoost {
			result.IsSufficient = true
			result.KnowledgeGap = SupplementedKnowledgeGap
		}
	case EnhancementSkipped:
		log.Debug("content enhancement was skipped, keeping reflection verdict")
	case EnhancementFailed:
		log.Debug("content enhancement failed, more research loops may be needed")
	}
	return result, nil
}
