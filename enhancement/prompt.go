package enhancement

import (
	"fmt"
	"strings"
)

const (
	promptFindings = 3
	promptSources  = 5
)

const analysisInstructions = `You are a research quality assessment expert. Analyze current research quality and determine if deep content enhancement is needed.

Research Topic: %s

Current Findings:
%s

Available Sources:
%s

Evaluation Criteria:

1. **Signals of Insufficient Depth**:
   - Lack of specific data, statistics, case studies
   - Vague descriptions, missing technical details
   - Missing key companies/projects/implementations
   - Low-quality sources (non-authoritative)

2. **When Deep Crawling is Needed**:
   - Topic requires detailed technical explanations
   - Missing key supporting data
   - Authoritative sources with truncated content
   - Need for complete reports/studies

3. **Source Value Assessment**:
   - Official sites/docs: High value
   - Academic papers/studies: High value
   - Wikipedia/Encyclopedias: Medium value
   - News articles: Varies by detail
   - Blogs/Forums: Low value

Response Format:

**Decision**: [ENHANCE/NO_ENHANCE]
**Confidence**: [0.1-1.0]
**Enhancement Type**: [selective/comprehensive/none]
**URLs to Process**: [0-3]
**Reasoning**:
[Explain your assessment, including content gaps and expected improvements]

**Priority URLs** (if enhancing):
[Top URLs for deep crawling, in priority order]
`

// BuildAnalysisPrompt embeds the last three findings and the first five
// sources into the assessment rubric.
func BuildAnalysisPrompt(topic string, findings []string, sources []Source) string {
	recent := findings
	if len(recent) > promptFindings {
		recent = recent[len(recent)-promptFindings:]
	}

	shown := sources
	if len(shown) > promptSources {
		shown = shown[:promptSources]
	}
	lines := make([]string, 0, len(shown))
	for _, s := range shown {
		lines = append(lines, fmt.Sprintf("- %s: %s", orNA(s.Title), orNA(s.URL)))
	}

	return fmt.Sprintf(analysisInstructions, topic, strings.Join(recent, "\n---\n"), strings.Join(lines, "\n"))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
