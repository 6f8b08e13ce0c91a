package enhancement

import (
	"fmt"
	"strings"
)

const reportReasoningChars = 200

// FormatDecisionReport renders a decision for logs and the CLI.
func FormatDecisionReport(d Decision) string {
	verdict := "No Enhancement Needed"
	if d.NeedsEnhancement {
		verdict = "Enhancement Needed"
	}

	lines := []string{
		"Content Enhancement Decision Report:",
		"  Decision: " + verdict,
		fmt.Sprintf("  Confidence: %.2f", d.ConfidenceScore),
		fmt.Sprintf("  Enhancement Type: %s", d.EnhancementType),
		fmt.Sprintf("  Priority URLs Count: %d", len(d.PriorityURLs)),
	}

	if len(d.PriorityURLs) > 0 {
		lines = append(lines, "  Priority URLs:")
		for i, p := range d.PriorityURLs {
			lines = append(lines, fmt.Sprintf("    %d. %s (Score: %.2f)", i+1, orNA(p.Title), p.PriorityScore))
		}
	}

	reasoning := []rune(d.Reasoning)
	if len(reasoning) > reportReasoningChars {
		reasoning = reasoning[:reportReasoningChars]
	}
	lines = append(lines, fmt.Sprintf("  Reasoning: %s...", string(reasoning)))

	return strings.Join(lines, "\n")
}
