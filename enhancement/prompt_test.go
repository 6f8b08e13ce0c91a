package enhancement

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	findings := []string{"f1", "f2", "f3", "f4"}
	var sources []Source
	for i := 1; i <= 7; i++ {
		sources = append(sources, Source{Title: fmt.Sprintf("T%d", i), URL: fmt.Sprintf("https://s%d.org", i)})
	}

	prompt := BuildAnalysisPrompt("quantum batteries", findings, sources)

	assert.Contains(t, prompt, "Research Topic: quantum batteries")
	assert.Contains(t, prompt, "Current Findings:\nf2\n---\nf3\n---\nf4\n")
	assert.NotContains(t, prompt, "f1")
	assert.Contains(t, prompt, "- T1: https://s1.org\n")
	assert.Contains(t, prompt, "- T5: https://s5.org\n")
	assert.NotContains(t, prompt, "T6")
	assert.Contains(t, prompt, "**Decision**: [ENHANCE/NO_ENHANCE]")
	assert.Contains(t, prompt, "Blogs/Forums: Low value")
}

func TestBuildAnalysisPrompt_FewInputs(t *testing.T) {
	prompt := BuildAnalysisPrompt("topic", []string{"only"}, []Source{{}})

	assert.Contains(t, prompt, "Current Findings:\nonly\n")
	assert.Contains(t, prompt, "- N/A: N/A")
	assert.Equal(t, 1, strings.Count(prompt, "N/A: N/A"))
}
