package agent

import (
	"context"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zaynkorai/gemini-deepcrawl-research/crawl"
	"github.com/zaynkorai/gemini-deepcrawl-research/llm"
)

func TestWorkflow_EnhancementEndsResearchEarly(t *testing.T) {
	clearConfigEnv(t)

	var reflections atomic.Int32
	gen := newFakeGenerator().
		text(markerQueryWriter, `{"rationale": "r", "query": ["battery research"]}`).
		on(markerWebSearch, groundedReply).
		on(markerReflection, func(string) (llm.Response, error) {
			reflections.Add(1)
			return llm.Response{Text: `{"is_sufficient": false, "knowledge_gap": "needs depth", "follow_up_queries": ["battery report"]}`}, nil
		}).
		text(markerAnalysis, "Decision: ENHANCE\nConfidence: 0.7\nEnhancement Type: comprehensive").
		on(markerAnswer, func(prompt string) (llm.Response, error) {
			return llm.Response{Text: "Answer citing [battery](https://vertexaisearch.cloud.google.com/id/1-0)"}, nil
		})

	scraper := &fakeScraper{results: map[string]crawl.Result{
		"https://battery-report.org/page":   {Success: true, Markdown: "# Report\n" + strings.Repeat("data 42 ", 200)},
		"https://battery-research.org/page": {Success: true, Markdown: "# Research\n" + strings.Repeat("cells 7 ", 200)},
	}}
	w := NewWorkflow(gen, newTestEnhancer(t, gen, scraper), zaptest.NewLogger(t), WithChatOptions(noBackOff))

	final, err := w.Run(context.Background(), "  solid state batteries ", &RunnableConfig{Configurable: map[string]interface{}{
		"number_of_initial_queries": 1,
		"max_research_loops":        5,
	}})
	require.NoError(t, err)

	// Loop 1 runs without enhancement; loop 2 enhances, and two crawled
	// sources are enough to call the research sufficient.
	assert.Equal(t, int32(2), reflections.Load())
	assert.Equal(t, 2, final.ResearchLoopCount)
	assert.True(t, final.IsSufficient)
	assert.Equal(t, SupplementedKnowledgeGap, final.KnowledgeGap)
	assert.Equal(t, EnhancementCompleted, final.EnhancementStatus)
	assert.Equal(t, 2, final.EnhancedSourcesCount)
	require.NotNil(t, final.EnhancementDecision)
	assert.Len(t, final.EnhancementDecision.PriorityURLs, 2)

	require.Len(t, final.Messages, 2)
	assert.Equal(t, "Answer citing [battery](https://battery-report.org/page)", final.Messages[1].GetContent())
	require.Len(t, final.SourcesGathered, 1)
	assert.Equal(t, "https://battery-report.org/page", final.SourcesGathered[0].URL)
	assert.Equal(t, "solid state batteries", final.UserQuery)
}

func TestWorkflow_WithoutCrawlerStopsAtLoopBudget(t *testing.T) {
	clearConfigEnv(t)

	gen := newFakeGenerator().
		text(markerQueryWriter, `{"query": ["q"]}`).
		text(markerWebSearch, "plain finding").
		text(markerReflection, `{"is_sufficient": false, "knowledge_gap": "gap", "follow_up_queries": ["again"]}`).
		text(markerAnswer, "final answer")
	w := NewWorkflow(gen, newTestEnhancer(t, gen, nil), zaptest.NewLogger(t), WithChatOptions(noBackOff))

	final, err := w.Run(context.Background(), "topic", &RunnableConfig{Configurable: map[string]interface{}{
		"max_research_loops": 3,
		"reasoning_model":    "pro-model",
	}})
	require.NoError(t, err)

	assert.Equal(t, 3, final.ResearchLoopCount)
	assert.False(t, final.IsSufficient)
	assert.Empty(t, final.EnhancementStatus)
	assert.Empty(t, gen.callsWith(markerAnalysis))
	assert.Len(t, final.WebResearchResults, 3)
	assert.Equal(t, "final answer", final.Messages[len(final.Messages)-1].GetContent())

	for _, c := range gen.callsWith(markerReflection) {
		assert.Equal(t, "pro-model", c.opts.Model)
	}
}

func TestWorkflow_RejectsBadInput(t *testing.T) {
	clearConfigEnv(t)
	w := NewWorkflow(newFakeGenerator(), nil, nil)

	_, err := w.Run(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = w.Run(context.Background(), "q", &RunnableConfig{Configurable: map[string]interface{}{"max_research_loops": "lots"}})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = w.Run(context.Background(), "q", &RunnableConfig{Configurable: map[string]interface{}{"number_of_initial_queries": -1}})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestWorkflow_DefaultModel(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("GEMINI_MODEL", "env-model")

	w := NewWorkflow(newFakeGenerator(), nil, nil)
	assert.Equal(t, "env-model", w.defaults().AnswerModel)

	w.WithDefaultModel("settings-model")
	c, err := resolve(w.defaults(), &RunnableConfig{Configurable: map[string]interface{}{"answer_model": "run-model"}})
	require.NoError(t, err)
	assert.Equal(t, "settings-model", c.QueryGeneratorModel)
	assert.Equal(t, "settings-model", c.ReflectionModel)
	assert.Equal(t, "run-model", c.AnswerModel)
	assert.Equal(t, "env-model", os.Getenv("GEMINI_MODEL"))
}

func TestWorkflow_BuildCompiles(t *testing.T) {
	_, err := NewWorkflow(newFakeGenerator(), nil, nil).Build(NewConfiguration())
	assert.NoError(t, err)
}
