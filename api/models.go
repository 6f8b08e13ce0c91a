package api

import (
	"time"

	"github.com/zaynkorai/gemini-deepcrawl-research/agent"
)

type ResearchRequest struct {
	Query                   string `json:"query" binding:"required"`
	InitialSearchQueryCount *int   `json:"initial_search_query_count,omitempty"`
	MaxResearchLoops        *int   `json:"max_research_loops,omitempty"`
	ReasoningModel          string `json:"reasoning_model,omitempty"`
}

// Overrides maps the optional request fields to run configuration values.
func (r ResearchRequest) Overrides() *agent.RunnableConfig {
	configurable := map[string]interface{}{}
	if r.InitialSearchQueryCount != nil {
		configurable["number_of_initial_queries"] = *r.InitialSearchQueryCount
	}
	if r.MaxResearchLoops != nil {
		configurable["max_research_loops"] = *r.MaxResearchLoops
	}
	if r.ReasoningModel != "" {
		configurable["reasoning_model"] = r.ReasoningModel
	}
	return &agent.RunnableConfig{Configurable: configurable}
}

type SourceView struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Run is a finished research run as stored and returned by the API.
type Run struct {
	ID                   string                  `json:"id"`
	Query                string                  `json:"query"`
	Answer               string                  `json:"answer"`
	Sources              []SourceView            `json:"sources"`
	ResearchLoopCount    int                     `json:"research_loop_count"`
	EnhancementStatus    agent.EnhancementStatus `json:"enhancement_status"`
	EnhancedSourcesCount int                     `json:"enhanced_sources_count"`
	CreatedAt            time.Time               `json:"created_at"`
}

// NewRun summarises the final state of a workflow run.
func NewRun(id, query string, state agent.OverallState, createdAt time.Time) *Run {
	run := &Run{
		ID:                   id,
		Query:                query,
		Sources:              []SourceView{},
		ResearchLoopCount:    state.ResearchLoopCount,
		EnhancementStatus:    state.EnhancementStatus,
		EnhancedSourcesCount: state.EnhancedSourcesCount,
		CreatedAt:            createdAt,
	}
	if len(state.Messages) > 0 {
		run.Answer = state.Messages[len(state.Messages)-1].GetContent()
	}
	for _, s := range state.SourcesGathered {
		run.Sources = append(run.Sources, SourceView{Title: s.Title, URL: s.URL})
	}
	return run
}

type ErrorResponse struct {
	Error string `json:"error"`
}
