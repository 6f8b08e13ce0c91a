package agent

import (
	"github.com/zaynkorai/gemini-deepcrawl-research/enhancement"
)

type Message interface {
	GetContent() string
	Type() string
}

type HumanMessage struct {
	Content string
}

func (m HumanMessage) GetContent() string {
	return m.Content
}

func (m HumanMessage) Type() string {
	return "human"
}

type AIMessage struct {
	Content string
}

func (m AIMessage) GetContent() string {
	return m.Content
}

func (m AIMessage) Type() string {
	return "ai"
}

type Query struct {
	Query     string `json:"query"`
	Rationale string `json:"rationale"`
}

// Task is one step of a research plan.
type Task struct {
	Description string `json:"description"`
}

// Source is a grounding source gathered by web research. ShortURL is the
// placeholder used in citation markers until the answer is finalized.
type Source struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet"`
	ShortURL string `json:"short_url"`
	LinkID   string `json:"link_id"`
}

// EnhancementStatus is the outcome of the content enhancement analysis.
type EnhancementStatus string

const (
	EnhancementSkipped      EnhancementStatus = "skipped"
	EnhancementSkippedNoAPI EnhancementStatus = "skipped_no_api"
	EnhancementCompleted    EnhancementStatus = "completed"
	EnhancementFailed       EnhancementStatus = "failed"
	EnhancementError        EnhancementStatus = "error"
)

// OverallState is the shared research state. Nodes never modify it; they
// return a StateUpdate that the graph applies.
type OverallState struct {
	Messages                []Message
	Plan                    []Task
	CurrentTaskPointer      int
	UserQuery               string
	SearchQueries           []Query
	WebResearchResults      []string
	SourcesGathered         []Source
	InitialSearchQueryCount int
	MaxResearchLoops        int
	ResearchLoopCount       int
	ReasoningModel          string

	IsSufficient       bool
	KnowledgeGap       string
	FollowUpQueries    []string
	NumberOfRanQueries int

	EnhancementDecision    *enhancement.Decision
	EnhancementStatus      EnhancementStatus
	EnhancedContentResults []enhancement.EnhancedResult
	EnhancedSourcesCount   int
	EnhancementError       string
}

// ReflectionState is the verdict of a reflection step.
type ReflectionState struct {
	IsSufficient       bool
	KnowledgeGap       string
	FollowUpQueries    []string
	ResearchLoopCount  int
	NumberOfRanQueries int
}

type SearchQueryList struct {
	Query     []string `json:"query"`
	Rationale string   `json:"rationale"`
}

type Reflection struct {
	IsSufficient    bool     `json:"is_sufficient"`
	KnowledgeGap    string   `json:"knowledge_gap"`
	FollowUpQueries []string `json:"follow_up_queries"`
}
