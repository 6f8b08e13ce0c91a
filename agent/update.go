package agent

import (
	"github.com/zaynkorai/gemini-deepcrawl-research/enhancement"
)

// Value is an optional field of a StateUpdate.
type Value[T any] struct {
	v  T
	ok bool
}

// Set wraps v as a present value.
func Set[T any](v T) Value[T] {
	return Value[T]{v: v, ok: true}
}

// Get returns the value and whether it was set.
func (o Value[T]) Get() (T, bool) {
	return o.v, o.ok
}

func (o Value[T]) IsSet() bool {
	return o.ok
}

func (o Value[T]) apply(dst *T) {
	if o.ok {
		*dst = o.v
	}
}

// StateUpdate is the partial state a node returns. Every key merges
// last-writer-wins: a set field replaces the state's value wholesale,
// including lists. Nodes that accumulate return the full list.
type StateUpdate struct {
	Messages                Value[[]Message]
	SearchQueries           Value[[]Query]
	WebResearchResults      Value[[]string]
	SourcesGathered         Value[[]Source]
	InitialSearchQueryCount Value[int]
	ResearchLoopCount       Value[int]

	IsSufficient       Value[bool]
	KnowledgeGap       Value[string]
	FollowUpQueries    Value[[]string]
	NumberOfRanQueries Value[int]

	EnhancementDecision    Value[*enhancement.Decision]
	EnhancementStatus      Value[EnhancementStatus]
	EnhancedContentResults Value[[]enhancement.EnhancedResult]
	EnhancedSourcesCount   Value[int]
	EnhancementError       Value[string]
}

// Apply returns a copy of s with u merged in. s is not modified.
func (s OverallState) Apply(u StateUpdate) OverallState {
	next := s
	u.Messages.apply(&next.Messages)
	u.SearchQueries.apply(&next.SearchQueries)
	u.WebResearchResults.apply(&next.WebResearchResults)
	u.SourcesGathered.apply(&next.SourcesGathered)
	u.InitialSearchQueryCount.apply(&next.InitialSearchQueryCount)
	u.ResearchLoopCount.apply(&next.ResearchLoopCount)
	u.IsSufficient.apply(&next.IsSufficient)
	u.KnowledgeGap.apply(&next.KnowledgeGap)
	u.FollowUpQueries.apply(&next.FollowUpQueries)
	u.NumberOfRanQueries.apply(&next.NumberOfRanQueries)
	u.EnhancementDecision.apply(&next.EnhancementDecision)
	u.EnhancementStatus.apply(&next.EnhancementStatus)
	u.EnhancedContentResults.apply(&next.EnhancedContentResults)
	u.EnhancedSourcesCount.apply(&next.EnhancedSourcesCount)
	u.EnhancementError.apply(&next.EnhancementError)
	return next
}

// Keys lists the state keys u sets, for logging.
func (u StateUpdate) Keys() []string {
	var keys []string
	add := func(set bool, key string) {
		if set {
			keys = append(keys, key)
		}
	}
	add(u.Messages.IsSet(), "messages")
	add(u.SearchQueries.IsSet(), "search_query")
	add(u.WebResearchResults.IsSet(), "web_research_result")
	add(u.SourcesGathered.IsSet(), "sources_gathered")
	add(u.InitialSearchQueryCount.IsSet(), "initial_search_query_count")
	add(u.ResearchLoopCount.IsSet(), "research_loop_count")
	add(u.IsSufficient.IsSet(), "is_sufficient")
	add(u.KnowledgeGap.IsSet(), "knowledge_gap")
	add(u.FollowUpQueries.IsSet(), "follow_up_queries")
	add(u.NumberOfRanQueries.IsSet(), "number_of_ran_queries")
	add(u.EnhancementDecision.IsSet(), "enhancement_decision")
	add(u.EnhancementStatus.IsSet(), "enhancement_status")
	add(u.EnhancedContentResults.IsSet(), "enhanced_content_results")
	add(u.EnhancedSourcesCount.IsSet(), "enhanced_sources_count")
	add(u.EnhancementError.IsSet(), "enhancement_error")
	return keys
}
