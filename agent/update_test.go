package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply_LastWriterWinsAndLeavesInputAlone(t *testing.T) {
	state := OverallState{
		UserQuery:          "q",
		WebResearchResults: []string{"a", "b"},
		ResearchLoopCount:  1,
		EnhancementStatus:  EnhancementFailed,
	}

	next := state.Apply(StateUpdate{
		WebResearchResults: Set([]string{"enhanced"}),
		EnhancementStatus:  Set(EnhancementCompleted),
	})

	assert.Equal(t, []string{"enhanced"}, next.WebResearchResults)
	assert.Equal(t, EnhancementCompleted, next.EnhancementStatus)
	assert.Equal(t, 1, next.ResearchLoopCount)
	assert.Equal(t, "q", next.UserQuery)

	assert.Equal(t, []string{"a", "b"}, state.WebResearchResults)
	assert.Equal(t, EnhancementFailed, state.EnhancementStatus)
}

func TestApply_ZeroValuesAreStillWrites(t *testing.T) {
	state := OverallState{IsSufficient: true, KnowledgeGap: "gap", FollowUpQueries: []string{"x"}}

	next := state.Apply(StateUpdate{
		IsSufficient:    Set(false),
		KnowledgeGap:    Set(""),
		FollowUpQueries: Set[[]string](nil),
	})

	assert.False(t, next.IsSufficient)
	assert.Empty(t, next.KnowledgeGap)
	assert.Nil(t, next.FollowUpQueries)
}

func TestStateUpdate_Keys(t *testing.T) {
	assert.Empty(t, StateUpdate{}.Keys())

	u := StateUpdate{
		EnhancementStatus: Set(EnhancementSkipped),
		ResearchLoopCount: Set(0),
	}
	assert.Equal(t, []string{"research_loop_count", "enhancement_status"}, u.Keys())

	v, ok := u.ResearchLoopCount.Get()
	assert.True(t, ok)
	assert.Equal(t, 0, v)
	_, ok = u.KnowledgeGap.Get()
	assert.False(t, ok)
}
