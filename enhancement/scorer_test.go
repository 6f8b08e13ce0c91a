package enhancement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want float64
	}{
		{"base only", Source{URL: "https://someblog.com/post", Title: "My thoughts"}, 0.1},
		{"government host", Source{URL: "https://www.nasa.gov/missions", Title: "Missions"}, 0.5},
		{"country second level", Source{URL: "https://www.ons.gov.uk/economy"}, 0.5},
		{"scheme-less host", Source{URL: "data.census.gov/table"}, 0.5},
		{"encyclopedia on org", Source{URL: "https://en.wikipedia.org/wiki/Go", Title: "Go"}, 0.8},
		{"preprint archive", Source{URL: "https://arxiv.org/abs/1234", Title: "A Study of Things"}, 1.0},
		{"company with keyword", Source{URL: "https://blog.google/technology", Title: "Technical Report"}, 0.5},
		{"everything capped", Source{URL: "https://ieee.org/google", Title: "Research analysis"}, 1.0},
		{"org path is not an org host", Source{URL: "https://example.com/page.org", Title: "x"}, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.src), 1e-9)
		})
	}
}

func TestScore_IsBoundedAndDeterministic(t *testing.T) {
	sources := []Source{
		{},
		{URL: "https://arxiv.org/abs/1", Title: "Research report study analysis technical"},
		{URL: "https://microsoft.edu.au/ieee/acm/wikipedia", Title: "REPORT"},
		{URL: "::not a url::", Title: "technical"},
	}
	for _, s := range sources {
		first := Score(s)
		assert.GreaterOrEqual(t, first, 0.0)
		assert.LessOrEqual(t, first, 1.0)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, Score(s))
		}
	}
}

func TestRank_SelectiveKeepsTwoHighestAboveThreshold(t *testing.T) {
	scores := map[string]float64{"a": 0.9, "b": 0.2, "c": 0.7}
	sources := []Source{{Title: "A", URL: "a"}, {Title: "B", URL: "b"}, {Title: "C", URL: "c"}}

	got := rank(sources, TypeSelective, func(s Source) float64 { return scores[s.URL] })

	assert.Equal(t, []PriorityURL{
		{Title: "A", URL: "a", PriorityScore: 0.9, Reasoning: "Score: 0.90"},
		{Title: "C", URL: "c", PriorityScore: 0.7, Reasoning: "Score: 0.70"},
	}, got)
}

func TestRank_ComprehensiveCapsAtThree(t *testing.T) {
	sources := []Source{{URL: "1"}, {URL: "2"}, {URL: "3"}, {URL: "4"}}
	got := rank(sources, TypeComprehensive, func(Source) float64 { return 0.5 })

	assert.Len(t, got, 3)
	assert.Equal(t, "1", got[0].URL)
	assert.Equal(t, "2", got[1].URL)
	assert.Equal(t, "3", got[2].URL)
}

func TestRank_TiesKeepOriginalOrder(t *testing.T) {
	scores := map[string]float64{"first": 0.6, "second": 0.8, "third": 0.6}
	sources := []Source{{URL: "first"}, {URL: "second"}, {URL: "third"}}

	got := rank(sources, TypeComprehensive, func(s Source) float64 { return scores[s.URL] })

	urls := []string{}
	for _, p := range got {
		urls = append(urls, p.URL)
	}
	assert.Equal(t, []string{"second", "first", "third"}, urls)
}

func TestRank_ThresholdIsExclusive(t *testing.T) {
	got := rank([]Source{{URL: "x"}}, TypeSelective, func(Source) float64 { return 0.3 })
	assert.Empty(t, got)
}

func TestTypeMaxURLs(t *testing.T) {
	assert.Equal(t, 3, TypeComprehensive.MaxURLs())
	assert.Equal(t, 2, TypeSelective.MaxURLs())
	assert.Equal(t, 2, TypeNone.MaxURLs())
}
