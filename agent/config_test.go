package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRunnableConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	c, err := FromRunnableConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, &Configuration{
		QueryGeneratorModel:    "gemini-2.5-flash",
		ReflectionModel:        "gemini-2.5-flash",
		AnswerModel:            "gemini-2.5-flash",
		NumberOfInitialQueries: 6,
		MaxResearchLoops:       8,
	}, c)
}

func TestFromRunnableConfig_DefaultModelFromEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")

	c, err := FromRunnableConfig(&RunnableConfig{})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", c.QueryGeneratorModel)
	assert.Equal(t, "gemini-2.5-pro", c.AnswerModel)
}

func TestFromRunnableConfig_RunValues(t *testing.T) {
	clearConfigEnv(t)

	c, err := FromRunnableConfig(&RunnableConfig{Configurable: map[string]interface{}{
		"reflection_model":          "custom",
		"number_of_initial_queries": 2,
		"max_research_loops":        float64(4),
		"answer_model":              nil,
		"unrelated":                 true,
	}})
	require.NoError(t, err)

	assert.Equal(t, "custom", c.ReflectionModel)
	assert.Equal(t, "gemini-2.5-flash", c.AnswerModel)
	assert.Equal(t, 2, c.NumberOfInitialQueries)
	assert.Equal(t, 4, c.MaxResearchLoops)
}

func TestFromRunnableConfig_EnvironmentWins(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("MAX_RESEARCH_LOOPS", "3")
	t.Setenv("QUERY_GENERATOR_MODEL", "env-model")

	c, err := FromRunnableConfig(&RunnableConfig{Configurable: map[string]interface{}{
		"max_research_loops":    10,
		"query_generator_model": "run-model",
	}})
	require.NoError(t, err)

	assert.Equal(t, 3, c.MaxResearchLoops)
	assert.Equal(t, "env-model", c.QueryGeneratorModel)
}

func TestFromRunnableConfig_RejectsNonIntegers(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{"word", "many"},
		{"fraction", 2.5},
		{"bool", true},
		{"slice", []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)

			_, err := FromRunnableConfig(&RunnableConfig{Configurable: map[string]interface{}{
				"max_research_loops": tt.value,
			}})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.Contains(t, err.Error(), "max_research_loops")
		})
	}
}

func TestFromRunnableConfig_RejectsOutOfRangeCounts(t *testing.T) {
	tests := []struct {
		name string
		key  string
		run  interface{}
		env  string
	}{
		{"negative queries", "number_of_initial_queries", -1, ""},
		{"zero queries", "number_of_initial_queries", 0, ""},
		{"negative queries from env", "number_of_initial_queries", nil, "-1"},
		{"negative loops", "max_research_loops", -2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			if tt.env != "" {
				t.Setenv(strings.ToUpper(tt.key), tt.env)
			}

			_, err := FromRunnableConfig(&RunnableConfig{Configurable: map[string]interface{}{tt.key: tt.run}})
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestFromRunnableConfig_AllowsZeroLoops(t *testing.T) {
	clearConfigEnv(t)

	c, err := FromRunnableConfig(&RunnableConfig{Configurable: map[string]interface{}{"max_research_loops": 0}})
	require.NoError(t, err)
	assert.Equal(t, 0, c.MaxResearchLoops)
}

func TestFromRunnableConfig_RejectsBadEnvironmentValue(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("NUMBER_OF_INITIAL_QUERIES", "six")

	_, err := FromRunnableConfig(nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
