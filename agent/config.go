package agent

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

const fallbackModel = "gemini-2.5-flash"

// ErrInvalidConfiguration is returned when a configured value cannot be
// coerced to the option's type.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// RunnableConfig carries per-run settings supplied by the caller.
type RunnableConfig struct {
	Configurable map[string]interface{}
}

// Configuration holds the run-time parameters of one research run.
type Configuration struct {
	QueryGeneratorModel    string
	ReflectionModel        string
	AnswerModel            string
	NumberOfInitialQueries int
	MaxResearchLoops       int
}

// DefaultModel is GEMINI_MODEL, or gemini-2.5-flash when unset.
func DefaultModel() string {
	if m := os.Getenv("GEMINI_MODEL"); m != "" {
		return m
	}
	return fallbackModel
}

func NewConfiguration() *Configuration {
	return newConfiguration(DefaultModel())
}

func newConfiguration(model string) *Configuration {
	return &Configuration{
		QueryGeneratorModel:    model,
		ReflectionModel:        model,
		AnswerModel:            model,
		NumberOfInitialQueries: 6,
		MaxResearchLoops:       8,
	}
}

// FromRunnableConfig resolves every option as: environment variable named
// after the option in upper case, else the run-supplied value, else the
// default. A value that is not of the option's type, fewer than one initial
// query, or a negative loop limit is an error.
func FromRunnableConfig(config *RunnableConfig) (*Configuration, error) {
	return resolve(NewConfiguration(), config)
}

func resolve(c *Configuration, config *RunnableConfig) (*Configuration, error) {
	if config == nil {
		config = &RunnableConfig{}
	}

	var errs []error
	getString := func(key string, target *string) {
		raw, ok := lookup(config, key)
		if !ok {
			return
		}
		v, err := cast.ToStringE(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, key, err))
			return
		}
		*target = v
	}
	getInt := func(key string, target *int) {
		raw, ok := lookup(config, key)
		if !ok {
			return
		}
		v, err := toInt(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, key, err))
			return
		}
		*target = v
	}

	getString("query_generator_model", &c.QueryGeneratorModel)
	getString("reflection_model", &c.ReflectionModel)
	getString("answer_model", &c.AnswerModel)
	getInt("number_of_initial_queries", &c.NumberOfInitialQueries)
	getInt("max_research_loops", &c.MaxResearchLoops)

	if c.NumberOfInitialQueries < 1 {
		errs = append(errs, fmt.Errorf("%w: number_of_initial_queries must be at least 1, got %d", ErrInvalidConfiguration, c.NumberOfInitialQueries))
	}
	if c.MaxResearchLoops < 0 {
		errs = append(errs, fmt.Errorf("%w: max_research_loops must not be negative, got %d", ErrInvalidConfiguration, c.MaxResearchLoops))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// lookup returns the environment value for key, else the configurable one.
// Empty environment values and nil configurables count as unset.
func lookup(config *RunnableConfig, key string) (interface{}, bool) {
	if val := os.Getenv(strings.ToUpper(key)); val != "" {
		return val, true
	}
	val, ok := config.Configurable[key]
	if !ok || val == nil {
		return nil, false
	}
	return val, true
}

func toInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case float32:
		if float64(v) != math.Trunc(float64(v)) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case bool:
		return 0, fmt.Errorf("%v is not an integer", v)
	default:
		return cast.ToIntE(v)
	}
}
