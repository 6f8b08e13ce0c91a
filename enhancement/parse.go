package enhancement

import (
	"regexp"
	"strconv"
	"strings"
)

const defaultConfidence = 0.5

var (
	enhanceToken    = regexp.MustCompile(`\benhance\b`)
	confidenceValue = regexp.MustCompile(`confidence.*?([0-9]\.[0-9])`)
)

// Outcome records whether a field was read from the model output or fell
// back to its default.
type Outcome int

const (
	Parsed Outcome = iota
	Defaulted
)

func (o Outcome) String() string {
	if o == Parsed {
		return "parsed"
	}
	return "defaulted"
}

// Field is a parsed value tagged with how it was obtained.
type Field[T any] struct {
	Value   T
	Outcome Outcome
}

func parsed[T any](v T) Field[T]    { return Field[T]{Value: v, Outcome: Parsed} }
func defaulted[T any](v T) Field[T] { return Field[T]{Value: v, Outcome: Defaulted} }

// ParsedDecision is the structured reading of a free text assessment.
type ParsedDecision struct {
	Text             string // lower-cased input
	NeedsEnhancement bool
	Confidence       Field[float64]
	Type             Field[Type]
}

// ParseDecision reads the model's assessment. It never fails: anything
// that cannot be read takes its default.
//
// The match is case-insensitive. "enhance" must appear as a whole word and
// "no_enhance" must not appear at all. The confidence is the first
// d.d decimal after the word "confidence" on the same line, kept only when
// it lies in [0,1]. The type is "selective" if mentioned, else
// "comprehensive" if mentioned, else selective/none following the decision.
func ParseDecision(text string) ParsedDecision {
	lower := strings.ToLower(text)

	needs := enhanceToken.MatchString(lower) && !strings.Contains(lower, "no_enhance")

	return ParsedDecision{
		Text:             lower,
		NeedsEnhancement: needs,
		Confidence:       parseConfidence(lower),
		Type:             parseType(lower, needs),
	}
}

func parseConfidence(lower string) Field[float64] {
	m := confidenceValue.FindStringSubmatch(lower)
	if m == nil {
		return defaulted(defaultConfidence)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < 0 || v > 1 {
		return defaulted(defaultConfidence)
	}
	return parsed(v)
}

func parseType(lower string, needs bool) Field[Type] {
	switch {
	case strings.Contains(lower, string(TypeSelective)):
		return parsed(TypeSelective)
	case strings.Contains(lower, string(TypeComprehensive)):
		return parsed(TypeComprehensive)
	case needs:
		return defaulted(TypeSelective)
	default:
		return defaulted(TypeNone)
	}
}
