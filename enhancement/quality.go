package enhancement

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// AssessQuality grades crawled content by size, presence of figures and
// markdown headings.
func AssessQuality(content string) Quality {
	length := utf8.RuneCountInString(content)
	hasData := strings.IndexFunc(content, unicode.IsDigit) >= 0
	hasStructure := strings.Contains(content, "#")

	switch {
	case length > 5000 && hasData && hasStructure:
		return QualityExcellent
	case length > 1000 && (hasData || hasStructure):
		return QualityGood
	case length > 300:
		return QualityFair
	default:
		return QualityPoor
	}
}
