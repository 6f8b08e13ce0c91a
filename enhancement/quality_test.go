package enhancement

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssessQuality(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Quality
	}{
		{"empty", "", QualityPoor},
		{"short plain", strings.Repeat("a", 200), QualityPoor},
		{"exactly 300", strings.Repeat("a", 300), QualityPoor},
		{"fair", strings.Repeat("a", 301), QualityFair},
		{"long without data or headings", strings.Repeat("a", 2000), QualityFair},
		{"good with digits", strings.Repeat("a", 1500) + "42", QualityGood},
		{"good with heading", "# Title\n" + strings.Repeat("a", 1500), QualityGood},
		{"long with digits only", strings.Repeat("a", 6000) + "7", QualityGood},
		{"excellent", "## Results\n" + strings.Repeat("b", 6000) + " 2024", QualityExcellent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssessQuality(tt.content))
		})
	}
}

func TestAssessQuality_CountsCharactersNotBytes(t *testing.T) {
	// 301 two-byte runes is fair; 200 of them is still poor even though
	// the byte length exceeds 300.
	assert.Equal(t, QualityFair, AssessQuality(strings.Repeat("é", 301)))
	assert.Equal(t, QualityPoor, AssessQuality(strings.Repeat("é", 200)))
}
