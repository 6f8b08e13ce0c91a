package agent

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zaynkorai/gemini-deepcrawl-research/llm"
)

const (
	shortURLPrefix = "https://vertexaisearch.cloud.google.com/id/"
	dateLayout     = "January 2, 2006"
)

// CitationSegment is one source backing a cited span of text.
type CitationSegment struct {
	Label    string
	ShortURL string
	Value    string
}

// Citation marks the span [StartIndex, EndIndex) of a model answer as
// supported by Segments. Indices are byte offsets.
type Citation struct {
	StartIndex int
	EndIndex   int
	Text       string
	Segments   []CitationSegment
}

func GetResearchTopic(messages []Message) string {
	if len(messages) == 1 {
		return messages[len(messages)-1].GetContent()
	}

	var researchTopic strings.Builder
	for _, message := range messages {
		switch message.(type) {
		case HumanMessage:
			fmt.Fprintf(&researchTopic, "User: %s\n", message.GetContent())
		case AIMessage:
			fmt.Fprintf(&researchTopic, "Assistant: %s\n", message.GetContent())
		}
	}
	return researchTopic.String()
}

// ResolveURLs maps every grounding URL to a short placeholder URL unique to
// the query id. Short URLs keep prompts small; they are swapped back when
// the final answer is written.
func ResolveURLs(urlsToResolve []llm.GroundingChunk, id int) map[string]string {
	resolvedMap := make(map[string]string)
	for idx, chunk := range urlsToResolve {
		url := chunk.Web.URI
		if _, exists := resolvedMap[url]; !exists {
			resolvedMap[url] = fmt.Sprintf("%s%d-%d", shortURLPrefix, id, idx)
		}
	}
	return resolvedMap
}

// InsertCitationMarkers appends a markdown link for every segment after the
// cited span. Citations are applied from the end of the text so earlier
// offsets stay valid.
func InsertCitationMarkers(text string, citations []Citation) string {
	sorted := make([]Citation, len(citations))
	copy(sorted, citations)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].EndIndex != sorted[j].EndIndex {
			return sorted[i].EndIndex > sorted[j].EndIndex
		}
		return sorted[i].StartIndex > sorted[j].StartIndex
	})

	modifiedText := text
	for _, citation := range sorted {
		endIdx := citation.EndIndex
		if endIdx < 0 || endIdx > len(modifiedText) {
			continue
		}
		var marker strings.Builder
		for _, seg := range citation.Segments {
			fmt.Fprintf(&marker, " [%s](%s)", seg.Label, seg.ShortURL)
		}
		modifiedText = modifiedText[:endIdx] + marker.String() + modifiedText[endIdx:]
	}
	return modifiedText
}

// GetCitations builds citations from grounding supports. Supports without a
// valid segment and chunks without a resolved URL are skipped.
func GetCitations(grounding *llm.GroundingMetadata, resolvedURLs map[string]string) []Citation {
	citations := []Citation{}
	if grounding == nil {
		return citations
	}

	for _, support := range grounding.GroundingSupports {
		if support.Segment.EndIndex <= 0 || support.Segment.EndIndex < support.Segment.StartIndex {
			continue
		}

		citation := Citation{
			StartIndex: support.Segment.StartIndex,
			EndIndex:   support.Segment.EndIndex,
			Text:       support.Segment.Text,
		}
		for _, ind := range support.GroundingChunkIndices {
			if ind < 0 || ind >= len(grounding.GroundingChunks) {
				continue
			}
			chunk := grounding.GroundingChunks[ind]
			shortURL, ok := resolvedURLs[chunk.Web.URI]
			if !ok {
				continue
			}
			citation.Segments = append(citation.Segments, CitationSegment{
				Label:    citationLabel(chunk.Web.Title),
				ShortURL: shortURL,
				Value:    chunk.Web.URI,
			})
		}
		citations = append(citations, citation)
	}
	return citations
}

// citationLabel drops the extension-like suffix of a grounding title,
// "example.com" becomes "example".
func citationLabel(title string) string {
	parts := strings.Split(title, ".")
	if len(parts) > 1 {
		return parts[0]
	}
	return title
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
