// Package llm is the language model capability used by the research
// workflow: one-shot text generation with optional JSON output and Google
// Search grounding, plus a retrying chat wrapper.
package llm

import "context"

// CallOptions parameterises a single generation call.
type CallOptions struct {
	Model        string
	Temperature  float64
	JSON         bool // ask for an application/json response
	GoogleSearch bool // enable the Google Search grounding tool
}

// GroundingChunk is one web source the model grounded its answer on.
type GroundingChunk struct {
	Web struct {
		URI   string `json:"uri"`
		Title string `json:"title"`
	} `json:"web"`
}

// GroundingSupport ties a segment of the answer text to grounding chunks.
type GroundingSupport struct {
	Segment struct {
		StartIndex int    `json:"start_index"`
		EndIndex   int    `json:"end_index"`
		Text       string `json:"text"`
	} `json:"segment"`
	GroundingChunkIndices []int `json:"grounding_chunk_indices"`
}

type GroundingMetadata struct {
	GroundingSupports []GroundingSupport `json:"grounding_supports"`
	GroundingChunks   []GroundingChunk   `json:"grounding_chunks"`
}

// Response is the text of the first candidate and its grounding metadata,
// if any.
type Response struct {
	Text      string
	Grounding *GroundingMetadata
}

// Generator performs exactly one model call. Implementations return a
// *TransportError when the call itself failed.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts CallOptions) (Response, error)
}

// AIMessage is a model reply.
type AIMessage struct {
	Content   string
	Grounding *GroundingMetadata
}
