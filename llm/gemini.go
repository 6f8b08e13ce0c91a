package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient implements Generator on top of the Gemini API.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a Gemini API client for the given key.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts CallOptions) (Response, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if opts.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	if opts.GoogleSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := c.client.Models.GenerateContent(ctx, opts.Model, genai.Text(prompt), cfg)
	if err != nil {
		return Response{}, classify(ctx, opts.Model, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return Response{}, &TransportError{Model: opts.Model, Retryable: true, Err: errors.New("no candidates returned")}
	}

	return Response{
		Text:      resp.Text(),
		Grounding: convertGrounding(resp.Candidates[0].GroundingMetadata),
	}, nil
}

func classify(ctx context.Context, model string, err error) error {
	if ctx.Err() != nil {
		return &TransportError{Model: model, Err: err}
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &TransportError{Model: model, Status: apiErr.Code, Retryable: retryableStatus(apiErr.Code), Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &TransportError{Model: model, Status: apiErrPtr.Code, Retryable: retryableStatus(apiErrPtr.Code), Err: err}
	}
	return &TransportError{Model: model, Retryable: true, Err: err}
}

func convertGrounding(md *genai.GroundingMetadata) *GroundingMetadata {
	if md == nil {
		return nil
	}
	out := &GroundingMetadata{}
	for _, chunk := range md.GroundingChunks {
		var gc GroundingChunk
		if chunk != nil && chunk.Web != nil {
			gc.Web.URI = chunk.Web.URI
			gc.Web.Title = chunk.Web.Title
		}
		out.GroundingChunks = append(out.GroundingChunks, gc)
	}
	for _, support := range md.GroundingSupports {
		if support == nil || support.Segment == nil {
			continue
		}
		var gs GroundingSupport
		gs.Segment.StartIndex = int(support.Segment.StartIndex)
		gs.Segment.EndIndex = int(support.Segment.EndIndex)
		gs.Segment.Text = support.Segment.Text
		for _, idx := range support.GroundingChunkIndices {
			gs.GroundingChunkIndices = append(gs.GroundingChunkIndices, int(idx))
		}
		out.GroundingSupports = append(out.GroundingSupports, gs)
	}
	return out
}
