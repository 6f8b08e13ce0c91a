package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/zaynkorai/gemini-deepcrawl-research/metrics"
)

// ChatModel is a model id bound to sampling settings and a retry budget.
// MaxRetries counts retries after the first attempt.
type ChatModel struct {
	Model            string
	Temperature      float64
	MaxRetries       int
	StructuredOutput bool
	GoogleSearch     bool

	gen        Generator
	newBackOff func() backoff.BackOff
}

// ChatOption customises a ChatModel.
type ChatOption func(*ChatModel)

// WithBackOff replaces the exponential backoff used between retries.
func WithBackOff(f func() backoff.BackOff) ChatOption {
	return func(m *ChatModel) { m.newBackOff = f }
}

func NewChatModel(gen Generator, model string, temperature float64, maxRetries int, opts ...ChatOption) *ChatModel {
	m := &ChatModel{
		Model:       model,
		Temperature: temperature,
		MaxRetries:  maxRetries,
		gen:         gen,
		newBackOff:  defaultBackOff,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 8 * time.Second
	return b
}

// WithStructuredOutput returns a copy that asks for JSON responses.
func (m *ChatModel) WithStructuredOutput() *ChatModel {
	c := *m
	c.StructuredOutput = true
	return &c
}

// WithModel returns a copy bound to another model id.
func (m *ChatModel) WithModel(model string) *ChatModel {
	c := *m
	c.Model = model
	return &c
}

// WithTemperature returns a copy with another sampling temperature.
func (m *ChatModel) WithTemperature(t float64) *ChatModel {
	c := *m
	c.Temperature = t
	return &c
}

// WithGoogleSearch returns a copy with search grounding enabled.
func (m *ChatModel) WithGoogleSearch() *ChatModel {
	c := *m
	c.GoogleSearch = true
	return &c
}

// Invoke calls the model, retrying retryable transport errors up to
// MaxRetries times. The last error is returned once the budget is spent.
func (m *ChatModel) Invoke(ctx context.Context, prompt string) (AIMessage, error) {
	opts := CallOptions{
		Model:        m.Model,
		Temperature:  m.Temperature,
		JSON:         m.StructuredOutput,
		GoogleSearch: m.GoogleSearch,
	}

	retries := m.MaxRetries
	if retries < 0 {
		retries = 0
	}
	b := backoff.WithContext(backoff.WithMaxRetries(m.newBackOff(), uint64(retries)), ctx)

	var resp Response
	var lastErr error
	err := backoff.Retry(func() error {
		r, err := m.gen.Generate(ctx, prompt, opts)
		if err != nil {
			lastErr = err
			metrics.LLMCalls.WithLabelValues(m.Model, "error").Inc()
			if !IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		metrics.LLMCalls.WithLabelValues(m.Model, "success").Inc()
		resp = r
		return nil
	}, b)
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		var te *TransportError
		if errors.As(lastErr, &te) {
			return AIMessage{}, lastErr
		}
		return AIMessage{}, &TransportError{Model: m.Model, Err: lastErr}
	}
	return AIMessage{Content: resp.Text, Grounding: resp.Grounding}, nil
}
