package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedGenerator struct {
	errs  []error
	text  string
	calls int
	last  CallOptions
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string, opts CallOptions) (Response, error) {
	g.calls++
	g.last = opts
	if len(g.errs) > 0 {
		err := g.errs[0]
		g.errs = g.errs[1:]
		if err != nil {
			return Response{}, err
		}
	}
	return Response{Text: g.text}, nil
}

func zeroBackOff() backoff.BackOff { return &backoff.ZeroBackOff{} }

func transient() error {
	return &TransportError{Model: "m", Status: 429, Retryable: true, Err: errors.New("rate limited")}
}

func TestChatModel_InvokeSucceedsFirstTry(t *testing.T) {
	gen := &scriptedGenerator{text: "hello"}
	m := NewChatModel(gen, "gemini-2.5-flash", 0.3, 2, WithBackOff(zeroBackOff))

	msg, err := m.Invoke(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, CallOptions{Model: "gemini-2.5-flash", Temperature: 0.3}, gen.last)
}

func TestChatModel_InvokeRetriesTransientErrors(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{transient(), transient()}, text: "ok"}
	m := NewChatModel(gen, "m", 0.3, 2, WithBackOff(zeroBackOff))

	msg, err := m.Invoke(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", msg.Content)
	assert.Equal(t, 3, gen.calls)
}

func TestChatModel_InvokeGivesUpAfterRetryBudget(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{transient(), transient(), transient(), transient()}}
	m := NewChatModel(gen, "m", 0.3, 2, WithBackOff(zeroBackOff))

	_, err := m.Invoke(context.Background(), "prompt")
	require.Error(t, err)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 429, te.Status)
	assert.Equal(t, 3, gen.calls)
}

func TestChatModel_InvokeDoesNotRetryPermanentErrors(t *testing.T) {
	permanent := &TransportError{Model: "m", Status: 400, Retryable: false, Err: errors.New("bad request")}
	gen := &scriptedGenerator{errs: []error{permanent}}
	m := NewChatModel(gen, "m", 0.3, 2, WithBackOff(zeroBackOff))

	_, err := m.Invoke(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.ErrorIs(t, err, permanent)
}

func TestChatModel_CopiesDoNotShareSettings(t *testing.T) {
	gen := &scriptedGenerator{}
	base := NewChatModel(gen, "a", 1.0, 2)
	structured := base.WithStructuredOutput().WithModel("b").WithTemperature(0)

	assert.False(t, base.StructuredOutput)
	assert.Equal(t, "a", base.Model)
	assert.Equal(t, 1.0, base.Temperature)
	assert.True(t, structured.StructuredOutput)
	assert.Equal(t, "b", structured.Model)
	assert.Equal(t, 0.0, structured.Temperature)

	_, err := structured.WithGoogleSearch().Invoke(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, gen.last.JSON)
	assert.True(t, gen.last.GoogleSearch)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(transient()))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(&TransportError{Status: 401}))
}

func TestRetryableStatus(t *testing.T) {
	for status, want := range map[int]bool{0: true, 408: true, 429: true, 500: true, 503: true, 400: false, 401: false, 404: false} {
		assert.Equal(t, want, retryableStatus(status), "status %d", status)
	}
}

func TestTransportError_Error(t *testing.T) {
	err := &TransportError{Model: "m", Status: 503, Err: errors.New("unavailable")}
	assert.Equal(t, "llm transport error (model m, status 503): unavailable", err.Error())

	err = &TransportError{Model: "m", Err: errors.New("reset")}
	assert.Equal(t, "llm transport error (model m): reset", err.Error())
}
