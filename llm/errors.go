package llm

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when a Gemini client is built without a key.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")

// TransportError is a failed or rate limited model call.
type TransportError struct {
	Model     string
	Status    int // HTTP status when known, 0 otherwise
	Retryable bool
	Err       error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("llm transport error (model %s, status %d): %v", e.Model, e.Status, e.Err)
	}
	return fmt.Sprintf("llm transport error (model %s): %v", e.Model, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a transport error worth retrying.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return false
}

// retryableStatus treats rate limits, timeouts and server errors as
// transient.
func retryableStatus(status int) bool {
	switch {
	case status == 0:
		return true
	case status == 408, status == 429:
		return true
	case status >= 500:
		return true
	default:
		return false
	}
}
