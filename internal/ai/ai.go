package ai

import (
	"context"
	"encoding/json"
	"errors"

	genai "google.golang.org/genai"
)

var (
	// ErrUnavailable means no model is configured or reachable.
	ErrUnavailable = errors.New("ai gateway unavailable")
	// ErrEmptyResponse means the model answered without any candidate text.
	ErrEmptyResponse = errors.New("ai gateway returned no content")
	// ErrMalformed means structured output was requested but the text is not JSON.
	ErrMalformed = errors.New("ai gateway returned malformed JSON")
)

// Gateway is the boundary to the language model. Callers treat every error as
// "no usable answer" and substitute their own fallback.
type Gateway interface {
	Text(ctx context.Context, prompt string) (string, error)
	JSON(ctx context.Context, prompt string, schema *genai.Schema) (json.RawMessage, error)
}

type Noop struct{}

func (Noop) Text(ctx context.Context, prompt string) (string, error) {
	return "", ErrUnavailable
}

func (Noop) JSON(ctx context.Context, prompt string, schema *genai.Schema) (json.RawMessage, error) {
	return nil, ErrUnavailable
}
