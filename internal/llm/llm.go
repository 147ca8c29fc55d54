package llm

import (
	"context"
	"errors"
)

var (
	// ErrProviderUnavailable is returned by the Gateway when every configured
	// provider failed or none is configured.
	ErrProviderUnavailable = errors.New("llm: no AI provider available")
	// ErrMalformedResponse marks a provider answer that could not be parsed or
	// violated an invariant. Callers recover from it locally.
	ErrMalformedResponse = errors.New("llm: malformed provider response")
	// ErrEmptyResponse is returned when a model answers with no text.
	ErrEmptyResponse = errors.New("llm: empty response from model")
)

// LLMClient is one text-generation backend.
type LLMClient interface {
	Name() string
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error)
	Close() error
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
