// Package llm wraps an OpenAI-compatible chat endpoint for grounded answers and query interpretation.
package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks github.com/hyperjump/sakha/internal/llm Generator

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the endpoint answers with no content.
var ErrEmptyResponse = errors.New("llm returned an empty response")

// Request is a single system + user exchange.
type Request struct {
	System      string
	User        string
	Model       string // overrides the client's default model when set
	MaxTokens   int
	Temperature float64
	// Stream requests incremental delivery; chunks are concatenated in arrival order.
	Stream bool
	// JSON asks the endpoint for a JSON object response.
	JSON bool
}

// Generator produces text for a request.
type Generator interface {
	Generate(ctx context.Context, req *Request) (string, error)
}
