//go:build !cgo
// +build !cgo

package rerank

import (
	"context"
	"errors"
)

// CrossEncoder stub type when built without CGO (see cross_encoder.go for real implementation).
type CrossEncoder struct{}

// NewCrossEncoder returns an error when built without CGO (ONNX not available).
func NewCrossEncoder(_ string, _ int, _ Tokenizer) (*CrossEncoder, error) {
	return nil, errors.New("cross-encoder rerank requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

// Name returns the reranker type.
func (c *CrossEncoder) Name() string { return TypeCrossEncoder }

// Score is unavailable without CGO.
func (c *CrossEncoder) Score(context.Context, string, []string) ([]float64, error) {
	return nil, errors.New("cross-encoder unavailable")
}

// Close is a no-op.
func (c *CrossEncoder) Close() error { return nil }
