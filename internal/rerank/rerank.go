// Package rerank re-scores a fused candidate pool against the query for precision.
package rerank

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/sakha/internal/config"
)

// Reranker types accepted in configuration.
const (
	TypeNone         = "none"
	TypeLexical      = "lexical"
	TypeCrossEncoder = "cross-encoder"
)

// Reranker scores (query, passage) pairs. Higher is more relevant.
// The returned slice is parallel to passages.
type Reranker interface {
	Score(ctx context.Context, query string, passages []string) ([]float64, error)
	Name() string
	Close() error
}

// New builds the reranker selected by cfg. It returns nil, nil when reranking is off.
func New(cfg *config.RerankConfig, logger *zap.Logger) (Reranker, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", TypeNone:
		return nil, nil
	case TypeLexical:
		return NewLexical(), nil
	case TypeCrossEncoder:
		if cfg.ModelPath == "" {
			return nil, fmt.Errorf("rerank.model_path is required for %s", TypeCrossEncoder)
		}
		tok, err := LoadTokenizer(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		if logger != nil {
			logger.Info("loading cross-encoder", zap.String("model", cfg.ModelPath), zap.Int("max_tokens", cfg.MaxTokens))
		}
		ce, err := NewCrossEncoder(cfg.ModelPath, cfg.MaxTokens, tok)
		if err != nil {
			return nil, err
		}
		return ce, nil
	default:
		return nil, fmt.Errorf("unknown rerank type %q", cfg.Type)
	}
}
