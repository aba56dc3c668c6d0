package vector

import (
	"context"
	"sort"

	"github.com/hyperjump/sakha/internal/embedding"
	"github.com/hyperjump/sakha/pkg/utils"
	"go.uber.org/zap"
)

// Result is a single semantic hit: a corpus index and its cosine similarity.
type Result struct {
	Index int
	Score float64
}

// Matcher ranks verses by cosine similarity between a query embedding and the matrix.
type Matcher struct {
	matrix   *Matrix
	embedder embedding.Embedder
	logger   *zap.Logger
}

// NewMatcher creates a semantic matcher. Either dependency may be nil; Search then returns nothing.
func NewMatcher(matrix *Matrix, embedder embedding.Embedder, logger *zap.Logger) *Matcher {
	return &Matcher{matrix: matrix, embedder: embedder, logger: utils.OrNop(logger)}
}

// Available reports whether both the matrix and the embedder are present.
func (m *Matcher) Available() bool {
	return m != nil && m.matrix != nil && m.embedder != nil
}

// Search embeds text once and returns the topK most similar rows, highest first.
// Ties keep corpus order. Any failure yields an empty result, never an error.
func (m *Matcher) Search(ctx context.Context, text string, topK int) []Result {
	if !m.Available() || topK <= 0 {
		return nil
	}
	q, err := m.embedder.Embed(ctx, text)
	if err != nil {
		m.logger.Warn("semantic search: embedding failed", zap.Error(err))
		return nil
	}
	sims, err := m.matrix.Similarities(q)
	if err != nil {
		m.logger.Warn("semantic search: similarity failed", zap.Error(err))
		return nil
	}
	results := make([]Result, len(sims))
	for i, s := range sims {
		results[i] = Result{Index: i, Score: s}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK < len(results) {
		results = results[:topK]
	}
	return results
}
