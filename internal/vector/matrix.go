// Package vector holds the read-only verse embedding matrix and the semantic matcher over it.
package vector

import (
	"fmt"

	"github.com/hyperjump/sakha/internal/models"
	"github.com/hyperjump/sakha/internal/storage"
	"github.com/hyperjump/sakha/pkg/utils"
	"go.uber.org/zap"
)

// Matrix is one embedding row per verse, in corpus order. It is never mutated after construction.
type Matrix struct {
	rows  [][]float32
	norms []float64
	dims  int
	model string
}

// NewMatrix builds a matrix from rows, precomputing row norms.
func NewMatrix(rows [][]float32, model string) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("matrix has no rows")
	}
	dims := len(rows[0])
	norms := make([]float64, len(rows))
	for i, r := range rows {
		if len(r) != dims {
			return nil, fmt.Errorf("row %d has %d dimensions, expected %d", i, len(r), dims)
		}
		norms[i] = utils.L2Norm(r)
	}
	return &Matrix{rows: rows, norms: norms, dims: dims, model: model}, nil
}

// LoadOptions control consistency checks when a matrix is built from a store.
type LoadOptions struct {
	CorpusSize int
	// CorpusIDs, when set, must match the stored row ids position by position.
	CorpusIDs       []string
	ConfiguredModel string
	// StrictModelMatch turns a model identifier mismatch into an error instead of a warning.
	StrictModelMatch bool
	Logger           *zap.Logger
}

// FromEmbeddingSet validates set against the corpus and configured model and returns the matrix.
// A row count or row id mismatch is a ResourceMissing error. A model mismatch is logged, or fails when strict.
// Stores written without ids skip the id check.
func FromEmbeddingSet(set *storage.EmbeddingSet, opts LoadOptions) (*Matrix, error) {
	if set == nil {
		return nil, models.ResourceError("embedding store is empty", nil)
	}
	if opts.CorpusSize > 0 && len(set.Vectors) != opts.CorpusSize {
		return nil, models.ResourceError(
			fmt.Sprintf("embedding rows (%d) do not match corpus size (%d)", len(set.Vectors), opts.CorpusSize), nil)
	}
	if len(set.IDs) > 0 && len(opts.CorpusIDs) > 0 {
		if len(set.IDs) != len(opts.CorpusIDs) {
			return nil, models.ResourceError(
				fmt.Sprintf("embedding ids (%d) do not match corpus size (%d)", len(set.IDs), len(opts.CorpusIDs)), nil)
		}
		for i, id := range set.IDs {
			if id != opts.CorpusIDs[i] {
				return nil, models.ResourceError(
					fmt.Sprintf("embedding row %d is verse %s, corpus has %s", i, id, opts.CorpusIDs[i]), nil)
			}
		}
	}
	if set.ModelName != "" && opts.ConfiguredModel != "" && set.ModelName != opts.ConfiguredModel {
		if opts.StrictModelMatch {
			return nil, models.ResourceError(
				fmt.Sprintf("embedding model mismatch: store %q, configured %q", set.ModelName, opts.ConfiguredModel), nil)
		}
		if opts.Logger != nil {
			opts.Logger.Warn("embedding model mismatch",
				zap.String("saved", set.ModelName),
				zap.String("configured", opts.ConfiguredModel))
		}
	}
	m, err := NewMatrix(set.Vectors, set.ModelName)
	if err != nil {
		return nil, models.ResourceError("embedding matrix", err)
	}
	return m, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return len(m.rows) }

// Dimensions returns the row width.
func (m *Matrix) Dimensions() int { return m.dims }

// Model returns the model identifier the matrix was built with.
func (m *Matrix) Model() string { return m.model }

// Similarities returns the cosine similarity of query to every row, in row order.
func (m *Matrix) Similarities(query []float32) ([]float64, error) {
	if len(query) != m.dims {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dims)
	}
	qn := utils.L2Norm(query)
	out := make([]float64, len(m.rows))
	if qn == 0 {
		return out, nil
	}
	for i, row := range m.rows {
		if m.norms[i] == 0 {
			continue
		}
		out[i] = InnerProduct(query, row) / (qn * m.norms[i])
	}
	return out, nil
}
