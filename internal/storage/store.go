// Package storage persists and loads the verse embedding matrix.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// EmbeddingSet is the persisted embedding matrix: one row per verse, in corpus order.
type EmbeddingSet struct {
	ModelName string      `json:"model_name"`
	IDs       []string    `json:"ids,omitempty"`
	Vectors   [][]float32 `json:"embeddings"`
}

// Dimensions returns the row width, or 0 for an empty set.
func (s *EmbeddingSet) Dimensions() int {
	if len(s.Vectors) == 0 {
		return 0
	}
	return len(s.Vectors[0])
}

// Validate checks that every row has the same width and ids, when present, align with rows.
func (s *EmbeddingSet) Validate() error {
	if len(s.Vectors) == 0 {
		return fmt.Errorf("embedding set is empty")
	}
	dims := s.Dimensions()
	if dims == 0 {
		return fmt.Errorf("embedding rows have zero width")
	}
	for i, v := range s.Vectors {
		if len(v) != dims {
			return fmt.Errorf("row %d has %d dimensions, expected %d", i, len(v), dims)
		}
	}
	if len(s.IDs) > 0 && len(s.IDs) != len(s.Vectors) {
		return fmt.Errorf("%d ids for %d rows", len(s.IDs), len(s.Vectors))
	}
	return nil
}

// Store reads and writes an EmbeddingSet.
type Store interface {
	Save(ctx context.Context, set *EmbeddingSet) error
	Load(ctx context.Context) (*EmbeddingSet, error)
	Close() error
}

// Open returns the store for path, chosen by file extension:
// .json for a JSON document, .db/.sqlite/.sqlite3 for SQLite.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONStore(path), nil
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unsupported embedding store extension for %s (use .json or .db)", path)
	}
}
