package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONStore keeps the embedding set as a single JSON document {"model_name", "embeddings"}.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store backed by the JSON file at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Save writes set to the file, creating parent directories.
func (s *JSONStore) Save(ctx context.Context, set *EmbeddingSet) error {
	if err := set.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshal embeddings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write embeddings: %w", err)
	}
	return nil
}

// Load reads and validates the embedding set.
func (s *JSONStore) Load(ctx context.Context) (*EmbeddingSet, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read embeddings: %w", err)
	}
	var set EmbeddingSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse embeddings: %w", err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// Close is a no-op for JSONStore.
func (s *JSONStore) Close() error { return nil }
