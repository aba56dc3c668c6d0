// Package embedding provides text embedding providers and an LRU cache in front of them.
package embedding

import "context"

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Model returns the embedding model identifier recorded in embedding stores.
	Model() string
	Dimensions() int
	Close() error
}
