package e2e

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/sakha/internal/config"
	"github.com/hyperjump/sakha/internal/corpus"
	"github.com/hyperjump/sakha/internal/embedding"
	"github.com/hyperjump/sakha/internal/storage"
)

// StoreExtensions are the embedding store formats exercised by the E2E tests.
var StoreExtensions = []string{".json", ".db"}

// WriteProject writes the corpus and an embedding store built with embedder into dir and
// returns a config pointing at them. ext selects the store format.
func WriteProject(ctx context.Context, dir string, c *Corpus, embedder embedding.Embedder, ext string) (*config.Config, error) {
	data, err := c.JSON()
	if err != nil {
		return nil, err
	}
	corpusPath := filepath.Join(dir, "gita.json")
	if err := os.WriteFile(corpusPath, data, 0644); err != nil {
		return nil, fmt.Errorf("write corpus: %w", err)
	}

	loaded, err := corpus.Load(corpusPath)
	if err != nil {
		return nil, err
	}
	vectors, err := embedder.EmbedBatch(ctx, loaded.SearchTexts())
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	ids := make([]string, loaded.Len())
	for i, v := range loaded.Verses() {
		ids[i] = v.ID
	}

	storePath := filepath.Join(dir, "embeddings"+ext)
	store, err := storage.Open(storePath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	if err := store.Save(ctx, &storage.EmbeddingSet{ModelName: embedder.Model(), IDs: ids, Vectors: vectors}); err != nil {
		return nil, fmt.Errorf("save embeddings: %w", err)
	}

	cfg := &config.Config{
		Data: config.DataConfig{CorpusPath: corpusPath, EmbeddingsPath: storePath},
		Embedding: config.EmbeddingConfig{
			Provider:   embedding.ProviderMock,
			Model:      embedder.Model(),
			Dimensions: embedder.Dimensions(),
		},
		LLM: config.LLMConfig{Disabled: true},
	}
	config.ApplyDefaults(cfg)
	return cfg, nil
}
