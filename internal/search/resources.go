package search

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/hyperjump/sakha/internal/config"
	"github.com/hyperjump/sakha/internal/corpus"
	"github.com/hyperjump/sakha/internal/embedding"
	"github.com/hyperjump/sakha/internal/keyword"
	"github.com/hyperjump/sakha/internal/models"
	"github.com/hyperjump/sakha/internal/storage"
	"github.com/hyperjump/sakha/internal/vector"
	"github.com/hyperjump/sakha/pkg/utils"
)

// Resources are the read-only structures retrieval runs over.
type Resources struct {
	Corpus   *corpus.Corpus
	Semantic *vector.Matcher
	Keyword  *keyword.Matcher
}

// NewResources builds matchers over c. matrix and embedder may be nil for keyword-only retrieval.
func NewResources(c *corpus.Corpus, matrix *vector.Matrix, embedder embedding.Embedder, tables *keyword.Tables, logger *zap.Logger) *Resources {
	return &Resources{
		Corpus:   c,
		Semantic: vector.NewMatcher(matrix, embedder, logger),
		Keyword:  keyword.NewMatcher(c.Verses(), tables),
	}
}

// LoadResources reads the corpus, embedding store and keyword tables named in cfg.
// Any missing or inconsistent file is a ResourceMissing error.
func LoadResources(ctx context.Context, cfg *config.Config, embedder embedding.Embedder, logger *zap.Logger) (*Resources, error) {
	logger = utils.OrNop(logger)
	c, err := corpus.Load(cfg.Data.CorpusPath)
	if err != nil {
		return nil, err
	}

	tables, err := keyword.LoadTables(cfg.Keyword.TablesPath)
	if err != nil {
		return nil, models.ResourceError("keyword tables", err)
	}

	if _, err := os.Stat(cfg.Data.EmbeddingsPath); err != nil {
		return nil, models.ResourceError("embedding store "+cfg.Data.EmbeddingsPath, err)
	}
	store, err := storage.Open(cfg.Data.EmbeddingsPath)
	if err != nil {
		return nil, models.ResourceError("embedding store", err)
	}
	defer store.Close()

	set, err := store.Load(ctx)
	if err != nil {
		return nil, models.ResourceError("embedding store", err)
	}
	ids := make([]string, c.Len())
	for i, v := range c.Verses() {
		ids[i] = v.ID
	}
	matrix, err := vector.FromEmbeddingSet(set, vector.LoadOptions{
		CorpusSize:       c.Len(),
		CorpusIDs:        ids,
		ConfiguredModel:  cfg.Embedding.Model,
		StrictModelMatch: cfg.Embedding.StrictModelMatch,
		Logger:           logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("resources loaded",
		zap.Int("verses", c.Len()),
		zap.Int("dimensions", matrix.Dimensions()),
		zap.String("embedding_model", matrix.Model()),
		zap.Int("keyword_tables_version", tables.Version))

	return NewResources(c, matrix, embedder, tables, logger), nil
}
