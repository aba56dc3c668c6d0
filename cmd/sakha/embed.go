package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/sakha/internal/corpus"
	"github.com/hyperjump/sakha/internal/embedding"
	"github.com/hyperjump/sakha/internal/storage"
)

func embedCommand(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	output := c.String("output")
	if output == "" {
		output = cfg.Data.EmbeddingsPath
	}

	verses, err := corpus.Load(cfg.Data.CorpusPath)
	if err != nil {
		return err
	}
	embedder, err := embedding.New(&cfg.Embedding)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	defer embedder.Close()

	start := time.Now()
	set, err := embedCorpus(c.Context, verses, embedder, c.Int("batch-size"), c.Int("concurrency"), logger)
	if err != nil {
		return err
	}

	store, err := storage.Open(output)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Save(c.Context, set); err != nil {
		return fmt.Errorf("failed to save embeddings: %w", err)
	}

	logger.Info("embedding store written",
		zap.String("path", output),
		zap.Int("verses", len(set.Vectors)),
		zap.Int("dimensions", set.Dimensions()),
		zap.String("model", set.ModelName),
		zap.Duration("elapsed", time.Since(start)))
	fmt.Fprintf(c.App.Writer, "Embedded %d verses into %s\n", len(set.Vectors), output)
	return nil
}

// embedCorpus embeds every verse's searchable text, batchSize texts per request with at most
// concurrency requests in flight. Rows come back in corpus order.
func embedCorpus(ctx context.Context, c *corpus.Corpus, embedder embedding.Embedder, batchSize, concurrency int, logger *zap.Logger) (*storage.EmbeddingSet, error) {
	if batchSize <= 0 {
		batchSize = 32
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	texts := c.SearchTexts()
	vectors := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, r := range batchRanges(len(texts), batchSize) {
		g.Go(func() error {
			batch, err := embedder.EmbedBatch(gctx, texts[r[0]:r[1]])
			if err != nil {
				return fmt.Errorf("embed verses %d-%d: %w", r[0], r[1]-1, err)
			}
			if len(batch) != r[1]-r[0] {
				return fmt.Errorf("embed verses %d-%d: got %d vectors", r[0], r[1]-1, len(batch))
			}
			copy(vectors[r[0]:r[1]], batch)
			if logger != nil {
				logger.Debug("embedded batch", zap.Int("from", r[0]), zap.Int("to", r[1]))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]string, c.Len())
	for i, v := range c.Verses() {
		ids[i] = v.ID
	}
	set := &storage.EmbeddingSet{ModelName: embedder.Model(), IDs: ids, Vectors: vectors}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// batchRanges splits [0, n) into half-open ranges of at most size elements.
func batchRanges(n, size int) [][2]int {
	var out [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
