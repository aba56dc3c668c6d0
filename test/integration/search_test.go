// Package integration tests retrieval wired from a YAML config file, as the CLI does it.
package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/sakha/internal/config"
	"github.com/hyperjump/sakha/internal/embedding"
	"github.com/hyperjump/sakha/internal/models"
	"github.com/hyperjump/sakha/internal/rerank"
	"github.com/hyperjump/sakha/internal/search"
	"github.com/hyperjump/sakha/test/e2e"
)

func writeConfig(t *testing.T, dir string, built *config.Config, extra string) string {
	t.Helper()
	content := fmt.Sprintf(`
data:
  corpus_path: %q
  embeddings_path: %q
embedding:
  provider: mock
  model: %q
  dimensions: %d
llm:
  disabled: true
%s`, built.Data.CorpusPath, built.Data.EmbeddingsPath, built.Embedding.Model, built.Embedding.Dimensions, extra)
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIntegration_LexicalRerank(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	embedder := embedding.NewMockEmbedder(8)
	built, err := e2e.WriteProject(ctx, dir, e2e.BuildCorpus(), embedder, ".db")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(writeConfig(t, dir, built, "rerank:\n  type: lexical\n"))
	if err != nil {
		t.Fatal(err)
	}

	reranker, err := rerank.New(&cfg.Rerank, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer reranker.Close()

	engine := search.NewEngine(&cfg.Search, func(ctx context.Context) (*search.Resources, error) {
		return search.LoadResources(ctx, cfg, embedder, nil)
	}, nil, reranker, nil)

	resp, err := engine.Search(ctx, &models.SearchQuery{Query: "क्रोध से मोह", Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Reranked {
		t.Error("expected the response to be reranked")
	}
	if len(resp.Results) == 0 || resp.Results[0].Verse.ID != "2.63" {
		t.Fatalf("expected 2.63 first after reranking, got %+v", resp.Results)
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Reranker != rerank.TypeLexical || !stats.SemanticAvailable {
		t.Errorf("stats: %+v", stats)
	}
}

func TestIntegration_CustomKeywordTables(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	embedder := embedding.NewMockEmbedder(8)
	built, err := e2e.WriteProject(ctx, dir, e2e.BuildCorpus(), embedder, ".json")
	if err != nil {
		t.Fatal(err)
	}
	tables := `
version: 7
curated:
  grief:
    - trigger: grandmother
      verses: ["2.20"]
concepts:
  - name: soul
    terms: [soul, atma]
narrator_markers: ["धृतराष्ट्र उवाच"]
`
	if err := os.WriteFile(filepath.Join(dir, "tables.yaml"), []byte(tables), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(writeConfig(t, dir, built, "keyword:\n  tables_path: ./tables.yaml\n"))
	if err != nil {
		t.Fatal(err)
	}

	engine := search.NewEngine(&cfg.Search, func(ctx context.Context) (*search.Resources, error) {
		return search.LoadResources(ctx, cfg, embedder, nil)
	}, nil, nil, nil)

	resp, err := engine.Search(ctx, &models.SearchQuery{Query: "my grandmother passed away", Limit: 10, KeywordEnabled: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Verse.ID != "2.20" {
		t.Errorf("expected only the curated verse from the custom tables, got %+v", resp.Results)
	}
}

func TestIntegration_StrictModelMatch(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	embedder := embedding.NewMockEmbedder(8)
	built, err := e2e.WriteProject(ctx, dir, e2e.BuildCorpus(), embedder, ".json")
	if err != nil {
		t.Fatal(err)
	}
	built.Embedding.Model = "all-MiniLM-L6-v2"
	cfg, err := config.Load(writeConfig(t, dir, built, ""))
	if err != nil {
		t.Fatal(err)
	}

	// A mismatch only warns by default.
	if _, err := search.LoadResources(ctx, cfg, embedder, nil); err != nil {
		t.Fatalf("non-strict load: %v", err)
	}

	cfg.Embedding.StrictModelMatch = true
	if _, err := search.LoadResources(ctx, cfg, embedder, nil); err == nil {
		t.Fatal("expected strict model match to fail")
	}
}
