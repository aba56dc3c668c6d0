package e2e

import (
	"context"
	"testing"

	"github.com/hyperjump/sakha/internal/corpus"
	"github.com/hyperjump/sakha/internal/embedding"
	"github.com/hyperjump/sakha/internal/storage"
)

func TestBuildCorpus_roundTripsThroughLoader(t *testing.T) {
	c := BuildCorpus()
	data, err := c.JSON()
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := corpus.Parse(data)
	if err != nil {
		t.Fatalf("parse generated corpus: %v", err)
	}
	if loaded.Len() != c.TotalVerses {
		t.Fatalf("verses: got %d, want %d", loaded.Len(), c.TotalVerses)
	}
	for _, tc := range c.TestCases {
		for _, id := range tc.ExpectedVerseIDs {
			if _, ok := loaded.Get(id); !ok {
				t.Errorf("test case %q expects unknown verse %s", tc.Description, id)
			}
		}
	}
}

func TestWriteProject_allStoreFormats(t *testing.T) {
	for _, ext := range StoreExtensions {
		t.Run(ext, func(t *testing.T) {
			ctx := context.Background()
			c := BuildCorpus()
			embedder := embedding.NewMockEmbedder(8)
			cfg, err := WriteProject(ctx, t.TempDir(), c, embedder, ext)
			if err != nil {
				t.Fatalf("WriteProject: %v", err)
			}
			store, err := storage.Open(cfg.Data.EmbeddingsPath)
			if err != nil {
				t.Fatal(err)
			}
			defer store.Close()
			set, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("load %s store: %v", ext, err)
			}
			if len(set.Vectors) != c.TotalVerses || set.ModelName != embedding.MockModelName {
				t.Errorf("store: %d rows, model %q", len(set.Vectors), set.ModelName)
			}
		})
	}
}
