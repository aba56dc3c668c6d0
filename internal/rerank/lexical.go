package rerank

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

type passageDoc struct {
	Text string `json:"text"`
}

// Lexical scores passages by term overlap with the query, using an in-memory bleve index
// built per call over just the pool.
type Lexical struct {
	mapping mapping.IndexMapping
}

// NewLexical creates a lexical reranker.
func NewLexical() *Lexical {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase + unicode tokenize, no stemming, so Devanagari and
	// romanized Sanskrit terms match as written.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	im.DefaultMapping = docMapping
	return &Lexical{mapping: im}
}

// Name returns the reranker type.
func (l *Lexical) Name() string { return TypeLexical }

// Score indexes passages and runs one match query; unmatched passages score 0.
func (l *Lexical) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	scores := make([]float64, len(passages))
	if len(passages) == 0 {
		return scores, nil
	}

	index, err := bleve.NewMemOnly(l.mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create rerank index: %w", err)
	}
	defer index.Close()

	batch := index.NewBatch()
	for i, p := range passages {
		if err := batch.Index(strconv.Itoa(i), passageDoc{Text: p}); err != nil {
			return nil, fmt.Errorf("failed to index passage %d: %w", i, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("failed to index passages: %w", err)
	}

	q := bleve.NewMatchQuery(query)
	q.SetField("text")
	req := bleve.NewSearchRequestOptions(q, len(passages), 0, false)
	res, err := index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("rerank search failed: %w", err)
	}
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(scores) {
			continue
		}
		scores[i] = hit.Score
	}
	return scores, nil
}

// Close is a no-op; indexes live only for one call.
func (l *Lexical) Close() error { return nil }
