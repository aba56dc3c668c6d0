package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hyperjump/sakha/internal/config"
	"github.com/hyperjump/sakha/internal/corpus"
	"github.com/hyperjump/sakha/internal/embedding"
	"github.com/hyperjump/sakha/internal/keyword"
	"github.com/hyperjump/sakha/internal/llm/mocks"
	"github.com/hyperjump/sakha/internal/models"
	"github.com/hyperjump/sakha/internal/query"
	"github.com/hyperjump/sakha/internal/storage"
	"github.com/hyperjump/sakha/internal/vector"
)

const (
	jobQuery   = "I lost my job and cannot stop being angry at everyone around me"
	jobEnglish = "losing employment"
)

const testTables = `
version: 1
curated:
  work:
    - trigger: job
      verses: ["2.47", "6.35"]
concepts:
  - name: anger
    terms: [anger, angry, krodh]
narrator_markers: [sanjaya uvacha]
`

func testCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
	c, err := corpus.New([]*models.Verse{
		{ID: "2.47", Chapter: 2, Verse: 47, OriginalText: "karmany evadhikaras te",
			DisplayMeaning: "कर्म करने में ही तुम्हारा अधिकार है", SearchMeaning: "You have a right to perform your prescribed duty"},
		{ID: "2.63", Chapter: 2, Verse: 63, OriginalText: "krodhad bhavati sammohah",
			DisplayMeaning: "क्रोध से मोह होता है", SearchMeaning: "From anger comes delusion"},
		{ID: "6.35", Chapter: 6, Verse: 35, OriginalText: "asamsayam maha-baho",
			DisplayMeaning: "मन चंचल है", SearchMeaning: "The mind is restless but can be controlled by practice"},
	})
	require.NoError(t, err)
	return c
}

func testResources(t *testing.T) *Resources {
	t.Helper()
	c := testCorpus(t)
	matrix, err := vector.NewMatrix([][]float32{{1, 0}, {0, 1}, {0.6, 0.8}}, embedding.MockModelName)
	require.NoError(t, err)
	emb := embedding.NewMockEmbedder(2)
	emb.Vectors = map[string][]float32{
		jobEnglish: {1, 0},
		jobQuery:   {0, 1},
	}
	tables, err := keyword.ParseTables([]byte(testTables))
	require.NoError(t, err)
	return NewResources(c, matrix, emb, tables, nil)
}

func testSearchConfig() *config.SearchConfig {
	return &config.SearchConfig{SemanticPool: 1, KeywordPool: 50, KeywordWeight: 1.5, RerankPool: 100}
}

func rewritingInterpreter(t *testing.T, times int) *query.Interpreter {
	t.Helper()
	ctrl := gomock.NewController(t)
	gen := mocks.NewMockGenerator(ctrl)
	gen.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return(`{"english": "`+jobEnglish+`", "keywords": "work"}`, nil).
		Times(times)
	return query.NewInterpreter(gen, "", nil)
}

func resultIDs(results []*models.SearchResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Verse.ID
	}
	return ids
}

func TestSearchFusesLegsAdditively(t *testing.T) {
	engine := NewEngineFromResources(testSearchConfig(), testResources(t), rewritingInterpreter(t, 1), nil, nil)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: jobQuery})
	require.NoError(t, err)

	// 2.47: semantic(english)=1 + 1.5*15; 6.35: 1.5*15; 2.63: 1.5*2.5 + semantic(original)=1.
	assert.Equal(t, []string{"2.47", "6.35", "2.63"}, resultIDs(resp.Results))
	assert.InDelta(t, 23.5, resp.Results[0].Score, 1e-9)
	assert.InDelta(t, 22.5, resp.Results[1].Score, 1e-9)
	assert.InDelta(t, 4.75, resp.Results[2].Score, 1e-9)
	assert.Equal(t, 1, resp.Results[0].Rank)
	assert.Equal(t, 3, resp.Results[2].Rank)

	assert.Equal(t, "hybrid", resp.Method)
	assert.Equal(t, 3, resp.Total)
	assert.False(t, resp.Reranked)
	require.NotNil(t, resp.Interpretation)
	assert.Equal(t, jobEnglish, resp.Interpretation.English)
	assert.Equal(t, "work", resp.Interpretation.Keywords)
}

func TestSearchKeywordOnly(t *testing.T) {
	engine := NewEngineFromResources(testSearchConfig(), testResources(t), rewritingInterpreter(t, 1), nil, nil)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: jobQuery, KeywordEnabled: true})
	require.NoError(t, err)
	assert.Equal(t, "keyword", resp.Method)
	// Equal keyword scores keep corpus order.
	assert.Equal(t, []string{"2.47", "6.35", "2.63"}, resultIDs(resp.Results))
	assert.InDelta(t, 22.5, resp.Results[0].Score, 1e-9)
	assert.InDelta(t, 22.5, resp.Results[1].Score, 1e-9)
}

func TestSearchSemanticOnly(t *testing.T) {
	engine := NewEngineFromResources(testSearchConfig(), testResources(t), rewritingInterpreter(t, 1), nil, nil)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: jobQuery, SemanticEnabled: true})
	require.NoError(t, err)
	assert.Equal(t, "semantic", resp.Method)
	assert.Equal(t, []string{"2.47", "2.63"}, resultIDs(resp.Results))
}

func TestSearchExplain(t *testing.T) {
	engine := NewEngineFromResources(testSearchConfig(), testResources(t), nil, nil, nil)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "lost my job", KeywordEnabled: true, Explain: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"2.47", "6.35"}, resultIDs(resp.Results))
	assert.Equal(t, []string{"job"}, resp.Triggers)
	for _, r := range resp.Results {
		require.NotNil(t, r.Explanation, r.Verse.ID)
		assert.True(t, r.Explanation.Boosted)
		assert.False(t, r.Explanation.PenaltyApplied)
		assert.Equal(t, keyword.CuratedBoost, r.Explanation.Score)
	}

	resp, err = engine.Search(context.Background(), &models.SearchQuery{Query: "lost my job", KeywordEnabled: true})
	require.NoError(t, err)
	assert.Nil(t, resp.Triggers)
	for _, r := range resp.Results {
		assert.Nil(t, r.Explanation)
	}
}

func TestSearchLimit(t *testing.T) {
	engine := NewEngineFromResources(testSearchConfig(), testResources(t), rewritingInterpreter(t, 1), nil, nil)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: jobQuery, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"2.47"}, resultIDs(resp.Results))
}

func TestRetrieveValidatesQuery(t *testing.T) {
	engine := NewEngineFromResources(testSearchConfig(), testResources(t), nil, nil, nil)

	for _, q := range []string{"", "a", "  ab  "} {
		_, err := engine.Retrieve(context.Background(), q, 5)
		assert.ErrorIs(t, err, models.ErrInvalidInput, q)

		_, err = engine.Search(context.Background(), &models.SearchQuery{Query: q})
		assert.ErrorIs(t, err, models.ErrInvalidInput, q)
	}
}

func TestRetrieveWithoutSemantic(t *testing.T) {
	c := testCorpus(t)
	tables, err := keyword.ParseTables([]byte(testTables))
	require.NoError(t, err)
	res := NewResources(c, nil, nil, tables, nil)
	engine := NewEngineFromResources(testSearchConfig(), res, nil, nil, nil)

	verses, err := engine.Retrieve(context.Background(), "my job", 5)
	require.NoError(t, err)
	require.Len(t, verses, 2)
	assert.Equal(t, "2.47", verses[0].ID)
	assert.Equal(t, "6.35", verses[1].ID)
}

type fakeReranker struct {
	prefer string
	err    error
	query  string
}

func (f *fakeReranker) Score(_ context.Context, q string, passages []string) ([]float64, error) {
	f.query = q
	if f.err != nil {
		return nil, f.err
	}
	scores := make([]float64, len(passages))
	for i, p := range passages {
		if strings.Contains(p, f.prefer) {
			scores[i] = 1
		}
	}
	return scores, nil
}

func (f *fakeReranker) Name() string { return "fake" }
func (f *fakeReranker) Close() error { return nil }

func TestSearchRerankReorders(t *testing.T) {
	rr := &fakeReranker{prefer: "क्रोध"}
	engine := NewEngineFromResources(testSearchConfig(), testResources(t), rewritingInterpreter(t, 1), rr, nil)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: jobQuery})
	require.NoError(t, err)
	assert.True(t, resp.Reranked)
	// Stable: the two zero-scored verses keep fusion order.
	assert.Equal(t, []string{"2.63", "2.47", "6.35"}, resultIDs(resp.Results))
	assert.Equal(t, jobQuery+" "+jobEnglish, rr.query)
}

func TestSearchRerankErrorKeepsFusionOrder(t *testing.T) {
	rr := &fakeReranker{err: errors.New("model unavailable")}
	engine := NewEngineFromResources(testSearchConfig(), testResources(t), rewritingInterpreter(t, 1), rr, nil)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: jobQuery})
	require.NoError(t, err)
	assert.False(t, resp.Reranked)
	assert.Equal(t, []string{"2.47", "6.35", "2.63"}, resultIDs(resp.Results))
}

func TestInitFailureIsSticky(t *testing.T) {
	var calls int32
	engine := NewEngine(testSearchConfig(), func(context.Context) (*Resources, error) {
		atomic.AddInt32(&calls, 1)
		return nil, models.ResourceError("corpus missing.json", os.ErrNotExist)
	}, nil, nil, nil)

	_, err := engine.Retrieve(context.Background(), "what is dharma", 5)
	assert.ErrorIs(t, err, models.ErrResourceMissing)
	_, err = engine.Search(context.Background(), &models.SearchQuery{Query: "what is dharma"})
	assert.ErrorIs(t, err, models.ErrResourceMissing)
	_, err = engine.Stats(context.Background())
	assert.ErrorIs(t, err, models.ErrResourceMissing)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestInitIgnoresCallerCancellation(t *testing.T) {
	res := testResources(t)
	var calls int32
	engine := NewEngine(testSearchConfig(), func(ctx context.Context) (*Resources, error) {
		atomic.AddInt32(&calls, 1)
		if err := ctx.Err(); err != nil {
			return nil, models.ResourceError("embeddings", err)
		}
		return res, nil
	}, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, engine.Init(ctx))

	verses, err := engine.Retrieve(context.Background(), "how to control anger", 2)
	require.NoError(t, err)
	assert.NotEmpty(t, verses)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStats(t *testing.T) {
	engine := NewEngineFromResources(testSearchConfig(), testResources(t), nil, &fakeReranker{}, nil)
	stats, err := engine.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Verses)
	assert.True(t, stats.SemanticAvailable)
	assert.Equal(t, "fake", stats.Reranker)
	assert.False(t, stats.Interpreter)
	assert.Equal(t, []string{"work"}, stats.KeywordCategories)

	c, err := engine.Corpus(context.Background())
	require.NoError(t, err)
	v, ok := c.Get("2.63")
	require.True(t, ok)
	assert.Equal(t, "From anger comes delusion", v.SearchMeaning)
}

const corpusJSON = `{"chapters": {
  "2": {"47": {"text": "karmany evadhikaras te", "meaning": "perform your duty"},
        "63": {"text": "krodhad bhavati", "meaning": "from anger comes delusion"}}
}}`

func writeFixtures(t *testing.T, rows [][]float32) *config.Config {
	t.Helper()
	return writeStoreFixtures(t, &storage.EmbeddingSet{ModelName: "mock", Vectors: rows}, ".json")
}

func writeStoreFixtures(t *testing.T, set *storage.EmbeddingSet, ext string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "gita.json")
	require.NoError(t, os.WriteFile(corpusPath, []byte(corpusJSON), 0644))
	storePath := filepath.Join(dir, "embeddings"+ext)
	store, err := storage.Open(storePath)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), set))
	require.NoError(t, store.Close())

	cfg := &config.Config{}
	cfg.Data.CorpusPath = corpusPath
	cfg.Data.EmbeddingsPath = storePath
	config.ApplyDefaults(cfg)
	cfg.Embedding.Model = "mock"
	return cfg
}

func TestLoadResources(t *testing.T) {
	cfg := writeFixtures(t, [][]float32{{1, 0}, {0, 1}})

	res, err := LoadResources(context.Background(), cfg, embedding.NewMockEmbedder(2), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Corpus.Len())
	assert.True(t, res.Semantic.Available())

	engine := NewEngineFromResources(&cfg.Search, res, nil, nil, nil)
	verses, err := engine.Retrieve(context.Background(), "anger", 5)
	require.NoError(t, err)
	require.NotEmpty(t, verses)
}

func TestLoadResourcesRowMismatch(t *testing.T) {
	cfg := writeFixtures(t, [][]float32{{1, 0}})
	_, err := LoadResources(context.Background(), cfg, nil, nil)
	assert.ErrorIs(t, err, models.ErrResourceMissing)
}

func TestLoadResourcesIDOrderMismatch(t *testing.T) {
	set := &storage.EmbeddingSet{ModelName: "mock", IDs: []string{"2.63", "2.47"}, Vectors: [][]float32{{1, 0}, {0, 1}}}
	cfg := writeStoreFixtures(t, set, ".db")
	_, err := LoadResources(context.Background(), cfg, nil, nil)
	assert.ErrorIs(t, err, models.ErrResourceMissing)

	set.IDs = []string{"2.47", "2.63"}
	cfg = writeStoreFixtures(t, set, ".db")
	res, err := LoadResources(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Corpus.Len())
}

func TestEngineInitAfterCancelledRequest(t *testing.T) {
	set := &storage.EmbeddingSet{ModelName: "mock", IDs: []string{"2.47", "2.63"}, Vectors: [][]float32{{1, 0}, {0, 1}}}
	cfg := writeStoreFixtures(t, set, ".db")
	engine := NewEngine(&cfg.Search, func(ctx context.Context) (*Resources, error) {
		return LoadResources(ctx, cfg, embedding.NewMockEmbedder(2), nil)
	}, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _ = engine.Stats(ctx)

	stats, err := engine.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Verses)
	assert.True(t, stats.SemanticAvailable)
}

func TestLoadResourcesMissingFiles(t *testing.T) {
	cfg := writeFixtures(t, [][]float32{{1, 0}, {0, 1}})
	cfg.Data.EmbeddingsPath = filepath.Join(t.TempDir(), "absent.db")
	_, err := LoadResources(context.Background(), cfg, nil, nil)
	assert.ErrorIs(t, err, models.ErrResourceMissing)

	cfg.Data.CorpusPath = filepath.Join(t.TempDir(), "absent.json")
	_, err = LoadResources(context.Background(), cfg, nil, nil)
	assert.ErrorIs(t, err, models.ErrResourceMissing)
}
