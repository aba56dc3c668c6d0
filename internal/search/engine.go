package search

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/sakha/internal/config"
	"github.com/hyperjump/sakha/internal/corpus"
	"github.com/hyperjump/sakha/internal/models"
	"github.com/hyperjump/sakha/internal/query"
	"github.com/hyperjump/sakha/internal/rerank"
	"github.com/hyperjump/sakha/pkg/utils"
)

// Loader produces the retrieval resources on first use.
type Loader func(ctx context.Context) (*Resources, error)

// Engine runs hybrid verse retrieval: two semantic legs and one keyword leg fused additively,
// optionally re-ranked.
type Engine struct {
	config      config.SearchConfig
	interpreter *query.Interpreter
	reranker    rerank.Reranker
	logger      *zap.Logger

	load    Loader
	once    sync.Once
	res     *Resources
	initErr error
}

// NewEngine creates an engine that loads its resources lazily, at most once.
// interpreter and reranker may be nil.
func NewEngine(cfg *config.SearchConfig, load Loader, interpreter *query.Interpreter, reranker rerank.Reranker, logger *zap.Logger) *Engine {
	if interpreter == nil {
		interpreter = query.NewInterpreter(nil, "", logger)
	}
	return &Engine{
		config:      withDefaults(*cfg),
		interpreter: interpreter,
		reranker:    reranker,
		logger:      utils.OrNop(logger),
		load:        load,
	}
}

// NewEngineFromResources creates an engine over already loaded resources.
func NewEngineFromResources(cfg *config.SearchConfig, res *Resources, interpreter *query.Interpreter, reranker rerank.Reranker, logger *zap.Logger) *Engine {
	return NewEngine(cfg, func(context.Context) (*Resources, error) { return res, nil }, interpreter, reranker, logger)
}

func withDefaults(c config.SearchConfig) config.SearchConfig {
	wrapped := config.Config{Search: c}
	config.ApplyDefaults(&wrapped)
	return wrapped.Search
}

// Init loads resources once. A failure is remembered and returned to every later caller.
// The load ignores cancellation of the first caller's ctx so a dropped request cannot
// poison the engine for the rest of the process.
func (e *Engine) Init(ctx context.Context) error {
	e.once.Do(func() {
		e.res, e.initErr = e.load(context.WithoutCancel(ctx))
		if e.initErr != nil {
			e.logger.Error("failed to load retrieval resources", zap.Error(e.initErr))
		}
	})
	return e.initErr
}

// Corpus returns the loaded corpus, initializing on first use.
func (e *Engine) Corpus(ctx context.Context) (*corpus.Corpus, error) {
	if err := e.Init(ctx); err != nil {
		return nil, err
	}
	return e.res.Corpus, nil
}

// Stats describes the loaded engine for status endpoints.
type Stats struct {
	Verses            int      `json:"verses"`
	SemanticAvailable bool     `json:"semantic_available"`
	Reranker          string   `json:"reranker"`
	Interpreter       bool     `json:"interpreter"`
	KeywordCategories []string `json:"keyword_categories"`
}

// Stats reports what the engine loaded.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	if err := e.Init(ctx); err != nil {
		return nil, err
	}
	s := &Stats{
		Verses:            e.res.Corpus.Len(),
		SemanticAvailable: e.res.Semantic.Available(),
		Reranker:          rerank.TypeNone,
		Interpreter:       e.interpreter.Enabled(),
		KeywordCategories: e.res.Keyword.Tables().Categories(),
	}
	if e.reranker != nil {
		s.Reranker = e.reranker.Name()
	}
	return s, nil
}

type legs struct {
	keyword  bool
	semantic bool
}

type ranking struct {
	results        []*models.SearchResult
	interpretation query.Interpretation
	reranked       bool
}

// Retrieve returns the topK verses for q using all signals.
func (e *Engine) Retrieve(ctx context.Context, q string, topK int) ([]*models.Verse, error) {
	if err := models.ValidateQueryText(q, e.config.MinQueryLength); err != nil {
		return nil, err
	}
	r, err := e.rank(ctx, strings.TrimSpace(q), topK, legs{keyword: true, semantic: true})
	if err != nil {
		return nil, err
	}
	verses := make([]*models.Verse, len(r.results))
	for i, res := range r.results {
		verses[i] = res.Verse
	}
	return verses, nil
}

// Search validates req and returns ranked verses with scores, timing and the interpretation used.
func (e *Engine) Search(ctx context.Context, req *models.SearchQuery) (*models.SearchResponse, error) {
	start := time.Now()
	if err := req.Validate(e.config.MinQueryLength, e.config.DefaultLimit, e.config.MaxLimit); err != nil {
		return nil, err
	}
	r, err := e.rank(ctx, req.Query, req.Limit, legs{keyword: req.KeywordEnabled, semantic: req.SemanticEnabled})
	if err != nil {
		return nil, err
	}
	var triggers []string
	if req.Explain {
		triggers = e.explain(r)
	}
	resp := &models.SearchResponse{
		Results:        r.results,
		Total:          len(r.results),
		QueryTime:      time.Since(start).Milliseconds(),
		Query:          req.Query,
		Method:         req.Method(),
		Reranked:       r.reranked,
		Interpretation: r.interpretation.Model(),
		Triggers:       triggers,
	}
	return resp, nil
}

func (e *Engine) rank(ctx context.Context, q string, topK int, use legs) (*ranking, error) {
	if err := e.Init(ctx); err != nil {
		return nil, err
	}
	res := e.res

	interp := e.interpreter.Interpret(ctx, q)

	var (
		semEnglish  []scored
		semOriginal []scored
		kw          []scored
		wg          sync.WaitGroup
	)
	if use.semantic {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for _, r := range res.Semantic.Search(ctx, interp.English, e.config.SemanticPool) {
				semEnglish = append(semEnglish, scored{r.Index, r.Score})
			}
		}()
		go func() {
			defer wg.Done()
			for _, r := range res.Semantic.Search(ctx, interp.Original, e.config.SemanticPool) {
				semOriginal = append(semOriginal, scored{r.Index, r.Score})
			}
		}()
	}
	if use.keyword {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, r := range res.Keyword.Search(interp.Keywords+" "+interp.Original, e.config.KeywordPool) {
				kw = append(kw, scored{r.Index, r.Score})
			}
		}()
	}
	wg.Wait()

	// Fixed leg order keeps the floating point sums reproducible.
	candidates := NewCandidateSet()
	addAll(candidates, semEnglish, 1)
	addAll(candidates, kw, e.config.KeywordWeight)
	addAll(candidates, semOriginal, 1)

	pool := candidates.Ranked(e.config.RerankPool)
	reranked := e.rerank(ctx, res, interp, pool)

	if topK <= 0 {
		topK = e.config.DefaultLimit
	}
	if topK < len(pool) {
		pool = pool[:topK]
	}

	results := make([]*models.SearchResult, len(pool))
	for i, c := range pool {
		results[i] = &models.SearchResult{Verse: res.Corpus.At(c.Index), Score: c.Score, Rank: i + 1}
	}

	e.logger.Debug("retrieval completed",
		zap.String("query", q),
		zap.Int("semantic_english", len(semEnglish)),
		zap.Int("semantic_original", len(semOriginal)),
		zap.Int("keyword", len(kw)),
		zap.Int("candidates", candidates.Len()),
		zap.Bool("reranked", reranked),
		zap.Int("returned", len(results)))

	return &ranking{results: results, interpretation: interp, reranked: reranked}, nil
}

// explain attaches the keyword breakdown for the text the keyword leg scored and
// returns the curated triggers that text contains.
func (e *Engine) explain(r *ranking) []string {
	text := r.interpretation.Keywords + " " + r.interpretation.Original
	for _, res := range r.results {
		i, ok := e.res.Corpus.Index(res.Verse.ID)
		if !ok {
			continue
		}
		b := e.res.Keyword.Explain(text, i)
		res.Explanation = &models.KeywordExplanation{
			Boosted:         b.Boosted,
			Narrative:       b.Narrative,
			PenaltyApplied:  b.PenaltyApplied,
			MatchedConcepts: b.MatchedConcepts,
			Bonus:           b.Bonus,
			Score:           b.Score,
		}
	}
	return e.res.Keyword.Tables().MatchedTriggers(strings.ToLower(text))
}

type scored struct {
	index int
	score float64
}

func addAll(c *CandidateSet, hits []scored, weight float64) {
	for _, h := range hits {
		c.Add(h.index, h.score, weight)
	}
}

// rerank reorders pool in place by reranker score. On error the fusion order is kept.
func (e *Engine) rerank(ctx context.Context, res *Resources, interp query.Interpretation, pool []Candidate) bool {
	if e.reranker == nil || len(pool) == 0 {
		return false
	}
	passages := make([]string, len(pool))
	for i, c := range pool {
		passages[i] = res.Corpus.At(c.Index).DisplayMeaning
	}
	scores, err := e.reranker.Score(ctx, interp.Original+" "+interp.English, passages)
	if err != nil || len(scores) != len(pool) {
		e.logger.Warn("rerank failed, keeping fusion order", zap.String("reranker", e.reranker.Name()), zap.Error(err))
		return false
	}
	order := make([]int, len(pool))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	sorted := make([]Candidate, len(pool))
	for i, o := range order {
		sorted[i] = pool[o]
	}
	copy(pool, sorted)
	return true
}
