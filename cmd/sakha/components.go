package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/sakha/internal/answer"
	"github.com/hyperjump/sakha/internal/config"
	"github.com/hyperjump/sakha/internal/embedding"
	"github.com/hyperjump/sakha/internal/llm"
	"github.com/hyperjump/sakha/internal/query"
	"github.com/hyperjump/sakha/internal/rerank"
	"github.com/hyperjump/sakha/internal/search"
	"github.com/hyperjump/sakha/internal/session"
)

// Components holds the wired services shared by the CLI commands.
type Components struct {
	Embedder embedding.Embedder
	Reranker rerank.Reranker
	Engine   *search.Engine
	Answerer *answer.Orchestrator
	Sessions *session.Store
}

// Close releases the embedder and reranker.
func (c *Components) Close() {
	if c.Reranker != nil {
		_ = c.Reranker.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

// initializeComponents wires the retrieval engine and answer orchestrator from cfg.
// Corpus and embeddings are loaded lazily on first use.
func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	embedder, err := embedding.New(&cfg.Embedding)
	if err != nil {
		// Keyword scoring still works without a query embedder.
		logger.Warn("embedding provider unavailable, semantic scoring disabled",
			zap.String("provider", cfg.Embedding.Provider),
			zap.Error(err))
		embedder = nil
	}

	// A nil *llm.Client must not become a non-nil Generator.
	var gen llm.Generator
	if cfg.LLM.Enabled() {
		client, err := llm.NewClient(&cfg.LLM, logger)
		if err != nil {
			logger.Warn("llm client unavailable, answering with verses only", zap.Error(err))
		} else {
			gen = client
		}
	} else {
		logger.Info("llm not configured, answering with verses only")
	}

	reranker, err := rerank.New(&cfg.Rerank, logger)
	if err != nil {
		if embedder != nil {
			_ = embedder.Close()
		}
		return nil, fmt.Errorf("failed to initialize reranker: %w", err)
	}

	interpreter := query.NewInterpreter(gen, cfg.LLM.InterpreterModel, logger)
	loader := func(ctx context.Context) (*search.Resources, error) {
		return search.LoadResources(ctx, cfg, embedder, logger)
	}
	engine := search.NewEngine(&cfg.Search, loader, interpreter, reranker, logger)
	answerer := answer.NewOrchestrator(engine, gen, cfg.LLM, cfg.Search.AnswerLimit, cfg.Search.MinQueryLength, logger)

	return &Components{
		Embedder: embedder,
		Reranker: reranker,
		Engine:   engine,
		Answerer: answerer,
		Sessions: session.NewStore(cfg.Session.MaxSessions, cfg.Session.MaxTurns),
	}, nil
}
