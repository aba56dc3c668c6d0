// Package answer turns a question into a grounded reply: greeting check, retrieval, generation.
package answer

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/sakha/internal/config"
	"github.com/hyperjump/sakha/internal/llm"
	"github.com/hyperjump/sakha/internal/models"
	"github.com/hyperjump/sakha/internal/query"
	"github.com/hyperjump/sakha/pkg/utils"
)

// DefaultTopK is how many verses ground an answer.
const DefaultTopK = 5

// Retriever returns the best verses for a query.
type Retriever interface {
	Retrieve(ctx context.Context, q string, topK int) ([]*models.Verse, error)
}

// Orchestrator answers questions. gen may be nil, in which case answers carry verses only.
type Orchestrator struct {
	retriever Retriever
	gen       llm.Generator
	llm       config.LLMConfig
	topK      int
	minLen    int
	logger    *zap.Logger
}

// NewOrchestrator creates an orchestrator. topK <= 0 uses DefaultTopK and
// minQueryLength <= 0 uses models.MinQueryLength.
func NewOrchestrator(retriever Retriever, gen llm.Generator, cfg config.LLMConfig, topK, minQueryLength int, logger *zap.Logger) *Orchestrator {
	if topK <= 0 {
		topK = DefaultTopK
	}
	wrapped := config.Config{LLM: cfg}
	config.ApplyDefaults(&wrapped)
	return &Orchestrator{
		retriever: retriever,
		gen:       gen,
		llm:       wrapped.LLM,
		topK:      topK,
		minLen:    minQueryLength,
		logger:    utils.OrNop(logger),
	}
}

// Answer short-circuits greetings, validates q, retrieves verses and asks the generator for a reply.
// Greetings are checked before the length minimum so "hi" or "ॐ" still get the salutation.
// Generation failures degrade to a verses-only response; only validation and resource errors are returned.
func (o *Orchestrator) Answer(ctx context.Context, q string, history []models.ConversationTurn) (*models.AnswerResponse, error) {
	if strings.TrimSpace(q) == "" {
		return nil, &models.ValidationError{Field: "query", Message: "query cannot be empty"}
	}

	if query.IsGreeting(q) {
		reply := query.GreetingReply
		return &models.AnswerResponse{
			Answer:         &reply,
			Verses:         []*models.Verse{},
			GenerationUsed: true,
			Greeting:       true,
		}, nil
	}

	if err := models.ValidateQueryText(q, o.minLen); err != nil {
		return nil, err
	}

	verses, err := o.retriever.Retrieve(ctx, q, o.topK)
	if err != nil {
		return nil, err
	}
	o.logger.Info("retrieved verses", zap.String("query", q), zap.Int("count", len(verses)))
	for i, v := range verses {
		o.logger.Debug("retrieved verse",
			zap.Int("rank", i+1),
			zap.String("id", v.ID),
			zap.String("meaning", utils.Truncate(v.DisplayMeaning, 80)))
	}

	resp := &models.AnswerResponse{Verses: verses}
	if o.gen == nil {
		return resp, nil
	}

	text, err := o.gen.Generate(ctx, &llm.Request{
		System:      SystemPrompt,
		User:        BuildUserPrompt(q, verses, history),
		Model:       o.llm.Model,
		MaxTokens:   o.llm.MaxTokens,
		Temperature: o.llm.TemperatureOrDefault(),
		Stream:      o.llm.StreamOrDefault(),
	})
	if err != nil {
		o.logger.Warn("answer generation failed", zap.Error(models.ExternalError("generate", err)))
		return resp, nil
	}
	o.logger.Info("answer generated", zap.Int("chars", len(text)), zap.Int("history_turns", len(history)))
	resp.Answer = &text
	resp.GenerationUsed = true
	return resp, nil
}
