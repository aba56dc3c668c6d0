package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/hyperjump/sakha/internal/config"
	"github.com/hyperjump/sakha/pkg/utils"
)

// Client implements Generator on top of a langchaingo model.
type Client struct {
	model  llms.Model
	logger *zap.Logger
}

// NewClient creates a client for the OpenAI-compatible endpoint described by cfg.
// Returns an error when generation is disabled or no API key is configured.
func NewClient(cfg *config.LLMConfig, logger *zap.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("llm generation is not configured")
	}
	model, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return NewClientFromModel(model, logger), nil
}

// NewClientFromModel wraps an existing langchaingo model.
func NewClientFromModel(model llms.Model, logger *zap.Logger) *Client {
	return &Client{model: model, logger: utils.OrNop(logger)}
}

// Generate sends req and returns the full response text.
func (c *Client) Generate(ctx context.Context, req *Request) (string, error) {
	content := make([]llms.MessageContent, 0, 2)
	if req.System != "" {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(req.System)},
		})
	}
	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(req.User)},
	})

	opts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}
	if req.JSON {
		opts = append(opts, llms.WithJSONMode())
	}

	var streamed strings.Builder
	chunks := 0
	if req.Stream {
		opts = append(opts, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			streamed.Write(chunk)
			chunks++
			return nil
		}))
	}

	resp, err := c.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		c.logger.Warn("llm call failed", zap.String("model", req.Model), zap.Error(err))
		return "", err
	}

	text := streamed.String()
	if text == "" && len(resp.Choices) > 0 {
		text = resp.Choices[0].Content
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	c.logger.Debug("llm call completed",
		zap.String("model", req.Model),
		zap.Bool("stream", req.Stream),
		zap.Int("chunks", chunks),
		zap.Int("chars", len(text)))
	return text, nil
}
