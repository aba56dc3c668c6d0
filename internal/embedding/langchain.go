package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainEmbedder implements Embedder on a langchaingo embeddings client.
type LangChainEmbedder struct {
	embedder   embeddings.Embedder
	model      string
	dimensions int
}

// NewOpenAIEmbedder creates an embedder for any OpenAI-compatible embeddings endpoint.
// Local servers that need no authentication accept the placeholder token "none".
func NewOpenAIEmbedder(baseURL, apiKey, model string, dimensions int) (*LangChainEmbedder, error) {
	if apiKey == "" {
		apiKey = "none"
	}
	client, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai embedding client: %w", err)
	}
	return newLangChainEmbedder(client, model, dimensions)
}

// NewOllamaEmbedder creates an embedder backed by an Ollama server.
func NewOllamaEmbedder(serverURL, model string, dimensions int) (*LangChainEmbedder, error) {
	client, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	return newLangChainEmbedder(client, model, dimensions)
}

func newLangChainEmbedder(client embeddings.EmbedderClient, model string, dimensions int) (*LangChainEmbedder, error) {
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return &LangChainEmbedder{embedder: embedder, model: model, dimensions: dimensions}, nil
}

// Embed returns the embedding of a single text.
func (e *LangChainEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("embed query: empty embedding")
	}
	return vec, nil
}

// EmbedBatch embeds texts in one request.
func (e *LangChainEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embed documents: got %d embeddings for %d texts", len(vecs), len(texts))
	}
	return vecs, nil
}

// Model returns the configured embedding model name.
func (e *LangChainEmbedder) Model() string { return e.model }

// Dimensions returns the configured embedding dimension.
func (e *LangChainEmbedder) Dimensions() int { return e.dimensions }

// Close is a no-op; the HTTP client needs no teardown.
func (e *LangChainEmbedder) Close() error { return nil }
