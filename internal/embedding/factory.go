package embedding

import (
	"fmt"
	"strings"

	"github.com/hyperjump/sakha/internal/config"
)

// Provider names accepted by New.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderMock   = "mock"
)

// New creates the configured embedding provider wrapped in an LRU cache.
func New(cfg *config.EmbeddingConfig) (Embedder, error) {
	var (
		inner Embedder
		err   error
	)
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI, "":
		inner, err = NewOpenAIEmbedder(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Dimensions)
	case ProviderOllama:
		inner, err = NewOllamaEmbedder(strings.TrimSuffix(cfg.BaseURL, "/v1"), cfg.Model, cfg.Dimensions)
	case ProviderMock:
		inner = NewMockEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: openai, ollama, mock)", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewCachedEmbedder(inner, cfg.CacheSize), nil
}
