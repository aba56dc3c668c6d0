// Package config provides configuration loading and structs for the sakha server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Search    SearchConfig    `yaml:"search"`
	Rerank    RerankConfig    `yaml:"rerank"`
	Keyword   KeywordConfig   `yaml:"keyword"`
	Session   SessionConfig   `yaml:"session"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DataConfig holds paths for the verse corpus and the embedding store.
type DataConfig struct {
	CorpusPath     string `yaml:"corpus_path"`
	EmbeddingsPath string `yaml:"embeddings_path"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // openai, ollama or mock
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"-"`
	Dimensions int    `yaml:"dimensions"`
	CacheSize  int    `yaml:"cache_size"`
	// StrictModelMatch fails startup when the store was built with a different model.
	StrictModelMatch bool `yaml:"strict_model_match"`
}

// LLMConfig configures the OpenAI-compatible generation endpoint.
type LLMConfig struct {
	BaseURL          string   `yaml:"base_url"`
	APIKey           string   `yaml:"-"`
	Model            string   `yaml:"model"`
	InterpreterModel string   `yaml:"interpreter_model"`
	MaxTokens        int      `yaml:"max_tokens"`
	Temperature      *float64 `yaml:"temperature"`
	Stream           *bool    `yaml:"stream"`
	Disabled         bool     `yaml:"disabled"`
}

// DefaultTemperature is the answer sampling temperature when none is configured.
const DefaultTemperature = 0.3

// TemperatureOrDefault returns the sampling temperature; defaults to DefaultTemperature when unset.
// An explicit 0 is kept.
func (l *LLMConfig) TemperatureOrDefault() float64 {
	if l.Temperature != nil {
		return *l.Temperature
	}
	return DefaultTemperature
}

// StreamOrDefault returns whether generation streams; defaults to true when unset.
func (l *LLMConfig) StreamOrDefault() bool {
	if l.Stream != nil {
		return *l.Stream
	}
	return true
}

// Enabled reports whether a generation capability can be constructed.
func (l *LLMConfig) Enabled() bool {
	return !l.Disabled && l.APIKey != ""
}

// SearchConfig holds retrieval pool sizes, weights and limits.
type SearchConfig struct {
	DefaultLimit   int     `yaml:"default_limit"`
	AnswerLimit    int     `yaml:"answer_limit"`
	MaxLimit       int     `yaml:"max_limit"`
	SemanticPool   int     `yaml:"semantic_pool"`
	KeywordPool    int     `yaml:"keyword_pool"`
	KeywordWeight  float64 `yaml:"keyword_weight"`
	RerankPool     int     `yaml:"rerank_pool"`
	MinQueryLength int     `yaml:"min_query_length"`
}

// RerankConfig selects the optional precision re-ranker.
type RerankConfig struct {
	Type      string `yaml:"type"` // none, lexical or cross-encoder
	ModelPath string `yaml:"model_path"`
	MaxTokens int    `yaml:"max_tokens"`
}

// KeywordConfig points at an optional replacement for the built-in lookup tables.
type KeywordConfig struct {
	TablesPath string `yaml:"tables_path"`
}

// SessionConfig bounds the in-memory conversation window kept by the server.
type SessionConfig struct {
	MaxSessions int `yaml:"max_sessions"`
	MaxTurns    int `yaml:"max_turns"`
}

// Load reads and parses the config file at path, expands paths, applies defaults
// and overlays secrets from the environment (and a .env file next to the config).
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	configDir := filepath.Dir(path)
	// A missing .env is fine; variables may come from the real environment.
	_ = godotenv.Load(filepath.Join(configDir, ".env"))

	ApplyDefaults(&cfg)
	ApplyEnv(&cfg)

	cfg.Data.CorpusPath = expandPath(cfg.Data.CorpusPath, configDir)
	cfg.Data.EmbeddingsPath = expandPath(cfg.Data.EmbeddingsPath, configDir)
	cfg.Keyword.TablesPath = expandPath(cfg.Keyword.TablesPath, configDir)
	cfg.Rerank.ModelPath = expandPath(cfg.Rerank.ModelPath, configDir)

	return &cfg, nil
}

// Save writes the config to path. Secrets are never written.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ApplyEnv overlays API keys and endpoint overrides from environment variables.
func ApplyEnv(cfg *Config) {
	cfg.LLM.APIKey = getEnv("SAKHA_LLM_API_KEY", os.Getenv("GROQ_API_KEY"))
	cfg.LLM.BaseURL = getEnv("SAKHA_LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.Embedding.APIKey = getEnv("SAKHA_EMBEDDING_API_KEY", os.Getenv("OPENAI_API_KEY"))
	cfg.Embedding.BaseURL = getEnv("SAKHA_EMBEDDING_BASE_URL", cfg.Embedding.BaseURL)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
