package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Data.CorpusPath == "" {
		cfg.Data.CorpusPath = "/usr/local/var/sakha/data/gita_english.json"
	}
	if cfg.Data.EmbeddingsPath == "" {
		cfg.Data.EmbeddingsPath = "/usr/local/var/sakha/data/embeddings.db"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "all-MiniLM-L6-v2"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:11434/v1"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama-3.1-8b-instant"
	}
	if cfg.LLM.InterpreterModel == "" {
		cfg.LLM.InterpreterModel = "llama-3.1-8b-instant"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 600
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.AnswerLimit == 0 {
		cfg.Search.AnswerLimit = 5
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.SemanticPool == 0 {
		cfg.Search.SemanticPool = 75
	}
	if cfg.Search.KeywordPool == 0 {
		cfg.Search.KeywordPool = 50
	}
	if cfg.Search.KeywordWeight == 0 {
		cfg.Search.KeywordWeight = 1.5
	}
	if cfg.Search.RerankPool == 0 {
		cfg.Search.RerankPool = 100
	}
	if cfg.Search.MinQueryLength == 0 {
		cfg.Search.MinQueryLength = 3
	}
	if cfg.Rerank.Type == "" {
		cfg.Rerank.Type = "none"
	}
	if cfg.Rerank.MaxTokens == 0 {
		cfg.Rerank.MaxTokens = 256
	}
	if cfg.Session.MaxSessions == 0 {
		cfg.Session.MaxSessions = 1000
	}
	if cfg.Session.MaxTurns == 0 {
		cfg.Session.MaxTurns = 3
	}
}
