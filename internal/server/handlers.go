package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/sakha/internal/models"
	"github.com/hyperjump/sakha/internal/session"
	"github.com/hyperjump/sakha/internal/storage"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	response, err := s.engine.Search(r.Context(), &query)
	if err != nil {
		s.respondFailure(w, "search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	history := req.History
	if req.SessionID == "" {
		req.SessionID = session.NewID()
	} else if len(history) == 0 {
		history = s.sessions.History(req.SessionID)
	}
	s.logger.Debug("answer request",
		zap.String("query", req.Query),
		zap.String("session_id", req.SessionID),
		zap.Int("history_turns", len(history)))

	response, err := s.answerer.Answer(r.Context(), req.Query, history)
	if err != nil {
		s.respondFailure(w, "answer failed", err)
		return
	}
	if response.Answer != nil && !response.Greeting {
		s.sessions.Append(req.SessionID, models.ConversationTurn{Question: req.Query, Answer: *response.Answer})
	}
	response.SessionID = req.SessionID
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetVerse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := s.engine.Corpus(r.Context())
	if err != nil {
		s.respondFailure(w, "verse lookup failed", err)
		return
	}
	verse, ok := c.Get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "verse not found")
		return
	}
	s.respondJSON(w, http.StatusOK, verse)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Stats(r.Context())
	if err != nil {
		s.respondFailure(w, "status failed", err)
		return
	}
	resp := map[string]interface{}{
		"verses":             stats.Verses,
		"semantic_available": stats.SemanticAvailable,
		"reranker":           stats.Reranker,
		"interpreter":        stats.Interpreter,
		"generation":         s.config.LLM.Enabled(),
		"sessions":           s.sessions.Len(),
	}

	configInfo := map[string]interface{}{
		"embedding_provider":   s.config.Embedding.Provider,
		"embedding_model":      s.config.Embedding.Model,
		"embedding_dimensions": s.config.Embedding.Dimensions,
		"llm_model":            s.config.LLM.Model,
		"corpus_path":          s.config.Data.CorpusPath,
		"embeddings_path":      s.config.Data.EmbeddingsPath,
	}
	resp["config"] = configInfo

	sizes, err := storage.FileSizes(s.config.Data.CorpusPath, s.config.Data.EmbeddingsPath)
	if err == nil {
		resp["disk_usage_bytes"] = sizes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// respondFailure maps the error taxonomy onto HTTP status codes.
func (s *Server) respondFailure(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrResourceMissing):
		s.logger.Error(msg, zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error(msg, zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
