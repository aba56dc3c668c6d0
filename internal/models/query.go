package models

import (
	"strings"
	"unicode/utf8"
)

// MinQueryLength is the minimum number of characters a trimmed query must have.
const MinQueryLength = 3

// ValidateQueryText rejects empty queries and queries shorter than minLen runes.
// A minLen of zero or less uses MinQueryLength.
func ValidateQueryText(query string, minLen int) error {
	if minLen <= 0 {
		minLen = MinQueryLength
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return &ValidationError{Field: "query", Message: "query cannot be empty"}
	}
	if utf8.RuneCountInString(q) < minLen {
		return &ValidationError{Field: "query", Message: "query is too short"}
	}
	return nil
}

// SearchQuery represents a verse search request.
type SearchQuery struct {
	Query           string `json:"query"`
	Limit           int    `json:"limit,omitempty"`
	KeywordEnabled  bool   `json:"keyword_enabled,omitempty"`
	SemanticEnabled bool   `json:"semantic_enabled,omitempty"`
	// Explain attaches the keyword score breakdown to every result.
	Explain bool `json:"explain,omitempty"`
}

// Validate checks the query text and normalizes limit and signal flags.
// When both signals are disabled, hybrid search (both enabled) is used.
func (q *SearchQuery) Validate(minLen, defaultLimit, maxLimit int) error {
	if err := ValidateQueryText(q.Query, minLen); err != nil {
		return err
	}
	q.Query = strings.TrimSpace(q.Query)
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if maxLimit <= 0 {
		maxLimit = 100
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if !q.KeywordEnabled && !q.SemanticEnabled {
		q.KeywordEnabled = true
		q.SemanticEnabled = true
	}
	return nil
}

// Method names the retrieval mode implied by the enabled signals.
func (q *SearchQuery) Method() string {
	switch {
	case q.KeywordEnabled && q.SemanticEnabled:
		return "hybrid"
	case q.KeywordEnabled:
		return "keyword"
	default:
		return "semantic"
	}
}

// AnswerRequest is an answer request with optional caller-supplied history.
type AnswerRequest struct {
	Query     string             `json:"query"`
	SessionID string             `json:"session_id,omitempty"`
	History   []ConversationTurn `json:"history,omitempty"`
}
