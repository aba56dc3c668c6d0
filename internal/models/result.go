package models

// SearchResult is a single ranked verse with its fused score.
type SearchResult struct {
	Verse       *Verse              `json:"verse"`
	Score       float64             `json:"score"`
	Rank        int                 `json:"rank"`
	Explanation *KeywordExplanation `json:"explanation,omitempty"`
}

// KeywordExplanation shows how the keyword rules scored one result.
type KeywordExplanation struct {
	Boosted         bool     `json:"boosted"`
	Narrative       bool     `json:"narrative"`
	PenaltyApplied  bool     `json:"penalty_applied"`
	MatchedConcepts []string `json:"matched_concepts,omitempty"`
	Bonus           float64  `json:"bonus"`
	Score           float64  `json:"score"`
}

// Interpretation mirrors the query interpretation used for a search.
type Interpretation struct {
	English         string `json:"english"`
	Keywords        string `json:"keywords"`
	Intent          string `json:"intent,omitempty"`
	RelatedConcepts string `json:"related_concepts,omitempty"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Results        []*SearchResult `json:"results"`
	Total          int             `json:"total"`
	QueryTime      int64           `json:"query_time_ms"`
	Query          string          `json:"query"`
	Method         string          `json:"method"`
	Reranked       bool            `json:"reranked,omitempty"`
	Interpretation *Interpretation `json:"interpretation,omitempty"`
	// Triggers lists the curated triggers found in the query; set only when explaining.
	Triggers []string `json:"triggers,omitempty"`
}

// Verses returns the verses of the response in rank order.
func (r *SearchResponse) Verses() []*Verse {
	out := make([]*Verse, 0, len(r.Results))
	for _, res := range r.Results {
		out = append(out, res.Verse)
	}
	return out
}

// AnswerResponse is the orchestrator result. Answer is nil when generation was not used.
type AnswerResponse struct {
	Answer         *string  `json:"answer"`
	Verses         []*Verse `json:"verses"`
	GenerationUsed bool     `json:"generation_used"`
	Greeting       bool     `json:"greeting,omitempty"`
	SessionID      string   `json:"session_id,omitempty"`
}
