// Package query rewrites user queries into retrieval-friendly forms and detects greetings.
package query

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/sakha/internal/llm"
	"github.com/hyperjump/sakha/internal/models"
	"github.com/hyperjump/sakha/pkg/utils"
)

const (
	// DefaultModel is the small, fast model used for rewriting.
	DefaultModel = "llama-3.1-8b-instant"
	// SimpleMaxWords is the longest query that may skip the rewrite.
	SimpleMaxWords = 8

	interpretTemperature = 0.1
)

// seedTerms mark a short query as already retrieval-ready.
var seedTerms = []string{
	"anger", "peace", "fear", "karma", "dharma", "life", "death",
	"क्रोध", "शांति", "भय", "कर्म", "धर्म", "जीवन", "मृत्यु",
	"love", "hate", "work", "duty", "meditation",
	"प्रेम", "घृणा", "काम", "कर्तव्य", "ध्यान",
}

const interpretPrompt = `Task: Deeply analyze this Bhagavad Gita question to find the BEST matching shlokas.

Input: "%QUERY%"

Output JSON with 4 keys:
1. "english": Translate the CORE INTENT to clear English. Focus on the philosophical concept, not literal translation.
   Examples:
   - "जीवन जीने का सही मार्ग" → "right way to live life, dharma, duty, righteous path"
   - "मन को कैसे शांत करें" → "how to calm mind, peace, meditation, control thoughts"

2. "keywords": Extract ALL relevant Sanskrit/Hindi concepts (both Devanagari and romanized).
   Examples:
   - "जीवन जीने का सही मार्ग" → "जीवन jeevan life मार्ग marg path धर्म dharma कर्म karma duty"
   - "गुस्सा" → "क्रोध krodh anger gussa"

3. "intent": Brief 2-3 word summary (e.g. "Life Purpose", "Control Anger", "Find Peace")

4. "related_concepts": List related Gita concepts that might help (e.g. "karma yoga, dharma, detachment")

Return ONLY valid JSON. Be thorough with keywords - include synonyms and related terms.`

// Interpretation is a query rewritten for each retrieval leg.
type Interpretation struct {
	Original        string
	English         string
	Keywords        string
	Intent          string
	RelatedConcepts string
	// Rewritten is true when the generator produced the fields.
	Rewritten bool
}

// PassThrough returns an interpretation that uses q unchanged for every leg.
func PassThrough(q string) Interpretation {
	return Interpretation{Original: q, English: q, Keywords: q}
}

// Model converts the interpretation for API responses.
func (i Interpretation) Model() *models.Interpretation {
	return &models.Interpretation{
		English:         i.English,
		Keywords:        i.Keywords,
		Intent:          i.Intent,
		RelatedConcepts: i.RelatedConcepts,
	}
}

// Interpreter rewrites complex queries with one LLM call. It never fails.
type Interpreter struct {
	gen    llm.Generator
	model  string
	logger *zap.Logger
}

// NewInterpreter creates an interpreter. gen may be nil, in which case every query passes through.
func NewInterpreter(gen llm.Generator, model string, logger *zap.Logger) *Interpreter {
	if model == "" {
		model = DefaultModel
	}
	return &Interpreter{gen: gen, model: model, logger: utils.OrNop(logger)}
}

// Enabled reports whether complex queries are rewritten.
func (in *Interpreter) Enabled() bool { return in.gen != nil }

// IsSimple reports whether q is short and already contains a seed term.
func IsSimple(q string) bool {
	if len(strings.Fields(q)) > SimpleMaxWords {
		return false
	}
	lower := strings.ToLower(q)
	for _, term := range seedTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

type rewrite struct {
	English         string `json:"english"`
	Keywords        any    `json:"keywords"`
	Intent          string `json:"intent"`
	RelatedConcepts any    `json:"related_concepts"`
}

// Interpret returns the rewrite for q, or a pass-through on the simple path,
// without a generator, or on any generator or decode error.
func (in *Interpreter) Interpret(ctx context.Context, q string) Interpretation {
	if IsSimple(q) {
		in.logger.Debug("simple query, skipping rewrite", zap.String("query", q))
		return PassThrough(q)
	}
	if in.gen == nil {
		return PassThrough(q)
	}

	text, err := in.gen.Generate(ctx, &llm.Request{
		User:        strings.Replace(interpretPrompt, "%QUERY%", q, 1),
		Model:       in.model,
		Temperature: interpretTemperature,
		JSON:        true,
	})
	if err != nil {
		in.logger.Warn("query rewrite failed", zap.Error(models.ExternalError("interpret", err)))
		return PassThrough(q)
	}

	var r rewrite
	if err := llm.DecodeJSON(text, &r); err != nil {
		in.logger.Warn("query rewrite unreadable", zap.Error(models.ExternalError("interpret", err)))
		return PassThrough(q)
	}

	out := Interpretation{
		Original:        q,
		English:         strings.TrimSpace(r.English),
		Keywords:        strings.TrimSpace(flatten(r.Keywords)),
		Intent:          strings.TrimSpace(r.Intent),
		RelatedConcepts: strings.TrimSpace(flatten(r.RelatedConcepts)),
		Rewritten:       true,
	}
	if out.English == "" {
		out.English = q
	}
	if out.Keywords == "" {
		out.Keywords = q
	}
	in.logger.Info("query rewritten",
		zap.String("query", q),
		zap.String("english", out.English),
		zap.String("intent", out.Intent))
	return out
}

// flatten accepts a string or a list of strings; models return either.
func flatten(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			if s, ok := p.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}
