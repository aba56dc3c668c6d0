// Package keyword scores verses with curated situation overrides, a narrator penalty and concept overlap.
package keyword

import (
	"sort"
	"strings"

	"github.com/hyperjump/sakha/internal/models"
)

// Scoring constants.
const (
	CuratedBoost      = 15.0
	NarrativePenalty  = 5.0
	ConceptMatchScore = 2.5
	// MultiConceptBonus is added per matched concept once at least two concepts match.
	MultiConceptBonus = 1.0
)

// Result is a single keyword hit: a corpus index and its rule score.
type Result struct {
	Index int
	Score float64
}

// Breakdown explains how one verse scored for one query.
type Breakdown struct {
	VerseID         string   `json:"verse_id"`
	Boosted         bool     `json:"boosted"`
	Narrative       bool     `json:"narrative"`
	PenaltyApplied  bool     `json:"penalty_applied"`
	MatchedConcepts []string `json:"matched_concepts,omitempty"`
	Bonus           float64  `json:"bonus"`
	Score           float64  `json:"score"`
}

// Matcher scores every verse against a query. Verse-side facts are computed once at construction.
type Matcher struct {
	verses    []*models.Verse
	tables    *Tables
	narrative []bool
	// hasConcept[i][c] reports whether verse i's searchable text contains a term of concept c.
	hasConcept [][]bool
}

// NewMatcher precomputes narrator flags and concept presence for verses.
func NewMatcher(verses []*models.Verse, tables *Tables) *Matcher {
	m := &Matcher{
		verses:     verses,
		tables:     tables,
		narrative:  make([]bool, len(verses)),
		hasConcept: make([][]bool, len(verses)),
	}
	for i, v := range verses {
		m.narrative[i] = isNarrative(v.OriginalText, tables.NarratorMarkers)
		row := make([]bool, len(tables.Concepts))
		for c, concept := range tables.Concepts {
			row[c] = containsAny(v.SearchableText, concept.Terms)
		}
		m.hasConcept[i] = row
	}
	return m
}

func isNarrative(original string, markers []string) bool {
	start := strings.ToLower(strings.TrimSpace(original))
	for _, marker := range markers {
		if strings.HasPrefix(start, marker) {
			return true
		}
	}
	return false
}

type queryFacts struct {
	boosted  map[string]bool
	concepts []bool
}

func (m *Matcher) analyze(text string) queryFacts {
	lower := strings.ToLower(text)
	concepts := make([]bool, len(m.tables.Concepts))
	for c, concept := range m.tables.Concepts {
		concepts[c] = containsAny(lower, concept.Terms)
	}
	return queryFacts{boosted: m.tables.BoostedVerses(lower), concepts: concepts}
}

func (m *Matcher) score(i int, q queryFacts) Breakdown {
	v := m.verses[i]
	b := Breakdown{VerseID: v.ID, Narrative: m.narrative[i]}
	if q.boosted[v.ID] {
		b.Boosted = true
		b.Score += CuratedBoost
	}
	if b.Narrative && !b.Boosted {
		b.PenaltyApplied = true
		b.Score -= NarrativePenalty
	}
	for c, queryHas := range q.concepts {
		if queryHas && m.hasConcept[i][c] {
			b.Score += ConceptMatchScore
			b.MatchedConcepts = append(b.MatchedConcepts, m.tables.Concepts[c].Name)
		}
	}
	if n := len(b.MatchedConcepts); n >= 2 {
		b.Bonus = float64(n) * MultiConceptBonus
		b.Score += b.Bonus
	}
	return b
}

// Search scores all verses for text and returns those with a positive score,
// highest first with ties in corpus order, truncated to topK.
func (m *Matcher) Search(text string, topK int) []Result {
	if topK <= 0 {
		return nil
	}
	q := m.analyze(text)
	results := make([]Result, 0)
	for i := range m.verses {
		if s := m.score(i, q).Score; s > 0 {
			results = append(results, Result{Index: i, Score: s})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK < len(results) {
		results = results[:topK]
	}
	return results
}

// Explain returns the score breakdown of the verse at index for text.
func (m *Matcher) Explain(text string, index int) Breakdown {
	return m.score(index, m.analyze(text))
}

// Tables returns the lookup tables in use.
func (m *Matcher) Tables() *Tables { return m.tables }
