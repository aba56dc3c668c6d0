// Package search fuses keyword and semantic retrieval into one ranked verse list.
package search

import "sort"

// Candidate is a verse index with its accumulated fused score.
type Candidate struct {
	Index int
	Score float64
}

// CandidateSet accumulates weighted scores per verse index for one query.
type CandidateSet struct {
	scores map[int]float64
}

// NewCandidateSet returns an empty set.
func NewCandidateSet() *CandidateSet {
	return &CandidateSet{scores: make(map[int]float64)}
}

// Add adds weight*score to index, creating the entry on first sight.
func (c *CandidateSet) Add(index int, score, weight float64) {
	c.scores[index] += weight * score
}

// Len returns the number of distinct candidates.
func (c *CandidateSet) Len() int { return len(c.scores) }

// Score returns the accumulated score for index.
func (c *CandidateSet) Score(index int) (float64, bool) {
	s, ok := c.scores[index]
	return s, ok
}

// Ranked returns up to limit candidates by score descending, ties by index ascending.
// A limit of zero or less returns all of them.
func (c *CandidateSet) Ranked(limit int) []Candidate {
	out := make([]Candidate, 0, len(c.scores))
	for i, s := range c.scores {
		out = append(out, Candidate{Index: i, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Index < out[j].Index
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}
