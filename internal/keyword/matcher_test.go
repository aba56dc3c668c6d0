package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/sakha/internal/models"
)

const testTablesYAML = `
version: 1
curated:
  work:
    - trigger: job
      verses: ["2.47"]
  narration:
    - trigger: arjuna
      verses: ["1.1"]
concepts:
  - name: anger
    terms: [anger, krodh]
  - name: peace
    terms: [Peace, shanti]
narrator_markers: ["Arjuna Uvacha"]
`

func testVerses() []*models.Verse {
	return []*models.Verse{
		{ID: "1.1", OriginalText: "  arjuna uvacha drishtvemam", SearchableText: "arjuna speaks of anger"},
		{ID: "2.47", OriginalText: "karmany evadhikaras te", SearchableText: "perform your prescribed duty"},
		{ID: "2.63", OriginalText: "krodhad bhavati sammohah", SearchableText: "from anger comes delusion"},
		{ID: "2.66", OriginalText: "nasti buddhir ayuktasya", SearchableText: "without peace there is no happiness and anger fades"},
	}
}

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	tables, err := ParseTables([]byte(testTablesYAML))
	require.NoError(t, err)
	return NewMatcher(testVerses(), tables)
}

func ids(m *Matcher, results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = m.verses[r.Index].ID
	}
	return out
}

func TestParseTablesNormalizes(t *testing.T) {
	tables, err := ParseTables([]byte(testTablesYAML))
	require.NoError(t, err)
	assert.Equal(t, 1, tables.Version)
	assert.Equal(t, []string{"peace", "shanti"}, tables.Concepts[1].Terms)
	assert.Equal(t, []string{"arjuna uvacha"}, tables.NarratorMarkers)
	assert.Equal(t, []string{"narration", "work"}, tables.Categories())
}

func TestParseTablesRejectsEmpty(t *testing.T) {
	_, err := ParseTables([]byte("version: 1\n"))
	assert.Error(t, err)

	_, err = ParseTables([]byte("concepts: [\n"))
	assert.Error(t, err)
}

func TestDefaultTables(t *testing.T) {
	tables, err := DefaultTables()
	require.NoError(t, err)
	assert.Equal(t, 1, tables.Version)
	assert.NotEmpty(t, tables.Concepts)
	assert.NotEmpty(t, tables.NarratorMarkers)
	assert.Contains(t, tables.Categories(), "work")

	boosted := tables.BoostedVerses("i lost my job")
	assert.True(t, boosted["2.47"])
	assert.Contains(t, tables.MatchedTriggers("i lost my job"), "job")
}

func TestLoadTablesEmptyPathUsesDefaults(t *testing.T) {
	tables, err := LoadTables("")
	require.NoError(t, err)
	assert.NotEmpty(t, tables.Curated)

	_, err = LoadTables("/nonexistent/tables.yaml")
	assert.Error(t, err)
}

func TestSearchCuratedBoost(t *testing.T) {
	m := newTestMatcher(t)

	results := m.Search("I lost my JOB", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "2.47", m.verses[results[0].Index].ID)
	assert.Equal(t, CuratedBoost, results[0].Score)
}

func TestSearchConceptsAndBonus(t *testing.T) {
	m := newTestMatcher(t)

	results := m.Search("anger and peace", 10)
	// 1.1 is narrative: -5 + 2.5 stays negative and is dropped.
	assert.Equal(t, []string{"2.66", "2.63"}, ids(m, results))
	assert.Equal(t, 2*ConceptMatchScore+2*MultiConceptBonus, results[0].Score)
	assert.Equal(t, ConceptMatchScore, results[1].Score)
}

func TestSearchStableTiesAndTruncation(t *testing.T) {
	m := newTestMatcher(t)

	results := m.Search("lost my job, full of anger", 10)
	assert.Equal(t, []string{"2.47", "2.63", "2.66"}, ids(m, results))

	results = m.Search("lost my job, full of anger", 2)
	assert.Equal(t, []string{"2.47", "2.63"}, ids(m, results))

	assert.Empty(t, m.Search("anger", 0))
}

func TestSearchNoMatches(t *testing.T) {
	m := newTestMatcher(t)
	assert.Empty(t, m.Search("quantum chromodynamics", 5))
}

func TestNarrativePenaltySkippedWhenBoosted(t *testing.T) {
	m := newTestMatcher(t)

	b := m.Explain("what did arjuna feel", 0)
	assert.True(t, b.Narrative)
	assert.True(t, b.Boosted)
	assert.False(t, b.PenaltyApplied)
	assert.Equal(t, CuratedBoost, b.Score)

	b = m.Explain("anger", 0)
	assert.True(t, b.PenaltyApplied)
	assert.Equal(t, []string{"anger"}, b.MatchedConcepts)
	assert.Equal(t, ConceptMatchScore-NarrativePenalty, b.Score)
}

func TestExplainBonus(t *testing.T) {
	m := newTestMatcher(t)

	b := m.Explain("shanti and krodh", 3)
	assert.Equal(t, "2.66", b.VerseID)
	assert.Equal(t, []string{"anger", "peace"}, b.MatchedConcepts)
	assert.Equal(t, 2*MultiConceptBonus, b.Bonus)
	assert.False(t, b.Narrative)
}
