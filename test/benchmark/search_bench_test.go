package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/sakha/internal/embedding"
	"github.com/hyperjump/sakha/internal/keyword"
	"github.com/hyperjump/sakha/internal/models"
	"github.com/hyperjump/sakha/internal/search"
	"github.com/hyperjump/sakha/internal/vector"
)

// verses returns n synthetic verses, about the size of the full corpus at n=700.
func verses(n int) []*models.Verse {
	out := make([]*models.Verse, n)
	for i := range out {
		out[i] = &models.Verse{
			ID:             fmt.Sprintf("%d.%d", i/50+1, i%50+1),
			Chapter:        i/50 + 1,
			Verse:          i%50 + 1,
			OriginalText:   "कर्मण्येवाधिकारस्ते मा फलेषु कदाचन",
			SearchMeaning:  fmt.Sprintf("verse %d about duty, action and the restless mind", i),
			SearchableText: fmt.Sprintf("verse %d about duty, action and the restless mind", i),
		}
	}
	return out
}

func BenchmarkCandidateSetRanked(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := search.NewCandidateSet()
		for j := 0; j < 75; j++ {
			c.Add(j, float64(j)/75, 1)
			c.Add(j*3%700, float64(75-j)/75, 1.5)
			c.Add(j*7%700, 0.5, 1)
		}
		_ = c.Ranked(100)
	}
}

func BenchmarkMatrixSimilarities(b *testing.B) {
	rows := make([][]float32, 700)
	for i := range rows {
		rows[i] = make([]float32, 384)
		rows[i][i%384] = 1
		rows[i][0] += float32(i) / 700
	}
	m, err := vector.NewMatrix(rows, "bench")
	if err != nil {
		b.Fatal(err)
	}
	query := make([]float32, 384)
	query[0] = 1
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Similarities(query)
	}
}

func BenchmarkKeywordSearch(b *testing.B) {
	tables, err := keyword.DefaultTables()
	if err != nil {
		b.Fatal(err)
	}
	m := keyword.NewMatcher(verses(700), tables)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Search("I lost my job and my mind is full of anger", 50)
	}
}

func BenchmarkMockEmbedder_Embed(b *testing.B) {
	e := embedding.NewMockEmbedder(384)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark query text for embedding")
	}
}
