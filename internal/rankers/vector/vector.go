// Package vector ranks chunks by cosine similarity to a query embedding.
package vector

import (
	"context"
	"math"
	"sort"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b. The second result is
// false when the similarity is undefined: empty vectors, different lengths
// or a zero norm.
func Cosine(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}

// Rank scores every chunk that carries an embedding and returns at most
// topK results, most similar first. Chunks whose similarity is undefined
// are kept but rank last with a score of -Inf.
func Rank(ctx context.Context, chunks []domain.Chunk, query []float32, topK int) []domain.SearchResult {
	if topK <= 0 || len(query) == 0 {
		return nil
	}

	results := make([]domain.SearchResult, 0, len(chunks))
	for _, c := range chunks {
		if !c.HasEmbedding() {
			continue
		}
		if ctx.Err() != nil {
			return nil
		}
		score, ok := Cosine(query, c.Embedding)
		if !ok {
			score = math.Inf(-1)
		}
		results = append(results, domain.SearchResult{Chunk: c, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
