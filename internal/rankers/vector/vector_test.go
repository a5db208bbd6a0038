package vector

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docask/internal/core/domain"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name   string
		a, b   []float32
		want   float64
		wantOK bool
	}{
		{"identical", []float32{0.3, 0.4, 0.5}, []float32{0.3, 0.4, 0.5}, 1.0, true},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0, true},
		{"opposite", []float32{1, 2}, []float32{-1, -2}, -1.0, true},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 1.0, true},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0, false},
		{"zero norm", []float32{0, 0}, []float32{1, 0}, 0, false},
		{"empty", nil, nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Cosine(tt.a, tt.b)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestRank(t *testing.T) {
	chunks := []domain.Chunk{
		{FileName: "none.pdf", Text: "no embedding"},
		{FileName: "far.pdf", Embedding: []float32{0, 1}},
		{FileName: "bad.pdf", Embedding: []float32{1, 0, 0}},
		{FileName: "near.pdf", Embedding: []float32{1, 0.1}},
		{FileName: "exact.pdf", Embedding: []float32{2, 0}},
	}

	results := Rank(context.Background(), chunks, []float32{1, 0}, 10)
	require.Len(t, results, 4)

	var names []string
	for _, r := range results {
		names = append(names, r.Chunk.FileName)
	}
	assert.Equal(t, []string{"exact.pdf", "near.pdf", "far.pdf", "bad.pdf"}, names)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.True(t, math.IsInf(results[3].Score, -1))
}

func TestRank_TopK(t *testing.T) {
	chunks := []domain.Chunk{
		{FileName: "a", Embedding: []float32{1, 0}},
		{FileName: "b", Embedding: []float32{1, 0}},
		{FileName: "c", Embedding: []float32{1, 0}},
	}

	results := Rank(context.Background(), chunks, []float32{1, 0}, 2)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Chunk.FileName)
	assert.Equal(t, "b", results[1].Chunk.FileName)
}

func TestRank_EmptyInputs(t *testing.T) {
	chunks := []domain.Chunk{{Embedding: []float32{1}}}
	assert.Empty(t, Rank(context.Background(), chunks, nil, 5))
	assert.Empty(t, Rank(context.Background(), chunks, []float32{1}, 0))
	assert.Empty(t, Rank(context.Background(), nil, []float32{1}, 5))
}
