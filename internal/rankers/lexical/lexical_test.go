package lexical

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docask/internal/core/domain"
)

func chunk(name, text string) domain.Chunk {
	return domain.Chunk{FileName: name, Page: 1, Text: text}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "hello big world", Normalize("  Hello \t BIG\n\nworld "))
	assert.Equal(t, "", Normalize(" \n "))
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"simple", "database migration", []string{"database", "migration"}},
		{"punctuation", "what's (the) plan? [now]; {ok}", []string{"what", "the", "plan", "now", "ok"}},
		{"short tokens dropped", "a b cd", []string{"cd"}},
		{"duplicates kept once", "go go go fast", []string{"go", "fast"}},
		{"only delimiters", "?!.,", []string{}},
		{"unicode", "café über", []string{"café", "über"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.query))
		})
	}
}

func TestCountOccurrences(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		token string
		want  int
	}{
		{"whole words", "database and database", "database", 2},
		{"plural is not a match", "databases are great", "database", 0},
		{"prefix is not a match", "metadatabase", "database", 0},
		{"punctuation boundaries", "(database), database.", "database", 2},
		{"metacharacters are literal", "c++ and c++", "c++", 2},
		{"dot is literal", "axb a.b", "a.b", 1},
		{"underscore is a word rune", "my_token token", "token", 1},
		{"rejected match does not hide the next", "aaa aa", "aa", 1},
		{"unicode letters", "naïve naïveté", "naïve", 1},
		{"empty token", "anything", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountOccurrences(tt.text, tt.token))
		})
	}
}

func TestTokenScore(t *testing.T) {
	assert.Zero(t, TokenScore("database", 0))
	assert.InDelta(t, math.Log(2)*2.0, TokenScore("go", 1), 1e-9)
	assert.InDelta(t, math.Log(3)*2.0*1.1, TokenScore("hello", 2), 1e-9)
	assert.InDelta(t, math.Log(4)*2.0*1.3, TokenScore("database", 3), 1e-9)
}

func TestRank_MultiTermAndFrequency(t *testing.T) {
	chunks := []domain.Chunk{
		chunk("single.pdf", "The database is fine."),
		chunk("both.pdf", strings.Repeat("database migration ", 3)),
		chunk("none.pdf", "nothing relevant here"),
	}

	results := Rank(context.Background(), chunks, "database migration", 5, nil)
	require.Len(t, results, 2)
	assert.Equal(t, "both.pdf", results[0].Chunk.FileName)
	assert.Equal(t, "single.pdf", results[1].Chunk.FileName)
	assert.Greater(t, results[0].Score, results[1].Score)

	assert.Equal(t, 2, results[0].TermsMatched)
	assert.Equal(t, 6, results[0].Occurrences)

	perToken := math.Log(4) * 2.0 * 1.3
	assert.InDelta(t, 2*perToken*1.3, results[0].Score, 1e-9)
	assert.InDelta(t, math.Log(2)*2.0*1.3, results[1].Score, 1e-9)
}

func TestRank_WordBoundary(t *testing.T) {
	chunks := []domain.Chunk{chunk("a.pdf", "Databases everywhere")}
	assert.Empty(t, Rank(context.Background(), chunks, "database", 5, nil))
}

func TestRank_CaseAndWhitespaceInsensitive(t *testing.T) {
	chunks := []domain.Chunk{chunk("a.pdf", "QUARTERLY\n\n   Report")}
	results := Rank(context.Background(), chunks, "quarterly report", 5, nil)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].TermsMatched)
}

func TestRank_EmptyQuery(t *testing.T) {
	chunks := []domain.Chunk{chunk("a.pdf", "a b c")}
	assert.Empty(t, Rank(context.Background(), chunks, "a ? !", 5, nil))
	assert.Empty(t, Rank(context.Background(), chunks, "", 5, nil))
}

func TestRank_TopKAndTieBreak(t *testing.T) {
	chunks := []domain.Chunk{
		chunk("first.pdf", "alpha"),
		chunk("second.pdf", "alpha"),
		chunk("third.pdf", "alpha"),
	}

	results := Rank(context.Background(), chunks, "alpha", 2, nil)
	require.Len(t, results, 2)
	assert.Equal(t, "first.pdf", results[0].Chunk.FileName)
	assert.Equal(t, "second.pdf", results[1].Chunk.FileName)

	assert.Empty(t, Rank(context.Background(), chunks, "alpha", 0, nil))
}

func TestRank_ParallelMatchesSequentialOrder(t *testing.T) {
	var chunks []domain.Chunk
	for i := 0; i < parallelThreshold*4; i++ {
		text := fmt.Sprintf("chunk %d", i)
		if i%7 == 0 {
			text += " needle"
		}
		if i%21 == 0 {
			text += " needle haystack"
		}
		chunks = append(chunks, chunk(fmt.Sprintf("f%04d", i), text))
	}

	results := Rank(context.Background(), chunks, "needle haystack", 10, nil)
	require.Len(t, results, 10)

	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		assert.GreaterOrEqual(t, prev.Score, cur.Score)
		if prev.Score == cur.Score {
			assert.Less(t, prev.Chunk.FileName, cur.Chunk.FileName)
		}
	}
	assert.Equal(t, "f0000", results[0].Chunk.FileName)
}

func TestRank_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	chunks := []domain.Chunk{chunk("a.pdf", "alpha")}
	assert.Empty(t, Rank(ctx, chunks, "alpha", 5, nil))
}

func TestRank_DebugSink(t *testing.T) {
	long := "needle " + strings.Repeat("x", 200)
	chunks := []domain.Chunk{
		{FileName: "a.pdf", Page: 3, Text: long},
		chunk("b.pdf", "other"),
	}

	var got *domain.SearchDiagnostics
	sink := func(d domain.SearchDiagnostics) { got = &d }

	results := Rank(context.Background(), chunks, "Needle thread", 5, sink)
	require.Len(t, results, 1)
	require.NotNil(t, got)

	assert.Equal(t, "Needle thread", got.Query)
	assert.Equal(t, []string{"needle", "thread"}, got.Tokens)
	assert.Equal(t, 2, got.Candidates)
	require.Len(t, got.Hits, 1)

	hit := got.Hits[0]
	assert.Equal(t, "a.pdf", hit.FileName)
	assert.Equal(t, 3, hit.Page)
	assert.Equal(t, 1, hit.Occurrences)
	assert.InDelta(t, 0.5, hit.TokensFoundRatio, 1e-9)
	assert.Equal(t, results[0].Score, hit.Score)
	assert.Len(t, []rune(hit.Preview), PreviewLength)
}
