// Package lexical ranks chunks by whole-word term frequency.
package lexical

import (
	"context"
	"math"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docask/internal/core/domain"
)

const (
	// MinTokenLength is the shortest query token that takes part in scoring.
	MinTokenLength = 2

	// PreviewLength is the number of runes shown per hit in diagnostics.
	PreviewLength = 100

	frequencyWeight = 2.0
	longTokenBoost  = 1.3
	midTokenBoost   = 1.1
	longTokenRunes  = 8
	midTokenRunes   = 5
	multiTermBoost  = 0.15

	// Below this many chunks scoring stays on the calling goroutine.
	parallelThreshold = 256
)

// delimiters split a query into tokens, in addition to whitespace.
const delimiters = ",.?!;:\"'()[]{}"

// term is a compiled query token.
type term struct {
	text string
	re   *regexp.Regexp
}

// scored is the per-chunk outcome of scoring.
type scored struct {
	score       float64
	found       int
	occurrences int
}

// Normalize lowercases s and collapses whitespace runs to single spaces.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Tokenize splits a normalised query into distinct tokens of at least
// MinTokenLength runes, in order of first appearance.
func Tokenize(query string) []string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(delimiters, r)
	})

	seen := make(map[string]bool, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < MinTokenLength || seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}

// CountOccurrences counts whole-word occurrences of token in text. Both are
// expected to be normalised. A match counts only when it is not directly
// preceded or followed by a letter, digit or underscore.
func CountOccurrences(text, token string) int {
	if token == "" {
		return 0
	}
	return countMatches(text, regexp.MustCompile(regexp.QuoteMeta(token)))
}

func countMatches(text string, re *regexp.Regexp) int {
	count := 0
	pos := 0
	for pos < len(text) {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if isBoundary(text, start, end) {
			count++
			pos = end
			continue
		}
		// Retry one rune further on; a rejected match may hide a valid one.
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return count
}

func isBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// TokenScore is the contribution of one token that occurs count times.
func TokenScore(token string, count int) float64 {
	if count <= 0 {
		return 0
	}
	s := math.Log(1+float64(count)) * frequencyWeight
	switch n := utf8.RuneCountInString(token); {
	case n >= longTokenRunes:
		s *= longTokenBoost
	case n >= midTokenRunes:
		s *= midTokenBoost
	}
	return s
}

// Rank scores chunks against query and returns at most topK results,
// best first. Ties on score are broken by the number of distinct tokens
// found and then by input order. If sink is non-nil it receives the
// diagnostics of the returned results.
//
// A cancelled ctx yields no results.
func Rank(
	ctx context.Context, chunks []domain.Chunk, query string, topK int, sink domain.DebugSink,
) []domain.SearchResult {
	normQuery := Normalize(query)
	tokens := Tokenize(normQuery)
	if len(tokens) == 0 || topK <= 0 {
		emit(sink, query, tokens, len(chunks), nil)
		return nil
	}

	terms := make([]term, len(tokens))
	for i, tok := range tokens {
		terms[i] = term{text: tok, re: regexp.MustCompile(regexp.QuoteMeta(tok))}
	}

	scores, err := scoreAll(ctx, chunks, terms)
	if err != nil {
		return nil
	}

	order := make([]int, 0, len(chunks))
	for i, s := range scores {
		if s.score > 0 {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := scores[order[a]], scores[order[b]]
		if sa.score != sb.score {
			return sa.score > sb.score
		}
		return sa.found > sb.found
	})
	if len(order) > topK {
		order = order[:topK]
	}

	results := make([]domain.SearchResult, len(order))
	for i, idx := range order {
		results[i] = domain.SearchResult{
			Chunk:        chunks[idx],
			Score:        scores[idx].score,
			TermsMatched: scores[idx].found,
			Occurrences:  scores[idx].occurrences,
		}
	}

	emit(sink, query, tokens, len(chunks), results)
	return results
}

// scoreAll scores every chunk. Work is split into contiguous shards, one per
// CPU; each shard writes only its own indexes so the output is deterministic.
func scoreAll(ctx context.Context, chunks []domain.Chunk, terms []term) ([]scored, error) {
	scores := make([]scored, len(chunks))

	if len(chunks) < parallelThreshold {
		for i := range chunks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			scores[i] = scoreChunk(chunks[i].Text, terms)
		}
		return scores, nil
	}

	workers := runtime.GOMAXPROCS(0)
	shard := (len(chunks) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(chunks); start += shard {
		lo, hi := start, min(start+shard, len(chunks))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				scores[i] = scoreChunk(chunks[i].Text, terms)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

func scoreChunk(text string, terms []term) scored {
	norm := Normalize(text)

	var s scored
	for _, t := range terms {
		n := countMatches(norm, t.re)
		if n == 0 {
			continue
		}
		s.found++
		s.occurrences += n
		s.score += TokenScore(t.text, n)
	}
	if s.found >= 2 {
		s.score *= 1.0 + float64(s.found)*multiTermBoost
	}
	return s
}

func emit(sink domain.DebugSink, query string, tokens []string, candidates int, results []domain.SearchResult) {
	if sink == nil {
		return
	}

	diag := domain.SearchDiagnostics{
		Query:      query,
		Tokens:     tokens,
		Candidates: candidates,
		Hits:       make([]domain.SearchHit, len(results)),
	}
	for i, r := range results {
		ratio := 0.0
		if len(tokens) > 0 {
			ratio = float64(r.TermsMatched) / float64(len(tokens))
		}
		diag.Hits[i] = domain.SearchHit{
			Score:            r.Score,
			Occurrences:      r.Occurrences,
			TokensFoundRatio: ratio,
			FileName:         r.Chunk.FileName,
			Page:             r.Chunk.Page,
			Preview:          preview(r.Chunk.Text),
		}
	}
	sink(diag)
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= PreviewLength {
		return text
	}
	return string([]rune(text)[:PreviewLength])
}
