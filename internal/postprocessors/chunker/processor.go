// Package chunker splits extracted pages into word-aligned chunks.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// DefaultChunkSize is the default maximum number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// Processor splits page text into chunks of at most chunkSize characters.
// Words are never split: a single word longer than chunkSize becomes a
// chunk of its own.
type Processor struct {
	chunkSize int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
// Non-positive sizes keep the default.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the effective chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Chunk converts pages into ordered chunk candidates.
// Blank pages produce nothing. A page whose trimmed text fits in chunkSize
// becomes exactly one chunk; longer pages are split at whitespace.
func (p *Processor) Chunk(pages []domain.Page) []domain.ChunkInput {
	var out []domain.ChunkInput
	for _, page := range pages {
		text := strings.TrimSpace(page.Text)
		if text == "" {
			continue
		}

		number := page.Number
		if number < 1 {
			number = 1
		}

		if utf8.RuneCountInString(text) <= p.chunkSize {
			out = append(out, domain.ChunkInput{Page: number, Text: text})
			continue
		}

		for _, part := range p.split(text) {
			out = append(out, domain.ChunkInput{Page: number, Text: part})
		}
	}
	return out
}

// split accumulates words until adding the next one would exceed chunkSize.
func (p *Processor) split(text string) []string {
	var (
		parts   []string
		current strings.Builder
		curLen  int
	)

	flush := func() {
		if curLen > 0 {
			parts = append(parts, current.String())
			current.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)
		if curLen > 0 && curLen+1+wordLen > p.chunkSize {
			flush()
		}
		if curLen > 0 {
			current.WriteByte(' ')
			curLen++
		}
		current.WriteString(word)
		curLen += wordLen
	}
	flush()

	return parts
}
