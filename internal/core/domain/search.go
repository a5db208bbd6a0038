package domain

// SearchMode selects the ranking strategy.
type SearchMode string

// Available search modes.
const (
	// SearchModeLexical ranks chunks by term frequency with word-boundary matching.
	SearchModeLexical SearchMode = "lexical"

	// SearchModeVector ranks chunks by cosine similarity to a query embedding.
	SearchModeVector SearchMode = "vector"
)

// IsValid returns true if the search mode is recognised.
func (m SearchMode) IsValid() bool {
	switch m {
	case SearchModeLexical, SearchModeVector:
		return true
	default:
		return false
	}
}

// RequiresEmbedding returns true if this mode needs a query embedding.
func (m SearchMode) RequiresEmbedding() bool {
	return m == SearchModeVector
}

// String returns the string representation.
func (m SearchMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m SearchMode) Description() string {
	switch m {
	case SearchModeLexical:
		return "Lexical (keyword relevance)"
	case SearchModeVector:
		return "Vector (embedding similarity)"
	default:
		return "Unknown"
	}
}

// SearchOptions configures a search query.
type SearchOptions struct {
	// Mode selects the ranker. Empty means lexical.
	Mode SearchMode

	// QueryEmbedding is a precomputed query vector for vector mode.
	QueryEmbedding []float32

	// Limit is the maximum number of results.
	Limit int

	// Debug routes ranking diagnostics to the debug log.
	Debug bool
}

// SearchResult represents a single ranked chunk. It is recomputed per query.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the relevance score. Higher ranks first.
	Score float64

	// TermsMatched is the number of distinct query tokens found (lexical only).
	TermsMatched int

	// Occurrences is the total number of token matches (lexical only).
	Occurrences int
}

// SearchHit is the per-result diagnostic record.
type SearchHit struct {
	Score            float64
	Occurrences      int
	TokensFoundRatio float64
	FileName         string
	Page             int
	Preview          string
}

// SearchDiagnostics is handed to a DebugSink after a lexical search.
// It never affects ranking.
type SearchDiagnostics struct {
	Query      string
	Tokens     []string
	Candidates int
	Hits       []SearchHit
}

// DebugSink receives search diagnostics.
type DebugSink func(SearchDiagnostics)
