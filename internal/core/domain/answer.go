package domain

// Outcome is the terminal state of an answer.
type Outcome string

// Answer outcomes.
const (
	// OutcomeContext means the oracle answered from retrieved context.
	OutcomeContext Outcome = "answered_from_context"

	// OutcomeFallback means a fixed fallback text was returned.
	OutcomeFallback Outcome = "answered_from_fallback"

	// OutcomeGreeting means the question was a greeting or meta question.
	OutcomeGreeting Outcome = "greeting"
)

// Fixed answer texts.
const (
	NoContextAnswer   = "I couldn't find the answer in your documents."
	EmptyAnswer       = "I couldn't generate an answer from your documents."
	NoDocumentContent = "No content found in the selected document."
	EmptySummary      = "No summary could be generated."
)

// Answer is the result of a question or summary request.
type Answer struct {
	// Text is the answer shown to the user.
	Text string

	// Sources lists "file (pages: 1, 2)" citations, one per file.
	Sources []string

	// Outcome records which path produced the answer.
	Outcome Outcome
}

// AskOptions configures a question.
type AskOptions struct {
	// Mode selects lexical or vector retrieval.
	Mode SearchMode

	// QueryEmbedding is an optional precomputed question vector.
	QueryEmbedding []float32

	// TopK is the requested number of chunks. Capped internally.
	TopK int

	// Model overrides the configured generation model.
	Model string

	// Debug routes ranking diagnostics to the debug log.
	Debug bool
}

// SummarizeOptions configures a document summary.
type SummarizeOptions struct {
	// MaxPages caps the number of distinct pages used as context.
	MaxPages int

	// Model overrides the configured generation model.
	Model string
}
