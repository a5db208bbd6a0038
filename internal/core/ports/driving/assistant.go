package driving

import (
	"context"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// Assistant answers questions and summarises documents.
type Assistant interface {
	// Ask answers a question from retrieved context.
	// Oracle failures are reported in the answer text, not as errors.
	// Cancellation discards any partial answer and returns ctx.Err().
	Ask(ctx context.Context, question string, opts domain.AskOptions) (domain.Answer, error)

	// Summarize summarises one document by display name.
	Summarize(ctx context.Context, fileName string, opts domain.SummarizeOptions) (domain.Answer, error)
}
