package driving

import (
	"context"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// SearchService provides chunk retrieval to external actors.
type SearchService interface {
	// Search ranks all stored chunks against query.
	// Zero results is not an error.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
