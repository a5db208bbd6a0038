package driving

import (
	"context"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// Ingestor loads documents from a directory tree into the chunk store.
type Ingestor interface {
	// ProcessDirectory ingests every supported file under root.
	// It fails with domain.ErrDirectoryNotFound when root is missing and with
	// domain.ErrStorage when the store fails. Per-file failures are counted
	// in the report and never abort the walk.
	ProcessDirectory(ctx context.Context, root string, chunkSize int) (domain.IngestReport, error)
}
