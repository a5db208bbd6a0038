package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/core/ports/driving"
	"github.com/custodia-labs/docask/internal/logger"
	"github.com/custodia-labs/docask/internal/metrics"
	"github.com/custodia-labs/docask/internal/rankers/lexical"
	"github.com/custodia-labs/docask/internal/rankers/vector"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService ranks stored chunks against a query.
type SearchService struct {
	store    driven.ChunkStore
	embedder driven.EmbeddingService
	metrics  *metrics.Metrics
	sink     domain.DebugSink
}

// NewSearchService creates a new search service.
func NewSearchService(store driven.ChunkStore) *SearchService {
	return &SearchService{
		store: store,
		sink:  logger.SearchDebugSink(),
	}
}

// SetEmbeddingService sets the oracle used to embed queries in vector mode.
func (s *SearchService) SetEmbeddingService(e driven.EmbeddingService) {
	s.embedder = e
}

// SetMetrics sets the metrics sink.
func (s *SearchService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// SetDebugSink replaces the sink used when SearchOptions.Debug is set.
func (s *SearchService) SetDebugSink(sink domain.DebugSink) {
	s.sink = sink
}

// Search ranks every stored chunk against query. Zero results is not an error.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	if strings.TrimSpace(query) == "" && len(opts.QueryEmbedding) == 0 {
		return []domain.SearchResult{}, nil
	}

	limit := domain.ClampTopK(opts.Limit, domain.DefaultTopK)

	chunks, err := s.store.AllChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	start := time.Now()
	mode, embedding := s.effectiveMode(ctx, query, opts, chunks)
	logger.Debug("Effective search mode: %s, limit %d, candidates %d", mode.Description(), limit, len(chunks))

	var results []domain.SearchResult
	switch mode {
	case domain.SearchModeVector:
		results = vector.Rank(ctx, chunks, embedding, limit)
	default:
		var sink domain.DebugSink
		if opts.Debug {
			sink = s.sink
		}
		results = lexical.Rank(ctx, chunks, query, limit, sink)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.metrics.RecordSearch(mode.String(), time.Since(start), len(results))
	logger.Debug("Search returned %d results", len(results))

	if results == nil {
		results = []domain.SearchResult{}
	}
	return results, nil
}

// effectiveMode resolves the ranker. Vector mode needs a query embedding and
// at least one embedded chunk; otherwise lexical is used silently.
func (s *SearchService) effectiveMode(
	ctx context.Context, query string, opts domain.SearchOptions, chunks []domain.Chunk,
) (domain.SearchMode, []float32) {
	if opts.Mode != domain.SearchModeVector {
		return domain.SearchModeLexical, nil
	}

	if !anyEmbedded(chunks) {
		logger.Debug("No stored embeddings, falling back to lexical")
		return domain.SearchModeLexical, nil
	}

	embedding := opts.QueryEmbedding
	if len(embedding) == 0 && s.embedder != nil && strings.TrimSpace(query) != "" {
		var err error
		embedding, err = s.embedder.Embed(ctx, query)
		if err != nil {
			s.metrics.RecordOracleError("embedding")
			logger.Warn("Query embedding failed, falling back to lexical: %v", err)
			return domain.SearchModeLexical, nil
		}
	}
	if len(embedding) == 0 {
		logger.Debug("No query embedding, falling back to lexical")
		return domain.SearchModeLexical, nil
	}
	return domain.SearchModeVector, embedding
}

func anyEmbedded(chunks []domain.Chunk) bool {
	for _, c := range chunks {
		if c.HasEmbedding() {
			return true
		}
	}
	return false
}
