package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driving"
	"github.com/lodestone-hq/vaultsync/internal/logger"
)

// DefaultSearchLimit caps result counts when the caller does not ask for
// a specific number.
const DefaultSearchLimit = 10

// Ensure SearchService implements the driving port.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService answers semantic queries against the vector index.
type SearchService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// NewSearchService creates a search service wired to the given ports.
func NewSearchService(embedder driven.EmbeddingService, index driven.VectorIndex) *SearchService {
	return &SearchService{
		embedder: embedder,
		index:    index,
	}
}

// Search embeds the query and returns the closest indexed chunks.
// Summary points are filtered out unless the options ask for them.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	logger.Debug("Searching: %q (limit %d)", query, limit)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Fetch extra hits so filtering summary points cannot starve the
	// requested limit.
	fetch := limit
	if !opts.IncludeSummaries {
		fetch = limit * 2
	}

	hits, err := s.index.Search(ctx, vector, fetch)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]domain.SearchResult, 0, limit)
	for _, hit := range hits {
		if hit.Kind == driven.PointKindSummary && !opts.IncludeSummaries {
			continue
		}
		results = append(results, domain.SearchResult{
			Path:       hit.Path,
			Title:      hit.Title,
			Snippet:    hit.Snippet,
			Heading:    hit.Heading,
			ChunkIndex: hit.ChunkIndex,
			Score:      hit.Score,
		})
		if len(results) == limit {
			break
		}
	}

	logger.Debug("Search returned %d results", len(results))
	return results, nil
}
