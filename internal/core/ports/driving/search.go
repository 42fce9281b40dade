package driving

import (
	"context"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

// SearchService provides semantic search over the indexed vault.
type SearchService interface {
	// Search embeds the query and returns the nearest indexed points.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
