package tui

import (
	"errors"

	"github.com/lodestone-hq/vaultsync/internal/core/ports/driving"
)

// ErrNoSearchService is returned when the search service is not provided.
var ErrNoSearchService = errors.New("tui: search service is required")

// Ports aggregates the core ports the search screen needs.
type Ports struct {
	// Search provides semantic search over the index.
	Search driving.SearchService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrNoSearchService
	}
	return nil
}
