package mcp

import (
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driving"
)

// Ports aggregates the core ports the MCP server exposes to assistants.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides semantic search over the index.
	Search driving.SearchService

	// Reconciler triggers index reconciliation and reports sweep status.
	Reconciler driving.Reconciler

	// Notes reads raw note content from the vault.
	Notes driven.NoteStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Reconciler and Notes are optional; their tools and resources
	// report unavailability instead.
	return nil
}
