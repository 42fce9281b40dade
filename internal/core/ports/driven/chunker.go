package driven

import (
	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

// Chunker splits note content into bounded, overlapping chunks.
// Chunking is deterministic: the same content always produces the same
// chunk sequence, content and hashes included. No I/O, no shared state.
type Chunker interface {
	// Chunk splits content into ordered chunks. Empty or whitespace-only
	// content (after any metadata header is stripped) yields an empty
	// slice, not an error.
	Chunk(content string) ([]domain.Chunk, error)
}
