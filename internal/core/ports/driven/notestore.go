package driven

import (
	"context"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

// NoteStore reads notes from the vault. It is the source of truth the
// vector index is reconciled against; this core never writes to it.
type NoteStore interface {
	// ListAll returns every note in the vault with full content.
	ListAll(ctx context.Context) ([]domain.Note, error)

	// Get retrieves a single note by path.
	// Returns domain.ErrNotFound if the note does not exist.
	Get(ctx context.Context, path string) (*domain.Note, error)

	// Watch emits change notifications until ctx is cancelled.
	// The channel is closed when watching stops. Events carry only the
	// path; consumers fetch current content at processing time.
	Watch(ctx context.Context) (<-chan domain.NoteEvent, error)

	// Close releases resources.
	Close() error
}
