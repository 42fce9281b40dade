package driving

import (
	"context"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

// Reconciler keeps the vector index consistent with the vault.
type Reconciler interface {
	// ReconcileAll sweeps the whole vault: new and changed notes are
	// re-indexed, vanished notes are removed from the index, unchanged
	// notes are skipped. Per-note failures are collected in the report
	// rather than aborting the sweep.
	ReconcileAll(ctx context.Context) (*domain.ReconcileReport, error)

	// ReconcileNote re-indexes a single note under its per-path lock.
	// content may be empty, in which case it is fetched from the store;
	// a note missing from the store makes the call a no-op.
	ReconcileNote(ctx context.Context, path, content string) error

	// DeleteNote removes every index point for a path.
	DeleteNote(ctx context.Context, path string) error

	// Status reports the state of any in-flight full reconciliation.
	Status() ReconcileStatus
}

// ReconcileStatus represents the current state of a full reconciliation.
type ReconcileStatus struct {
	// Running indicates if a sweep is currently in progress.
	Running bool

	// NotesProcessed is the count of notes handled so far.
	NotesProcessed int

	// NotesTotal is the number of notes the sweep will visit.
	NotesTotal int

	// ErrorCount is the number of per-note failures so far.
	ErrorCount int
}
