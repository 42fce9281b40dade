package domain

// ReconcileReport summarises a full reconciliation sweep.
type ReconcileReport struct {
	// Created counts notes indexed for the first time.
	Created int

	// Updated counts notes re-indexed because their hash changed.
	Updated int

	// Deleted counts index entries removed for vanished notes.
	Deleted int

	// TotalChunks counts chunk points upserted during the sweep.
	TotalChunks int

	// Failures lists notes that could not be processed. A failed note
	// does not abort the sweep; it stays stale until a later pass.
	Failures []ReconcileFailure
}

// ReconcileFailure records one note the sweep could not process.
type ReconcileFailure struct {
	// Path identifies the failing note.
	Path string

	// Error is the failure message.
	Error string
}

// Changed returns true if the sweep mutated the index at all.
func (r *ReconcileReport) Changed() bool {
	return r.Created > 0 || r.Updated > 0 || r.Deleted > 0
}

// Failed returns the number of notes that could not be processed.
func (r *ReconcileReport) Failed() int {
	return len(r.Failures)
}
