package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driving"
	"github.com/lodestone-hq/vaultsync/internal/logger"
)

// defaultLockTimeout bounds how long a reconcile operation waits for the
// per-note lock before giving up.
const defaultLockTimeout = 10 * time.Second

// Ensure Reconciler implements the driving port.
var _ driving.Reconciler = (*Reconciler)(nil)

// Reconciler keeps the vector index consistent with the note store. It
// detects changes by comparing content hashes and replaces the index
// points of every note that was created, modified or removed.
type Reconciler struct {
	store      driven.NoteStore
	chunker    driven.Chunker
	normaliser driven.Normaliser
	embedder   driven.EmbeddingService
	index      driven.VectorIndex
	locks      driven.LockManager

	lockTimeout time.Duration

	// Sweep status tracking
	mu    sync.RWMutex
	sweep *driving.ReconcileStatus
}

// NewReconciler creates a reconciler wired to the given driven ports.
func NewReconciler(
	store driven.NoteStore,
	chunker driven.Chunker,
	normaliser driven.Normaliser,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	locks driven.LockManager,
) *Reconciler {
	return &Reconciler{
		store:       store,
		chunker:     chunker,
		normaliser:  normaliser,
		embedder:    embedder,
		index:       index,
		locks:       locks,
		lockTimeout: defaultLockTimeout,
	}
}

// ReconcileAll sweeps the entire vault and brings the index in line with
// it. Notes whose content hash matches the indexed hash are skipped;
// everything else is re-indexed, and index entries for vanished notes are
// removed. Only one sweep may run at a time.
func (r *Reconciler) ReconcileAll(ctx context.Context) (*domain.ReconcileReport, error) {
	if !r.beginSweep() {
		return nil, domain.ErrReconcileInProgress
	}
	defer r.endSweep()

	if err := r.ready(); err != nil {
		return nil, err
	}

	// 1. Load both sides of the comparison.
	notes, err := r.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	indexed, err := r.index.ListIndexed(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexed notes: %w", err)
	}

	r.setTotal(len(notes))
	logger.Info("Starting reconciliation: %d notes in vault, %d indexed", len(notes), len(indexed))

	report := &domain.ReconcileReport{}
	seen := make(map[string]struct{}, len(notes))

	// 2. Create or update index entries for every changed note. A
	// failure on one note is recorded and the sweep moves on.
	for _, note := range notes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seen[note.Path] = struct{}{}

		hash := domain.HashContent(note.Content)
		prior, exists := indexed[note.Path]
		if exists && prior.DocumentHash == hash {
			logger.Debug("Unchanged, skipping: %s", note.Path)
			r.bumpProcessed()
			continue
		}

		written, err := r.reindexLocked(ctx, note.Path, note.Content, hash)
		if err != nil {
			logger.Warn("Failed to reconcile %s: %v", note.Path, err)
			report.Failures = append(report.Failures, domain.ReconcileFailure{
				Path:  note.Path,
				Error: err.Error(),
			})
			r.bumpErrors()
			r.bumpProcessed()
			continue
		}

		switch {
		case exists:
			report.Updated++
		case written > 0:
			report.Created++
		}
		report.TotalChunks += written
		r.bumpProcessed()
	}

	// 3. Remove index entries whose note no longer exists.
	for path := range indexed {
		if _, ok := seen[path]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.deleteLocked(ctx, path); err != nil {
			logger.Warn("Failed to remove index entry for %s: %v", path, err)
			report.Failures = append(report.Failures, domain.ReconcileFailure{
				Path:  path,
				Error: err.Error(),
			})
			r.bumpErrors()
			continue
		}
		report.Deleted++
	}

	logger.Info("Reconciliation complete: %d created, %d updated, %d deleted, %d chunks, %d failures",
		report.Created, report.Updated, report.Deleted, report.TotalChunks, len(report.Failures))

	return report, nil
}

// ReconcileNote re-indexes a single note. When content is empty the note
// is fetched from the store first; a note that has vanished or holds no
// content is a silent no-op. Explicit removals go through DeleteNote.
func (r *Reconciler) ReconcileNote(ctx context.Context, path, content string) error {
	if err := r.ready(); err != nil {
		return err
	}

	if content == "" {
		note, err := r.store.Get(ctx, path)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("Note vanished before reconcile: %s", path)
			return nil
		}
		if err != nil {
			return fmt.Errorf("get note %q: %w", path, err)
		}
		content = note.Content
	}
	if strings.TrimSpace(content) == "" {
		return nil
	}

	_, err := r.reindexLocked(ctx, path, content, domain.HashContent(content))
	return err
}

// DeleteNote removes every index point for the given path.
func (r *Reconciler) DeleteNote(ctx context.Context, path string) error {
	if r.index == nil {
		return domain.ErrVectorIndexUnavailable
	}
	return r.deleteLocked(ctx, path)
}

// Status returns a snapshot of the currently running sweep, or the zero
// status when no sweep is active.
func (r *Reconciler) Status() driving.ReconcileStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.sweep == nil {
		return driving.ReconcileStatus{}
	}
	return *r.sweep
}

// reindexLocked runs reindex while holding the per-note lock, so that
// concurrent updates to the same path are serialised.
func (r *Reconciler) reindexLocked(ctx context.Context, path, content, hash string) (int, error) {
	lease, err := r.locks.Acquire(ctx, path, r.lockTimeout)
	if err != nil {
		return 0, fmt.Errorf("acquire lock for %q: %w", path, err)
	}
	defer lease.Release()

	return r.reindex(ctx, path, content, hash)
}

// reindex replaces every index point for a note. Embeddings are computed
// before the old points are removed: an embedding failure leaves the
// previous index state untouched, and an upsert failure leaves the path
// absent from the index rather than mixing old and new points. Returns
// the number of chunks written.
func (r *Reconciler) reindex(ctx context.Context, path, content, hash string) (int, error) {
	// 1. Chunk the note.
	chunks, err := r.chunker.Chunk(content)
	if err != nil {
		return 0, fmt.Errorf("chunk note: %w", err)
	}

	// 2. Extract metadata shared by every point.
	meta := r.normaliser.Meta(path, content)

	// 3. Embed all chunk texts in one batched call.
	var vectors [][]float32
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Content
		}
		vectors, err = r.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(chunks) {
			return 0, fmt.Errorf("embed chunks: got %d embeddings for %d chunks", len(vectors), len(chunks))
		}
	}

	// 4. Embed the summary, if the note carries one.
	var summaryVec []float32
	if meta.Summary != "" {
		summaryVec, err = r.embedder.Embed(ctx, meta.Summary)
		if err != nil {
			return 0, fmt.Errorf("embed summary: %w", err)
		}
	}

	// 5. Drop the old points. Idempotent when none exist.
	if err := r.index.DeleteNotePoints(ctx, path); err != nil {
		return 0, fmt.Errorf("delete stale points: %w", err)
	}

	// 6. Write the new points.
	if len(chunks) > 0 {
		points := make([]driven.ChunkPoint, len(chunks))
		for i, chunk := range chunks {
			points[i] = driven.ChunkPoint{
				Chunk:        chunk,
				Embedding:    vectors[i],
				Path:         path,
				TotalChunks:  len(chunks),
				DocumentHash: hash,
				Title:        meta.Title,
				Tags:         meta.Tags,
			}
		}
		if err := r.index.UpsertChunks(ctx, points); err != nil {
			return 0, fmt.Errorf("upsert chunks: %w", err)
		}
	}

	if summaryVec != nil {
		point := driven.SummaryPoint{
			Embedding:    summaryVec,
			Path:         path,
			DocumentHash: hash,
			Title:        meta.Title,
			Tags:         meta.Tags,
			Summary:      meta.Summary,
		}
		if err := r.index.UpsertSummary(ctx, point); err != nil {
			return 0, fmt.Errorf("upsert summary: %w", err)
		}
	}

	logger.Debug("Reindexed %s: %d chunks", path, len(chunks))
	return len(chunks), nil
}

// deleteLocked removes the index points for a path while holding its lock.
func (r *Reconciler) deleteLocked(ctx context.Context, path string) error {
	lease, err := r.locks.Acquire(ctx, path, r.lockTimeout)
	if err != nil {
		return fmt.Errorf("acquire lock for %q: %w", path, err)
	}
	defer lease.Release()

	if err := r.index.DeleteNotePoints(ctx, path); err != nil {
		return fmt.Errorf("delete points for %q: %w", path, err)
	}

	logger.Debug("Removed index points: %s", path)
	return nil
}

// ready reports whether the ports needed for indexing are present.
func (r *Reconciler) ready() error {
	if r.store == nil {
		return domain.ErrVaultUnavailable
	}
	if r.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}
	if r.index == nil {
		return domain.ErrVectorIndexUnavailable
	}
	return nil
}

// beginSweep marks a sweep as running. It returns false when another
// sweep is already active.
func (r *Reconciler) beginSweep() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sweep != nil {
		return false
	}
	r.sweep = &driving.ReconcileStatus{Running: true}
	return true
}

// endSweep clears the running sweep status.
func (r *Reconciler) endSweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep = nil
}

func (r *Reconciler) setTotal(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sweep != nil {
		r.sweep.NotesTotal = n
	}
}

func (r *Reconciler) bumpProcessed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sweep != nil {
		r.sweep.NotesProcessed++
	}
}

func (r *Reconciler) bumpErrors() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sweep != nil {
		r.sweep.ErrorCount++
	}
}
