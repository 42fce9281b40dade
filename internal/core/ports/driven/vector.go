package driven

import (
	"context"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

// VectorIndex stores and searches embedded points. Each note contributes
// one point per chunk plus at most one summary point. Points for a path
// are always replaced wholesale, never mutated in place.
type VectorIndex interface {
	// UpsertChunks writes chunk points. Re-upserting a path/index pair
	// replaces the existing point.
	UpsertChunks(ctx context.Context, points []ChunkPoint) error

	// UpsertSummary writes the note-level summary point for a path.
	UpsertSummary(ctx context.Context, point SummaryPoint) error

	// DeleteNotePoints removes every point for the given path, chunk and
	// summary alike. Deleting a path with no points is not an error.
	DeleteNotePoints(ctx context.Context, path string) error

	// ListIndexed returns the index's view of the vault: one entry per
	// path with the document hash recorded at last index time.
	ListIndexed(ctx context.Context) (map[string]domain.IndexedNote, error)

	// Search finds the points nearest to the query vector.
	Search(ctx context.Context, query []float32, limit int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// ChunkPoint is one chunk's embedding plus the payload stored with it.
type ChunkPoint struct {
	// Chunk is the chunk being indexed.
	Chunk domain.Chunk

	// Embedding is the chunk content's vector.
	Embedding []float32

	// Path identifies the owning note.
	Path string

	// TotalChunks is the size of the note's chunk sequence.
	TotalChunks int

	// DocumentHash is the whole-note fingerprint at index time.
	DocumentHash string

	// Title is the note's display title.
	Title string

	// Tags are the note's tags.
	Tags []string
}

// SummaryPoint is the note-level embedding used for cross-note similarity.
type SummaryPoint struct {
	// Embedding is the summary text's vector.
	Embedding []float32

	// Path identifies the owning note.
	Path string

	// DocumentHash is the whole-note fingerprint at index time.
	DocumentHash string

	// Title is the note's display title.
	Title string

	// Tags are the note's tags.
	Tags []string

	// Summary is the summary text itself.
	Summary string
}

// Point kinds stored in the index payload.
const (
	// PointKindChunk marks a per-chunk point.
	PointKindChunk = "chunk"

	// PointKindSummary marks a note-level summary point.
	PointKindSummary = "summary"
)

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Path identifies the note the point belongs to.
	Path string

	// Kind is PointKindChunk or PointKindSummary.
	Kind string

	// ChunkIndex is the chunk's position, -1 for summary points.
	ChunkIndex int

	// Title is the note's display title.
	Title string

	// Heading is the chunk's section heading, if any.
	Heading string

	// Snippet is the stored preview text.
	Snippet string

	// Score is the similarity score, higher is better.
	Score float64
}
