package sqlite

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
)

// vectorIndex implements driven.VectorIndex over the points table.
// Similarity search loads candidate embeddings and ranks them in Go,
// which holds up fine at vault scale.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// upsertPointSQL is shared by chunk and summary writes. Row IDs encode
// path and chunk index, so re-upserting replaces rows in place.
const upsertPointSQL = `
	INSERT INTO points (id, path, kind, chunk_index, total_chunks, document_hash, title, tags, heading, preview, embedding)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		path = excluded.path,
		kind = excluded.kind,
		chunk_index = excluded.chunk_index,
		total_chunks = excluded.total_chunks,
		document_hash = excluded.document_hash,
		title = excluded.title,
		tags = excluded.tags,
		heading = excluded.heading,
		preview = excluded.preview,
		embedding = excluded.embedding,
		updated_at = CURRENT_TIMESTAMP
`

// UpsertChunks writes chunk points inside a single transaction.
func (v *vectorIndex) UpsertChunks(ctx context.Context, points []driven.ChunkPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, upsertPointSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		tagsJSON, err := json.Marshal(p.Tags)
		if err != nil {
			return fmt.Errorf("marshalling tags: %w", err)
		}

		if _, err := stmt.ExecContext(ctx,
			chunkPointID(p.Path, p.Chunk.ChunkIndex), p.Path, driven.PointKindChunk,
			p.Chunk.ChunkIndex, p.TotalChunks, p.DocumentHash, p.Title,
			string(tagsJSON), p.Chunk.Heading, p.Chunk.Preview,
			float32SliceToBytes(p.Embedding)); err != nil {
			return fmt.Errorf("saving chunk point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// UpsertSummary writes the note-level summary point for a path.
// Summary points carry the summary text in the preview column and a
// chunk index of -1.
func (v *vectorIndex) UpsertSummary(ctx context.Context, point driven.SummaryPoint) error {
	tagsJSON, err := json.Marshal(point.Tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	_, err = v.store.db.ExecContext(ctx, upsertPointSQL,
		summaryPointID(point.Path), point.Path, driven.PointKindSummary,
		-1, 0, point.DocumentHash, point.Title,
		string(tagsJSON), "", point.Summary,
		float32SliceToBytes(point.Embedding))
	if err != nil {
		return fmt.Errorf("saving summary point: %w", err)
	}
	return nil
}

// DeleteNotePoints removes every point for the given path, chunk and
// summary alike. Deleting a path with no points is not an error.
func (v *vectorIndex) DeleteNotePoints(ctx context.Context, path string) error {
	_, err := v.store.db.ExecContext(ctx, "DELETE FROM points WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("deleting points for %q: %w", path, err)
	}
	return nil
}

// ListIndexed aggregates stored points into one IndexedNote per path.
// Only chunk points count towards ChunkCount; the summary point can
// still contribute the document hash when no chunks exist.
func (v *vectorIndex) ListIndexed(ctx context.Context) (map[string]domain.IndexedNote, error) {
	rows, err := v.store.db.QueryContext(ctx, "SELECT path, kind, document_hash FROM points")
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}
	defer rows.Close()

	indexed := make(map[string]domain.IndexedNote)
	for rows.Next() {
		var path, kind, hash string
		if err := rows.Scan(&path, &kind, &hash); err != nil {
			return nil, fmt.Errorf("scanning point: %w", err)
		}

		entry := indexed[path]
		if kind == driven.PointKindChunk {
			entry.ChunkCount++
			entry.DocumentHash = hash
		} else if entry.DocumentHash == "" {
			entry.DocumentHash = hash
		}
		indexed[path] = entry
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating points: %w", err)
	}

	return indexed, nil
}

// Search ranks every stored point against the query vector by cosine
// similarity and returns the top hits.
func (v *vectorIndex) Search(ctx context.Context, query []float32, limit int) ([]driven.VectorHit, error) {
	rows, err := v.store.db.QueryContext(ctx, `
		SELECT path, kind, chunk_index, title, heading, preview, embedding
		FROM points
	`)
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var hit driven.VectorHit
		var embeddingBlob []byte
		if err := rows.Scan(&hit.Path, &hit.Kind, &hit.ChunkIndex, &hit.Title,
			&hit.Heading, &hit.Snippet, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning point: %w", err)
		}

		hit.Score = cosineSimilarity(query, bytesToFloat32Slice(embeddingBlob))
		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating points: %w", err)
	}

	// Sort by similarity (descending)
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Close closes the underlying store.
func (v *vectorIndex) Close() error {
	return v.store.Close()
}

// chunkPointID returns the stable row ID for a chunk point.
func chunkPointID(path string, chunkIndex int) string {
	return path + "#" + strconv.Itoa(chunkIndex)
}

// summaryPointID returns the stable row ID for a note's summary point.
func summaryPointID(path string) string {
	return path + "#summary"
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// cosineSimilarity computes the cosine similarity between two vectors.
// Mismatched lengths or zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
