// Package qdrant implements the VectorIndex port against the Qdrant
// REST API. The collection is created on first write using the cosine
// distance and the dimension of the embeddings being stored. Point IDs
// are derived deterministically from note path and chunk index so
// re-indexing a note replaces its points instead of accumulating them.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
)

const (
	// DefaultURL is where a local Qdrant instance listens.
	DefaultURL = "http://localhost:6333"

	// defaultTimeout bounds individual HTTP calls.
	defaultTimeout = 15 * time.Second

	// scrollPageSize is how many points ListIndexed fetches per page.
	scrollPageSize = 256
)

// pointNamespace scopes the deterministic point UUIDs to this project.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("vaultsync"))

// Config carries connection settings for a Qdrant index.
type Config struct {
	// URL is the Qdrant base URL; DefaultURL when empty.
	URL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// Collection is the collection holding the vault's points.
	Collection string

	// Timeout bounds each HTTP request; a default applies when zero.
	Timeout time.Duration
}

// Index is a minimal REST client to Qdrant.
type Index struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client

	mu    sync.Mutex
	ready bool
}

// Ensure Index implements the VectorIndex port.
var _ driven.VectorIndex = (*Index)(nil)

// New creates a Qdrant-backed vector index.
func New(cfg Config) *Index {
	url := strings.TrimSuffix(cfg.URL, "/")
	if url == "" {
		url = DefaultURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Index{
		baseURL:    url,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// UpsertChunks writes chunk points, creating the collection on first use.
func (ix *Index) UpsertChunks(ctx context.Context, points []driven.ChunkPoint) error {
	if len(points) == 0 {
		return nil
	}
	if err := ix.ensureCollection(ctx, len(points[0].Embedding)); err != nil {
		return err
	}

	body := make([]map[string]any, len(points))
	for i, p := range points {
		body[i] = map[string]any{
			"id":     chunkPointID(p.Path, p.Chunk.ChunkIndex),
			"vector": p.Embedding,
			"payload": map[string]any{
				"kind":          driven.PointKindChunk,
				"path":          p.Path,
				"chunk_index":   p.Chunk.ChunkIndex,
				"total_chunks":  p.TotalChunks,
				"document_hash": p.DocumentHash,
				"title":         p.Title,
				"tags":          p.Tags,
				"heading":       p.Chunk.Heading,
				"preview":       p.Chunk.Preview,
			},
		}
	}

	err := ix.doJSON(ctx, http.MethodPut, ix.pointsURL("?wait=true"), map[string]any{"points": body}, nil)
	if err != nil {
		return fmt.Errorf("upsert chunk points: %w", err)
	}
	return nil
}

// UpsertSummary writes the note-level summary point for a path.
func (ix *Index) UpsertSummary(ctx context.Context, point driven.SummaryPoint) error {
	if err := ix.ensureCollection(ctx, len(point.Embedding)); err != nil {
		return err
	}

	body := map[string]any{
		"points": []map[string]any{{
			"id":     summaryPointID(point.Path),
			"vector": point.Embedding,
			"payload": map[string]any{
				"kind":          driven.PointKindSummary,
				"path":          point.Path,
				"chunk_index":   -1,
				"document_hash": point.DocumentHash,
				"title":         point.Title,
				"tags":          point.Tags,
				"preview":       point.Summary,
			},
		}},
	}

	if err := ix.doJSON(ctx, http.MethodPut, ix.pointsURL("?wait=true"), body, nil); err != nil {
		return fmt.Errorf("upsert summary point: %w", err)
	}
	return nil
}

// DeleteNotePoints removes every point whose payload path matches.
func (ix *Index) DeleteNotePoints(ctx context.Context, path string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "path", "match": map[string]any{"value": path}},
			},
		},
	}

	err := ix.doJSON(ctx, http.MethodPost, ix.pointsURL("/delete?wait=true"), body, nil)
	if err != nil {
		// A missing collection means there is nothing to delete.
		if exists, checkErr := ix.collectionExists(ctx); checkErr == nil && !exists {
			return nil
		}
		return fmt.Errorf("delete points for %q: %w", path, err)
	}
	return nil
}

// ListIndexed scrolls the whole collection and aggregates points into
// one IndexedNote per path.
func (ix *Index) ListIndexed(ctx context.Context) (map[string]domain.IndexedNote, error) {
	exists, err := ix.collectionExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check collection: %w", err)
	}
	indexed := make(map[string]domain.IndexedNote)
	if !exists {
		return indexed, nil
	}

	var offset any
	for {
		body := map[string]any{
			"limit":        scrollPageSize,
			"with_payload": true,
			"with_vector":  false,
		}
		if offset != nil {
			body["offset"] = offset
		}

		var resp struct {
			Result struct {
				Points []struct {
					Payload map[string]any `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := ix.doJSON(ctx, http.MethodPost, ix.pointsURL("/scroll"), body, &resp); err != nil {
			return nil, fmt.Errorf("scroll points: %w", err)
		}

		for _, point := range resp.Result.Points {
			path, _ := point.Payload["path"].(string)
			if path == "" {
				continue
			}
			entry := indexed[path]
			kind, _ := point.Payload["kind"].(string)
			if kind == driven.PointKindChunk {
				entry.ChunkCount++
				if hash, ok := point.Payload["document_hash"].(string); ok {
					entry.DocumentHash = hash
				}
			} else if entry.DocumentHash == "" {
				if hash, ok := point.Payload["document_hash"].(string); ok {
					entry.DocumentHash = hash
				}
			}
			indexed[path] = entry
		}

		if resp.Result.NextPageOffset == nil {
			break
		}
		offset = resp.Result.NextPageOffset
	}

	return indexed, nil
}

// Search finds the points nearest to the query vector.
func (ix *Index) Search(ctx context.Context, query []float32, limit int) ([]driven.VectorHit, error) {
	body := map[string]any{
		"vector":       query,
		"limit":        limit,
		"with_payload": true,
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := ix.doJSON(ctx, http.MethodPost, ix.pointsURL("/search"), body, &resp); err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hit := driven.VectorHit{Score: r.Score, ChunkIndex: -1}
		if v, ok := r.Payload["path"].(string); ok {
			hit.Path = v
		}
		if v, ok := r.Payload["kind"].(string); ok {
			hit.Kind = v
		}
		if v, ok := r.Payload["chunk_index"].(float64); ok {
			hit.ChunkIndex = int(v)
		}
		if v, ok := r.Payload["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := r.Payload["heading"].(string); ok {
			hit.Heading = v
		}
		if v, ok := r.Payload["preview"].(string); ok {
			hit.Snippet = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Close releases idle connections.
func (ix *Index) Close() error {
	ix.client.CloseIdleConnections()
	return nil
}

// ensureCollection creates the collection with cosine distance if it
// does not exist yet. The check result is cached for the index's life.
func (ix *Index) ensureCollection(ctx context.Context, dimension int) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.ready {
		return nil
	}

	exists, err := ix.collectionExists(ctx)
	if err != nil {
		return fmt.Errorf("check collection %q: %w", ix.collection, err)
	}
	if !exists {
		if dimension <= 0 {
			return fmt.Errorf("embedding dimension %d: %w", dimension, domain.ErrInvalidInput)
		}
		body := map[string]any{
			"vectors": map[string]any{
				"size":     dimension,
				"distance": "Cosine",
			},
		}
		url := fmt.Sprintf("%s/collections/%s", ix.baseURL, ix.collection)
		if err := ix.doJSON(ctx, http.MethodPut, url, body, nil); err != nil {
			return fmt.Errorf("create collection %q: %w", ix.collection, err)
		}
	}

	ix.ready = true
	return nil
}

func (ix *Index) collectionExists(ctx context.Context) (bool, error) {
	url := fmt.Sprintf("%s/collections/%s", ix.baseURL, ix.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	if ix.apiKey != "" {
		req.Header.Set("api-key", ix.apiKey)
	}

	resp, err := ix.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("qdrant GET %s: %s", url, responseError(resp))
	}
}

func (ix *Index) pointsURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s/points%s", ix.baseURL, ix.collection, suffix)
}

func (ix *Index) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ix.apiKey != "" {
		req.Header.Set("api-key", ix.apiKey)
	}

	resp, err := ix.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s: %s", method, url, responseError(resp))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// responseError extracts Qdrant's error message from a failed response,
// falling back to the HTTP status line.
func responseError(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var envelope struct {
		Status struct {
			Error string `json:"error"`
		} `json:"status"`
	}
	if json.Unmarshal(data, &envelope) == nil && envelope.Status.Error != "" {
		return envelope.Status.Error
	}
	return resp.Status
}

// chunkPointID derives a stable UUID for a path/chunk pair.
func chunkPointID(path string, chunkIndex int) string {
	return uuid.NewSHA1(pointNamespace, []byte(path+"#"+strconv.Itoa(chunkIndex))).String()
}

// summaryPointID derives a stable UUID for a note's summary point.
func summaryPointID(path string) string {
	return uuid.NewSHA1(pointNamespace, []byte(path+"#summary")).String()
}
