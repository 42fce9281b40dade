package domain

import "time"

// Note represents a single document in the vault.
// The path is the note's identity; content is the full raw text
// including any frontmatter header.
type Note struct {
	// Path uniquely identifies the note within the vault.
	// It is stable across content changes.
	Path string

	// Content is the full raw text of the note.
	Content string

	// ModifiedAt is when the note was last modified in the store.
	ModifiedAt time.Time
}

// Chunk represents a bounded span of note content produced by the chunker.
// Chunks are the unit of embedding and retrieval.
type Chunk struct {
	// Content is the chunk's exact text, trimmed.
	Content string

	// Preview is a word-boundary truncation of Content (~200 chars)
	// suitable for display in search results.
	Preview string

	// ChunkIndex is the zero-based position within the note's chunk
	// sequence. Ordering is stable but indices are not unique across notes.
	ChunkIndex int

	// Heading is the nearest enclosing section heading active when the
	// chunk was produced. Empty when no heading precedes the chunk.
	Heading string

	// ContentHash is the fingerprint of Content, used for chunk identity
	// within a single indexing pass.
	ContentHash string
}

// NoteMeta holds structured fields derived from a note's metadata header
// and body. It is a pure derivation; nothing here is persisted separately.
type NoteMeta struct {
	// Title resolution order: frontmatter title, first top-level heading,
	// filename derived from the path.
	Title string

	// Tags is the union of frontmatter tags and inline #tag tokens,
	// deduplicated, frontmatter order first.
	Tags []string

	// Summary is the frontmatter summary field, trimmed. Empty when absent.
	Summary string
}

// IndexedNote is the index-resident projection of a note: what the vector
// index knows about a path since the last successful reconciliation.
type IndexedNote struct {
	// DocumentHash is the fingerprint of the whole note content at last
	// index time. Comparing against a fresh hash decides whether the note
	// needs re-indexing.
	DocumentHash string

	// ChunkCount is the number of chunk points stored for the note.
	ChunkCount int
}
