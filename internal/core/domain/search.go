package domain

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// IncludeSummaries includes note-level summary points in the results
	// alongside chunk hits.
	IncludeSummaries bool
}

// SearchResult represents a single search hit.
type SearchResult struct {
	// Path identifies the note the hit came from.
	Path string

	// Title is the note's display title.
	Title string

	// Snippet is the matched chunk's preview text.
	Snippet string

	// Heading is the chunk's enclosing section heading, if any.
	Heading string

	// ChunkIndex is the matched chunk's position within the note.
	// It is -1 for summary-point hits.
	ChunkIndex int

	// Score is the similarity score, higher is better.
	Score float64
}
