package driven

import "context"

// EmbeddingService turns note text into vectors. It only generates;
// storing and searching vectors is the VectorIndex's job.
//
// Shipped implementations are Ollama (nomic-embed-text and friends,
// local) and OpenAI (text-embedding-3-small/-large).
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds several texts, preserving input order. Chunked
	// notes go through here so providers with batch endpoints can use
	// them.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector size the model produces. The index
	// collection is created with this size and the two must agree.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping cheaply checks the provider is reachable. It runs at startup
	// so a dead provider fails fast instead of mid-sweep.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
