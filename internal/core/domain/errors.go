package domain

import "errors"

// Sentinel errors the services return for vault and index failures.
// Callers branch on these with errors.Is; adapters wrap their own
// infrastructure errors around them where the distinction matters.
var (
	// ErrNotFound indicates the requested note or point does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed input, such as an empty or
	// escaping note path.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown backend or provider type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrReconcileInProgress indicates a full reconciliation is already running.
	ErrReconcileInProgress = errors.New("reconciliation in progress")

	// ErrLockTimeout indicates a per-path lock could not be acquired in time.
	// The caller should retry; the holder may still be mid-reconciliation.
	ErrLockTimeout = errors.New("lock acquisition timed out")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Indexing and semantic search are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	// Reconciliation and search are disabled without an index.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrVaultUnavailable indicates the note store is not configured or
	// cannot be reached.
	ErrVaultUnavailable = errors.New("vault store unavailable")

	// ErrNotConfigured indicates a required setting has not been provided.
	ErrNotConfigured = errors.New("not configured")
)
