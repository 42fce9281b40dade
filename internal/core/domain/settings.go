package domain

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// IndexBackend identifies where vector points are stored.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendQdrant stores points in a Qdrant collection.
	IndexBackendQdrant IndexBackend = "qdrant"

	// IndexBackendSQLite stores points in a local SQLite database.
	IndexBackendSQLite IndexBackend = "sqlite"
)

// IsValid returns true if the index backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendQdrant, IndexBackendSQLite:
		return true
	default:
		return false
	}
}

// IsLocal returns true if this backend needs no network service.
func (b IndexBackend) IsLocal() bool {
	return b == IndexBackendSQLite
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendQdrant:
		return "Qdrant (vector database)"
	case IndexBackendSQLite:
		return "SQLite (local file)"
	default:
		return unknownDescription
	}
}

// StoreBackend identifies where the vault's notes live.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendFilesystem reads notes from a local directory.
	StoreBackendFilesystem StoreBackend = "filesystem"

	// StoreBackendDropbox reads notes from a Dropbox folder.
	StoreBackendDropbox StoreBackend = "dropbox"
)

// IsValid returns true if the store backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendFilesystem, StoreBackendDropbox:
		return true
	default:
		return false
	}
}

// RequiresAuth returns true if this backend needs credentials.
func (b StoreBackend) RequiresAuth() bool {
	return b == StoreBackendDropbox
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StoreBackend) Description() string {
	switch b {
	case StoreBackendFilesystem:
		return "Filesystem (local directory)"
	case StoreBackendDropbox:
		return "Dropbox (cloud folder)"
	default:
		return unknownDescription
	}
}

// VaultSettings holds note store configuration.
type VaultSettings struct {
	// Backend is the note store backend.
	Backend StoreBackend

	// Root is the vault root: a directory for filesystem, a folder
	// path for Dropbox.
	Root string

	// DropboxAppKey is the OAuth app key (Dropbox only).
	DropboxAppKey string

	// DropboxAppSecret is the OAuth app secret (Dropbox only).
	DropboxAppSecret string

	// DropboxRefreshToken is the long-lived refresh token (Dropbox only).
	DropboxRefreshToken string
}

// IsConfigured returns true if the vault store is set up.
func (v VaultSettings) IsConfigured() bool {
	if !v.Backend.IsValid() || v.Root == "" {
		return false
	}
	if v.Backend.RequiresAuth() && v.DropboxRefreshToken == "" {
		return false
	}
	return true
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings holds vector index configuration.
type IndexSettings struct {
	// Backend is the vector index backend.
	Backend IndexBackend

	// URL is the Qdrant endpoint (Qdrant only).
	URL string

	// APIKey is the Qdrant API key, if the server requires one.
	APIKey string

	// Collection is the Qdrant collection name.
	Collection string

	// Path is the data directory holding the database (SQLite only).
	Path string
}

// IsConfigured returns true if the vector index is set up.
func (i IndexSettings) IsConfigured() bool {
	switch i.Backend {
	case IndexBackendQdrant:
		return i.URL != "" && i.Collection != ""
	case IndexBackendSQLite:
		return i.Path != ""
	default:
		return false
	}
}

// ChunkingSettings holds chunker budget configuration.
type ChunkingSettings struct {
	// MaxTokens is the per-chunk token budget.
	MaxTokens int

	// OverlapTokens is the approximate overlap carried between chunks.
	OverlapTokens int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Vault holds note store settings.
	Vault VaultSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Index holds vector index settings.
	Index IndexSettings

	// Chunking holds chunker budget settings.
	Chunking ChunkingSettings
}

// DefaultEmbeddingModels returns the default model for each embedding
// provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// The vault root and embedding provider are left unconfigured; users
// must set them via the settings wizard before the first sync.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Vault: VaultSettings{
			Backend: StoreBackendFilesystem,
		},
		Embedding: EmbeddingSettings{},
		Index: IndexSettings{
			Backend:    IndexBackendSQLite,
			Collection: "vaultsync",
		},
		Chunking: ChunkingSettings{
			MaxTokens:     400,
			OverlapTokens: 50,
		},
	}
}
