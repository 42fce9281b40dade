package driving

import "github.com/lodestone-hq/vaultsync/internal/core/domain"

// SettingsService reads and mutates the persisted configuration. The
// typed setters validate their arguments before writing anything.
type SettingsService interface {
	// Get returns the effective settings, defaults filled in for
	// anything the config file leaves unset.
	Get() (*domain.AppSettings, error)

	// Save writes the full settings back to the store.
	Save(settings *domain.AppSettings) error

	// SetVault configures the note store backend and root.
	SetVault(backend domain.StoreBackend, root string) error

	// SetEmbeddingProvider picks the embedding provider and model. The
	// API key may be empty for local providers.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetIndexBackend configures the vector index backend.
	SetIndexBackend(backend domain.IndexBackend) error

	// SetChunking updates the chunker token budgets.
	SetChunking(maxTokens, overlapTokens int) error

	// Validate checks if current settings are complete enough to sync.
	Validate() error

	// GetDefaults returns the out-of-the-box settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding
	// configuration by pinging the provider.
	ValidateEmbeddingConfig() error
}
