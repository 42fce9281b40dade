package driven

import "github.com/lodestone-hq/vaultsync/internal/core/domain"

// EmbeddingValidator validates embedding provider configurations.
// Implementations verify that a configuration works by testing
// connectivity to the underlying service.
type EmbeddingValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging
	// the provider. Returns nil if the configuration is valid or not
	// yet configured.
	ValidateEmbedding(config *domain.EmbeddingSettings) error
}
