package ai

import (
	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
)

// ConfigValidator adapts this package's validation functions to the
// driven.EmbeddingValidator port, so the settings service can probe a
// provider without importing the construction machinery.
type ConfigValidator struct{}

var _ driven.EmbeddingValidator = ConfigValidator{}

// NewConfigValidator returns the validator the settings service wires in.
func NewConfigValidator() ConfigValidator {
	return ConfigValidator{}
}

// ValidateEmbedding probes the provider the config names. Nil or
// incomplete configs validate trivially; there is nothing to probe.
func (ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(config)
}
