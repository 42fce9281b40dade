// Package ai builds embedding provider adapters from stored settings.
// It sits between the settings service and the concrete provider
// packages so neither has to import the other.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/lodestone-hq/vaultsync/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/lodestone-hq/vaultsync/internal/adapters/driven/embedding/openai"
	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
)

// pingTimeout bounds the connectivity probe during validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService builds the provider adapter the settings name.
// Absent or incomplete settings yield a nil service with no error;
// callers treat nil as "embedding not set up" and report it instead of
// failing at startup.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return buildOllama(settings), nil
	case domain.AIProviderOpenAI:
		return buildOpenAI(settings)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// ValidateEmbeddingConfig builds a throwaway service from the settings
// and pings it. The settings wizard runs this before persisting
// credentials so typos surface immediately rather than on first sync.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// buildOllama assembles the local Ollama adapter. Models missing from
// the dimensions table fall back to the Ollama default size.
func buildOllama(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dims := domain.EmbeddingDimensions()[settings.Model]
	if dims == 0 {
		dims = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dims,
	})
}

// buildOpenAI assembles the OpenAI adapter. Models missing from the
// dimensions table pass zero through; the adapter resolves the size
// from its own model table.
func buildOpenAI(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}
