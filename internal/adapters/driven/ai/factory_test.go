package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantNil  bool
		wantErr  bool
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.EmbeddingSettings{},
			wantNil:  true,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
		},
		{
			// An unknown provider fails IsConfigured, so the factory
			// treats it as absent rather than an error.
			name: "unknown provider returns nil",
			settings: &domain.EmbeddingSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
			wantNil: true,
		},
		{
			name: "openai without api key returns nil",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				Model:    "text-embedding-3-small",
			},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if svc != nil {
				defer svc.Close()
			}

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, svc)
			} else {
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestValidateEmbeddingConfig_AbsentConfigurations(t *testing.T) {
	assert.NoError(t, ValidateEmbeddingConfig(nil))
	assert.NoError(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{}))
	assert.NoError(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{
		Provider: "unknown",
		APIKey:   "test-key",
	}))
}

func TestValidateEmbeddingConfig_UnreachableOllama(t *testing.T) {
	settings := &domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://localhost:1", // Nothing listens here; ping fails fast.
		Model:    "nomic-embed-text",
	}

	assert.Error(t, ValidateEmbeddingConfig(settings))
}

func TestBuildOllama_KnownModelDimensions(t *testing.T) {
	settings := &domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "mxbai-embed-large",
	}

	svc := buildOllama(settings)
	require.NotNil(t, svc)
	defer svc.Close()

	assert.Equal(t, domain.EmbeddingDimensions()["mxbai-embed-large"], svc.Dimensions())
}

func TestBuildOllama_UnknownModelFallsBack(t *testing.T) {
	settings := &domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "custom-model-unknown",
	}

	svc := buildOllama(settings)
	require.NotNil(t, svc)
	defer svc.Close()

	assert.NotZero(t, svc.Dimensions(), "unknown models fall back to the default dimensions")
}

func TestBuildOpenAI_Success(t *testing.T) {
	settings := &domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI,
		APIKey:   "test-key",
		BaseURL:  "https://api.openai.com/v1",
		Model:    "text-embedding-3-small",
	}

	svc, err := buildOpenAI(settings)

	require.NoError(t, err)
	require.NotNil(t, svc)
	defer svc.Close()

	assert.Equal(t, "text-embedding-3-small", svc.ModelName())
}
