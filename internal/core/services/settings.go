package services

import (
	"fmt"
	"time"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyVaultBackend        = "vault.backend"
	keyVaultRoot           = "vault.root"
	keyDropboxAppKey       = "vault.dropbox_app_key"
	keyDropboxAppSecret    = "vault.dropbox_app_secret"
	keyDropboxRefreshToken = "vault.dropbox_refresh_token"
	keyEmbedProvider       = "embedding.provider"
	keyEmbedModel          = "embedding.model"
	keyEmbedBaseURL        = "embedding.base_url"
	keyEmbedAPIKey         = "embedding.api_key"
	keyIndexBackend        = "index.backend"
	keyIndexURL            = "index.url"
	keyIndexAPIKey         = "index.api_key"
	keyIndexCollection     = "index.collection"
	keyIndexPath           = "index.path"
	keyChunkMaxTokens      = "chunking.max_tokens"
	keyChunkOverlapTokens  = "chunking.overlap_tokens"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EmbeddingValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, validator driven.EmbeddingValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Vault: domain.VaultSettings{
			Backend:             s.getStoreBackend(defaults.Vault.Backend),
			Root:                s.configStore.GetString(keyVaultRoot),
			DropboxAppKey:       s.configStore.GetString(keyDropboxAppKey),
			DropboxAppSecret:    s.configStore.GetString(keyDropboxAppSecret),
			DropboxRefreshToken: s.configStore.GetString(keyDropboxRefreshToken),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Index: domain.IndexSettings{
			Backend:    s.getIndexBackend(defaults.Index.Backend),
			URL:        s.configStore.GetString(keyIndexURL),
			APIKey:     s.configStore.GetString(keyIndexAPIKey),
			Collection: s.getString(keyIndexCollection, defaults.Index.Collection),
			Path:       s.configStore.GetString(keyIndexPath),
		},
		Chunking: domain.ChunkingSettings{
			MaxTokens:     s.getInt(keyChunkMaxTokens, defaults.Chunking.MaxTokens),
			OverlapTokens: s.getInt(keyChunkOverlapTokens, defaults.Chunking.OverlapTokens),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save vault settings
	if err := s.configStore.Set(keyVaultBackend, settings.Vault.Backend.String()); err != nil {
		return fmt.Errorf("save vault backend: %w", err)
	}
	if err := s.configStore.Set(keyVaultRoot, settings.Vault.Root); err != nil {
		return fmt.Errorf("save vault root: %w", err)
	}
	if settings.Vault.DropboxAppKey != "" {
		if err := s.configStore.Set(keyDropboxAppKey, settings.Vault.DropboxAppKey); err != nil {
			return fmt.Errorf("save dropbox app key: %w", err)
		}
	}
	if settings.Vault.DropboxAppSecret != "" {
		if err := s.configStore.Set(keyDropboxAppSecret, settings.Vault.DropboxAppSecret); err != nil {
			return fmt.Errorf("save dropbox app secret: %w", err)
		}
	}
	if settings.Vault.DropboxRefreshToken != "" {
		if err := s.configStore.Set(keyDropboxRefreshToken, settings.Vault.DropboxRefreshToken); err != nil {
			return fmt.Errorf("save dropbox refresh token: %w", err)
		}
	}

	// Save embedding settings
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	// Save index settings
	if err := s.configStore.Set(keyIndexBackend, settings.Index.Backend.String()); err != nil {
		return fmt.Errorf("save index backend: %w", err)
	}
	if err := s.configStore.Set(keyIndexURL, settings.Index.URL); err != nil {
		return fmt.Errorf("save index url: %w", err)
	}
	if settings.Index.APIKey != "" {
		if err := s.configStore.Set(keyIndexAPIKey, settings.Index.APIKey); err != nil {
			return fmt.Errorf("save index api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyIndexCollection, settings.Index.Collection); err != nil {
		return fmt.Errorf("save index collection: %w", err)
	}
	if err := s.configStore.Set(keyIndexPath, settings.Index.Path); err != nil {
		return fmt.Errorf("save index path: %w", err)
	}

	// Save chunking settings
	if err := s.configStore.Set(keyChunkMaxTokens, settings.Chunking.MaxTokens); err != nil {
		return fmt.Errorf("save chunking max_tokens: %w", err)
	}
	if err := s.configStore.Set(keyChunkOverlapTokens, settings.Chunking.OverlapTokens); err != nil {
		return fmt.Errorf("save chunking overlap_tokens: %w", err)
	}

	return nil
}

// SetVault configures the note store backend and root.
func (s *SettingsService) SetVault(backend domain.StoreBackend, root string) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid vault backend: %s", backend)
	}
	if root == "" {
		return fmt.Errorf("vault root must not be empty")
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Vault.Backend = backend
	settings.Vault.Root = root

	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		defaults := domain.DefaultEmbeddingModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.Embedding.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.Embedding.BaseURL = ""
	}

	// Set API key
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetIndexBackend configures the vector index backend.
func (s *SettingsService) SetIndexBackend(backend domain.IndexBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid index backend: %s", backend)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Index.Backend = backend

	return s.Save(settings)
}

// SetChunking updates the chunker token budgets.
func (s *SettingsService) SetChunking(maxTokens, overlapTokens int) error {
	if maxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", maxTokens)
	}
	if overlapTokens < 0 {
		return fmt.Errorf("overlap tokens must not be negative, got %d", overlapTokens)
	}
	if overlapTokens >= maxTokens {
		return fmt.Errorf("overlap tokens (%d) must be smaller than max tokens (%d)", overlapTokens, maxTokens)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Chunking.MaxTokens = maxTokens
	settings.Chunking.OverlapTokens = overlapTokens

	return s.Save(settings)
}

// Validate checks if current settings are complete enough to sync.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Vault.IsConfigured() {
		return fmt.Errorf("%w: vault is not configured, run 'vaultsync settings vault'", domain.ErrNotConfigured)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider is not configured, run 'vaultsync settings embedding'", domain.ErrNotConfigured)
	}
	if !settings.Index.IsConfigured() {
		return fmt.Errorf("%w: vector index is not configured, run 'vaultsync settings index'", domain.ErrNotConfigured)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateEmbedding(&settings.Embedding)
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	// Master switch
	if _, exists := s.configStore.Get("scheduler.enabled"); exists {
		defaults.Enabled = s.configStore.GetBool("scheduler.enabled")
	}

	// Per-task config
	// Map from task ID to config key (underscore version for TOML)
	taskKeys := map[string]string{
		domain.TaskIDVaultReconcile: "vault_reconcile",
	}

	for taskID, configKey := range taskKeys {
		prefix := "scheduler." + configKey + "."

		taskCfg := defaults.TaskConfigs[taskID]

		// Check enabled
		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			taskCfg.Enabled = s.configStore.GetBool(prefix + "enabled")
		}

		// Check interval (duration string like "45m", "1h")
		if interval := s.configStore.GetString(prefix + "interval"); interval != "" {
			if d, err := time.ParseDuration(interval); err == nil {
				taskCfg.Interval = d
			}
		}

		defaults.TaskConfigs[taskID] = taskCfg
	}

	return defaults
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getStoreBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	val := s.configStore.GetString(keyVaultBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.StoreBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getIndexBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	val := s.configStore.GetString(keyIndexBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.IndexBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
