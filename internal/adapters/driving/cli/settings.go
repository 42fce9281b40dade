package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lodestone-hq/vaultsync/internal/adapters/driving/oauth"
	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the vault location, embedding provider, vector
index backend and chunking budgets.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsVaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Configure the note vault",
	Long:  `Configure where the vault's notes live: a local directory or a Dropbox folder.`,
	RunE:  runSettingsVault,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to index and search notes.`,
	RunE:  runSettingsEmbedding,
}

var settingsIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Configure the vector index",
	Long:  `Configure where embedded points are stored: Qdrant or a local SQLite database.`,
	RunE:  runSettingsIndex,
}

var settingsChunkingCmd = &cobra.Command{
	Use:   "chunking",
	Short: "Configure chunking budgets",
	Long: `Configure the per-chunk token budget and the overlap carried between
adjacent chunks. Notes are re-indexed with the new budgets on their
next content change, or run 'vaultsync sync' to re-chunk everything.`,
	RunE: runSettingsChunking,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsVaultCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsIndexCmd)
	settingsCmd.AddCommand(settingsChunkingCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Vault]")
	cmd.Printf("  Backend: %s\n", settings.Vault.Backend.Description())
	if settings.Vault.Root != "" {
		cmd.Printf("  Root: %s\n", settings.Vault.Root)
	} else {
		cmd.Printf("  Root: (not set)\n")
	}
	if settings.Vault.Backend.RequiresAuth() {
		if settings.Vault.DropboxRefreshToken != "" {
			cmd.Printf("  Dropbox: linked\n")
		} else {
			cmd.Printf("  Dropbox: not linked\n")
		}
	}
	cmd.Printf("  Status: %s\n", configuredLabel(settings.Vault.IsConfigured()))
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Printf("  Status: %s\n", configuredLabel(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Backend: %s\n", settings.Index.Backend.Description())
	switch settings.Index.Backend {
	case domain.IndexBackendQdrant:
		cmd.Printf("  URL: %s\n", settings.Index.URL)
		cmd.Printf("  Collection: %s\n", settings.Index.Collection)
		if settings.Index.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Index.APIKey))
		}
	case domain.IndexBackendSQLite:
		if settings.Index.Path != "" {
			cmd.Printf("  Data directory: %s\n", settings.Index.Path)
		} else {
			cmd.Printf("  Data directory: (default)\n")
		}
	}
	cmd.Printf("  Status: %s\n", configuredLabel(settings.Index.IsConfigured()))
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Max tokens: %d\n", settings.Chunking.MaxTokens)
	cmd.Printf("  Overlap tokens: %d\n", settings.Chunking.OverlapTokens)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'vaultsync settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Vaultsync Settings Wizard")
	cmd.Println("=========================")
	cmd.Println()

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Step 1: Configure the Vault")
	cmd.Println("---------------------------")
	if err := configureVault(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Configure the Embedding Provider")
	cmd.Println("----------------------------------------")
	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 3: Configure the Vector Index")
	cmd.Println("----------------------------------")
	if err := configureIndexBackend(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
		cmd.Println("Run 'vaultsync sync' to build the index.")
	}

	return nil
}

func runSettingsVault(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureVault(cmd, reader)
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsIndex(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureIndexBackend(cmd, reader)
}

func runSettingsChunking(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Printf("Max tokens per chunk [%d]: ", settings.Chunking.MaxTokens)
	maxTokens := parseNumber(readLine(reader), settings.Chunking.MaxTokens)

	cmd.Printf("Overlap tokens [%d]: ", settings.Chunking.OverlapTokens)
	overlapTokens := parseNumber(readLine(reader), settings.Chunking.OverlapTokens)

	if err := settingsService.SetChunking(maxTokens, overlapTokens); err != nil {
		return fmt.Errorf("failed to set chunking budgets: %w", err)
	}

	cmd.Printf("Chunking configured: %d tokens per chunk, %d overlap\n", maxTokens, overlapTokens)
	return nil
}

func configureVault(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Vault Backend")
	backends := []domain.StoreBackend{domain.StoreBackendFilesystem, domain.StoreBackendDropbox}
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(backends), 1)
	backend := backends[idx-1]

	prompt := "Vault directory"
	if backend == domain.StoreBackendDropbox {
		prompt = "Dropbox folder (e.g. /Notes)"
	}
	cmd.Printf("%s: ", prompt)
	root := readLine(reader)
	if root == "" {
		return errors.New("vault root is required")
	}

	if err := settingsService.SetVault(backend, root); err != nil {
		return fmt.Errorf("failed to configure vault: %w", err)
	}

	if backend == domain.StoreBackendDropbox {
		if err := configureDropboxCredentials(cmd, reader); err != nil {
			return err
		}
	}

	cmd.Printf("Vault configured: %s at %s\n\n", backend.Description(), root)
	return nil
}

// configureDropboxCredentials collects the app key pair and the
// refresh token obtained from Dropbox's app console.
func configureDropboxCredentials(cmd *cobra.Command, reader *bufio.Reader) error {
	settings, err := settingsService.Get()
	if err != nil {
		return err
	}

	cmd.Print("Dropbox app key: ")
	appKey := readLine(reader)
	cmd.Print("Dropbox app secret: ")
	appSecret := readPassword()
	cmd.Println()

	if appKey == "" || appSecret == "" {
		return errors.New("dropbox app key and secret are required")
	}

	cmd.Println("How should vaultsync obtain the refresh token?")
	cmd.Println("  1. Authorise in the browser (recommended)")
	cmd.Println("  2. Paste an existing refresh token")
	cmd.Print("\nEnter choice [1]: ")

	var refreshToken string
	switch parseChoice(readLine(reader), 2, 1) {
	case 1:
		cmd.Printf("The Dropbox app must have http://localhost:%d/callback registered as a redirect URI.\n\n", oauth.DefaultPort)
		refreshToken, err = oauth.DropboxRefreshToken(cmd.Context(), appKey, appSecret, cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("dropbox authorisation failed: %w", err)
		}
		cmd.Println("Authorisation successful.")
	case 2:
		cmd.Print("Dropbox refresh token: ")
		refreshToken = readPassword()
		cmd.Println()
		if refreshToken == "" {
			return errors.New("a refresh token is required")
		}
	}

	settings.Vault.DropboxAppKey = appKey
	settings.Vault.DropboxAppSecret = appSecret
	settings.Vault.DropboxRefreshToken = refreshToken

	return settingsService.Save(settings)
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := []domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI}
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func configureIndexBackend(cmd *cobra.Command, reader *bufio.Reader) error {
	settings, err := settingsService.Get()
	if err != nil {
		return err
	}

	cmd.Println("Select Vector Index Backend")
	backends := []domain.IndexBackend{domain.IndexBackendSQLite, domain.IndexBackendQdrant}
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(backends), 1)
	backend := backends[idx-1]

	settings.Index.Backend = backend

	switch backend {
	case domain.IndexBackendSQLite:
		cmd.Print("Data directory [~/.vaultsync/data]: ")
		path := readLine(reader)
		if path == "" {
			path = defaultDataDir()
		}
		settings.Index.Path = path

	case domain.IndexBackendQdrant:
		cmd.Print("Qdrant URL [http://localhost:6333]: ")
		url := readLine(reader)
		if url == "" {
			url = "http://localhost:6333"
		}
		settings.Index.URL = url

		cmd.Printf("Collection name [%s]: ", settings.Index.Collection)
		if collection := readLine(reader); collection != "" {
			settings.Index.Collection = collection
		}

		cmd.Print("API key (empty if none): ")
		apiKey := readPassword()
		cmd.Println()
		settings.Index.APIKey = apiKey
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to configure index: %w", err)
	}

	cmd.Printf("Vector index configured: %s\n\n", backend.Description())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func parseNumber(input string, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func configuredLabel(configured bool) string {
	if configured {
		return "configured"
	}
	return "not configured"
}

// defaultDataDir is where the local database lives when the user does
// not pick a directory.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vaultsync/data"
	}
	return home + "/.vaultsync/data"
}
