// Package cli provides the cobra command tree for vaultsync.
//
// Commands talk to the core through package-level driving ports, wired
// once by Execute from the persisted settings. A port left nil (because
// its backend is not configured yet) makes the commands that need it
// fail with a pointer to the settings wizard instead of crashing.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lodestone-hq/vaultsync/internal/adapters/driven/ai"
	configfile "github.com/lodestone-hq/vaultsync/internal/adapters/driven/config/file"
	"github.com/lodestone-hq/vaultsync/internal/adapters/driven/locks"
	dropboxstore "github.com/lodestone-hq/vaultsync/internal/adapters/driven/notestore/dropbox"
	"github.com/lodestone-hq/vaultsync/internal/adapters/driven/notestore/filesystem"
	"github.com/lodestone-hq/vaultsync/internal/adapters/driven/storage/sqlite"
	"github.com/lodestone-hq/vaultsync/internal/adapters/driven/vectorindex/qdrant"
	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driving"
	"github.com/lodestone-hq/vaultsync/internal/core/services"
	"github.com/lodestone-hq/vaultsync/internal/logger"
	"github.com/lodestone-hq/vaultsync/internal/normalisers/markdown"
	"github.com/lodestone-hq/vaultsync/internal/postprocessors/chunker"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services wired by Execute. Commands read these; tests substitute mocks.
var (
	settingsService   driving.SettingsService
	searchService     driving.SearchService
	reconcilerService driving.Reconciler
	schedulerService  driving.Scheduler
	watcherService    driving.Watcher

	// Driven ports some commands reach directly: status reports on the
	// index, the MCP server serves note content.
	noteStore        driven.NoteStore
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService

	schedulerConfig domain.SchedulerConfig

	// closers holds everything Execute opened, released after the
	// command tree finishes.
	closers []io.Closer
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "vaultsync",
	Short: "Keep a note vault and its vector search index in sync",
	Long: `Vaultsync indexes a vault of markdown notes into a vector database
and keeps the index consistent as notes change.

Notes are chunked, embedded and upserted per document; content hashes
decide what changed, so unchanged notes are never re-embedded. Run
'vaultsync sync' for a one-off pass, 'vaultsync watch' to follow live
edits, and 'vaultsync search' to query the index.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Execute wires the services from persisted settings and runs the
// command tree. Wiring problems are warnings, not fatal: the settings
// commands must stay usable on a half-configured install.
func Execute() {
	if err := initServices(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	defer closeServices()

	if err := rootCmd.Execute(); err != nil {
		closeServices()
		os.Exit(1)
	}
}

// initServices builds the adapter graph the settings describe. Backends
// that are not configured yet leave their port nil.
func initServices() error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}

	settingsSvc := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settingsService = settingsSvc

	settings, err := settingsSvc.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if noteStore, err = buildNoteStore(&settings.Vault); err != nil {
		return err
	}
	if noteStore != nil {
		closers = append(closers, noteStore)
	}

	// Construction is cheap and offline; connectivity is checked where
	// it matters (status command, settings wizard validation).
	embeddingService, err = ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return err
	}
	if embeddingService != nil {
		closers = append(closers, embeddingService)
	}

	schedulerStore, err := buildIndex(&settings.Index)
	if err != nil {
		return err
	}

	chunk := chunker.New(
		chunker.WithMaxTokens(settings.Chunking.MaxTokens),
		chunker.WithOverlapTokens(settings.Chunking.OverlapTokens),
	)

	reconcilerService = services.NewReconciler(
		noteStore, chunk, markdown.New(), embeddingService, vectorIndex, locks.NewManager(),
	)
	searchService = services.NewSearchService(embeddingService, vectorIndex)

	if noteStore != nil {
		watcherService = services.NewDispatcher(noteStore, reconcilerService)
	}

	schedulerConfig = settingsSvc.GetSchedulerConfig()
	if schedulerStore != nil {
		schedulerService = services.NewScheduler(schedulerConfig, schedulerStore, reconcilerService)
	}

	return nil
}

// buildNoteStore constructs the configured vault backend, or nil when
// the vault has not been set up yet.
func buildNoteStore(cfg *domain.VaultSettings) (driven.NoteStore, error) {
	if !cfg.IsConfigured() {
		return nil, nil
	}

	switch cfg.Backend {
	case domain.StoreBackendFilesystem:
		return filesystem.New(cfg.Root), nil
	case domain.StoreBackendDropbox:
		store, err := dropboxstore.New(context.Background(), dropboxstore.Config{
			AppKey:       cfg.DropboxAppKey,
			AppSecret:    cfg.DropboxAppSecret,
			RefreshToken: cfg.DropboxRefreshToken,
			Folder:       cfg.Root,
		})
		if err != nil {
			return nil, fmt.Errorf("open dropbox vault: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: vault backend %q", domain.ErrUnsupportedType, cfg.Backend)
	}
}

// buildIndex constructs the configured vector index and, alongside it,
// the SQLite-backed scheduler store. The scheduler state lives in the
// local database even when the points live in Qdrant.
func buildIndex(cfg *domain.IndexSettings) (driven.SchedulerStore, error) {
	store, err := sqlite.NewStore(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}
	closers = append(closers, store)

	switch cfg.Backend {
	case domain.IndexBackendQdrant:
		if !cfg.IsConfigured() {
			return store.SchedulerStore(), nil
		}
		index := qdrant.New(qdrant.Config{
			URL:        cfg.URL,
			APIKey:     cfg.APIKey,
			Collection: cfg.Collection,
		})
		vectorIndex = index
		closers = append(closers, index)
	case domain.IndexBackendSQLite:
		vectorIndex = store.VectorIndex()
	default:
		return nil, fmt.Errorf("%w: index backend %q", domain.ErrUnsupportedType, cfg.Backend)
	}

	return store.SchedulerStore(), nil
}

// closeServices releases everything initServices opened. Safe to call
// more than once.
func closeServices() {
	for _, c := range closers {
		_ = c.Close()
	}
	closers = nil
}
