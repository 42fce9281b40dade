package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
)

// statusPingTimeout bounds the embedding connectivity probe.
const statusPingTimeout = 5 * time.Second

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vault and index status",
	Long: `Reports the configured backends, the reachability of the embedding
service, and what the vector index currently holds.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return err
	}

	ctx := context.Background()

	cmd.Println("Vaultsync Status")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Vault]")
	cmd.Printf("  Backend: %s\n", settings.Vault.Backend.Description())
	if settings.Vault.Root != "" {
		cmd.Printf("  Root: %s\n", settings.Vault.Root)
	}
	if noteStore != nil {
		notes, listErr := noteStore.ListAll(ctx)
		if listErr != nil {
			cmd.Printf("  Notes: unavailable (%v)\n", listErr)
		} else {
			cmd.Printf("  Notes: %d\n", len(notes))
		}
	} else {
		cmd.Println("  Notes: vault not configured")
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	if settings.Embedding.Model != "" {
		cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	}
	if embeddingService != nil {
		pingCtx, cancel := context.WithTimeout(ctx, statusPingTimeout)
		if pingErr := embeddingService.Ping(pingCtx); pingErr != nil {
			cmd.Printf("  Reachable: no (%v)\n", pingErr)
		} else {
			cmd.Println("  Reachable: yes")
		}
		cancel()
	} else {
		cmd.Println("  Reachable: not configured")
	}
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Backend: %s\n", settings.Index.Backend.Description())
	if vectorIndex != nil {
		indexed, listErr := vectorIndex.ListIndexed(ctx)
		if listErr != nil {
			cmd.Printf("  Indexed notes: unavailable (%v)\n", listErr)
		} else {
			chunks := 0
			for _, entry := range indexed {
				chunks += entry.ChunkCount
			}
			cmd.Printf("  Indexed notes: %d (%d chunks)\n", len(indexed), chunks)
		}
	} else {
		cmd.Println("  Indexed notes: index not configured")
	}
	cmd.Println()

	if reconcilerService != nil {
		if status := reconcilerService.Status(); status.Running {
			cmd.Printf("Reconciliation in progress: %d/%d notes (%d errors)\n\n",
				status.NotesProcessed, status.NotesTotal, status.ErrorCount)
		}
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}
