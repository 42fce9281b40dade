package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync [path]",
	Short: "Reconcile the vault with the vector index",
	Long: `Brings the vector index in line with the vault.

Without arguments the whole vault is swept: new and changed notes are
re-indexed, vanished notes are removed from the index, and unchanged
notes (matching content hash) are skipped. With a path argument only
that note is re-indexed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if reconcilerService == nil {
		return errors.New("reconciler not configured")
	}

	ctx := context.Background()

	if len(args) > 0 {
		path := args[0]
		cmd.Printf("Reconciling note: %s...\n", path)

		if err := reconcilerService.ReconcileNote(ctx, path, ""); err != nil {
			return fmt.Errorf("reconcile failed: %w", err)
		}

		cmd.Printf("Note %s reconciled.\n", path)
		return nil
	}

	cmd.Println("Reconciling vault...")

	report, err := reconcileWithProgress(ctx, cmd)
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}

// reconcileWithProgress runs a full sweep while printing progress from
// the reconciler's status snapshots.
func reconcileWithProgress(ctx context.Context, cmd *cobra.Command) (*domain.ReconcileReport, error) {
	type outcome struct {
		report *domain.ReconcileReport
		err    error
	}

	resultCh := make(chan outcome, 1)
	go func() {
		report, err := reconcilerService.ReconcileAll(ctx)
		resultCh <- outcome{report: report, err: err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastProcessed := 0
	for {
		select {
		case result := <-resultCh:
			if lastProcessed > 0 {
				cmd.Println()
			}
			return result.report, result.err
		case <-ticker.C:
			status := reconcilerService.Status()
			if status.Running && status.NotesProcessed > lastProcessed {
				cmd.Printf("\rProcessing... %d/%d notes", status.NotesProcessed, status.NotesTotal)
				lastProcessed = status.NotesProcessed
			}
		}
	}
}

// printReport renders a sweep report.
func printReport(cmd *cobra.Command, report *domain.ReconcileReport) {
	cmd.Printf("Reconciled: %d created, %d updated, %d deleted (%d chunks indexed)\n",
		report.Created, report.Updated, report.Deleted, report.TotalChunks)

	if len(report.Failures) == 0 {
		return
	}

	cmd.Printf("%d notes failed and will be retried on the next pass:\n", len(report.Failures))
	for _, failure := range report.Failures {
		cmd.Printf("  %s: %s\n", failure.Path, failure.Error)
	}
}
