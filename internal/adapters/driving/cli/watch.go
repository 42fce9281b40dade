package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchSkipInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the vault and index changes as they happen",
	Long: `Follows the vault for live changes and keeps the index current.

On startup the whole vault is reconciled once, then edits are picked up
from change notifications (debounced per note) and periodic full sweeps
run in the background. Stops on Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchSkipInitial, "skip-initial", false, "skip the full reconciliation on startup")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if watcherService == nil {
		return errors.New("vault watcher not configured")
	}
	if reconcilerService == nil {
		return errors.New("reconciler not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !watchSkipInitial {
		cmd.Println("Running initial reconciliation...")
		report, err := reconcileWithProgress(ctx, cmd)
		if err != nil {
			// The watcher still catches up on future edits; a failed
			// initial sweep is reported, not fatal.
			cmd.Printf("Initial reconciliation failed: %v\n", err)
		} else {
			printReport(cmd, report)
		}
	}

	if schedulerService != nil && schedulerConfig.Enabled {
		schedulerCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		go func() {
			if err := schedulerService.Start(schedulerCtx); err != nil && !errors.Is(err, context.Canceled) {
				cmd.PrintErrf("scheduler stopped: %v\n", err)
			}
		}()
		defer func() {
			if err := schedulerService.Stop(); err != nil {
				cmd.PrintErrf("scheduler stop error: %v\n", err)
			}
		}()
	}

	cmd.Println("Watching vault for changes. Press Ctrl-C to stop.")

	err := watcherService.Run(ctx)
	if errors.Is(err, context.Canceled) {
		cmd.Println("\nStopped.")
		return nil
	}
	return err
}
