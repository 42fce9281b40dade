package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lodestone-hq/vaultsync/internal/adapters/driving/tui"
)

// runInteractiveSearch opens the bubbletea search screen. The initial
// query, when non-empty, is submitted as the first search.
func runInteractiveSearch(cmd *cobra.Command, initialQuery string) error {
	// Panic recovery so a UI bug surfaces with a stack trace instead of
	// a corrupted terminal.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in search screen: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(&tui.Ports{Search: searchService}, initialQuery)
	if err != nil {
		return fmt.Errorf("failed to create search screen: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("search screen error: %w", err)
	}

	return nil
}
