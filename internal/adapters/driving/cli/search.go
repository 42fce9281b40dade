package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

var (
	searchLimit       int
	searchJSON        bool
	searchSummaries   bool
	searchInteractive bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the indexed vault",
	Long: `Performs semantic search over the indexed vault.

The query is embedded and matched against chunk embeddings; pass
--summaries to include note-level summary points in the results.
With --interactive an interactive search screen opens instead.`,
	Args: cobra.RangeArgs(0, 1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchSummaries, "summaries", false, "include note summary matches")
	searchCmd.Flags().BoolVarP(&searchInteractive, "interactive", "i", false, "open the interactive search screen")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	if searchInteractive {
		initial := ""
		if len(args) > 0 {
			initial = args[0]
		}
		return runInteractiveSearch(cmd, initial)
	}

	if len(args) == 0 {
		return errors.New("a query is required unless --interactive is set")
	}
	query := args[0]

	ctx := context.Background()
	opts := domain.SearchOptions{
		Limit:            searchLimit,
		IncludeSummaries: searchSummaries,
	}

	results, err := searchService.Search(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		title := results[i].Title
		if title == "" {
			title = results[i].Path
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, results[i].Score)
		cmd.Printf("      %s", results[i].Path)
		if results[i].Heading != "" {
			cmd.Printf(" › %s", results[i].Heading)
		}
		cmd.Println()
		if results[i].Snippet != "" {
			cmd.Printf("      %s\n", results[i].Snippet)
		}
		cmd.Println()
	}

	return nil
}
