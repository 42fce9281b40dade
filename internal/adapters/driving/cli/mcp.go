package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lodestone-hq/vaultsync/internal/adapters/driving/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Serve vault search and sync to AI assistants over the Model
Context Protocol.

Without flags the server speaks JSON-RPC on stdio, which is what Claude
Desktop and similar assistants expect when they spawn the process
themselves. Pass --http to listen on an address instead, for the MCP
Inspector or remote clients:

  vaultsync mcp --http :8080

Register with Claude Desktop (claude_desktop_config.json):

  {
    "mcpServers": {
      "vaultsync": {
        "command": "/path/to/vaultsync",
        "args": ["mcp"]
      }
    }
  }`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "HTTP listen address (empty = use stdio)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ports := &mcp.Ports{
		Search:     searchService,
		Reconciler: reconcilerService,
		Notes:      noteStore,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on %s\n", mcpHTTPAddr)
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}

	return server.Run(cmd.Context())
}
