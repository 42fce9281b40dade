package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

// SearchInput is the input schema for the vault_search tool.
type SearchInput struct {
	Query            string `json:"query" jsonschema:"the search query to find notes"`
	Limit            int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	IncludeSummaries bool   `json:"include_summaries,omitempty" jsonschema:"include note-level summary matches alongside chunk matches"`
}

// SearchOutput is the output schema for the vault_search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	Path       string  `json:"path"`
	Title      string  `json:"title"`
	Heading    string  `json:"heading,omitempty"`
	Snippet    string  `json:"snippet,omitempty"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// ReconcileInput is the input schema for the vault_reconcile tool.
type ReconcileInput struct {
	Path string `json:"path,omitempty" jsonschema:"note path to reconcile; empty reconciles the whole vault"`
}

// ReconcileOutput is the output schema for the vault_reconcile tool.
type ReconcileOutput struct {
	Created     int      `json:"created"`
	Updated     int      `json:"updated"`
	Deleted     int      `json:"deleted"`
	TotalChunks int      `json:"total_chunks"`
	Failures    []string `json:"failures,omitempty"`
	Message     string   `json:"message,omitempty"`
}

// StatusInput is the input schema for the vault_status tool.
type StatusInput struct{}

// StatusOutput is the output schema for the vault_status tool.
type StatusOutput struct {
	Running        bool `json:"running"`
	NotesProcessed int  `json:"notes_processed"`
	NotesTotal     int  `json:"notes_total"`
	ErrorCount     int  `json:"error_count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "vault_search",
		Description: "Semantic search across all indexed vault notes",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "vault_reconcile",
		Description: "Reconcile the vector index with the vault, fully or for one note",
	}, s.handleReconcile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "vault_status",
		Description: "Report whether a reconciliation sweep is in progress",
	}, s.handleStatus)
}

// handleSearch handles the vault_search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	opts := domain.SearchOptions{
		Limit:            limit,
		IncludeSummaries: input.IncludeSummaries,
	}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			Path:       results[i].Path,
			Title:      results[i].Title,
			Heading:    results[i].Heading,
			Snippet:    results[i].Snippet,
			ChunkIndex: results[i].ChunkIndex,
			Score:      results[i].Score,
		}
	}

	return nil, output, nil
}

// handleReconcile handles the vault_reconcile tool invocation.
func (s *Server) handleReconcile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReconcileInput,
) (*mcp.CallToolResult, ReconcileOutput, error) {
	if s.ports.Reconciler == nil {
		return nil, ReconcileOutput{}, ErrReconcilerUnavailable
	}

	if input.Path != "" {
		if err := s.ports.Reconciler.ReconcileNote(ctx, input.Path, ""); err != nil {
			return nil, ReconcileOutput{}, err
		}
		return nil, ReconcileOutput{
			Message: fmt.Sprintf("note %s reconciled", input.Path),
		}, nil
	}

	report, err := s.ports.Reconciler.ReconcileAll(ctx)
	if err != nil {
		return nil, ReconcileOutput{}, err
	}

	output := ReconcileOutput{
		Created:     report.Created,
		Updated:     report.Updated,
		Deleted:     report.Deleted,
		TotalChunks: report.TotalChunks,
	}
	for _, failure := range report.Failures {
		output.Failures = append(output.Failures, fmt.Sprintf("%s: %s", failure.Path, failure.Error))
	}

	return nil, output, nil
}

// handleStatus handles the vault_status tool invocation.
func (s *Server) handleStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	if s.ports.Reconciler == nil {
		return nil, StatusOutput{}, ErrReconcilerUnavailable
	}

	status := s.ports.Reconciler.Status()
	return nil, StatusOutput{
		Running:        status.Running,
		NotesProcessed: status.NotesProcessed,
		NotesTotal:     status.NotesTotal,
		ErrorCount:     status.ErrorCount,
	}, nil
}
