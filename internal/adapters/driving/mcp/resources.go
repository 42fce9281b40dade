package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for vaultsync resources.
	uriScheme = "vaultsync://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource listing every note in the vault.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "notes",
		Name:        "notes",
		Description: "List of all notes in the vault",
		MIMEType:    "application/json",
	}, s.handleNotesResource)

	// Template for note content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "notes/{+path}",
		Name:        "note-content",
		Description: "Raw content of a specific note",
		MIMEType:    "text/markdown",
	}, s.handleNoteContentResource)
}

// handleNotesResource returns the paths of every note in the vault.
func (s *Server) handleNotesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Notes == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	notes, err := s.ports.Notes.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}

	type noteInfo struct {
		Path       string `json:"path"`
		ModifiedAt string `json:"modified_at,omitempty"`
	}

	infos := make([]noteInfo, len(notes))
	for i := range notes {
		info := noteInfo{Path: notes[i].Path}
		if !notes[i].ModifiedAt.IsZero() {
			info.ModifiedAt = notes[i].ModifiedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
		infos[i] = info
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling notes: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleNoteContentResource returns the raw content of a specific note.
func (s *Server) handleNoteContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Notes == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract the path from a URI like vaultsync://notes/Projects/Coffee.md
	path := extractNotePath(req.Params.URI)
	if path == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	note, err := s.ports.Notes.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("getting note content: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     note.Content,
		}},
	}, nil
}

// extractNotePath extracts the note path from a URI like
// vaultsync://notes/{path}. Paths may contain slashes.
func extractNotePath(uri string) string {
	const prefix = uriScheme + "notes/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
