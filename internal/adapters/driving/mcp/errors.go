// Package mcp provides an MCP (Model Context Protocol) server adapter for
// vaultsync. It lets AI assistants like Claude search the indexed vault,
// trigger reconciliation and read note content.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrReconcilerUnavailable is returned when a tool needs the reconciler
// and none was wired.
var ErrReconcilerUnavailable = errors.New("mcp: reconciler is not configured")
