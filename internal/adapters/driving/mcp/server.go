package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients during the initialize handshake.
const Version = "0.1.0"

// shutdownGrace bounds how long the HTTP server drains connections
// after the context is cancelled.
const shutdownGrace = 5 * time.Second

// Server exposes the vault to MCP clients. One instance serves either
// stdio (the transport desktop assistants spawn subprocesses with) or
// streamable HTTP.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer wires the vault ports into an MCP server and registers the
// vault tools and note resources.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "vaultsync",
			Title:   "Vaultsync Vault Search",
			Version: Version,
		}, nil),
	}
	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves MCP over stdin/stdout until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves MCP over streamable HTTP on addr. It blocks until the
// context is cancelled, then drains connections for up to shutdownGrace.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
