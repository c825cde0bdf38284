// Package mcp serves the refactoring engine over the Model Context
// Protocol. Every tool receives the full buffer text, so the server keeps
// no state between calls.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/cortex-refactor/internal/config"
	"github.com/mvp-joe/cortex-refactor/internal/engine"
)

// ServerName and ServerVersion identify the server to MCP clients.
const (
	ServerName    = "cortex-refactor"
	ServerVersion = "1.0.0"
)

// Server manages the MCP server lifecycle.
type Server struct {
	tools  *toolSet
	logger *slog.Logger
	mcp    *server.MCPServer
}

// NewServer registers every refactoring tool against eng. matcher picks a
// dialect from a tool's path argument when no dialect is given.
func NewServer(eng *engine.Engine, matcher *config.DialectMatcher, logger *slog.Logger) (*Server, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if matcher == nil {
		m, err := config.Default().NewDialectMatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to build dialect matcher: %w", err)
		}
		matcher = m
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
	)

	tools := &toolSet{engine: eng, matcher: matcher, logger: logger}
	tools.register(mcpServer)

	return &Server{tools: tools, logger: logger, mcp: mcpServer}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio", "name", ServerName, "version", ServerVersion)
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		s.logger.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
