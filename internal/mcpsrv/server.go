// Package mcpsrv exposes the bridge to MCP clients over stdio. It
// registers the single ask_human tool and owns the session lifecycle.
package mcpsrv

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "humanloop"
	serverVersion = "0.1.0"
)

// Asker is the slice of the correlation engine the tool layer needs.
type Asker interface {
	Ask(ctx context.Context, question, threadTS string) (response, outThreadTS string, err error)
}

type ServerOptions struct {
	Engine Asker
	Logger *slog.Logger
}

type Server struct {
	mcpServer *mcp.Server
	engine    Asker
	logger    *slog.Logger
}

func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("correlation engine is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine: opts.Engine,
		logger: logger,
	}
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)
	mcp.AddTool(srv, &mcp.Tool{
		Name: "ask_human",
		Description: "Ask a human for information that only they would know, such as " +
			"personal preferences, project-specific context, local environment details, " +
			"or non-public information. Pass thread_ts from a previous answer to continue " +
			"the same conversation.",
	}, s.handleAskHuman)
	s.mcpServer = srv
	return s, nil
}

// Run serves MCP over stdio and blocks until the client disconnects or
// ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	session, err := s.mcpServer.Connect(ctx, &mcp.StdioTransport{}, nil)
	if err != nil {
		return fmt.Errorf("connect stdio transport: %w", err)
	}
	s.logger.Info("mcp_server_started", "transport", "stdio")

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	select {
	case <-ctx.Done():
		_ = session.Close()
		<-done
		s.logger.Info("mcp_server_stopped", "reason", "context_canceled")
		return nil
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mcp session: %w", err)
		}
		s.logger.Info("mcp_server_stopped", "reason", "session_closed")
		return nil
	}
}
