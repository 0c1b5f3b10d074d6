// Package mcp exposes the risk assessment as a Model Context Protocol tool
// over stdio.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/heart-failure-risk-portal/internal/bootstrap"
	"github.com/heart-failure-risk-portal/internal/form"
	"github.com/heart-failure-risk-portal/internal/service"
)

// Server is the MCP surface of the portal
type Server struct {
	mcpServer *mcp.Server
	collector *form.Collector
	inference *service.InferenceService
	logger    *logrus.Logger
}

// NewServer creates a new MCP server over a started application
func NewServer(app *bootstrap.App) (*Server, error) {
	cfg := app.Config.GetConfig()

	// Create server info
	serverInfo := &mcp.Implementation{
		Name:    cfg.MCP.ServerName,
		Version: cfg.MCP.ServerVersion,
	}

	server := &Server{
		mcpServer: mcp.NewServer(serverInfo, nil),
		collector: app.Collector,
		inference: app.Inference,
		logger:    app.Logger,
	}

	if err := server.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return server, nil
}

// Start serves MCP requests on stdin/stdout until ctx is cancelled or the
// client disconnects. Nothing else may write to stdout meanwhile.
func (s *Server) Start(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// Run serves MCP requests on the given transport
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("Starting heart failure risk MCP server")

	if err := s.mcpServer.Run(ctx, transport); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	s.logger.Info("MCP server stopped")
	return nil
}
