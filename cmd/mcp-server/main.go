package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/heart-failure-risk-portal/internal/bootstrap"
	"github.com/heart-failure-risk-portal/internal/mcp"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// stdout carries the protocol, so logs go to stderr whatever the config says
	app, err := bootstrap.New(ctx, bootstrap.Options{
		ConfigFile: os.Getenv("HF_RISK_CONFIG"),
		LogOutput:  os.Stderr,
	})
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}

	// Create MCP server
	mcpServer, err := mcp.NewServer(app)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		app.Logger.Info("Shutdown signal received, gracefully shutting down MCP server...")
		cancel()
	}()

	// Start MCP server
	if err := mcpServer.Start(ctx); err != nil {
		app.Logger.WithError(err).Fatal("MCP server failed")
	}
}
