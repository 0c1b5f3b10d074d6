package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/heart-failure-risk-portal/internal/api"
	"github.com/heart-failure-risk-portal/internal/bootstrap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration and artifacts; nothing is served if either fails
	app, err := bootstrap.New(ctx, bootstrap.Options{ConfigFile: os.Getenv("HF_RISK_CONFIG")})
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}

	cfg := app.Config.GetServerConfig()
	app.Logger.Infof("Starting heart failure risk portal on %s:%d", cfg.Host, cfg.Port)

	// Create server
	server, err := api.NewServer(app)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		app.Logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		app.Logger.WithError(err).Fatal("Server failed")
	}

	app.Logger.Info("Server stopped")
}
