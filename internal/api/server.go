// Package api serves the risk form and its JSON counterpart over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/heart-failure-risk-portal/internal/bootstrap"
	"github.com/heart-failure-risk-portal/internal/domain"
	"github.com/heart-failure-risk-portal/internal/form"
	"github.com/heart-failure-risk-portal/internal/middleware"
	"github.com/heart-failure-risk-portal/internal/service"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	logger        *logrus.Logger
	collector     *form.Collector
	inference     *service.InferenceService
	app           *bootstrap.App
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance over a started application
func NewServer(app *bootstrap.App) (*Server, error) {
	cfg := app.Config.GetConfig()

	// Set Gin mode based on log level
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(app.Logger))

	server := &Server{
		configManager: app.Config,
		logger:        app.Logger,
		collector:     app.Collector,
		inference:     app.Inference,
		app:           app,
		router:        router,
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter, err = middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
	}

	// Setup routes
	server.setupRoutes(limiter)

	return server, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		var err error
		if cfg.TLSEnabled {
			err = s.server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.WithFields(logrus.Fields{
		"addr": addr,
		"tls":  cfg.TLSEnabled,
	}).Info("HTTP server listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the routes. Only the assessment endpoints are
// throttled.
func (s *Server) setupRoutes(limiter *middleware.RateLimiter) {
	throttle := func(c *gin.Context) { c.Next() }
	if limiter != nil {
		throttle = limiter.Middleware()
	}

	s.router.GET("/health", s.handleHealth)

	s.router.GET("/", s.handleIndex)
	s.router.POST("/assess", throttle, s.handleAssessForm)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/fields", s.handleFields)
		v1.POST("/assess", throttle, s.handleAssessJSON)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   Version,
		"artifacts": s.app.Artifacts.Describe(),
	})
}
