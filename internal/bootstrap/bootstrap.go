// Package bootstrap performs the startup sequence shared by every entry
// point: configuration, logging, artifact loading and service wiring.
// Artifacts are loaded here, before any surface starts serving, so a
// missing or incompatible artifact stops the process instead of failing
// the first request.
package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/heart-failure-risk-portal/internal/artifacts"
	"github.com/heart-failure-risk-portal/internal/config"
	"github.com/heart-failure-risk-portal/internal/domain"
	"github.com/heart-failure-risk-portal/internal/form"
	"github.com/heart-failure-risk-portal/internal/logging"
	"github.com/heart-failure-risk-portal/internal/service"
)

// App holds everything a surface needs to serve interactions
type App struct {
	Config    domain.ConfigManager
	Logger    *logrus.Logger
	Artifacts *artifacts.Bundle
	Collector *form.Collector
	Inference *service.InferenceService
}

// Options tweak the startup sequence
type Options struct {
	// ConfigFile is an explicit configuration file; empty searches the defaults.
	ConfigFile string
	// LogOutput overrides the configured log destination.
	LogOutput io.Writer
}

// New loads configuration from disk and environment, then calls Start
func New(ctx context.Context, opts Options) (*App, error) {
	manager, err := config.NewManager(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	return Start(ctx, manager, opts)
}

// Start validates configuration and loads the artifacts
func Start(ctx context.Context, manager domain.ConfigManager, opts Options) (*App, error) {
	if err := manager.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	logger, err := logging.New(*manager.GetLoggingConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if opts.LogOutput != nil {
		logger.SetOutput(opts.LogOutput)
	}

	specs, err := manager.FieldSpecs()
	if err != nil {
		return nil, err
	}
	collector, err := form.NewCollector(specs)
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	artifactsCfg := manager.GetArtifactsConfig()
	bundle, err := artifacts.Load(ctx, *artifactsCfg)
	if err != nil {
		logger.WithError(err).WithField("source", artifactsCfg.Source).Error("Failed to load model artifacts")
		return nil, err
	}

	inference, err := service.NewInferenceService(logger, bundle.Scaler, bundle.Classifier)
	if err != nil {
		return nil, err
	}

	summary := bundle.Describe()
	logger.WithFields(logrus.Fields{
		"source":     summary.Source,
		"location":   summary.Location,
		"scaler":     summary.ScalerKind,
		"classifier": summary.ClassifierKind,
	}).Info("Model artifacts loaded")

	return &App{
		Config:    manager,
		Logger:    logger,
		Artifacts: bundle,
		Collector: collector,
		Inference: inference,
	}, nil
}
