package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/heart-failure-risk-portal/internal/domain"
)

// InferenceService turns a form snapshot into a risk outcome using the
// loaded scaler and classifier. It holds no mutable state and may be shared
// by concurrent requests.
type InferenceService struct {
	logger     *logrus.Logger
	scaler     domain.Scaler
	classifier domain.Classifier
}

// Assessment is the result of one interaction
type Assessment struct {
	Outcome        domain.Outcome       `json:"outcome"`
	Features       domain.FeatureVector `json:"features"`
	CorrelationID  string               `json:"correlation_id,omitempty"`
	ProcessingTime time.Duration        `json:"processing_time"`
}

// NewInferenceService creates a new inference service
func NewInferenceService(logger *logrus.Logger, scaler domain.Scaler, classifier domain.Classifier) (*InferenceService, error) {
	if scaler == nil || classifier == nil {
		return nil, fmt.Errorf("%w: scaler and classifier are both required", domain.ErrArtifactLoad)
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &InferenceService{
		logger:     logger,
		scaler:     scaler,
		classifier: classifier,
	}, nil
}

// Assess assembles the feature vector, scales it, classifies it and maps
// the label to its outcome. Any failure is returned as-is for this one
// interaction; nothing is retried.
func (s *InferenceService) Assess(ctx context.Context, snapshot domain.Snapshot) (*Assessment, error) {
	startTime := time.Now()

	// Step 1: Assemble the vector in artifact order
	vector := snapshot.Vector()

	// Step 2: Scale
	scaled, err := s.scaler.Transform(vector)
	if err != nil {
		return nil, fmt.Errorf("%w: scale: %w", domain.ErrTransformFailed, err)
	}

	// Step 3: Classify
	label, err := s.classifier.Predict(scaled)
	if err != nil {
		return nil, fmt.Errorf("%w: classify: %w", domain.ErrTransformFailed, err)
	}

	// Step 4: Map label to outcome
	outcome, err := domain.OutcomeFor(label)
	if err != nil {
		return nil, err
	}

	assessment := &Assessment{
		Outcome:        outcome,
		Features:       vector,
		CorrelationID:  CorrelationIDFrom(ctx),
		ProcessingTime: time.Since(startTime),
	}

	// Submitted values stay out of the log
	s.logger.WithFields(logrus.Fields{
		"correlation_id":  assessment.CorrelationID,
		"risk":            outcome.Risk,
		"processing_time": assessment.ProcessingTime,
	}).Debug("Risk assessment completed")

	return assessment, nil
}

type correlationKey struct{}

// WithCorrelationID attaches a request's correlation id to ctx
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFrom returns the correlation id stored in ctx, if any
func CorrelationIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
