// Package artifacts loads the fitted scaler and classifier the portal
// consumes. Both are read once at startup, checked against the feature
// layout in domain, and returned as immutable transforms.
package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/heart-failure-risk-portal/internal/domain"
)

// Bundle is the pair of transforms served to every interaction
type Bundle struct {
	Scaler     domain.Scaler
	Classifier domain.Classifier
	summary    Summary
}

// Summary describes where a bundle came from
type Summary struct {
	Source         string   `json:"source"`
	Location       string   `json:"location"`
	ScalerKind     string   `json:"scaler"`
	ClassifierKind string   `json:"classifier"`
	Features       []string `json:"features"`
}

// Describe returns the bundle's summary
func (b *Bundle) Describe() Summary {
	s := b.summary
	s.Features = slices.Clone(s.Features)
	return s
}

type scalerDocument struct {
	Kind         string    `json:"kind"`
	FeatureNames []string  `json:"feature_names"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
	DataMin      []float64 `json:"data_min"`
	DataMax      []float64 `json:"data_max"`
}

type treeDocument struct {
	Nodes []TreeNode `json:"nodes"`
}

type classifierDocument struct {
	Kind         string         `json:"kind"`
	FeatureNames []string       `json:"feature_names"`
	Coefficients []float64      `json:"coefficients"`
	Intercept    float64        `json:"intercept"`
	Threshold    *float64       `json:"threshold"`
	Nodes        []TreeNode     `json:"nodes"`
	Trees        []treeDocument `json:"trees"`
}

// Load reads both artifacts from the configured source. Every failure is
// wrapped in domain.ErrArtifactLoad.
func Load(ctx context.Context, cfg domain.ArtifactsConfig) (*Bundle, error) {
	var (
		bundle *Bundle
		err    error
	)
	switch cfg.Source {
	case domain.ArtifactSourceFile, "":
		bundle, err = LoadFiles(cfg.ScalerPath, cfg.ClassifierPath)
	case domain.ArtifactSourceSQLite:
		bundle, err = LoadSQLite(ctx, cfg.SQLitePath)
	default:
		err = fmt.Errorf("%w: unknown artifact source %q", domain.ErrArtifactLoad, cfg.Source)
	}
	return bundle, err
}

// LoadFiles reads the scaler and classifier from two JSON or YAML files
func LoadFiles(scalerPath, classifierPath string) (*Bundle, error) {
	scalerData, err := readDocument(scalerPath)
	if err != nil {
		return nil, loadError("scaler", err)
	}
	classifierData, err := readDocument(classifierPath)
	if err != nil {
		return nil, loadError("classifier", err)
	}
	bundle, err := decodeBundle(scalerData, classifierData)
	if err != nil {
		return nil, err
	}
	bundle.summary.Source = domain.ArtifactSourceFile
	bundle.summary.Location = scalerPath + "," + classifierPath
	return bundle, nil
}

// decodeBundle validates and decodes two normalised JSON documents
func decodeBundle(scalerData, classifierData []byte) (*Bundle, error) {
	scaler, scalerKind, err := decodeScaler(scalerData)
	if err != nil {
		return nil, loadError("scaler", err)
	}
	classifier, classifierKind, err := decodeClassifier(classifierData)
	if err != nil {
		return nil, loadError("classifier", err)
	}
	return &Bundle{
		Scaler:     scaler,
		Classifier: classifier,
		summary: Summary{
			ScalerKind:     scalerKind,
			ClassifierKind: classifierKind,
			Features:       domain.FeatureNames(),
		},
	}, nil
}

func decodeScaler(data []byte) (domain.Scaler, string, error) {
	if err := validateDocument("scaler", data); err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrIncompatibleArtifact, err)
	}
	var doc scalerDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", err
	}
	if err := checkFeatureNames(doc.FeatureNames); err != nil {
		return nil, "", err
	}

	switch doc.Kind {
	case ScalerStandard:
		s, err := NewStandardScaler(doc.Mean, doc.Scale)
		return s, doc.Kind, err
	case ScalerMinMax:
		s, err := NewMinMaxScaler(doc.DataMin, doc.DataMax)
		return s, doc.Kind, err
	}
	return nil, "", fmt.Errorf("unsupported scaler kind %q", doc.Kind)
}

func decodeClassifier(data []byte) (domain.Classifier, string, error) {
	if err := validateDocument("classifier", data); err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrIncompatibleArtifact, err)
	}
	var doc classifierDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", err
	}
	if err := checkFeatureNames(doc.FeatureNames); err != nil {
		return nil, "", err
	}

	switch doc.Kind {
	case ClassifierLogistic:
		m, err := NewLogisticRegression(doc.Coefficients, doc.Intercept, doc.Threshold)
		return m, doc.Kind, err
	case ClassifierDecisionTree:
		t, err := NewDecisionTree(doc.Nodes)
		return t, doc.Kind, err
	case ClassifierRandomForest:
		trees := make([]*DecisionTree, 0, len(doc.Trees))
		for i, td := range doc.Trees {
			t, err := NewDecisionTree(td.Nodes)
			if err != nil {
				return nil, "", fmt.Errorf("tree %d: %w", i, err)
			}
			trees = append(trees, t)
		}
		f, err := NewRandomForest(trees)
		return f, doc.Kind, err
	}
	return nil, "", fmt.Errorf("unsupported classifier kind %q", doc.Kind)
}

// checkFeatureNames rejects artifacts fitted against any other column order
func checkFeatureNames(names []string) error {
	want := domain.FeatureNames()
	if !slices.Equal(names, want) {
		return fmt.Errorf("%w: feature_names %v, want %v", domain.ErrIncompatibleArtifact, names, want)
	}
	return nil
}

// normalise turns a JSON or YAML document into JSON bytes
func normalise(data []byte, format string) ([]byte, error) {
	switch format {
	case "json":
		if !json.Valid(data) {
			return nil, fmt.Errorf("invalid JSON document")
		}
		return data, nil
	case "yaml":
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML document: %w", err)
		}
		return json.Marshal(doc)
	}
	return nil, fmt.Errorf("unsupported artifact format %q", format)
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func loadError(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrArtifactLoad, what, err)
}
