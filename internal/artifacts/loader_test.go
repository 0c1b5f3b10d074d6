package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heart-failure-risk-portal/internal/domain"
)

const testdata = "testdata"

func fixture(name string) string {
	return filepath.Join(testdata, name)
}

func assess(t *testing.T, b *Bundle, s domain.Snapshot) domain.Label {
	t.Helper()
	scaled, err := b.Scaler.Transform(s.Vector())
	require.NoError(t, err)
	label, err := b.Classifier.Predict(scaled)
	require.NoError(t, err)
	return label
}

var (
	typicalPatient = domain.Snapshot{
		Age: 60, CreatininePhosphokinase: 600, EjectionFraction: 45,
		Platelets: 250000, SerumCreatinine: 1.1, SerumSodium: 138, Time: 130,
	}
	criticalPatient = domain.Snapshot{
		Age: 75, Anaemia: 1, CreatininePhosphokinase: 582, EjectionFraction: 20,
		HighBloodPressure: 1, Platelets: 265000, SerumCreatinine: 2.7,
		SerumSodium: 130, Sex: 1, Time: 10,
	}
)

func TestLoadFiles_StandardLogistic(t *testing.T) {
	b, err := LoadFiles(fixture("scaler_standard.json"), fixture("classifier_logistic.json"))
	require.NoError(t, err)

	summary := b.Describe()
	assert.Equal(t, domain.ArtifactSourceFile, summary.Source)
	assert.Equal(t, ScalerStandard, summary.ScalerKind)
	assert.Equal(t, ClassifierLogistic, summary.ClassifierKind)
	assert.Equal(t, domain.FeatureNames(), summary.Features)

	assert.Equal(t, domain.LabelLowRisk, assess(t, b, typicalPatient))
	assert.Equal(t, domain.LabelHighRisk, assess(t, b, criticalPatient))
}

func TestLoadFiles_YAMLTree(t *testing.T) {
	b, err := LoadFiles(fixture("scaler_minmax.yaml"), fixture("classifier_tree.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ScalerMinMax, b.Describe().ScalerKind)
	assert.Equal(t, ClassifierDecisionTree, b.Describe().ClassifierKind)

	// Short follow-up (time <= 74 days) is high risk
	assert.Equal(t, domain.LabelHighRisk, assess(t, b, criticalPatient))
	// Long follow-up with preserved ejection fraction is low risk
	assert.Equal(t, domain.LabelLowRisk, assess(t, b, typicalPatient))

	// Long follow-up but poor ejection fraction
	poorEF := typicalPatient
	poorEF.EjectionFraction = 25
	assert.Equal(t, domain.LabelHighRisk, assess(t, b, poorEF))
}

func TestLoadFiles_Forest(t *testing.T) {
	b, err := LoadFiles(fixture("scaler_standard.json"), fixture("classifier_forest.json"))
	require.NoError(t, err)

	assert.Equal(t, ClassifierRandomForest, b.Describe().ClassifierKind)
	assert.Equal(t, domain.LabelLowRisk, assess(t, b, typicalPatient))
	assert.Equal(t, domain.LabelHighRisk, assess(t, b, criticalPatient))
}

func TestLoad_Dispatch(t *testing.T) {
	b, err := Load(context.Background(), domain.ArtifactsConfig{
		Source:         domain.ArtifactSourceFile,
		ScalerPath:     fixture("scaler_standard.json"),
		ClassifierPath: fixture("classifier_logistic.json"),
	})
	require.NoError(t, err)
	assert.NotNil(t, b.Scaler)
	assert.NotNil(t, b.Classifier)

	_, err = Load(context.Background(), domain.ArtifactsConfig{Source: "s3"})
	assert.True(t, errors.Is(err, domain.ErrArtifactLoad))
}

func TestLoadFiles_Failures(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		return path
	}

	tests := []struct {
		name         string
		scaler       string
		classifier   string
		incompatible bool
	}{
		{
			name:       "missing scaler",
			scaler:     filepath.Join(dir, "absent.json"),
			classifier: fixture("classifier_logistic.json"),
		},
		{
			name:       "missing classifier",
			scaler:     fixture("scaler_standard.json"),
			classifier: filepath.Join(dir, "absent.json"),
		},
		{
			name:       "corrupt json",
			scaler:     write("corrupt.json", `{"kind": "standard",`),
			classifier: fixture("classifier_logistic.json"),
		},
		{
			name:       "corrupt yaml",
			scaler:     write("corrupt.yaml", "kind: [standard"),
			classifier: fixture("classifier_logistic.json"),
		},
		{
			name:         "reordered features",
			scaler:       fixture("scaler_reordered.json"),
			classifier:   fixture("classifier_logistic.json"),
			incompatible: true,
		},
		{
			name:         "unknown scaler kind",
			scaler:       write("robust.json", `{"kind": "robust", "feature_names": []}`),
			classifier:   fixture("classifier_logistic.json"),
			incompatible: true,
		},
		{
			name:         "standard scaler without scale",
			scaler:       write("noscale.yaml", "kind: standard\nfeature_names: [age, anaemia, creatinine_phosphokinase, diabetes, ejection_fraction, high_blood_pressure, platelets, serum_creatinine, serum_sodium, sex, smoking, time]\nmean: [0,0,0,0,0,0,0,0,0,0,0,0]\n"),
			classifier:   fixture("classifier_logistic.json"),
			incompatible: true,
		},
		{
			name:         "classifier fitted on fewer features",
			scaler:       fixture("scaler_standard.json"),
			classifier:   write("short.json", `{"kind": "logistic_regression", "feature_names": ["age"], "coefficients": [1], "intercept": 0}`),
			incompatible: true,
		},
		{
			name:         "swapped files",
			scaler:       fixture("classifier_logistic.json"),
			classifier:   fixture("scaler_standard.json"),
			incompatible: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := LoadFiles(tt.scaler, tt.classifier)

			require.Error(t, err)
			assert.Nil(t, b)
			assert.True(t, errors.Is(err, domain.ErrArtifactLoad), "got %v", err)
			if tt.incompatible {
				assert.True(t, errors.Is(err, domain.ErrIncompatibleArtifact), "got %v", err)
			}
		})
	}
}

func TestDescribe_ReturnsCopy(t *testing.T) {
	b, err := LoadFiles(fixture("scaler_standard.json"), fixture("classifier_logistic.json"))
	require.NoError(t, err)

	summary := b.Describe()
	summary.Features[0] = "mutated"

	assert.Equal(t, "age", b.Describe().Features[0])
}
