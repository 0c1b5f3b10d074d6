package artifacts

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heart-failure-risk-portal/internal/domain"
)

func ones() []float64 {
	v := make([]float64, domain.FeatureCount)
	for i := range v {
		v[i] = 1
	}
	return v
}

func TestStandardScaler_Transform(t *testing.T) {
	mean := make([]float64, domain.FeatureCount)
	scale := ones()
	mean[0], scale[0] = 60, 10
	mean[6], scale[6] = 250000, 100000
	scale[11] = 0 // constant column

	s, err := NewStandardScaler(mean, scale)
	require.NoError(t, err)

	out, err := s.Transform(domain.FeatureVector{70, 1, 0, 0, 0, 0, 350000, 0, 0, 0, 0, 5})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, out[domain.FeatureAge], 1e-9)
	assert.InDelta(t, 1.0, out[domain.FeatureAnaemia], 1e-9)
	assert.InDelta(t, 1.0, out[domain.FeaturePlatelets], 1e-9)
	assert.InDelta(t, 5.0, out[domain.FeatureTime], 1e-9)
}

func TestStandardScaler_Errors(t *testing.T) {
	_, err := NewStandardScaler(ones()[:11], ones())
	assert.True(t, errors.Is(err, domain.ErrIncompatibleArtifact))

	negative := ones()
	negative[3] = -1
	_, err = NewStandardScaler(ones(), negative)
	assert.Error(t, err)

	nan := ones()
	nan[2] = math.NaN()
	_, err = NewStandardScaler(nan, ones())
	assert.Error(t, err)
}

func TestStandardScaler_NonFiniteOutput(t *testing.T) {
	s, err := NewStandardScaler(make([]float64, domain.FeatureCount), ones())
	require.NoError(t, err)

	_, err = s.Transform(domain.FeatureVector{math.Inf(1)})
	assert.Error(t, err)
}

func TestMinMaxScaler_Transform(t *testing.T) {
	lo := make([]float64, domain.FeatureCount)
	hi := ones()
	lo[0], hi[0] = 40, 90
	lo[5], hi[5] = 3, 3 // zero span

	s, err := NewMinMaxScaler(lo, hi)
	require.NoError(t, err)

	out, err := s.Transform(domain.FeatureVector{65, 1, 0.5, 0, 0, 3})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, out[0], 1e-9)
	assert.InDelta(t, 1.0, out[1], 1e-9)
	assert.InDelta(t, 0.5, out[2], 1e-9)
	assert.Equal(t, 0.0, out[5])

	// constant column is shifted, not zeroed
	out, err = s.Transform(domain.FeatureVector{65, 1, 0.5, 0, 0, 8})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, out[5], 1e-9)
}

func TestMinMaxScaler_InvertedRange(t *testing.T) {
	lo := ones()
	hi := make([]float64, domain.FeatureCount)

	_, err := NewMinMaxScaler(lo, hi)
	assert.Error(t, err)
}
