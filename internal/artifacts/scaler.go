package artifacts

import (
	"fmt"
	"math"

	"github.com/heart-failure-risk-portal/internal/domain"
)

// Scaler kinds
const (
	ScalerStandard = "standard"
	ScalerMinMax   = "minmax"
)

// StandardScaler centres each feature on its training mean and divides by
// its training standard deviation.
type StandardScaler struct {
	mean  domain.FeatureVector
	scale domain.FeatureVector
}

// NewStandardScaler builds a standardiser. A zero scale means the column
// was constant during fitting and is left undivided.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	s := &StandardScaler{}
	if err := fill(&s.mean, mean, "mean"); err != nil {
		return nil, err
	}
	if err := fill(&s.scale, scale, "scale"); err != nil {
		return nil, err
	}
	for i, v := range s.scale {
		if v < 0 {
			return nil, fmt.Errorf("scale[%d] is negative", i)
		}
		if v == 0 {
			s.scale[i] = 1
		}
	}
	return s, nil
}

// Transform implements domain.Scaler
func (s *StandardScaler) Transform(v domain.FeatureVector) (domain.FeatureVector, error) {
	var out domain.FeatureVector
	for i := range v {
		out[i] = (v[i] - s.mean[i]) / s.scale[i]
	}
	return out, checkFinite(out, "scaled")
}

// MinMaxScaler maps each feature's training range onto [0, 1]. A feature
// that was constant during fitting is only shifted by its minimum.
type MinMaxScaler struct {
	min  domain.FeatureVector
	span domain.FeatureVector
}

// NewMinMaxScaler builds a min-max scaler from the fitted per-feature range
func NewMinMaxScaler(dataMin, dataMax []float64) (*MinMaxScaler, error) {
	var lo, hi domain.FeatureVector
	if err := fill(&lo, dataMin, "data_min"); err != nil {
		return nil, err
	}
	if err := fill(&hi, dataMax, "data_max"); err != nil {
		return nil, err
	}
	s := &MinMaxScaler{min: lo}
	for i := range lo {
		if hi[i] < lo[i] {
			return nil, fmt.Errorf("data_max[%d] is below data_min[%d]", i, i)
		}
		s.span[i] = hi[i] - lo[i]
	}
	return s, nil
}

// Transform implements domain.Scaler
func (s *MinMaxScaler) Transform(v domain.FeatureVector) (domain.FeatureVector, error) {
	var out domain.FeatureVector
	for i := range v {
		if s.span[i] == 0 {
			out[i] = v[i] - s.min[i]
			continue
		}
		out[i] = (v[i] - s.min[i]) / s.span[i]
	}
	return out, checkFinite(out, "scaled")
}

func fill(dst *domain.FeatureVector, src []float64, name string) error {
	if len(src) != domain.FeatureCount {
		return fmt.Errorf("%w: %s has %d values, want %d", domain.ErrIncompatibleArtifact, name, len(src), domain.FeatureCount)
	}
	copy(dst[:], src)
	return checkFinite(*dst, name)
}

func checkFinite(v domain.FeatureVector, name string) error {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%s[%d] (%s) is not finite", name, i, domain.Feature(i))
		}
	}
	return nil
}
