// Package model provides the trained-model adapter: a logistic regression
// classifier restored from an artifact file.
package model

import (
	"fmt"
	"math"

	"github.com/okian/diabrisk/internal/domain/risk"
)

// Feature is one ordered model input with its valid training range.
type Feature struct {
	Name string  `koanf:"name" validate:"required"`
	Min  float64 `koanf:"min"`
	Max  float64 `koanf:"max" validate:"gtefield=Min"`
}

// Artifact is the on-disk form of a trained logistic regression.
//
// Scaling is optional; when present it standardizes each input as
// (x - mean) / scale before the linear term, matching a StandardScaler
// fitted during training.
type Artifact struct {
	Name         string    `koanf:"name"`
	Features     []Feature `koanf:"features" validate:"required,min=1,dive"`
	Coefficients []float64 `koanf:"coefficients" validate:"required,min=1"`
	Intercept    float64   `koanf:"intercept"`
	Means        []float64 `koanf:"means"`
	Scales       []float64 `koanf:"scales"`
}

// Logistic implements risk.Model. It is immutable after construction.
type Logistic struct {
	name         string
	features     []risk.FeatureSpec
	coefficients []float64
	intercept    float64
	means        []float64
	scales       []float64
}

var _ risk.Model = (*Logistic)(nil)

// NewLogistic builds a model from an artifact, checking that all vectors agree
// in length with the feature list.
func NewLogistic(a Artifact) (*Logistic, error) {
	if err := validate.Struct(a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	n := len(a.Features)
	if len(a.Coefficients) != n {
		return nil, fmt.Errorf("%w: %d coefficients for %d features", ErrInvalidArtifact, len(a.Coefficients), n)
	}
	if (a.Means == nil) != (a.Scales == nil) {
		return nil, fmt.Errorf("%w: means and scales must be given together", ErrInvalidArtifact)
	}
	if a.Means != nil && (len(a.Means) != n || len(a.Scales) != n) {
		return nil, fmt.Errorf("%w: scaler size does not match %d features", ErrInvalidArtifact, n)
	}
	for i, s := range a.Scales {
		if s == 0 {
			return nil, fmt.Errorf("%w: zero scale for feature %q", ErrInvalidArtifact, a.Features[i].Name)
		}
	}
	for _, f := range a.Features {
		if _, ok := risk.ResolveFeature(f.Name); !ok {
			return nil, fmt.Errorf("%w: unsupported feature %q", ErrInvalidArtifact, f.Name)
		}
	}

	m := &Logistic{
		name:         a.Name,
		features:     make([]risk.FeatureSpec, n),
		coefficients: append([]float64(nil), a.Coefficients...),
		intercept:    a.Intercept,
		means:        append([]float64(nil), a.Means...),
		scales:       append([]float64(nil), a.Scales...),
	}
	if m.name == "" {
		m.name = "Logistic Regression"
	}
	for i, f := range a.Features {
		m.features[i] = risk.FeatureSpec{Name: f.Name, Min: f.Min, Max: f.Max}
	}
	if len(a.Means) == 0 {
		m.means, m.scales = nil, nil
	}
	return m, nil
}

func (m *Logistic) Name() string { return m.name }

// Features returns a copy of the declared feature order.
func (m *Logistic) Features() []risk.FeatureSpec {
	return append([]risk.FeatureSpec(nil), m.features...)
}

// PredictProba returns sigmoid(intercept + sum(coef_i * x_i)).
func (m *Logistic) PredictProba(vector []float64) (float64, error) {
	if len(vector) != len(m.coefficients) {
		return 0, fmt.Errorf("%w: got %d values, want %d", ErrVectorSize, len(vector), len(m.coefficients))
	}
	z := m.intercept
	for i, x := range vector {
		if m.means != nil {
			x = (x - m.means[i]) / m.scales[i]
		}
		z += m.coefficients[i] * x
	}
	p := 1 / (1 + math.Exp(-z))
	if math.IsNaN(p) {
		return 0, fmt.Errorf("%w: non-finite linear term", ErrInference)
	}
	return p, nil
}
