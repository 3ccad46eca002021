// Package risk turns validated patient measurements into a diabetes risk
// assessment, using a trained model when one is loaded and a deterministic
// clinical rule set otherwise.
package risk

import (
	"math"

	"github.com/okian/diabrisk/internal/domain/patient"
)

const (
	percent = 100.0

	// FallbackLabel is reported as model_used when the rule set produced the score.
	FallbackLabel = "Fallback Calculation"
	// defaultModelLabel is used when a model reports an empty name.
	defaultModelLabel = "Trained Model"
)

// Strategy identifies which computation path produced a score.
type Strategy int

const (
	StrategyFallback Strategy = iota
	StrategyModel
)

func (s Strategy) String() string {
	if s == StrategyModel {
		return "model"
	}
	return "fallback"
}

// Assessment is the outcome of one estimate.
type Assessment struct {
	// Score is the risk percentage in [0, 100], rounded to one decimal.
	Score    float64
	Level    Level
	Strategy Strategy
	// ModelUsed is the human-readable label of the path that ran.
	ModelUsed string
	// Fault holds the reason the model path was abandoned, if it was.
	Fault string
}

// Estimator computes risk assessments. It holds no mutable state and is
// safe for concurrent use.
type Estimator interface {
	Estimate(f patient.Features) Assessment
}

// Option applies a configuration option to the DualEstimator.
type Option func(*DualEstimator)

// WithModel sets the trained model. A nil model keeps the estimator on the
// fallback path for its whole lifetime.
func WithModel(m Model) Option {
	return func(e *DualEstimator) {
		e.model = m
	}
}

// DualEstimator implements Estimator with a model path and a rule-based
// fallback path.
type DualEstimator struct {
	model Model
}

// NewEstimator creates an estimator with configuration options.
func NewEstimator(opts ...Option) *DualEstimator {
	e := &DualEstimator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HasModel reports whether a model was provided.
func (e *DualEstimator) HasModel() bool { return e.model != nil }

// Model returns the configured model, or nil.
func (e *DualEstimator) Model() Model { return e.model }

// Estimate never fails: a model fault falls back to the rule set for this
// call only and is reported in Assessment.Fault.
func (e *DualEstimator) Estimate(f patient.Features) Assessment {
	if e.model == nil {
		return fallbackAssessment(f, "")
	}

	out := Invoke(e.model, f)
	if !out.OK() {
		return fallbackAssessment(f, out.Fault)
	}

	score := Round(out.Probability * percent)
	return Assessment{
		Score:     score,
		Level:     Classify(score),
		Strategy:  StrategyModel,
		ModelUsed: modelLabel(e.model),
	}
}

func fallbackAssessment(f patient.Features, fault string) Assessment {
	score := Round(FallbackScore(f))
	return Assessment{
		Score:     score,
		Level:     Classify(score),
		Strategy:  StrategyFallback,
		ModelUsed: FallbackLabel,
		Fault:     fault,
	}
}

func modelLabel(m Model) string {
	if name := m.Name(); name != "" {
		return name
	}
	return defaultModelLabel
}

// Round rounds to one decimal place.
func Round(v float64) float64 {
	return math.Round(v*10) / 10
}
