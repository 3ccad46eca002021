// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/diabrisk/internal/adapters/model"
	"github.com/okian/diabrisk/internal/domain/patient"
	"github.com/okian/diabrisk/internal/domain/risk"
	"github.com/okian/diabrisk/pkg/logger"
	"github.com/okian/diabrisk/pkg/metrics"
)

// ErrNotStarted is returned when Evaluate is called before Start.
var ErrNotStarted = errors.New("service not started")

const nanosecondsPerMillisecond = 1e6

// Prediction is a served assessment together with the features it was
// computed from.
type Prediction struct {
	Assessment risk.Assessment
	Features   patient.Features
}

// ModelInfo describes the active computation path for the metadata surface.
type ModelInfo struct {
	Loaded   bool
	Name     string
	Features []risk.FeatureSpec
}

// Service implements the API dependencies for the prediction service.
type Service struct {
	mu sync.RWMutex

	// Core components
	estimator *risk.DualEstimator
	model     risk.Model

	// Configuration
	modelPath string

	// State
	started   bool
	startedAt time.Time

	// Counters reported by GetStats
	modelServed    atomic.Int64
	fallbackServed atomic.Int64
	modelFaults    atomic.Int64
	rejected       atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithModelPath sets the model artifact loaded on Start.
func WithModelPath(path string) Option {
	return func(s *Service) {
		s.modelPath = path
	}
}

// WithModel injects an already constructed model; it takes precedence over
// WithModelPath.
func WithModel(m risk.Model) Option {
	return func(s *Service) {
		if m != nil {
			s.model = m
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start acquires the model handle (if any) and builds the estimator. The
// handle is read-only afterwards. A missing or broken model is not an error:
// the service then serves the fallback rule set for its whole lifetime.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting prediction service...")

	if s.model == nil {
		s.model = model.LoadOrFallback(ctx, s.logger, s.modelPath)
	}
	s.estimator = risk.NewEstimator(risk.WithModel(s.model))
	metrics.SetModelLoaded(s.estimator.HasModel())

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "prediction service started",
		logger.Bool("model_loaded", s.estimator.HasModel()),
	)
	return nil
}

// Stop releases the model handle.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.estimator = nil
	s.started = false
	s.logger.Info(context.Background(), "prediction service stopped")
}

func (s *Service) activeEstimator() *risk.DualEstimator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.estimator
}

// Evaluate validates raw and returns an assessment. Only validation errors
// (*patient.ValidationError) and ErrNotStarted are returned; model faults are
// absorbed by the fallback rule set.
func (s *Service) Evaluate(ctx context.Context, raw map[string]any) (Prediction, error) {
	est := s.activeEstimator()
	if est == nil {
		return Prediction{}, ErrNotStarted
	}

	features, err := patient.Validate(raw)
	if err != nil {
		s.rejected.Add(1)
		var ve *patient.ValidationError
		if errors.As(err, &ve) {
			metrics.RecordValidationFailure(ve.KindName())
		}
		s.logger.Debug(ctx, "payload rejected", logger.Error(err))
		return Prediction{}, err
	}

	start := time.Now()
	a := est.Estimate(features)
	latencyMs := float64(time.Since(start).Nanoseconds()) / nanosecondsPerMillisecond

	if a.Fault != "" {
		s.modelFaults.Add(1)
		metrics.RecordModelFault()
		s.logger.Warn(ctx, "model invocation failed; served fallback calculation",
			logger.String("fault", a.Fault),
		)
	}
	if a.Strategy == risk.StrategyModel {
		s.modelServed.Add(1)
	} else {
		s.fallbackServed.Add(1)
	}
	metrics.RecordPrediction(a.Strategy.String(), a.Level.String(), a.Score)
	metrics.RecordEstimateLatency(a.Strategy.String(), latencyMs)

	s.logger.Debug(ctx, "risk assessed",
		logger.String("strategy", a.Strategy.String()),
		logger.Float64("risk_score", a.Score),
		logger.String("risk_level", a.Level.String()),
	)

	return Prediction{Assessment: a, Features: features}, nil
}

// ModelInfo reports whether a model is loaded and what it expects.
func (s *Service) ModelInfo(_ context.Context) ModelInfo {
	est := s.activeEstimator()
	if est == nil || !est.HasModel() {
		return ModelInfo{}
	}
	m := est.Model()
	return ModelInfo{
		Loaded:   true,
		Name:     m.Name(),
		Features: m.Features(),
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"modelLoaded":     s.estimator != nil && s.estimator.HasModel(),
		"modelServed":     s.modelServed.Load(),
		"fallbackServed":  s.fallbackServed.Load(),
		"modelFaults":     s.modelFaults.Load(),
		"rejectedPayload": s.rejected.Load(),
	}
	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}
	return stats
}
