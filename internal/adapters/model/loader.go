package model

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/diabrisk/internal/domain/risk"
	"github.com/okian/diabrisk/pkg/logger"
)

var validate = validator.New()

// LoadArtifact reads a YAML (or JSON) model artifact from path.
func LoadArtifact(_ context.Context, path string) (Artifact, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Artifact{}, fmt.Errorf("%w: %v", ErrLoadArtifact, err)
	}
	var a Artifact
	if err := k.UnmarshalWithConf("", &a, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Artifact{}, fmt.Errorf("%w: %v", ErrLoadArtifact, err)
	}
	return a, nil
}

// Load restores a logistic model from path. An empty path means no model is
// configured and returns (nil, nil).
func Load(ctx context.Context, path string) (*Logistic, error) {
	if path == "" {
		return nil, nil
	}
	a, err := LoadArtifact(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewLogistic(a)
}

// LoadOrFallback loads the model at path. Any failure is logged and yields a
// nil risk.Model, which keeps the service on the fallback rule set.
func LoadOrFallback(ctx context.Context, log logger.Logger, path string) risk.Model {
	m, err := Load(ctx, path)
	switch {
	case err != nil:
		log.Warn(ctx, "model unavailable; using fallback calculation",
			logger.String("model_path", path),
			logger.Error(err),
		)
		return nil
	case m == nil:
		log.Info(ctx, "no model configured; using fallback calculation")
		return nil
	}
	log.Info(ctx, "model loaded",
		logger.String("model_path", path),
		logger.String("model", m.Name()),
		logger.Int("features", len(m.features)),
	)
	return m
}
