package model_test

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"

	"github.com/okian/diabrisk/internal/adapters/model"
	"github.com/okian/diabrisk/internal/domain/patient"
	"github.com/okian/diabrisk/internal/domain/risk"
	"github.com/okian/diabrisk/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const artifactYAML = `
name: "Logistic Regression"
intercept: -8.4
features:
  - {name: Pregnancies, min: 0, max: 17}
  - {name: Glucose, min: 44, max: 199}
  - {name: BMI, min: 18.2, max: 67.1}
  - {name: DiabetesPedigreeFunction, min: 0.078, max: 2.42}
  - {name: Age, min: 21, max: 81}
coefficients: [0.12, 0.035, 0.09, 0.95, 0.015]
`

const scaledArtifactJSON = `{
  "name": "Scaled Logistic Regression",
  "intercept": 0,
  "features": [{"name": "glucose", "min": 0, "max": 300}],
  "coefficients": [1.0],
  "means": [100],
  "scales": [20]
}`

func writeTemp(content, pattern string) string {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		panic(err)
	}
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	if err := f.Close(); err != nil {
		panic(err)
	}
	return f.Name()
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

func TestLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given a YAML model artifact", t, func() {
		path := writeTemp(artifactYAML, "model-*.yaml")
		defer func() { _ = os.Remove(path) }()

		m, err := model.Load(ctx, path)

		Convey("Then it loads with the declared order", func() {
			So(err, ShouldBeNil)
			So(m.Name(), ShouldEqual, "Logistic Regression")
			feats := m.Features()
			So(len(feats), ShouldEqual, 5)
			So(feats[0].Name, ShouldEqual, "Pregnancies")
			So(feats[3].Name, ShouldEqual, "DiabetesPedigreeFunction")
			So(feats[1].Max, ShouldEqual, 199.0)
		})

		Convey("And it predicts through the estimator", func() {
			f, _ := patient.New(2, 120, 25.5, 0.5, 35)
			z := -8.4 + 0.12*2 + 0.035*120 + 0.09*25.5 + 0.95*0.5 + 0.015*35
			a := risk.NewEstimator(risk.WithModel(m)).Estimate(f)

			So(a.Strategy, ShouldEqual, risk.StrategyModel)
			So(a.ModelUsed, ShouldEqual, "Logistic Regression")
			So(a.Score, ShouldEqual, risk.Round(sigmoid(z)*100))
		})
	})

	Convey("Given a JSON artifact with a scaler", t, func() {
		path := writeTemp(scaledArtifactJSON, "model-*.json")
		defer func() { _ = os.Remove(path) }()

		m, err := model.Load(ctx, path)

		Convey("Then inputs are standardized before the linear term", func() {
			So(err, ShouldBeNil)
			p, err := m.PredictProba([]float64{100})
			So(err, ShouldBeNil)
			So(p, ShouldEqual, 0.5)

			p, err = m.PredictProba([]float64{140})
			So(err, ShouldBeNil)
			So(p, ShouldAlmostEqual, sigmoid(2), 1e-12)
		})
	})

	Convey("Given no model path", t, func() {
		m, err := model.Load(ctx, "")

		Convey("Then no model and no error are returned", func() {
			So(err, ShouldBeNil)
			So(m, ShouldBeNil)
		})
	})

	Convey("Given a missing artifact file", t, func() {
		_, err := model.Load(ctx, "/non/existent/model.yaml")

		Convey("Then a load error is returned", func() {
			So(errors.Is(err, model.ErrLoadArtifact), ShouldBeTrue)
		})
	})

	Convey("Given malformed artifacts", t, func() {
		cases := []struct {
			name    string
			content string
		}{
			{"no features", "coefficients: [1]\n"},
			{"mismatched coefficients", "features: [{name: glucose, max: 1}]\ncoefficients: [1, 2]\n"},
			{"unsupported feature", "features: [{name: insulin, max: 1}]\ncoefficients: [1]\n"},
			{"half a scaler", "features: [{name: glucose, max: 1}]\ncoefficients: [1]\nmeans: [0]\n"},
			{"zero scale", "features: [{name: glucose, max: 1}]\ncoefficients: [1]\nmeans: [0]\nscales: [0]\n"},
			{"inverted range", "features: [{name: glucose, min: 5, max: 1}]\ncoefficients: [1]\n"},
		}
		for _, c := range cases {
			path := writeTemp(c.content, "model-*.yaml")
			_, err := model.Load(ctx, path)
			_ = os.Remove(path)

			Convey("Then "+c.name+" is rejected", func() {
				So(errors.Is(err, model.ErrInvalidArtifact), ShouldBeTrue)
			})
		}
	})
}

func TestLogistic_PredictProba(t *testing.T) {
	Convey("Given a loaded model", t, func() {
		m, err := model.NewLogistic(model.Artifact{
			Features:     []model.Feature{{Name: "glucose", Max: 300}, {Name: "bmi", Max: 60}},
			Coefficients: []float64{0.01, 0.02},
			Intercept:    -1,
		})
		So(err, ShouldBeNil)

		Convey("When the vector has the wrong length", func() {
			_, err := m.PredictProba([]float64{1})

			Convey("Then it reports a size error", func() {
				So(errors.Is(err, model.ErrVectorSize), ShouldBeTrue)
			})
		})

		Convey("When the name is omitted", func() {
			Convey("Then a default family name is used", func() {
				So(m.Name(), ShouldEqual, "Logistic Regression")
			})
		})

		Convey("When callers mutate the returned features", func() {
			feats := m.Features()
			feats[0].Name = "changed"

			Convey("Then the model is unaffected", func() {
				So(m.Features()[0].Name, ShouldEqual, "glucose")
			})
		})
	})
}

func TestLoadOrFallback(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	log := logger.Get()
	ctx := context.Background()

	Convey("Given a broken model path", t, func() {
		m := model.LoadOrFallback(ctx, log, "/non/existent/model.yaml")

		Convey("Then the model is absent rather than fatal", func() {
			So(m, ShouldBeNil)
		})
	})

	Convey("Given an empty model path", t, func() {
		m := model.LoadOrFallback(ctx, log, "")

		Convey("Then the model is absent", func() {
			So(m, ShouldBeNil)
		})
	})
}
