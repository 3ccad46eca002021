package service_test

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"testing"

	service "github.com/okian/diabrisk/internal/app"
	"github.com/okian/diabrisk/internal/domain/risk"
	. "github.com/smartystreets/goconvey/convey"
)

const integrationArtifact = `
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

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service loading a model artifact from disk", t, func() {
		f, err := os.CreateTemp("", "diabrisk-model-*.yaml")
		So(err, ShouldBeNil)
		_, err = f.WriteString(integrationArtifact)
		So(err, ShouldBeNil)
		So(f.Close(), ShouldBeNil)
		defer func() { _ = os.Remove(f.Name()) }()

		ctx := context.Background()
		svc := service.New(service.WithModelPath(f.Name()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the reference payload is evaluated", func() {
			p, err := svc.Evaluate(ctx, referencePayload())

			Convey("Then the logistic model produced the score", func() {
				z := -8.4 + 0.12*2 + 0.035*120 + 0.09*25.5 + 0.95*0.5 + 0.015*35
				want := risk.Round(100 / (1 + math.Exp(-z)))

				So(err, ShouldBeNil)
				So(p.Assessment.Strategy, ShouldEqual, risk.StrategyModel)
				So(p.Assessment.ModelUsed, ShouldEqual, "Logistic Regression")
				So(p.Assessment.Score, ShouldEqual, want)
				So(p.Assessment.Level, ShouldEqual, risk.Classify(want))
			})
		})

		Convey("When the metadata surface is queried", func() {
			info := svc.ModelInfo(ctx)

			Convey("Then the artifact features are reported in order", func() {
				So(info.Loaded, ShouldBeTrue)
				So(info.Features[0].Name, ShouldEqual, "Pregnancies")
				So(info.Features[4].Name, ShouldEqual, "Age")
			})
		})

		Convey("When many payloads are evaluated concurrently", func() {
			const goroutines, perGoroutine = 8, 50

			var wg sync.WaitGroup
			errs := make(chan error, goroutines*perGoroutine)
			for i := 0; i < goroutines; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					for j := 0; j < perGoroutine; j++ {
						raw := referencePayload()
						raw["glucose"] = float64(80 + (i*perGoroutine+j)%120)
						p, err := svc.Evaluate(ctx, raw)
						if err != nil {
							errs <- err
							continue
						}
						if p.Assessment.Score < 0 || p.Assessment.Score > 100 {
							errs <- fmt.Errorf("score out of bounds: %v", p.Assessment.Score)
						}
					}
				}(i)
			}
			wg.Wait()
			close(errs)

			Convey("Then every request succeeds and is counted", func() {
				So(len(errs), ShouldEqual, 0)
				So(svc.GetStats()["modelServed"], ShouldEqual, int64(goroutines*perGoroutine))
			})
		})
	})
}
