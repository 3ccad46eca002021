package loadgen

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/diabrisk/internal/adapters/http/api"
	service "github.com/okian/diabrisk/internal/app"
	"github.com/okian/diabrisk/internal/domain/patient"
	"github.com/okian/diabrisk/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newTestServer() (*httptest.Server, *service.Service) {
	svc := service.New()
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	server := api.NewServer(svc, svc)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return httptest.NewServer(server.Handler(mux)), svc
}

func TestGeneratePayloads(t *testing.T) {
	Convey("Given a generator config with a tenth of invalid payloads", t, func() {
		config := &Config{NumRequests: 60, InvalidRatio: 0.1}
		stats := newStats()

		payloads, err := generatePayloads(context.Background(), config, stats)
		So(err, ShouldBeNil)
		So(len(payloads), ShouldEqual, 60)
		So(stats.Generated, ShouldEqual, 60)

		Convey("Then the valid share passes validation", func() {
			for _, p := range payloads[6:] {
				_, err := patient.Validate(p)
				So(err, ShouldBeNil)
			}
		})

		Convey("Then the invalid share is rejected", func() {
			for _, p := range payloads[:6] {
				_, err := patient.Validate(p)
				So(err, ShouldNotBeNil)
			}
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := generatePayloads(ctx, &Config{NumRequests: 10}, newStats())

		Convey("Then generation stops with the context error", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestConfigValidate(t *testing.T) {
	Convey("Given load generator configs", t, func() {
		valid := Config{BaseURL: "http://localhost:9080", NumRequests: 1, Workers: 1}
		So(valid.Validate(), ShouldBeNil)

		cases := []Config{
			{NumRequests: 1, Workers: 1},
			{BaseURL: "http://x", Workers: 1},
			{BaseURL: "http://x", NumRequests: 1},
			{BaseURL: "http://x", NumRequests: 1, Workers: 1, InvalidRatio: 1.5},
		}
		for _, c := range cases {
			So(errors.Is(c.Validate(), ErrInvalidConfig), ShouldBeTrue)
		}
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running prediction service without a model", t, func() {
		srv, svc := newTestServer()
		defer srv.Close()
		defer svc.Stop()

		out := filepath.Join(t.TempDir(), "payloads.json")
		config := &Config{
			BaseURL:      srv.URL,
			NumRequests:  60,
			InvalidRatio: 0.1,
			Workers:      4,
			Timeout:      5 * time.Second,
			OutputFile:   out,
		}

		Convey("When a load run completes", func() {
			stats, err := Run(context.Background(), config)

			Convey("Then every response is classified", func() {
				So(err, ShouldBeNil)
				So(stats.Submitted, ShouldEqual, 60)
				So(stats.Succeeded, ShouldEqual, 54)
				So(stats.Rejected, ShouldEqual, 6)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.ByModelUsed["Fallback Calculation"], ShouldEqual, 54)
				So(stats.Rejections[patient.MissingPayloadMessage], ShouldEqual, 1)
			})

			Convey("And the service agrees on the counts", func() {
				So(svc.GetStats()["fallbackServed"], ShouldEqual, int64(54))
				So(svc.GetStats()["rejectedPayload"], ShouldEqual, int64(6))
			})

			Convey("And the payloads are saved", func() {
				data, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				So(len(data), ShouldBeGreaterThan, 0)
			})

			Convey("And the report lists the breakdown", func() {
				var buf bytes.Buffer
				So(WriteReport(&buf, stats), ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, "submitted: 60")
				So(buf.String(), ShouldContainSubstring, "Fallback Calculation")
				So(buf.String(), ShouldContainSubstring, "rejections:")
			})
		})
	})

	Convey("Given an unreachable service", t, func() {
		config := &Config{
			BaseURL:     "http://127.0.0.1:1",
			NumRequests: 1,
			Workers:     1,
			Timeout:     time.Second,
		}

		Convey("When a load run starts", func() {
			_, err := Run(context.Background(), config)

			Convey("Then the health check fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "health check")
			})
		})
	})
}
