package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	app "github.com/okian/firstlevel/internal/app"
	"github.com/okian/firstlevel/internal/config"
	"github.com/okian/firstlevel/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestServiceOptions(t *testing.T) {
	convey.Convey("Given a configuration with CSV tables and custom columns", t, func() {
		cfg := config.New()
		cfg.Delimiter = ","
		cfg.TrialTypeColumn = "condition"
		cfg.WorkerCount = 1

		convey.Convey("When a service is built from it", func() {
			svc := app.New(serviceOptions(cfg, logger.Get())...)
			m, err := svc.GroupNow(context.Background(), []byte("onset,duration,condition\n0,2,A\n4,2,B\n8,2,A\n"))

			convey.Convey("Then uploads are parsed with those settings", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(m.Conditions(), convey.ShouldResemble, []string{"A", "B"})
				convey.So(m.Onsets(), convey.ShouldResemble, [][]float64{{0, 8}, {4}})
			})

			convey.Convey("And stats reflect the sizes", func() {
				stats := svc.GetStats()
				convey.So(stats["workerCount"], convey.ShouldEqual, 1)
				convey.So(stats["queueSize"], convey.ShouldEqual, cfg.QueueSize)
			})
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given a started service behind the server mux", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.MaxBodyBytes = 1024
		svc := app.New(serviceOptions(cfg, logger.Get())...)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		mux := newMux(ctx, cfg, svc)

		get := func(path string) int {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w.Code
		}

		convey.Convey("Then the API and the OpenAPI document are served", func() {
			convey.So(get("/healthz"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/metrics"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml"), convey.ShouldEqual, http.StatusOK)
			convey.So(get("/designs"), convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then the configured body limit applies", func() {
			w := httptest.NewRecorder()
			body := strings.NewReader(strings.Repeat("x", 2048))
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/group", body))
			convey.So(w.Code, convey.ShouldEqual, http.StatusRequestEntityTooLarge)
		})
	})
}

func TestConfigureLogger(t *testing.T) {
	convey.Convey("Given an invalid log format and level", t, func() {
		cfg := config.New()
		cfg.LogFormat = "xml"
		cfg.LogLevel = "loud"

		convey.Convey("Then configureLogger falls back without panicking", func() {
			convey.So(func() { configureLogger(context.Background(), cfg) }, convey.ShouldNotPanic)
			logger.SetOutput(os.Stdout)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given short-lived contexts", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.Convey("Then the updaters return when the context ends", func() {
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, app.New()) }, convey.ShouldNotPanic)
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
