package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/dnguyen800/ha-strava/internal/adapters/http/webhook"
	"github.com/dnguyen800/ha-strava/internal/app"
	"github.com/dnguyen800/ha-strava/internal/config"
	"github.com/dnguyen800/ha-strava/pkg/logger"
	"github.com/dnguyen800/ha-strava/pkg/metrics"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("STRAVA_ADDR", ":9090")
			_ = os.Setenv("STRAVA_QUEUE_SIZE", "32")
			_ = os.Setenv("STRAVA_PUBLIC_URL", "https://ha.example.com")
			defer func() {
				_ = os.Unsetenv("STRAVA_ADDR")
				_ = os.Unsetenv("STRAVA_QUEUE_SIZE")
				_ = os.Unsetenv("STRAVA_PUBLIC_URL")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 32)
				convey.So(cfg.PublicURL, convey.ShouldEqual, "https://ha.example.com")
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithPublicURL("https://ha.example.com"),
					app.WithQueueSize(8),
					app.WithTeardownOnStop(true),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then the webhook server should be creatable", func() {
				server := webhook.NewServer(svc, "https://ha.example.com")
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				registry := prometheus.NewRegistry()
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(registry))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given main application integration", t, func() {
		convey.Convey("When testing full application setup", func() {
			_ = os.Setenv("STRAVA_ADDR", ":9090")
			_ = os.Setenv("STRAVA_STORE_PATH", t.TempDir()+"/record.json")
			defer func() {
				_ = os.Unsetenv("STRAVA_ADDR")
				_ = os.Unsetenv("STRAVA_STORE_PATH")
			}()

			convey.Convey("Then all components should work together", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)

				svc := app.New(
					app.WithPublicURL(cfg.PublicURL),
					app.WithStorePath(cfg.StorePath),
					app.WithQueueSize(cfg.QueueSize),
				)
				convey.So(svc, convey.ShouldNotBeNil)
				convey.So(svc.Start(ctx), convey.ShouldBeNil)

				mux := http.NewServeMux()
				convey.So(mux, convey.ShouldNotBeNil)

				server := webhook.NewServer(svc, cfg.PublicURL)
				server.Register(mux)

				convey.So(svc.Stop(ctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("STRAVA_ADDR", "")
			defer func() { _ = os.Unsetenv("STRAVA_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing service creation with zero values", func() {
			convey.Convey("Then the defaults should be kept", func() {
				svc := app.New(
					app.WithQueueSize(0),
					app.WithHTTPTimeout(0),
					app.WithStorePath(""),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})
	})
}
