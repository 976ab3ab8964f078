package app

import (
	"time"

	"github.com/dnguyen800/ha-strava/internal/adapters/strava"
	"github.com/dnguyen800/ha-strava/internal/domain/model"
	"github.com/dnguyen800/ha-strava/internal/domain/reconcile"
	"github.com/dnguyen800/ha-strava/pkg/bus"
	"github.com/dnguyen800/ha-strava/pkg/logger"
)

// Option configures a Service.
type Option func(*Service)

// WithCredentials sets the Strava API application credentials used to
// seed the config record on first run.
func WithCredentials(creds model.Credentials) Option {
	return func(s *Service) {
		s.creds = creds
	}
}

// WithPublicURL sets the externally reachable base URL the webhook
// callback is derived from.
func WithPublicURL(url string) Option {
	return func(s *Service) {
		s.publicURL = url
	}
}

// WithStorePath sets the config record file location.
func WithStorePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.storePath = path
		}
	}
}

// WithQueueSize sets the trigger queue capacity.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithHTTPTimeout sets the timeout for outbound Strava and geocoding
// requests.
func WithHTTPTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.httpTimeout = d
		}
	}
}

// WithTeardownOnStop deletes the webhook subscription when the service
// stops instead of leaving it registered.
func WithTeardownOnStop(teardown bool) Option {
	return func(s *Service) {
		s.teardownOnStop = teardown
	}
}

// WithBus replaces the internal event bus, letting the host share one
// bus across integrations.
func WithBus(b *bus.Bus) Option {
	return func(s *Service) {
		if b != nil {
			s.bus = b
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithStravaOptions appends options to the Strava client, used by tests
// to point the client at local servers.
func WithStravaOptions(opts ...strava.Option) Option {
	return func(s *Service) {
		s.stravaOpts = append(s.stravaOpts, opts...)
	}
}

// WithReconcileOptions appends options to the subscription reconciler.
func WithReconcileOptions(opts ...reconcile.Option) Option {
	return func(s *Service) {
		s.reconcileOpts = append(s.reconcileOpts, opts...)
	}
}
