// Package reconcile keeps the remote webhook subscription in line with
// the local configuration: exactly one subscription, pointed at the
// current public callback URL.
package reconcile

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dnguyen800/ha-strava/internal/domain/model"
	"github.com/dnguyen800/ha-strava/pkg/logger"
	"github.com/dnguyen800/ha-strava/pkg/metrics"
)

// WebhookPath is where the endpoint is mounted under the public base URL.
const WebhookPath = "/api/strava/webhook"

const defaultProbeTimeout = 10 * time.Second

// API is the slice of the Strava client the reconciler needs.
type API interface {
	ListSubscriptions(ctx context.Context, creds model.Credentials) ([]model.Subscription, error)
	CreateSubscription(ctx context.Context, creds model.Credentials, callbackURL string) (int64, error)
	DeleteSubscription(ctx context.Context, creds model.Credentials, id int64) error
}

// ConfigStore persists the subscription config as a whole record.
type ConfigStore interface {
	LoadConfig(ctx context.Context) (model.SubscriptionConfig, error)
	SaveConfig(ctx context.Context, cfg model.SubscriptionConfig) error
}

// Reconciler drives the subscription lifecycle.
type Reconciler struct {
	api    API
	store  ConfigStore
	prober *http.Client
	logger logger.Logger

	// publicURL is updated by the host's URL-change signal while
	// reconciliation runs may be in flight on other goroutines.
	mu        sync.RWMutex
	publicURL string
}

// Option applies a configuration option to the Reconciler.
type Option func(*Reconciler)

// WithProber sets the HTTP client used for the callback self-probe.
func WithProber(client *http.Client) Option {
	return func(r *Reconciler) {
		if client != nil {
			r.prober = client
		}
	}
}

// WithLogger sets a custom logger for the reconciler.
func WithLogger(l logger.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Reconciler. publicURL is the externally reachable base URL
// of this instance.
func New(api API, store ConfigStore, publicURL string, opts ...Option) *Reconciler {
	r := &Reconciler{
		api:       api,
		store:     store,
		publicURL: publicURL,
		prober:    &http.Client{Timeout: defaultProbeTimeout},
		logger:    logger.Get().Named("reconcile"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetPublicURL replaces the public base URL for subsequent runs.
func (r *Reconciler) SetPublicURL(publicURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publicURL = publicURL
}

// CallbackURL derives the public callback URL, rejecting addresses the
// remote service could never reach: the URL must be http(s), with a real
// hostname that is neither an IP literal nor a local name.
func (r *Reconciler) CallbackURL() (string, error) {
	r.mu.RLock()
	publicURL := r.publicURL
	r.mu.RUnlock()

	if publicURL == "" {
		return "", fmt.Errorf("%w: no public URL configured", ErrNoPublicURL)
	}
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoPublicURL, err)
	}
	host := u.Hostname()
	switch {
	case u.Scheme != "http" && u.Scheme != "https":
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrNoPublicURL, u.Scheme)
	case host == "":
		return "", fmt.Errorf("%w: missing host", ErrNoPublicURL)
	case net.ParseIP(host) != nil:
		return "", fmt.Errorf("%w: IP address %q is not publicly resolvable", ErrNoPublicURL, host)
	case host == "localhost" || strings.HasSuffix(host, ".local"):
		return "", fmt.Errorf("%w: %q is not a public host", ErrNoPublicURL, host)
	}
	return strings.TrimSuffix(publicURL, "/") + WebhookPath, nil
}

// Reconcile converges the remote subscription state onto the current
// callback URL. Repeated runs with no external change are a no-op after
// the first success. The config record is only written on full success.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	callbackURL, err := r.CallbackURL()
	if err != nil {
		metrics.RecordReconcileError()
		r.logger.Error(ctx, "instance has no public URL; a public callback URL is required", logger.Error(err))
		return err
	}

	if err := r.probe(ctx, callbackURL); err != nil {
		metrics.RecordReconcileError()
		r.logger.Error(ctx, "webhook callback URL not reachable", logger.String("url", callbackURL), logger.Error(err))
		return err
	}

	cfg, err := r.store.LoadConfig(ctx)
	if err != nil {
		metrics.RecordReconcileError()
		return err
	}
	creds := cfg.Creds()

	subs, err := r.api.ListSubscriptions(ctx, creds)
	if err != nil {
		metrics.RecordReconcileError()
		return err
	}

	outcome := "noop"
	switch len(subs) {
	case 0:
		id, err := r.create(ctx, creds, callbackURL)
		if err != nil {
			return err
		}
		cfg.WebhookID = id
		outcome = "created"

	case 1:
		cfg.WebhookID = subs[0].ID
		if subs[0].CallbackURL != callbackURL {
			r.logger.Debug(ctx, "deleting outdated webhook subscription",
				logger.String("old", subs[0].CallbackURL), logger.String("new", callbackURL))
			if err := r.api.DeleteSubscription(ctx, creds, subs[0].ID); err != nil {
				metrics.RecordReconcileError()
				return err
			}
			id, err := r.create(ctx, creds, callbackURL)
			if err != nil {
				return err
			}
			cfg.WebhookID = id
			outcome = "recreated"
		}

	default:
		metrics.RecordReconcileError()
		err := fmt.Errorf("%w: expected at most 1 subscription for %s, found %d",
			ErrAmbiguousState, callbackURL, len(subs))
		// Ambiguous remote state is left for manual intervention.
		r.logger.Error(ctx, "remote subscription state inconsistent", logger.Error(err))
		return err
	}

	cfg.CallbackURL = callbackURL
	if err := r.store.SaveConfig(ctx, cfg); err != nil {
		metrics.RecordReconcileError()
		return err
	}

	metrics.RecordReconcile(outcome)
	return nil
}

// Teardown deletes the remote subscription, used when the integration is
// being removed. Any count other than one is reported, not repaired.
func (r *Reconciler) Teardown(ctx context.Context) error {
	cfg, err := r.store.LoadConfig(ctx)
	if err != nil {
		return err
	}
	creds := cfg.Creds()

	subs, err := r.api.ListSubscriptions(ctx, creds)
	if err != nil {
		return err
	}
	if len(subs) != 1 {
		return fmt.Errorf("%w: expected 1 subscription to remove, found %d", ErrAmbiguousState, len(subs))
	}

	if err := r.api.DeleteSubscription(ctx, creds, subs[0].ID); err != nil {
		return err
	}
	r.logger.Debug(ctx, "deleted webhook subscription", logger.Int64("id", subs[0].ID))
	return nil
}

func (r *Reconciler) create(ctx context.Context, creds model.Credentials, callbackURL string) (int64, error) {
	r.logger.Debug(ctx, "creating webhook subscription", logger.String("callback_url", callbackURL))
	id, err := r.api.CreateSubscription(ctx, creds, callbackURL)
	if err != nil {
		metrics.RecordReconcileError()
		return 0, err
	}
	return id, nil
}

// probe checks the callback URL answers before offering it to the remote
// service.
func (r *Reconciler) probe(ctx context.Context, callbackURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, callbackURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCallbackUnreachable, err)
	}
	resp, err := r.prober.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCallbackUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: self-probe returned %d", ErrCallbackUnreachable, resp.StatusCode)
	}
	return nil
}
