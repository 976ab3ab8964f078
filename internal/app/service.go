// Package app wires the integration together: the persisted config
// record, the authenticated Strava client, the trigger queue and worker,
// the subscription reconciler and the event bus bridging host signals to
// actions.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/dnguyen800/ha-strava/internal/adapters/mq/queue"
	"github.com/dnguyen800/ha-strava/internal/adapters/mq/worker"
	"github.com/dnguyen800/ha-strava/internal/adapters/store"
	"github.com/dnguyen800/ha-strava/internal/adapters/strava"
	"github.com/dnguyen800/ha-strava/internal/domain/model"
	"github.com/dnguyen800/ha-strava/internal/domain/reconcile"
	"github.com/dnguyen800/ha-strava/pkg/bus"
	"github.com/dnguyen800/ha-strava/pkg/logger"
)

// Bus topics. Host-side signals come in, integration events go out.
const (
	// TopicDataUpdate carries {"activities": [...]} after each
	// successful fetch.
	TopicDataUpdate = "strava.data_update"

	// TopicConfigUpdate announces integration option changes.
	TopicConfigUpdate = "strava.config_update"

	// Inbound host lifecycle signals.
	TopicHostStart        = "host.start"
	TopicPublicURLChange  = "host.public_url_change"
	TopicUnitSystemChange = "host.unit_system_change"
	TopicReload           = "strava.reload"
	TopicOptionsChange    = "strava.options_change"
)

// Service owns the integration's components and their lifecycle.
type Service struct {
	mu sync.Mutex

	// Configuration
	creds          model.Credentials
	publicURL      string
	storePath      string
	queueSize      int
	httpTimeout    time.Duration
	teardownOnStop bool
	stravaOpts     []strava.Option
	reconcileOpts  []reconcile.Option

	// Components
	bus        *bus.Bus
	store      *store.FileStore
	client     *strava.Client
	queue      *queue.InMemoryQueue
	worker     *worker.FetchWorker
	reconciler *reconcile.Reconciler

	// Listener unsubscribe handles, released on Stop.
	unsubs []bus.Unsubscribe

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storePath:   "strava_subscription.json",
		queueSize:   16,
		httpTimeout: 10 * time.Second,
		bus:         bus.New(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Bus returns the event bus so the host can fire lifecycle signals and
// subscribe to integration events.
func (s *Service) Bus() *bus.Bus {
	return s.bus
}

// Start initializes the components and registers every bus listener
// exactly once. It does not fire the startup sequence itself: the host
// fires TopicHostStart once its HTTP surface is reachable, because
// reconciliation self-probes the public callback URL.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.store = store.NewFileStore(store.WithPath(s.storePath))

	rec, err := s.store.Load(ctx)
	if err != nil {
		cancel()
		return err
	}
	// Seed credentials from process config on first run.
	if rec.ClientID == "" && s.creds.ClientID != "" {
		rec.ClientID = s.creds.ClientID
		rec.ClientSecret = s.creds.ClientSecret
		if err := s.store.Save(ctx, rec); err != nil {
			cancel()
			return err
		}
	}

	authed := strava.NewAuthClient(runCtx, rec.Creds(), rec.Token, s.store.SaveToken)

	clientOpts := append([]strava.Option{
		strava.WithTimeout(s.httpTimeout),
		strava.WithPublishFunc(s.publishActivities),
	}, s.stravaOpts...)
	s.client = strava.NewClient(authed, clientOpts...)

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.worker = worker.New(s.queue, s.client)
	go s.worker.Run(runCtx)

	s.reconciler = reconcile.New(s.client, s.store, s.publicURL, s.reconcileOpts...)

	s.registerListeners()

	s.started = true
	s.logger.Info(ctx, "strava integration started",
		logger.String("public_url", s.publicURL),
		logger.Int("queue_size", s.queueSize),
	)
	return nil
}

// registerListeners maps host signals to actions. Called exactly once
// from Start; registering twice would double every fetch and
// reconciliation, so the handles are owned here and released on Stop.
func (s *Service) registerListeners() {
	s.unsubs = append(s.unsubs,
		s.bus.Subscribe(TopicHostStart, func(ctx context.Context, _ bus.Event) {
			s.reconcileAndFetch(ctx, model.TriggerStartup)
		}),
		s.bus.Subscribe(TopicReload, func(ctx context.Context, _ bus.Event) {
			s.reconcileAndFetch(ctx, model.TriggerReload)
		}),
		s.bus.Subscribe(TopicPublicURLChange, func(ctx context.Context, ev bus.Event) {
			if url, ok := ev.Data.(string); ok && url != "" {
				s.setPublicURL(url)
			}
			s.reconcile(ctx)
		}),
		s.bus.Subscribe(TopicUnitSystemChange, func(ctx context.Context, _ bus.Event) {
			s.fetch(ctx, model.TriggerUnitSystem)
		}),
		s.bus.Subscribe(TopicOptionsChange, func(ctx context.Context, _ bus.Event) {
			s.bus.Fire(ctx, TopicConfigUpdate, struct{}{})
			s.fetch(ctx, model.TriggerConfigUpdate)
		}),
	)
}

// Stop releases the bus listeners and shuts down the pipeline.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil

	var teardownErr error
	if s.teardownOnStop {
		teardownErr = s.reconciler.Teardown(ctx)
		if teardownErr != nil {
			s.logger.Error(ctx, "could not remove webhook subscription", logger.Error(teardownErr))
		}
	}

	_ = s.queue.Close()
	if err := s.worker.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker did not stop cleanly", logger.Error(err))
	}
	if s.cancel != nil {
		s.cancel()
	}

	s.started = false
	s.logger.Info(ctx, "strava integration stopped")
	return teardownErr
}

// Enqueue implements the webhook endpoint's dependency: hand a trigger to
// the worker without blocking the HTTP response.
func (s *Service) Enqueue(ctx context.Context, t queue.Trigger) bool {
	if t.Time.IsZero() {
		t.Time = time.Now()
	}
	return s.queue.Enqueue(ctx, t)
}

// WebhookID implements the webhook endpoint's dependency: the currently
// stored subscription id. An unreadable record yields -1, the same
// sentinel as an unparsable notification, so it can never collide with a
// real id carried in a request body.
func (s *Service) WebhookID(ctx context.Context) int64 {
	cfg, err := s.store.LoadConfig(ctx)
	if err != nil {
		s.logger.Warn(ctx, "could not read stored webhook id", logger.Error(err))
		return -1
	}
	return cfg.WebhookID
}

// Reconcile runs one subscription reconciliation pass.
func (s *Service) Reconcile(ctx context.Context) error {
	return s.reconciler.Reconcile(ctx)
}

func (s *Service) publishActivities(ctx context.Context, activities []model.Activity) {
	s.bus.Fire(ctx, TopicDataUpdate, map[string]any{"activities": activities})
}

func (s *Service) reconcileAndFetch(ctx context.Context, reason string) {
	s.reconcile(ctx)
	s.fetch(ctx, reason)
}

func (s *Service) reconcile(ctx context.Context) {
	if err := s.reconciler.Reconcile(ctx); err != nil {
		// Already logged with context by the reconciler; the next signal
		// starts a fresh attempt.
		return
	}
}

func (s *Service) fetch(ctx context.Context, reason string) {
	if !s.Enqueue(ctx, queue.Trigger{Reason: reason}) {
		s.logger.Warn(ctx, "fetch trigger dropped", logger.String("reason", reason))
	}
}

func (s *Service) setPublicURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publicURL = url
	s.reconciler.SetPublicURL(url)
}
