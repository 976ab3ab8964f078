// Package webhook exposes the public endpoint the remote service calls:
// the subscription verification handshake and the push-notification
// receiver.
package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dnguyen800/ha-strava/internal/adapters/mq/queue"
	"github.com/dnguyen800/ha-strava/internal/domain/model"
	"github.com/dnguyen800/ha-strava/pkg/logger"
	"github.com/dnguyen800/ha-strava/pkg/metrics"
)

// Path is the public webhook endpoint path.
const Path = "/api/strava/webhook"

// Dependencies required by the endpoint. An interface bundle keeps the
// handler layer loosely coupled to the service wiring.
type Dependencies interface {
	// Enqueue pushes a fetch trigger for async processing. Returns false
	// on backpressure.
	Enqueue(ctx context.Context, t queue.Trigger) bool

	// WebhookID returns the currently stored subscription id.
	WebhookID(ctx context.Context) int64
}

// Server wires the webhook HTTP routes.
type Server struct {
	deps      Dependencies
	publicURL string
	logger    logger.Logger
}

// NewServer creates the endpoint bound to the instance's public URL.
func NewServer(deps Dependencies, publicURL string) *Server {
	return &Server{
		deps:      deps,
		publicURL: publicURL,
		logger:    logger.Get().Named("webhook"),
	}
}

// Register attaches the webhook routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc(Path, MetricsMiddleware(s.handleWebhook, "webhook"))
	mux.HandleFunc("/healthz", MetricsMiddleware(HandleHealth, "healthz"))
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	// The endpoint is public and CORS-open; the remote service calls it
	// without credentials.
	w.Header().Set("Access-Control-Allow-Origin", "*")

	switch r.Method {
	case http.MethodGet:
		s.handleChallenge(w, r)
	case http.MethodPost:
		s.handleNotification(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleChallenge answers the subscription verification handshake: a
// hub.challenge query parameter is echoed back verbatim.
func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	challenge := r.URL.Query().Get("hub.challenge")
	if challenge == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	metrics.RecordWebhookChallenge()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"hub.challenge": challenge})
}

// handleNotification receives a push notification. The handler always
// answers 200 so the remote service never disables the subscription over
// a response code, and it never blocks on the fetch: the remote service
// enforces a short response deadline, so work is enqueued and the
// response returns immediately.
func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	n := model.DecodeNotification(r.Body, r.Host)

	s.logger.Debug(r.Context(), "webhook notification received",
		logger.String("host", n.Host),
		logger.Int64("subscription_id", n.SubscriptionID),
	)

	// A notification is dispatched when EITHER the subscription id or the
	// request host matches. Do not tighten to AND without re-deriving the
	// match semantics against the remote service's behavior.
	if s.matches(r.Context(), n) {
		t := queue.Trigger{Reason: model.TriggerWebhook, Source: n.Host}
		if s.deps.Enqueue(r.Context(), t) {
			metrics.RecordWebhookNotification("dispatched")
		} else {
			metrics.RecordWebhookNotification("ignored")
			s.logger.Warn(r.Context(), "fetch trigger dropped, queue full")
		}
	} else {
		metrics.RecordWebhookNotification("ignored")
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) matches(ctx context.Context, n model.Notification) bool {
	// Negative ids are sentinels (unparsable body, unreadable record) and
	// never count as an id match.
	idMatch := n.SubscriptionID >= 0 && n.SubscriptionID == s.deps.WebhookID(ctx)
	hostMatch := n.Host != "" && strings.Contains(s.publicURL, n.Host)
	return idMatch || hostMatch
}
