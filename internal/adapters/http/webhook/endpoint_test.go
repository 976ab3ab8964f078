package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dnguyen800/ha-strava/internal/adapters/mq/queue"
	"github.com/dnguyen800/ha-strava/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeDeps records enqueued triggers.
type fakeDeps struct {
	webhookID int64
	enqueues  atomic.Int64
	full      bool
}

func (f *fakeDeps) Enqueue(_ context.Context, _ queue.Trigger) bool {
	if f.full {
		return false
	}
	f.enqueues.Add(1)
	return true
}

func (f *fakeDeps) WebhookID(_ context.Context) int64 {
	return f.webhookID
}

const testPublicURL = "https://ha.example.com"

func newTestServer(deps *fakeDeps) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(deps, testPublicURL).Register(mux)
	return mux
}

func TestChallengeEcho(t *testing.T) {
	mux := newTestServer(&fakeDeps{})

	req := httptest.NewRequest(http.MethodGet, Path+"?hub.challenge=abc123", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if body["hub.challenge"] != "abc123" {
		t.Errorf("expected challenge echoed exactly, got %q", body["hub.challenge"])
	}
}

func TestChallengeAbsent(t *testing.T) {
	mux := newTestServer(&fakeDeps{})

	req := httptest.NewRequest(http.MethodGet, Path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestNotificationDispatchMatrix(t *testing.T) {
	cases := []struct {
		name         string
		host         string
		body         string
		wantDispatch bool
	}{
		{"id and host match", "ha.example.com", `{"subscription_id": 99}`, true},
		{"id match only", "other.example.org", `{"subscription_id": 99}`, true},
		{"host match only", "ha.example.com", `{"subscription_id": 1}`, true},
		{"neither matches", "other.example.org", `{"subscription_id": 1}`, false},
		{"malformed body, host match", "ha.example.com", `{not json`, true},
		{"malformed body, no host match", "other.example.org", `{not json`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps := &fakeDeps{webhookID: 99}
			mux := newTestServer(deps)

			req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(tc.body))
			req.Host = tc.host
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			// The endpoint acknowledges every notification.
			if rec.Code != http.StatusOK {
				t.Errorf("expected 200 in all cases, got %d", rec.Code)
			}

			want := int64(0)
			if tc.wantDispatch {
				want = 1
			}
			if got := deps.enqueues.Load(); got != want {
				t.Errorf("expected %d dispatches, got %d", want, got)
			}
		})
	}
}

func TestNotificationSentinelsNeverIDMatch(t *testing.T) {
	// When the stored id is unavailable the dependency reports -1, the
	// same sentinel an unparsable body decodes to. Neither side of that
	// pair may produce an id match.
	cases := []struct {
		name string
		body string
	}{
		{"forged sentinel id", `{"subscription_id": -1}`},
		{"malformed body", `{not json`},
		{"missing id", `{}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps := &fakeDeps{webhookID: -1}
			mux := newTestServer(deps)

			req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(tc.body))
			req.Host = "other.example.org"
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("expected 200, got %d", rec.Code)
			}
			if got := deps.enqueues.Load(); got != 0 {
				t.Errorf("expected no dispatch for sentinel ids, got %d", got)
			}
		})
	}
}

func TestNotificationQueueFullStill200(t *testing.T) {
	deps := &fakeDeps{webhookID: 99, full: true}
	mux := newTestServer(deps)

	req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(`{"subscription_id": 99}`))
	req.Host = "ha.example.com"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 even under backpressure, got %d", rec.Code)
	}
}

func TestUnsupportedMethod(t *testing.T) {
	mux := newTestServer(&fakeDeps{})

	req := httptest.NewRequest(http.MethodPut, Path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unsupported method, got %d", rec.Code)
	}
}
