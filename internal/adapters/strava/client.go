// Package strava talks to the Strava API: recent activities, reverse
// geocoding of their start coordinates, and webhook subscription
// management.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dnguyen800/ha-strava/internal/domain/model"
	"github.com/dnguyen800/ha-strava/pkg/logger"
	"github.com/dnguyen800/ha-strava/pkg/metrics"
)

// Default endpoints and client configuration.
const (
	defaultAPIBase         = "https://www.strava.com/api/v3"
	defaultSubscriptionURL = "https://www.strava.com/api/v3/push_subscriptions"
	defaultGeocodeBase     = "https://geocode.xyz"
	defaultTimeout         = 10 * time.Second
)

// PublishFunc receives the normalized activity list exactly once per
// successful fetch.
type PublishFunc func(ctx context.Context, activities []model.Activity)

// Client is the Strava API adapter.
type Client struct {
	authed  *http.Client // bearer-authenticated, for athlete endpoints
	plain   *http.Client // unauthenticated, for geocoding and subscriptions
	timeout time.Duration

	apiBase         string
	subscriptionURL string
	geocodeBase     string

	publish PublishFunc
	logger  logger.Logger
}

// NewClient creates a Client. The authenticated HTTP client is supplied by
// the caller (see NewAuthClient); request timeouts are applied to both
// clients unless they already carry one.
func NewClient(authed *http.Client, opts ...Option) *Client {
	c := &Client{
		authed:          authed,
		plain:           &http.Client{},
		timeout:         defaultTimeout,
		apiBase:         defaultAPIBase,
		subscriptionURL: defaultSubscriptionURL,
		geocodeBase:     defaultGeocodeBase,
		logger:          logger.Get().Named("strava"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.authed == nil {
		c.authed = &http.Client{}
	}
	if c.authed.Timeout == 0 {
		c.authed.Timeout = c.timeout
	}
	if c.plain.Timeout == 0 {
		c.plain.Timeout = c.timeout
	}

	return c
}

// FetchLatest retrieves up to model.MaxActivityPage recent activities,
// enriches each with a geocoded city and returns them sorted most recent
// first.
func (c *Client) FetchLatest(ctx context.Context) ([]model.Activity, error) {
	url := fmt.Sprintf("%s/athlete/activities?per_page=%d", c.apiBase, model.MaxActivityPage)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	resp, err := c.authed.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: activity list returned %d: %s", ErrNetwork, resp.StatusCode, body)
	}

	var raws []model.RawActivity
	if err := json.NewDecoder(resp.Body).Decode(&raws); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataFormat, err)
	}

	metrics.RecordActivitiesFetched(len(raws))

	activities := make([]model.Activity, 0, len(raws))
	for _, raw := range raws {
		city := c.resolveCity(ctx, raw)
		activities = append(activities, raw.Normalize(city))
	}
	model.SortByDateDesc(activities)

	return activities, nil
}

// FetchAndPublish runs a fetch and hands the result to the publish
// callback. Failures are logged and absorbed: the caller is a periodic or
// webhook-triggered background job, the next trigger retries naturally.
func (c *Client) FetchAndPublish(ctx context.Context) {
	start := time.Now()
	metrics.RecordFetch()

	activities, err := c.FetchLatest(ctx)
	if err != nil {
		metrics.RecordFetchError()
		c.logger.Error(ctx, "could not fetch strava activities", logger.Error(err))
		return
	}

	metrics.RecordFetchLatency(float64(time.Since(start).Milliseconds()))

	if c.publish != nil {
		c.publish(ctx, activities)
		metrics.RecordActivitiesPublished(len(activities))
	}
}
