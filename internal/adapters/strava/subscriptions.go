package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dnguyen800/ha-strava/internal/domain/model"
)

// VerifyToken is the fixed token echoed through the subscription
// verification handshake.
const VerifyToken = "HA_STRAVA"

// Credentials identifies the API application for subscription management.
type Credentials = model.Credentials

// ListSubscriptions returns the webhook subscriptions registered for the
// credential pair. Strava keeps at most one per application.
func (c *Client) ListSubscriptions(ctx context.Context, creds Credentials) ([]model.Subscription, error) {
	q := url.Values{}
	q.Set("client_id", creds.ClientID)
	q.Set("client_secret", creds.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.subscriptionURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	resp, err := c.plain.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: subscription list returned %d: %s", ErrNetwork, resp.StatusCode, body)
	}

	var subs []model.Subscription
	if err := json.NewDecoder(resp.Body).Decode(&subs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataFormat, err)
	}
	return subs, nil
}

// CreateSubscription registers callbackURL for push notifications and
// returns the new subscription id.
func (c *Client) CreateSubscription(ctx context.Context, creds Credentials, callbackURL string) (int64, error) {
	form := url.Values{}
	form.Set("client_id", creds.ClientID)
	form.Set("client_secret", creds.ClientSecret)
	form.Set("callback_url", callbackURL)
	form.Set("verify_token", VerifyToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.subscriptionURL, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.plain.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("%w: subscription create returned %d: %s", ErrNetwork, resp.StatusCode, body)
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDataFormat, err)
	}
	return created.ID, nil
}

// DeleteSubscription removes the subscription with the given id, expecting
// a 204 from the remote service.
func (c *Client) DeleteSubscription(ctx context.Context, creds Credentials, id int64) error {
	form := url.Values{}
	form.Set("client_id", creds.ClientID)
	form.Set("client_secret", creds.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/%d", c.subscriptionURL, id), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.plain.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: subscription delete returned %d: %s", ErrNetwork, resp.StatusCode, body)
	}
	return nil
}
