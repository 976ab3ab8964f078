package strava

import (
	"net/http"
	"time"

	"github.com/dnguyen800/ha-strava/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithAPIBase overrides the Strava API base URL.
func WithAPIBase(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.apiBase = base
		}
	}
}

// WithSubscriptionURL overrides the webhook subscription endpoint.
func WithSubscriptionURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.subscriptionURL = url
		}
	}
}

// WithGeocodeBase overrides the reverse-geocoding base URL.
func WithGeocodeBase(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.geocodeBase = base
		}
	}
}

// WithPlainClient sets the unauthenticated HTTP client.
func WithPlainClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.plain = client
		}
	}
}

// WithTimeout caps every outbound request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithPublishFunc sets the callback invoked once per successful fetch.
func WithPublishFunc(publish PublishFunc) Option {
	return func(c *Client) {
		c.publish = publish
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
