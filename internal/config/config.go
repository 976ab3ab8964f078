// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// PublicURL is the externally reachable base URL of this instance.
	// The webhook callback URL is derived from it.
	PublicURL string `koanf:"public_url"`

	// ClientID and ClientSecret identify the Strava API application.
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`

	// StorePath locates the persisted subscription record.
	StorePath string `koanf:"store_path"`

	// QueueSize bounds the in-memory fetch-trigger queue.
	QueueSize int `koanf:"queue_size"`

	// HTTPTimeoutMS caps every outbound API call.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// TeardownOnStop deletes the remote webhook subscription on shutdown.
	TeardownOnStop bool `koanf:"teardown_on_stop"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:      "info",
		Addr:          ":8080",
		StorePath:     "strava_subscription.json",
		QueueSize:     16,
		HTTPTimeoutMS: 10_000,
	}
}
