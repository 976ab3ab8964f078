package config

import (
	"errors"
)

// Error kinds callers can match with errors.Is.
var (
	// ErrInvalidConfig marks a loaded configuration that failed validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig wraps failures reading or decoding a config source.
	ErrLoadConfig = errors.New("load config failed")
)
