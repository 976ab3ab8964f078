package strava

import "errors"

// Sentinel kinds for API errors.
var (
	ErrNetwork    = errors.New("strava network error")
	ErrDataFormat = errors.New("strava response unparsable")
)
