package store

import "errors"

// Sentinel kinds for store errors.
var (
	ErrLoad    = errors.New("record load failed")
	ErrSave    = errors.New("record save failed")
	ErrCorrupt = errors.New("record corrupt")
)
