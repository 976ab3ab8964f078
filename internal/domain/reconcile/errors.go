package reconcile

import "errors"

// Sentinel kinds for reconciliation errors.
var (
	ErrNoPublicURL         = errors.New("no public URL available")
	ErrCallbackUnreachable = errors.New("callback URL unreachable")
	ErrAmbiguousState      = errors.New("ambiguous remote subscription state")
)
