package session

import "errors"

// Sentinel kinds for session errors. Expired and unknown ids share one
// kind on purpose; distinguishing them would leak registry internals.
var (
	ErrNotFound = errors.New("battle not found or expired")
)
