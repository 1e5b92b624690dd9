package content

import "errors"

// Sentinel kinds for content loading errors.
var (
	ErrRoster  = errors.New("roster load failed")
	ErrCatalog = errors.New("joke catalog load failed")
)
