package repository

import "errors"

// Sentinel kinds for rating store errors.
var (
	ErrStateCorrupt = errors.New("rating state file is corrupt")
	ErrLockTimeout  = errors.New("state lock not acquired in time")
)
