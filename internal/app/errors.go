package service

import "errors"

// Sentinel kinds for vote validation errors.
var (
	ErrInvalidWinner = errors.New("winner is not part of the battle")

	// ErrModelNotFound reports a rank lookup for a model the roster
	// has never seen.
	ErrModelNotFound = errors.New("model not found")
)
