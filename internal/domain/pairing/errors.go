package pairing

import "errors"

// Sentinel kinds for pairing errors.
var (
	ErrNoEligibleCategory = errors.New("no category is covered by at least two models")
)
