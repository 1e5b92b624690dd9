// Package repository persists the rating state to a flat JSON file
// guarded by a cross-process advisory lock.
package repository

import (
	"context"

	"github.com/okian/arena/internal/domain/model"
)

// Store provides read/write access to the rating state.
type Store interface {
	// Load reads the durable state under a shared lock. An absent file
	// yields a fresh state seeded from the roster.
	Load(ctx context.Context) (*model.RatingState, error)

	// WithLock acquires the writer-exclusive lock, loads the current
	// state, applies fn, persists the result, and releases the lock.
	// It is the sole mutation path for rating state; the returned
	// snapshot reflects the persisted post-fn state.
	WithLock(ctx context.Context, fn func(*model.RatingState) error) (*model.RatingState, error)
}
