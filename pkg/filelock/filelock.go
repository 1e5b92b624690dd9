// Package filelock provides advisory locking around the durable rating
// state so that at most one writer at a time touches the file, across
// every process sharing it.
package filelock

import (
	"context"
	"errors"
	"time"
)

// How often a blocked acquisition retries the underlying lock.
const pollInterval = 10 * time.Millisecond

// Sentinel kinds for lock errors.
var (
	ErrTimeout = errors.New("lock acquisition timed out")
)

// Locker guards a shared file. Lock takes the writer-exclusive lock,
// RLock the shared one; both poll until granted or ctx expires, in which
// case the error wraps ErrTimeout. The returned release func must be
// called exactly once.
type Locker interface {
	Lock(ctx context.Context) (release func() error, err error)
	RLock(ctx context.Context) (release func() error, err error)
}
