//go:build !unix

package filelock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// mutexLocker is the fallback for platforms without flock(2). It guards
// the state within a single process only, which limits deployments on
// those platforms to one service instance per state file.
type mutexLocker struct {
	mu sync.RWMutex
}

// New returns an in-process Locker; path is accepted for interface parity
// but unused.
func New(_ string) Locker {
	return &mutexLocker{}
}

func (l *mutexLocker) Lock(ctx context.Context) (func() error, error) {
	return poll(ctx, l.mu.TryLock, func() { l.mu.Unlock() })
}

func (l *mutexLocker) RLock(ctx context.Context) (func() error, error) {
	return poll(ctx, l.mu.TryRLock, func() { l.mu.RUnlock() })
}

func poll(ctx context.Context, try func() bool, unlock func()) (func() error, error) {
	for {
		if try() {
			var once sync.Once
			return func() error {
				once.Do(unlock)
				return nil
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("in-process lock: %w", ErrTimeout)
		case <-time.After(pollInterval):
		}
	}
}
