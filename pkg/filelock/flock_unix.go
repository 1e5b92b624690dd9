//go:build unix

package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

const lockFilePermission = 0o644

// flockLocker implements Locker with flock(2) on a dedicated lock file.
// Each acquisition opens its own descriptor, so concurrent goroutines in
// one process contend through the kernel exactly like separate processes.
type flockLocker struct {
	path string
}

// New returns a Locker backed by the lock file at path.
func New(path string) Locker {
	return &flockLocker{path: path}
}

func (l *flockLocker) Lock(ctx context.Context) (func() error, error) {
	return l.acquire(ctx, unix.LOCK_EX)
}

func (l *flockLocker) RLock(ctx context.Context) (func() error, error) {
	return l.acquire(ctx, unix.LOCK_SH)
}

func (l *flockLocker) acquire(ctx context.Context, how int) (func() error, error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, lockFilePermission)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", l.path, err)
	}

	for {
		err := unix.Flock(int(f.Fd()), how|unix.LOCK_NB)
		if err == nil {
			return func() error {
				// Closing the descriptor drops the flock as well.
				if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
					_ = f.Close()
					return fmt.Errorf("unlock %s: %w", l.path, err)
				}
				return f.Close()
			}, nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			_ = f.Close()
			return nil, fmt.Errorf("flock %s: %w", l.path, err)
		}

		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, fmt.Errorf("flock %s: %w", l.path, ErrTimeout)
		case <-time.After(pollInterval):
		}
	}
}
