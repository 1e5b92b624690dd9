package repository

import (
	"time"

	"github.com/okian/arena/pkg/filelock"
)

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithLockTimeout bounds how long callers wait for the state lock before
// failing the operation.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *FileStore) {
		if timeout > 0 {
			s.lockTimeout = timeout
		}
	}
}

// WithLocker injects the lock implementation, mainly for tests.
func WithLocker(lock filelock.Locker) Option {
	return func(s *FileStore) {
		if lock != nil {
			s.lock = lock
		}
	}
}
