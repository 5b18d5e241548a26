package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"promo-dispenser/internal/model"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 5 * time.Millisecond

// fileLock serialises mutations of a single data file.
// The mutex orders callers inside this process; the advisory lock on the
// sidecar file orders processes sharing the data directory. The data file
// itself is replaced by rename on every write, so it cannot carry the lock.
type fileLock struct {
	mu   sync.Mutex
	lock *flock.Flock
}

func newFileLock(dataPath string) *fileLock {
	return &fileLock{
		lock: flock.New(dataPath + ".lock"),
	}
}

// Lock blocks until both locks are held or ctx is done.
func (l *fileLock) Lock(ctx context.Context) error {
	l.mu.Lock()

	locked, err := l.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		l.mu.Unlock()
		if err == nil {
			err = ctx.Err()
		}
		return fmt.Errorf("%w: lock %s: %w", model.ErrIOFailure, l.lock.Path(), err)
	}

	return nil
}

// Unlock releases both locks.
func (l *fileLock) Unlock() error {
	defer l.mu.Unlock()

	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("%w: unlock %s: %w", model.ErrIOFailure, l.lock.Path(), err)
	}
	return nil
}
