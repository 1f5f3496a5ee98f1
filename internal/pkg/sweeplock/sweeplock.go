// Package sweeplock provides a single-flight guard for periodic sweeps.
package sweeplock

import "sync"

// Lock guards one sweep kind so that at most one sweep of that kind runs at
// any instant. An overlapping trigger must be skipped, not queued: the cron
// driver re-fires every minute, so a lost trigger costs at most one tick.
type Lock struct {
	mu sync.Mutex
}

// New returns an unlocked sweep lock.
func New() *Lock {
	return &Lock{}
}

// TryAcquire reports whether the caller won the lock. On true the caller must
// call Release once the sweep finishes, regardless of outcome.
func (l *Lock) TryAcquire() bool {
	return l.mu.TryLock()
}

// Release unlocks the sweep. It panics if the lock is not held.
func (l *Lock) Release() {
	l.mu.Unlock()
}
