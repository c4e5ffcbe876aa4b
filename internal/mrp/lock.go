package mrp

import (
	"context"
	"sync"
)

// LocalLock is an in-process Lock for single-instance deployments and
// tests. Distributed deployments use the Redis lock instead.
type LocalLock struct {
	mu sync.Mutex
}

// NewLocalLock builds an in-process run lock.
func NewLocalLock() *LocalLock {
	return &LocalLock{}
}

// Acquire reports false when a run already holds the lock.
func (l *LocalLock) Acquire(ctx context.Context) (bool, error) {
	return l.mu.TryLock(), nil
}

// Release frees the lock.
func (l *LocalLock) Release(ctx context.Context) error {
	l.mu.Unlock()
	return nil
}
