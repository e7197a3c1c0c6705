package internal

import (
	"context"
	"sync"
)

// ConnectionManager builds a value exactly once, even when called concurrently
// from multiple goroutines, and hands the same result to every caller.
type ConnectionManager[T any] struct {
	once  sync.Once
	value T
	err   error
	ready chan struct{}
}

// NewConnectionManager creates a new ConnectionManager instance ready for use.
func NewConnectionManager[T any]() *ConnectionManager[T] {
	return &ConnectionManager[T]{
		ready: make(chan struct{}),
	}
}

// Initialize runs fn exactly once. Concurrent callers wait for the first call
// to finish. The context passed to the first call is used for initialization.
func (cm *ConnectionManager[T]) Initialize(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	cm.once.Do(func() {
		cm.value, cm.err = fn(ctx)
		close(cm.ready)
	})

	<-cm.ready
	return cm.value, cm.err
}

// Error returns the error from the initialization attempt, if any.
// This can be called to check the initialization status without triggering it.
func (cm *ConnectionManager[T]) Error() error {
	select {
	case <-cm.ready:
		return cm.err
	default:
		return nil
	}
}

// IsInitialized returns true if the initialization has been attempted.
func (cm *ConnectionManager[T]) IsInitialized() bool {
	select {
	case <-cm.ready:
		return true
	default:
		return false
	}
}
