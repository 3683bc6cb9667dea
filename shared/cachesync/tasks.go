package cachesync

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Tasks runs detached background work on a lifecycle context owned by the component,
// never on a caller's request context. Callers cannot cancel a task once started; only
// Close cancels the shared context.
type Tasks struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger zerolog.Logger
}

// NewTasks creates a task runner with its own lifecycle context.
func NewTasks(logger zerolog.Logger) *Tasks {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tasks{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Go starts fn in a new goroutine. A panic in fn is logged and swallowed.
func (t *Tasks) Go(scope string, fn func(ctx context.Context)) {
	t.wg.Go(func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				t.logger.Error().Str("scope", scope).Interface("panic", recovered).Msg("Background task panicked")
			}
		}()
		fn(t.ctx)
	})
}

// Context returns the lifecycle context shared by all tasks.
func (t *Tasks) Context() context.Context {
	return t.ctx
}

// Wait blocks until every started task, including tasks started by tasks, has finished.
func (t *Tasks) Wait() {
	t.wg.Wait()
}

// Close cancels the lifecycle context and waits for running tasks to return.
func (t *Tasks) Close() {
	t.cancel()
	t.wg.Wait()
}

// future is the pending result of a read started ahead of the moment it is needed.
type future[V any] struct {
	done  chan struct{}
	value V
	err   error
}

func newFuture[V any]() *future[V] {
	return &future[V]{done: make(chan struct{})}
}

func (f *future[V]) resolve(value V, err error) {
	f.value, f.err = value, err
	close(f.done)
}

func (f *future[V]) await(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}
