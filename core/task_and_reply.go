package core

import (
	"context"
	"errors"
	"sync"
)

// =============================================================================
// Spawn with result
// =============================================================================

type joinState[T any] struct {
	mu       sync.Mutex
	done     bool
	value    T
	panicErr *TaskPanicError
	waker    Waker
	doneCh   chan struct{}
}

func (s *joinState[T]) complete(value T, panicErr *TaskPanicError) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	s.value = value
	s.panicErr = panicErr
	waker := s.waker
	s.waker = nil
	close(s.doneCh)
	s.mu.Unlock()

	if waker != nil {
		waker.Wake()
	}
}

// JoinHandle is the result side of a task started with SpawnWithHandle.
//
// A JoinHandle is a Future: another task can poll it to wait for the value.
// Goroutines outside the executor use Wait.
type JoinHandle[T any] struct {
	id    TaskID
	state *joinState[T]
}

var _ Future[int] = (*JoinHandle[int])(nil)

// TaskID returns the id of the task producing the value.
func (h *JoinHandle[T]) TaskID() TaskID { return h.id }

// Done reports whether the task finished or panicked.
func (h *JoinHandle[T]) Done() bool {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	return h.state.done
}

// Poll is ready with the task's value once it finished. If the task
// panicked, Poll panics with the *TaskPanicError.
func (h *JoinHandle[T]) Poll(cx *Context) Poll[T] {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	if !h.state.done {
		h.state.waker = cx.Waker()
		return Pending[T]()
	}
	if h.state.panicErr != nil {
		panic(h.state.panicErr)
	}
	return Ready(h.state.value)
}

// Wait blocks until the task finished and returns its value.
// It returns a *TaskPanicError if the task panicked, or ctx.Err().
func (h *JoinHandle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-h.state.doneCh:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}

	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	if h.state.panicErr != nil {
		var zero T
		return zero, h.state.panicErr
	}
	return h.state.value, nil
}

// joinFuture runs the user computation and publishes its outcome.
type joinFuture[T any] struct {
	inner Future[T]
	name  string
	state *joinState[T]
}

func (f *joinFuture[T]) Poll(cx *Context) (result Poll[Unit]) {
	defer func() {
		if rec := recover(); rec != nil {
			id, _ := TaskIDFromContext(cx)
			var zero T
			f.state.complete(zero, &TaskPanicError{TaskID: id, Name: f.name, Value: rec})
			panic(rec)
		}
	}()

	p := f.inner.Poll(cx)
	if p.IsPending() {
		return Pending[Unit]()
	}
	f.state.complete(p.Value(), nil)
	return Ready(Unit{})
}

// SpawnWithHandle queues future on sp and returns a handle to its value.
// Like Spawn it panics when the ready queue is full or sp is closed.
func SpawnWithHandle[T any](sp *Spawner, future Future[T]) *JoinHandle[T] {
	h, err := trySpawnWithHandle(sp, future)
	if err != nil {
		if h != nil && errors.Is(err, ErrQueueFull) {
			sp.sched.overflow(h.id)
		}
		panic(err)
	}
	return h
}

// TrySpawnWithHandle is SpawnWithHandle returning ErrQueueFull,
// ErrSpawnerClosed or ErrNilFuture instead of panicking.
func TrySpawnWithHandle[T any](sp *Spawner, future Future[T]) (*JoinHandle[T], error) {
	h, err := trySpawnWithHandle(sp, future)
	if errors.Is(err, ErrQueueFull) {
		sp.sched.reject(RejectReasonQueueFull)
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

func trySpawnWithHandle[T any](sp *Spawner, future Future[T]) (*JoinHandle[T], error) {
	if future == nil {
		return nil, ErrNilFuture
	}

	state := &joinState[T]{doneCh: make(chan struct{})}
	name := resolveFutureName(future)
	t, err := sp.spawn(name, &joinFuture[T]{inner: future, name: name, state: state})
	if t == nil {
		return nil, err
	}
	return &JoinHandle[T]{id: t.id, state: state}, err
}
