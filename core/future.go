package core

// Unit is the value carried by computations whose result is irrelevant.
type Unit = struct{}

// =============================================================================
// Poll: Outcome of advancing a Future once
// =============================================================================

// Poll is the result of one Future.Poll call.
// A Poll is either ready with a value or pending.
type Poll[T any] struct {
	value T
	ready bool
}

// Ready returns a Poll that carries the final value v.
func Ready[T any](v T) Poll[T] {
	return Poll[T]{value: v, ready: true}
}

// Pending returns a Poll that signals "not ready yet".
func Pending[T any]() Poll[T] {
	return Poll[T]{}
}

// IsReady reports whether the computation finished.
func (p Poll[T]) IsReady() bool { return p.ready }

// IsPending reports whether the computation must be polled again.
func (p Poll[T]) IsPending() bool { return !p.ready }

// Value returns the final value. It is the zero value for a pending Poll.
func (p Poll[T]) Value() T { return p.value }

// =============================================================================
// Waker: Capability to resume a parked computation
// =============================================================================

// Waker is the capability handed to a pending computation.
// Calling Wake causes whoever owns the computation to poll it again.
//
// Wake may be called from any goroutine, any number of times.
// Extra calls only cause extra polls.
type Waker interface {
	Wake()
}

// WakerFunc adapts an ordinary function to the Waker interface.
type WakerFunc func()

// Wake calls f.
func (f WakerFunc) Wake() {
	if f != nil {
		f()
	}
}

// noopWaker is used when a Context is built without a waker.
type noopWaker struct{}

func (noopWaker) Wake() {}

// =============================================================================
// Context: Resumption context passed to Poll
// =============================================================================

// Context is passed to every Future.Poll call.
// It carries the Waker that must be stored by a computation that returns Pending.
type Context struct {
	waker Waker
}

// NewContext creates a Context around w. A nil w yields a Waker that does nothing.
func NewContext(w Waker) *Context {
	if w == nil {
		w = noopWaker{}
	}
	return &Context{waker: w}
}

// Waker returns the wake capability for the computation being polled.
func (cx *Context) Waker() Waker {
	if cx == nil || cx.waker == nil {
		return noopWaker{}
	}
	return cx.waker
}

// =============================================================================
// Future: Suspendable computation
// =============================================================================

// Future is a suspendable computation producing a T.
//
// Poll advances the computation as far as possible. When it cannot finish it
// must arrange for cx.Waker() to be called once progress is possible and
// return Pending. A computation that returns Pending without arranging a wake
// is never polled again.
//
// Poll must not be called again after it returned a ready Poll.
type Future[T any] interface {
	Poll(cx *Context) Poll[T]
}

// FutureFunc adapts a poll function to the Future interface.
type FutureFunc[T any] func(cx *Context) Poll[T]

// Poll calls f(cx).
func (f FutureFunc[T]) Poll(cx *Context) Poll[T] {
	return f(cx)
}
