package core

// Immediate returns a computation that is ready with v on its first poll.
func Immediate[T any](v T) Future[T] {
	return FutureFunc[T](func(*Context) Poll[T] {
		return Ready(v)
	})
}

// FromFunc returns a computation that runs fn on its first poll and is ready
// with its result.
func FromFunc[T any](fn func() T) Future[T] {
	return FutureFunc[T](func(*Context) Poll[T] {
		return Ready(fn())
	})
}

// Lazy defers building a computation until it is first polled.
func Lazy[T any](build func() Future[T]) Future[T] {
	return &lazyFuture[T]{build: build}
}

type lazyFuture[T any] struct {
	build func() Future[T]
	inner Future[T]
}

func (f *lazyFuture[T]) Poll(cx *Context) Poll[T] {
	if f.inner == nil {
		f.inner = f.build()
		f.build = nil
	}
	return f.inner.Poll(cx)
}

// Map applies fn to the value of f once it is ready.
func Map[A, B any](f Future[A], fn func(A) B) Future[B] {
	return FutureFunc[B](func(cx *Context) Poll[B] {
		p := f.Poll(cx)
		if p.IsPending() {
			return Pending[B]()
		}
		return Ready(fn(p.Value()))
	})
}

// Discard drops the value of f.
func Discard[T any](f Future[T]) Future[Unit] {
	return Map(f, func(T) Unit { return Unit{} })
}

// Then runs f and, once it is ready, the computation next builds from its value.
func Then[A, B any](f Future[A], next func(A) Future[B]) Future[B] {
	return &thenFuture[A, B]{first: f, next: next}
}

type thenFuture[A, B any] struct {
	first  Future[A]
	next   func(A) Future[B]
	second Future[B]
}

func (f *thenFuture[A, B]) Poll(cx *Context) Poll[B] {
	if f.second == nil {
		p := f.first.Poll(cx)
		if p.IsPending() {
			return Pending[B]()
		}
		f.second = f.next(p.Value())
		f.first, f.next = nil, nil
	}
	return f.second.Poll(cx)
}

// Pair holds the values of two joined computations.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Join2 advances a and b together and is ready when both are.
// Both share the polling task, so a wake from either re-polls the pair.
func Join2[A, B any](a Future[A], b Future[B]) Future[Pair[A, B]] {
	return &join2Future[A, B]{a: a, b: b}
}

type join2Future[A, B any] struct {
	a      Future[A]
	b      Future[B]
	result Pair[A, B]
}

func (f *join2Future[A, B]) Poll(cx *Context) Poll[Pair[A, B]] {
	if f.a != nil {
		if p := f.a.Poll(cx); p.IsReady() {
			f.result.First = p.Value()
			f.a = nil
		}
	}
	if f.b != nil {
		if p := f.b.Poll(cx); p.IsReady() {
			f.result.Second = p.Value()
			f.b = nil
		}
	}
	if f.a != nil || f.b != nil {
		return Pending[Pair[A, B]]()
	}
	return Ready(f.result)
}

// JoinAll advances every computation together and is ready with their values,
// in argument order, once all of them are.
func JoinAll[T any](futures ...Future[T]) Future[[]T] {
	return &joinAllFuture[T]{
		pending: append([]Future[T](nil), futures...),
		values:  make([]T, len(futures)),
	}
}

type joinAllFuture[T any] struct {
	pending []Future[T]
	values  []T
}

func (f *joinAllFuture[T]) Poll(cx *Context) Poll[[]T] {
	remaining := 0
	for i, inner := range f.pending {
		if inner == nil {
			continue
		}
		if p := inner.Poll(cx); p.IsReady() {
			f.values[i] = p.Value()
			f.pending[i] = nil
			continue
		}
		remaining++
	}
	if remaining > 0 {
		return Pending[[]T]()
	}
	return Ready(f.values)
}

// Yield returns a computation that is pending on its first poll, after waking
// itself, and ready on the next one. It lets other queued tasks run first.
func Yield() Future[Unit] {
	yielded := false
	return FutureFunc[Unit](func(cx *Context) Poll[Unit] {
		if yielded {
			return Ready(Unit{})
		}
		yielded = true
		cx.Waker().Wake()
		return Pending[Unit]()
	})
}
