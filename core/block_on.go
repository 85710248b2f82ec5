package core

import "context"

// BlockOn drives future to completion on the calling goroutine and returns
// its value. Between polls the goroutine parks until the future's waker is
// called; no executor or ready queue is involved.
func BlockOn[T any](future Future[T]) T {
	v, _ := BlockOnContext(context.Background(), future)
	return v
}

// BlockOnContext is BlockOn that gives up when ctx is done. The future is
// left in whatever state its last poll produced.
func BlockOnContext[T any](ctx context.Context, future Future[T]) (T, error) {
	signal := make(chan struct{}, 1)
	cx := NewContext(WakerFunc(func() {
		select {
		case signal <- struct{}{}:
		default:
		}
	}))

	for {
		if p := future.Poll(cx); p.IsReady() {
			return p.Value(), nil
		}

		select {
		case <-signal:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}
