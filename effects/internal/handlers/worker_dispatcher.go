package handlers

import (
	"context"
)

// WorkerDispatcher hands out the channel a message should be queued on.
type WorkerDispatcher[T any] interface {
	GetChannelOf(msg T) chan T
	// Stopped is closed once the worker goroutine has returned.
	Stopped() <-chan struct{}
}

type singleQueue[T any] struct {
	effectCh chan T
	stopped  chan struct{}
}

func (q singleQueue[T]) GetChannelOf(_ T) chan T {
	return q.effectCh
}

func (q singleQueue[T]) Stopped() <-chan struct{} {
	return q.stopped
}

// NewSingleQueue starts one worker that handles messages in arrival order.
// When ctx is cancelled the worker handles whatever is still buffered and exits.
func NewSingleQueue[T any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, T),
) WorkerDispatcher[T] {
	effCh := make(chan T, bufferSize)
	stopped := make(chan struct{})
	ready := make(chan struct{})

	go func(ch chan T) {
		defer close(stopped)
		close(ready)
		for {
			select {
			case msg := <-ch:
				handleFn(ctx, msg)
			case <-ctx.Done():
				for {
					select {
					case msg := <-ch:
						handleFn(context.WithoutCancel(ctx), msg)
					default:
						return
					}
				}
			}
		}
	}(effCh)

	<-ready

	return singleQueue[T]{effectCh: effCh, stopped: stopped}
}
