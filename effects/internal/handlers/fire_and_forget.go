package handlers

import (
	"context"
)

// NewFireAndForgetHandler starts a single-worker handler for payloads that produce no result.
// Closing the handler cancels the worker, waits for buffered payloads to be handled,
// and then runs teardown.
func NewFireAndForgetHandler[P any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, P),
	teardown func(),
) FireAndForgetHandler[P] {
	ctx, cancelFn := context.WithCancel(ctx)
	dispatcher := NewSingleQueue(ctx, bufferSize, handleFn)
	return FireAndForgetHandler[P]{
		effectScope: newEffectScope(
			dispatcher,
			func() {
				cancelFn()
				<-dispatcher.Stopped()
				teardown()
			},
		),
	}
}

type FireAndForgetHandler[P any] struct {
	*effectScope[P]
}

// FireAndForgetEffect queues payload for the worker. It gives up when ctx is done
// or the worker has already stopped.
func (ffh FireAndForgetHandler[P]) FireAndForgetEffect(ctx context.Context, payload P) {
	if ctx.Err() != nil {
		return
	}
	select {
	case <-ctx.Done():
	case <-ffh.dispatcher.Stopped():
	case ffh.dispatcher.GetChannelOf(payload) <- payload:
	}
}
