package effects

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/on-the-ground/effect_ive_flow/scheduler"
)

// Runtime is what an Effect needs from whoever runs it: supervised goroutines and
// a registry of cancellable work. Stores and test stores provide one (see Runner).
type Runtime interface {
	// Go runs fn on a supervised goroutine. It reports false, without running fn,
	// when the runtime is shutting down.
	Go(ctx context.Context, fn func(context.Context)) bool
	// Register records cancel under id until release is called.
	Register(id any, cancel context.CancelFunc) (release func())
	// Cancel cancels everything registered under id. Unknown ids are a no-op.
	Cancel(id any)
}

// Sink receives the values an effect produces, together with the context of the
// innermost effect that produced them. A consumer drops values whose context is
// already cancelled.
type Sink[A any] func(ctx context.Context, a A)

// Effect is a lazily started, cancellable unit of work producing zero or more
// values of A. The zero Effect is None.
type Effect[A any] struct {
	subscribe func(ctx context.Context, rt Runtime, sink Sink[A], done func())
}

// IsNone reports whether e does nothing.
func (e Effect[A]) IsNone() bool {
	return e.subscribe == nil
}

// Subscribe starts e. It does not block: asynchronous work is handed to rt or to a
// scheduler. done is called exactly once, when e completes or is cancelled.
func (e Effect[A]) Subscribe(ctx context.Context, rt Runtime, sink Sink[A], done func()) {
	var once sync.Once
	finish := func() { once.Do(done) }
	if e.subscribe == nil {
		finish()
		return
	}
	e.subscribe(ctx, rt, sink, finish)
}

// None completes immediately without a value.
func None[A any]() Effect[A] {
	return Effect[A]{}
}

// Just synchronously produces v.
func Just[A any](v A) Effect[A] {
	return Effect[A]{
		subscribe: func(ctx context.Context, _ Runtime, sink Sink[A], done func()) {
			if ctx.Err() == nil {
				sink(ctx, v)
			}
			done()
		},
	}
}

// FromAsync runs work on a supervised goroutine and produces its result.
// work should return promptly once ctx is done; its result is then discarded.
func FromAsync[A any](work func(ctx context.Context) A) Effect[A] {
	return Effect[A]{
		subscribe: func(ctx context.Context, rt Runtime, sink Sink[A], done func()) {
			spawn(ctx, rt, done, func(ctx context.Context) {
				v := work(ctx)
				if ctx.Err() == nil {
					sink(ctx, v)
				}
			})
		},
	}
}

// Catching runs a fallible operation and turns its outcome, success or failure,
// into an action. Failures travel as data; they never abort the store.
func Catching[T, A any](work func(ctx context.Context) (T, error), toAction func(Result[T]) A) Effect[A] {
	return FromAsync(func(ctx context.Context) A {
		return toAction(ResultFrom(work(ctx)))
	})
}

// Stream runs work on a supervised goroutine; every call to send produces a value.
// Values sent after cancellation are discarded.
func Stream[A any](work func(ctx context.Context, send func(A))) Effect[A] {
	return Effect[A]{
		subscribe: func(ctx context.Context, rt Runtime, sink Sink[A], done func()) {
			spawn(ctx, rt, done, func(ctx context.Context) {
				work(ctx, func(a A) {
					if ctx.Err() == nil {
						sink(ctx, a)
					}
				})
			})
		},
	}
}

// FireAndForget runs work for its side effects only.
func FireAndForget[A any](work func(ctx context.Context)) Effect[A] {
	return Effect[A]{
		subscribe: func(ctx context.Context, rt Runtime, _ Sink[A], done func()) {
			spawn(ctx, rt, done, work)
		},
	}
}

func spawn(ctx context.Context, rt Runtime, done func(), work func(context.Context)) {
	started := rt.Go(ctx, func(ctx context.Context) {
		defer done()
		work(ctx)
	})
	if !started {
		done()
	}
}

// Concatenate runs effects one after another: each starts only after its
// predecessor completed. Cancelling the surrounding context stops the sequence.
func Concatenate[A any](effs ...Effect[A]) Effect[A] {
	effs = withoutNone(effs)
	switch len(effs) {
	case 0:
		return None[A]()
	case 1:
		return effs[0]
	}
	return Effect[A]{
		subscribe: func(ctx context.Context, rt Runtime, sink Sink[A], done func()) {
			var next func(i int)
			next = func(i int) {
				if i == len(effs) || ctx.Err() != nil {
					done()
					return
				}
				effs[i].Subscribe(ctx, rt, sink, func() { next(i + 1) })
			}
			next(0)
		},
	}
}

// Merge runs effects concurrently and completes once all of them completed.
func Merge[A any](effs ...Effect[A]) Effect[A] {
	effs = withoutNone(effs)
	switch len(effs) {
	case 0:
		return None[A]()
	case 1:
		return effs[0]
	}
	return Effect[A]{
		subscribe: func(ctx context.Context, rt Runtime, sink Sink[A], done func()) {
			var remaining atomic.Int32
			remaining.Store(int32(len(effs)))
			for _, eff := range effs {
				eff.Subscribe(ctx, rt, sink, func() {
					if remaining.Add(-1) == 0 {
						done()
					}
				})
			}
		},
	}
}

func withoutNone[A any](effs []Effect[A]) []Effect[A] {
	kept := make([]Effect[A], 0, len(effs))
	for _, eff := range effs {
		if !eff.IsNone() {
			kept = append(kept, eff)
		}
	}
	return kept
}

// Map transforms every value e produces.
func Map[A, B any](e Effect[A], f func(A) B) Effect[B] {
	if e.IsNone() {
		return None[B]()
	}
	return Effect[B]{
		subscribe: func(ctx context.Context, rt Runtime, sink Sink[B], done func()) {
			e.Subscribe(ctx, rt, func(ctx context.Context, a A) {
				sink(ctx, f(a))
			}, done)
		},
	}
}

// ErrCancelled is the cause of a Cancellable scope stopped by Cancel, by a
// cancelInFlight restart or by its runtime shutting down.
var ErrCancelled = errors.New("effect cancelled")

// errCompleted ends the context of a Cancellable that ran to completion. Values
// it produced are still delivered.
var errCompleted = errors.New("effect completed")

type scopesKey struct{}

func withScope(ctx context.Context) (context.Context, context.CancelCauseFunc) {
	child, cancel := context.WithCancelCause(ctx)
	parents, ok := ctx.Value(scopesKey{}).([]context.Context)
	if !ok {
		parents = []context.Context{ctx}
	}
	scopes := append(parents[:len(parents):len(parents)], child)
	return context.WithValue(child, scopesKey{}, scopes), cancel
}

func stopped(ctx context.Context) bool {
	return ctx.Err() != nil && !errors.Is(context.Cause(ctx), errCompleted)
}

// Cancelled reports whether a value produced under ctx has to be discarded: ctx,
// or one of the Cancellable scopes it was derived from, was stopped before it
// completed. Consumers check it both when a value is produced and when it is
// taken from a queue.
func Cancelled(ctx context.Context) bool {
	if stopped(ctx) {
		return true
	}
	scopes, _ := ctx.Value(scopesKey{}).([]context.Context)
	for _, scope := range scopes {
		if stopped(scope) {
			return true
		}
	}
	return false
}

// Cancellable tags e with id so that Cancel(id) stops it. With cancelInFlight,
// effects already running under id are cancelled before e starts.
// id must be comparable.
func Cancellable[A any](e Effect[A], id any, cancelInFlight bool) Effect[A] {
	return Effect[A]{
		subscribe: func(ctx context.Context, rt Runtime, sink Sink[A], done func()) {
			if cancelInFlight {
				rt.Cancel(id)
			}
			if e.IsNone() {
				done()
				return
			}

			child, cancel := withScope(ctx)
			release := rt.Register(id, func() { cancel(ErrCancelled) })

			var once sync.Once
			end := func(cause error) {
				once.Do(func() {
					release()
					cancel(cause)
					done()
				})
			}
			stop := context.AfterFunc(child, func() { end(ErrCancelled) })
			e.Subscribe(child, rt, sink, func() {
				stop()
				end(errCompleted)
			})
		},
	}
}

// Cancel stops every effect tagged with id. Cancelling an unknown or finished id
// does nothing.
func Cancel[A any](id any) Effect[A] {
	return Effect[A]{
		subscribe: func(_ context.Context, rt Runtime, _ Sink[A], done func()) {
			rt.Cancel(id)
			done()
		},
	}
}

// Delay starts e after d on sched. Cancellation during the delay means e never starts.
func Delay[A any](e Effect[A], d time.Duration, sched scheduler.Scheduler) Effect[A] {
	if e.IsNone() {
		return e
	}
	return Effect[A]{
		subscribe: func(ctx context.Context, rt Runtime, sink Sink[A], done func()) {
			sched.Schedule(ctx, d, func() {
				if ctx.Err() != nil {
					done()
					return
				}
				e.Subscribe(ctx, rt, sink, done)
			})
		},
	}
}

// Debounce delays e and restarts the delay whenever another effect with the same id
// is started before it fired.
func Debounce[A any](e Effect[A], id any, d time.Duration, sched scheduler.Scheduler) Effect[A] {
	return Cancellable(Delay(e, d, sched), id, true)
}

// Frame is one step of KeyFrames: Value is produced, then Duration elapses before
// the next frame.
type Frame[A any] struct {
	Value    A
	Duration time.Duration
}

// KeyFrames produces the frames' values in order, the first one immediately and
// each following one after the preceding frame's duration.
func KeyFrames[A any](frames []Frame[A], sched scheduler.Scheduler) Effect[A] {
	effs := make([]Effect[A], len(frames))
	for i, frame := range frames {
		if i == 0 {
			effs[i] = Just(frame.Value)
			continue
		}
		effs[i] = Delay(Just(frame.Value), frames[i-1].Duration, sched)
	}
	return Concatenate(effs...)
}
