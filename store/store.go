// Package store holds application state and runs the reducer loop.
//
// A Store applies actions one at a time: the reducer computes the next state,
// observers are notified, and the effect the reducer returned is started. Values
// produced by effects are sent back into the same store.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/on-the-ground/effect_ive_flow/config"
	"github.com/on-the-ground/effect_ive_flow/effects"
	"github.com/on-the-ground/effect_ive_flow/effects/log"
	"github.com/on-the-ground/effect_ive_flow/reducer"
)

// Store exposes a state S driven by actions A. Scoped stores share the root's
// reducer loop and only project its state and actions.
type Store[S, A any] struct {
	backend[S, A]
	journal <-chan Transition[S, A]
}

type backend[S, A any] interface {
	state() S
	send(ctx context.Context, a A)
	subscribe(observer func(S)) (unsubscribe func())
}

// Option configures a store created with New.
type Option[A any] func(*options[A])

type options[A any] struct {
	intercept *Interceptor[A]
}

// Interceptor takes over what a store's effects produce. Values go to Output
// instead of back into the store, Started is called before each non-empty effect
// is started and Done once it completed or was cancelled.
type Interceptor[A any] struct {
	Started func()
	Output  effects.Sink[A]
	Done    func()
}

// WithInterceptor routes effect output through i. A store built this way only
// reduces what is sent to it explicitly.
func WithInterceptor[A any](i Interceptor[A]) Option[A] {
	return func(o *options[A]) { o.intercept = &i }
}

// Transition records one reduced action.
type Transition[S, A any] struct {
	Action A
	Before S
	After  S
	Span   effects.TimeSpan
}

// New starts a store. The returned function tears it down: it cancels every
// running effect, waits for effect goroutines, closes the journal and returns the
// context New was given.
// Logging goes through the log handler installed on ctx, if any.
func New[S, A, E any](
	ctx context.Context,
	initial S,
	r reducer.Reducer[S, A, E],
	env E,
	cfg config.Config,
	opts ...Option[A],
) (*Store[S, A], func() context.Context) {
	cfg = cfg.Normalize()
	var o options[A]
	for _, opt := range opts {
		opt(&o)
	}
	storeCtx, cancel := context.WithCancel(ctx)
	rt := &root[S, A]{
		id:     uuid.New(),
		ctx:    storeCtx,
		logCtx: ctx,
		runner: effects.NewRunner(ctx, cfg.RegistryShards),
		st:     initial,
		reduce: func(s S, a A) (S, effects.Effect[A]) { return r(s, a, env) },
	}
	rt.started, rt.output, rt.done = func() {}, rt.send, func() {}
	if i := o.intercept; i != nil {
		if i.Started != nil {
			rt.started = i.Started
		}
		if i.Output != nil {
			rt.output = i.Output
		}
		if i.Done != nil {
			rt.done = i.Done
		}
	}
	var journal chan Transition[S, A]
	if cfg.JournalBufferSize > 0 {
		journal = make(chan Transition[S, A], cfg.JournalBufferSize)
		rt.journal = journal
	}
	log.Eff(ctx, log.LogDebug, "created store", map[string]interface{}{
		"storeId": rt.id.String(),
	})

	var once sync.Once
	teardown := func() context.Context {
		once.Do(func() {
			rt.mu.Lock()
			rt.closed = true
			rt.inbox = nil
			rt.mu.Unlock()

			cancel()
			rt.runner.Close()

			rt.mu.Lock()
			if rt.journal != nil {
				close(rt.journal)
				rt.journal = nil
			}
			rt.mu.Unlock()

			log.Eff(ctx, log.LogDebug, "store torn down", map[string]interface{}{
				"storeId": rt.id.String(),
			})
		})
		return ctx
	}
	return &Store[S, A]{backend: rt, journal: journal}, teardown
}

// Send applies a to the store. If no other send is being processed, the caller
// processes it, along with every action queued meanwhile, before returning.
// Otherwise a is queued behind the actions already waiting and processed by the
// goroutine that is already draining the queue.
func (s *Store[S, A]) Send(a A) {
	s.send(context.Background(), a)
}

// Deliver sends a value an effect produced under ctx. Like every effect output it
// is dropped, instead of reduced, when effects.Cancelled(ctx) holds by the time
// the store gets to it.
func (s *Store[S, A]) Deliver(ctx context.Context, a A) {
	s.send(ctx, a)
}

// State returns the current state.
func (s *Store[S, A]) State() S {
	return s.state()
}

// Subscribe calls observer with the current state and then after every reduced
// action, until unsubscribe is called. While another goroutine is processing
// actions, the initial call is made by that goroutine, in order with the
// notifications it delivers, and may happen after Subscribe returned.
func (s *Store[S, A]) Subscribe(observer func(S)) (unsubscribe func()) {
	return s.subscribe(observer)
}

// Transitions journals every reduced action. Transitions are dropped while the
// buffer is full. The channel is closed on teardown. Scoped stores and stores
// configured with a zero journal buffer return nil.
func (s *Store[S, A]) Transitions() <-chan Transition[S, A] {
	return s.journal
}

type envelope[A any] struct {
	ctx    context.Context
	action A
}

type observer[S any] struct {
	id uuid.UUID
	fn func(S)
}

type root[S, A any] struct {
	id     uuid.UUID
	ctx    context.Context
	logCtx context.Context
	runner *effects.Runner
	reduce func(S, A) (S, effects.Effect[A])

	started func()
	output  effects.Sink[A]
	done    func()

	mu        sync.Mutex
	st        S
	inbox     []envelope[A]
	joining   []observer[S]
	draining  bool
	closed    bool
	observers []observer[S]
	journal   chan Transition[S, A]
}

func (r *root[S, A]) state() S {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st
}

func (r *root[S, A]) send(ctx context.Context, a A) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		log.Eff(r.logCtx, log.LogWarn, "action sent to a torn down store", map[string]interface{}{
			"storeId": r.id.String(),
		})
		return
	}
	r.inbox = append(r.inbox, envelope[A]{ctx: ctx, action: a})
	if r.draining {
		r.mu.Unlock()
		return
	}
	r.draining = true
	r.mu.Unlock()

	r.drain()
}

func (r *root[S, A]) drain() {
	for {
		r.mu.Lock()
		if len(r.joining) > 0 {
			o := r.joining[0]
			r.joining[0] = observer[S]{}
			r.joining = r.joining[1:]
			r.observers = append(r.observers, o)
			current := r.st
			r.mu.Unlock()

			o.fn(current)
			continue
		}
		if len(r.inbox) == 0 {
			r.draining = false
			r.mu.Unlock()
			return
		}
		next := r.inbox[0]
		r.inbox[0] = envelope[A]{}
		r.inbox = r.inbox[1:]
		before := r.st
		r.mu.Unlock()

		if effects.Cancelled(next.ctx) {
			log.Eff(r.logCtx, log.LogDebug, "dropped action of a cancelled effect", map[string]interface{}{
				"storeId": r.id.String(),
				"action":  fmt.Sprintf("%T", next.action),
			})
			continue
		}
		r.step(before, next.action)
	}
}

func (r *root[S, A]) step(before S, a A) {
	start := time.Now()
	after, eff := r.reduce(before, a)
	span := effects.Since(start)

	r.mu.Lock()
	r.st = after
	observers := make([]observer[S], len(r.observers))
	copy(observers, r.observers)
	if r.journal != nil {
		select {
		case r.journal <- Transition[S, A]{Action: a, Before: before, After: after, Span: span}:
		default:
		}
	}
	r.mu.Unlock()

	for _, o := range observers {
		o.fn(after)
	}
	if eff.IsNone() {
		return
	}
	r.started()
	eff.Subscribe(r.ctx, r.runner, r.output, r.done)
}

func (r *root[S, A]) subscribe(fn func(S)) func() {
	id := uuid.New()
	r.mu.Lock()
	r.joining = append(r.joining, observer[S]{id: id, fn: fn})
	if r.draining {
		r.mu.Unlock()
	} else {
		r.draining = true
		r.mu.Unlock()
		r.drain()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.joining = without(r.joining, id)
			r.observers = without(r.observers, id)
		})
	}
}

func without[S any](observers []observer[S], id uuid.UUID) []observer[S] {
	for i, o := range observers {
		if o.id == id {
			return append(observers[:i:i], observers[i+1:]...)
		}
	}
	return observers
}
