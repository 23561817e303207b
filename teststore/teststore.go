// Package teststore drives a reducer step by step and asserts every state change
// and every action its effects produce.
//
// A TestStore runs a store.Store whose effect output is intercepted: actions
// produced by effects are never reduced on their own, each one has to be claimed
// with Receive. Finish fails the test for anything left unclaimed and for
// effects still running.
package teststore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/on-the-ground/effect_ive_flow/config"
	"github.com/on-the-ground/effect_ive_flow/effects"
	"github.com/on-the-ground/effect_ive_flow/reducer"
	"github.com/on-the-ground/effect_ive_flow/store"
	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
)

// T is the part of *testing.T a TestStore reports to.
type T interface {
	Helper()
	Errorf(format string, args ...any)
	Cleanup(func())
}

type Option func(*options)

type options struct {
	cfg    config.Config
	logCtx context.Context
}

// WithConfig overrides the configuration read from the environment.
func WithConfig(cfg config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithTimeout bounds how long Receive and Finish wait for effects.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.cfg.ReceiveTimeout = d }
}

// WithLogContext makes effect runtimes log through the handler installed on ctx.
func WithLogContext(ctx context.Context) Option {
	return func(o *options) { o.logCtx = ctx }
}

// TestStore checks a reducer of root state S and actions A through a view of
// local state LS and local actions LA. Received actions are always root actions.
type TestStore[S, A, LS, LA any] struct {
	core      *core[S, A]
	toLocal   func(S) LS
	fromLocal func(LA) A
}

// New creates a TestStore over r and registers Finish with t.Cleanup.
func New[S, A, E any](t T, initial S, r reducer.Reducer[S, A, E], env E, opts ...Option) *TestStore[S, A, S, A] {
	o := options{cfg: config.FromEnv(), logCtx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}
	cfg := o.cfg.Normalize()
	cfg.JournalBufferSize = 0

	c := &core[S, A]{
		t:       t,
		timeout: cfg.ReceiveTimeout,
		notify:  make(chan struct{}, 1),
		idle:    make(chan struct{}, 1),
	}
	s, teardown := store.New(o.logCtx, initial, r, env, cfg, store.WithInterceptor(store.Interceptor[A]{
		Started: func() { c.inFlight.Add(1) },
		Output:  c.enqueue,
		Done:    c.completed,
	}))
	c.store, c.teardown = s, teardown
	t.Cleanup(c.finish)

	return &TestStore[S, A, S, A]{
		core:      c,
		toLocal:   func(s S) S { return s },
		fromLocal: func(a A) A { return a },
	}
}

// Scope views ts through a narrower state and action type, typically a screen's
// view state. Both views share the same underlying store.
func Scope[S, A, LS, LA, NS, NA any](
	ts *TestStore[S, A, LS, LA],
	toLocal func(LS) NS,
	fromLocal func(NA) LA,
) *TestStore[S, A, NS, NA] {
	return &TestStore[S, A, NS, NA]{
		core:      ts.core,
		toLocal:   func(s S) NS { return toLocal(ts.toLocal(s)) },
		fromLocal: func(a NA) A { return ts.fromLocal(fromLocal(a)) },
	}
}

// State returns the current local state.
func (ts *TestStore[S, A, LS, LA]) State() LS {
	return ts.toLocal(ts.core.store.State())
}

// Send reduces a and asserts that the local state changed exactly as mutate
// describes. A nil mutate asserts that the state did not change.
// Send fails when actions received from effects are still unclaimed.
func (ts *TestStore[S, A, LS, LA]) Send(a LA, mutate func(*LS)) {
	t := ts.core.t
	t.Helper()

	if pending := ts.core.pending(); len(pending) > 0 {
		t.Errorf("must handle %d received action(s) before sending an action: %s", len(pending), describe(pending))
		return
	}
	ts.stepFrom(context.Background(), ts.fromLocal(a), mutate)
}

// Receive waits for the next action produced by an effect, asserts it equals
// expected, reduces it and asserts the state change like Send.
func (ts *TestStore[S, A, LS, LA]) Receive(expected A, mutate func(*LS)) {
	t := ts.core.t
	t.Helper()

	got, ok := ts.core.next()
	if !ok {
		t.Errorf("expected to receive %T%+v, but received nothing after %v", expected, expected, ts.core.timeout)
		return
	}
	if !assert.Equal(t, expected, got.action, "received an unexpected action") {
		return
	}
	ts.stepFrom(got.ctx, got.action, mutate)
}

// Finish asserts that every received action was claimed and that no effect is
// still running, waiting up to the timeout for effects to complete. It runs
// automatically at test cleanup; calling it again has no effect.
func (ts *TestStore[S, A, LS, LA]) Finish() {
	ts.core.t.Helper()
	ts.core.finish()
}

func (ts *TestStore[S, A, LS, LA]) stepFrom(ctx context.Context, a A, mutate func(*LS)) {
	t := ts.core.t
	t.Helper()

	before := ts.core.store.State()
	ts.core.store.Deliver(ctx, a)
	after := ts.core.store.State()

	expected := ts.toLocal(before)
	if mutate != nil {
		mutate(&expected)
	}
	assert.Equal(t, expected, ts.toLocal(after), "state after %T differs from the expected state", a)
}

type envelope[A any] struct {
	ctx    context.Context
	action A
}

type core[S, A any] struct {
	t        T
	store    *store.Store[S, A]
	teardown func() context.Context
	timeout  time.Duration

	mu       sync.Mutex
	received []envelope[A]
	notify   chan struct{}

	inFlight atomic.Int64
	idle     chan struct{}

	finishOnce sync.Once
}

func (c *core[S, A]) enqueue(ctx context.Context, a A) {
	c.mu.Lock()
	c.received = append(c.received, envelope[A]{ctx: ctx, action: a})
	c.mu.Unlock()
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *core[S, A]) completed() {
	if c.inFlight.Add(-1) == 0 {
		select {
		case c.idle <- struct{}{}:
		default:
		}
	}
}

// pending drops received actions whose effect was cancelled meanwhile, the way
// the store drops them when it dequeues them, and returns the rest.
func (c *core[S, A]) pending() []A {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received = live(c.received)
	actions := make([]A, len(c.received))
	for i, e := range c.received {
		actions[i] = e.action
	}
	return actions
}

func (c *core[S, A]) next() (envelope[A], bool) {
	deadline := time.NewTimer(c.timeout)
	defer deadline.Stop()
	for {
		c.mu.Lock()
		c.received = live(c.received)
		if len(c.received) > 0 {
			e := c.received[0]
			c.received = c.received[1:]
			c.mu.Unlock()
			return e, true
		}
		c.mu.Unlock()

		select {
		case <-c.notify:
		case <-deadline.C:
			return envelope[A]{}, false
		}
	}
}

func live[A any](received []envelope[A]) []envelope[A] {
	kept := received[:0]
	for _, e := range received {
		if !effects.Cancelled(e.ctx) {
			kept = append(kept, e)
		}
	}
	return kept
}

func (c *core[S, A]) waitIdle() bool {
	deadline := time.NewTimer(c.timeout)
	defer deadline.Stop()
	for c.inFlight.Load() > 0 {
		select {
		case <-c.idle:
		case <-deadline.C:
			return c.inFlight.Load() == 0
		}
	}
	return true
}

func (c *core[S, A]) finish() {
	c.finishOnce.Do(func() {
		c.t.Helper()

		var err error
		if !c.waitIdle() {
			err = multierr.Append(err, fmt.Errorf(
				"%d effect(s) still running after %v; cancel them or receive their output",
				c.inFlight.Load(), c.timeout,
			))
		}
		if pending := c.pending(); len(pending) > 0 {
			for _, a := range pending {
				err = multierr.Append(err, fmt.Errorf("unhandled received action %T%+v", a, a))
			}
		}

		c.teardown()

		if err != nil {
			c.t.Errorf("test store finished with unasserted work:\n%v", err)
		}
	})
}

func describe[A any](actions []A) string {
	s := ""
	for i, a := range actions {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%T%+v", a, a)
	}
	return s
}
