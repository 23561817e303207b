package store

import "context"

// Scope derives a store exposing a part of parent's state and accepting a
// narrower set of actions. Sends are forwarded to parent through fromChild and
// the child state is recomputed from parent's state on every read.
func Scope[S, A, CS, CA any](
	parent *Store[S, A],
	toChild func(S) CS,
	fromChild func(CA) A,
) *Store[CS, CA] {
	return &Store[CS, CA]{backend: &scoped[S, A, CS, CA]{
		parent:    parent.backend,
		toChild:   toChild,
		fromChild: fromChild,
	}}
}

type scoped[S, A, CS, CA any] struct {
	parent    backend[S, A]
	toChild   func(S) CS
	fromChild func(CA) A
}

func (s *scoped[S, A, CS, CA]) state() CS {
	return s.toChild(s.parent.state())
}

func (s *scoped[S, A, CS, CA]) send(ctx context.Context, a CA) {
	s.parent.send(ctx, s.fromChild(a))
}

func (s *scoped[S, A, CS, CA]) subscribe(observer func(CS)) func() {
	return s.parent.subscribe(func(ps S) {
		observer(s.toChild(ps))
	})
}
