// Package reducer defines the pure transition function of a store and the
// combinators that assemble screen-sized reducers into an application reducer.
package reducer

import (
	"fmt"
	"reflect"

	"github.com/on-the-ground/effect_ive_flow/effects"
	"go.uber.org/zap"
)

// Reducer computes the next state for an action and describes the follow-up work.
// It must be pure apart from reading env, and total: an action it does not handle
// returns the state unchanged with effects.None.
type Reducer[S, A, E any] func(state S, action A, env E) (S, effects.Effect[A])

// Empty ignores every action.
func Empty[S, A, E any]() Reducer[S, A, E] {
	return func(s S, _ A, _ E) (S, effects.Effect[A]) {
		return s, effects.None[A]()
	}
}

// Combine runs reducers in order on the same action, each one seeing the state
// returned by the previous one, and merges their effects.
func Combine[S, A, E any](reducers ...Reducer[S, A, E]) Reducer[S, A, E] {
	return func(s S, a A, env E) (S, effects.Effect[A]) {
		effs := make([]effects.Effect[A], 0, len(reducers))
		for _, r := range reducers {
			var eff effects.Effect[A]
			s, eff = r(s, a, env)
			effs = append(effs, eff)
		}
		return s, effects.Merge(effs...)
	}
}

// Lens focuses a part LS of a whole S.
type Lens[S, LS any] struct {
	Get func(S) LS
	Set func(S, LS) S
}

// OptionalLens focuses a part of S that may be absent.
type OptionalLens[S, LS any] struct {
	Get func(S) (LS, bool)
	Set func(S, LS) S
}

// CasePath focuses one case LA of an action sum A.
type CasePath[A, LA any] struct {
	Extract func(A) (LA, bool)
	Embed   func(LA) A
}

// Pullback lifts a child reducer to the parent's state, actions and environment.
// Actions the case path does not match leave the parent state untouched and never
// reach the child.
func Pullback[S, A, E, LS, LA, LE any](
	child Reducer[LS, LA, LE],
	lens Lens[S, LS],
	path CasePath[A, LA],
	toEnv func(E) LE,
) Reducer[S, A, E] {
	return func(s S, a A, env E) (S, effects.Effect[A]) {
		la, ok := path.Extract(a)
		if !ok {
			return s, effects.None[A]()
		}
		ls, eff := child(lens.Get(s), la, toEnv(env))
		return lens.Set(s, ls), effects.Map(eff, path.Embed)
	}
}

// PullbackOptional is Pullback for child state that may be absent. While it is
// absent, matching actions are ignored.
func PullbackOptional[S, A, E, LS, LA, LE any](
	child Reducer[LS, LA, LE],
	lens OptionalLens[S, LS],
	path CasePath[A, LA],
	toEnv func(E) LE,
) Reducer[S, A, E] {
	return func(s S, a A, env E) (S, effects.Effect[A]) {
		la, ok := path.Extract(a)
		if !ok {
			return s, effects.None[A]()
		}
		ls, present := lens.Get(s)
		if !present {
			return s, effects.None[A]()
		}
		ls, eff := child(ls, la, toEnv(env))
		return lens.Set(s, ls), effects.Map(eff, path.Embed)
	}
}

// Identity is the environment mapping for children sharing the parent environment.
func Identity[E any](env E) E {
	return env
}

// Debug logs every action r receives and whether it changed the state.
func Debug[S, A, E any](r Reducer[S, A, E], logger *zap.Logger, name string) Reducer[S, A, E] {
	logger = logger.Named(name)
	return func(s S, a A, env E) (S, effects.Effect[A]) {
		next, eff := r(s, a, env)
		logger.Debug("received action",
			zap.String("action", fmt.Sprintf("%T%+v", a, a)),
			zap.Bool("stateChanged", !reflect.DeepEqual(s, next)),
			zap.Bool("hasEffect", !eff.IsNone()),
		)
		return next, eff
	}
}
