package reducer_test

import (
	"context"
	"testing"

	"github.com/on-the-ground/effect_ive_flow/effects"
	"github.com/on-the-ground/effect_ive_flow/reducer"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type counterAction interface{ isCounterAction() }

type increment struct{}
type decrement struct{}
type reset struct{}

func (increment) isCounterAction() {}
func (decrement) isCounterAction() {}
func (reset) isCounterAction()     {}

type counterEnv struct{ step int }

func counter(s int, a counterAction, env counterEnv) (int, effects.Effect[counterAction]) {
	switch a.(type) {
	case increment:
		return s + env.step, effects.None[counterAction]()
	case decrement:
		return s - env.step, effects.Just[counterAction](reset{})
	default:
		return s, effects.None[counterAction]()
	}
}

func doubler(s int, a counterAction, _ counterEnv) (int, effects.Effect[counterAction]) {
	if _, ok := a.(increment); ok {
		return s * 2, effects.Just[counterAction](decrement{})
	}
	return s, effects.None[counterAction]()
}

type inlineRuntime struct{}

func (inlineRuntime) Go(ctx context.Context, fn func(context.Context)) bool {
	fn(ctx)
	return true
}
func (inlineRuntime) Register(any, context.CancelFunc) func() { return func() {} }
func (inlineRuntime) Cancel(any)                               {}

func collect[A any](e effects.Effect[A]) []A {
	var out []A
	e.Subscribe(context.Background(), inlineRuntime{}, func(_ context.Context, a A) {
		out = append(out, a)
	}, func() {})
	return out
}

func TestEmpty_IgnoresEverything(t *testing.T) {
	s, eff := reducer.Empty[int, counterAction, counterEnv]()(3, increment{}, counterEnv{step: 1})
	assert.Equal(t, 3, s)
	assert.True(t, eff.IsNone())
}

func TestCombine_EquivalentToSequentialApplication(t *testing.T) {
	env := counterEnv{step: 3}
	combined := reducer.Combine[int, counterAction, counterEnv](counter, doubler)

	for _, a := range []counterAction{increment{}, decrement{}, reset{}} {
		s1, e1 := counter(5, a, env)
		s2, e2 := doubler(s1, a, env)

		got, eff := combined(5, a, env)
		assert.Equal(t, s2, got)
		assert.ElementsMatch(t, append(collect(e1), collect(e2)...), collect(eff))
	}
}

func TestCombine_IsDeterministic(t *testing.T) {
	combined := reducer.Combine[int, counterAction, counterEnv](counter, doubler)
	actions := []counterAction{increment{}, increment{}, decrement{}, reset{}, increment{}}

	replay := func() int {
		s := 1
		for _, a := range actions {
			s, _ = combined(s, a, counterEnv{step: 2})
		}
		return s
	}
	assert.Equal(t, replay(), replay())
}

type appState struct {
	Title   string
	Counter int
	Detail  *int
}

type appAction interface{ isAppAction() }

type counterCase struct{ action counterAction }
type titleChanged struct{ title string }
type detailCase struct{ action counterAction }

func (counterCase) isAppAction()  {}
func (titleChanged) isAppAction() {}
func (detailCase) isAppAction()   {}

type appEnv struct{ counter counterEnv }

var counterLens = reducer.Lens[appState, int]{
	Get: func(s appState) int { return s.Counter },
	Set: func(s appState, c int) appState { s.Counter = c; return s },
}

var counterPath = reducer.CasePath[appAction, counterAction]{
	Extract: func(a appAction) (counterAction, bool) {
		c, ok := a.(counterCase)
		return c.action, ok
	},
	Embed: func(a counterAction) appAction { return counterCase{a} },
}

var detailLens = reducer.OptionalLens[appState, int]{
	Get: func(s appState) (int, bool) {
		if s.Detail == nil {
			return 0, false
		}
		return *s.Detail, true
	},
	Set: func(s appState, d int) appState { s.Detail = &d; return s },
}

var detailPath = reducer.CasePath[appAction, counterAction]{
	Extract: func(a appAction) (counterAction, bool) {
		c, ok := a.(detailCase)
		return c.action, ok
	},
	Embed: func(a counterAction) appAction { return detailCase{a} },
}

func toCounterEnv(env appEnv) counterEnv { return env.counter }

func TestPullback_FocusesChild(t *testing.T) {
	app := reducer.Pullback(reducer.Reducer[int, counterAction, counterEnv](counter), counterLens, counterPath, toCounterEnv)
	env := appEnv{counter: counterEnv{step: 2}}

	s, eff := app(appState{Title: "x", Counter: 1}, counterCase{increment{}}, env)
	assert.Equal(t, appState{Title: "x", Counter: 3}, s)
	assert.True(t, eff.IsNone())

	s, eff = app(s, counterCase{decrement{}}, env)
	assert.Equal(t, 1, s.Counter)
	assert.Equal(t, []appAction{counterCase{reset{}}}, collect(eff))
}

func TestPullback_NonMatchingActionIsNoop(t *testing.T) {
	called := false
	child := func(s int, a counterAction, env counterEnv) (int, effects.Effect[counterAction]) {
		called = true
		return s + 100, effects.Just[counterAction](reset{})
	}
	app := reducer.Pullback(reducer.Reducer[int, counterAction, counterEnv](child), counterLens, counterPath, toCounterEnv)

	before := appState{Title: "x", Counter: 1}
	after, eff := app(before, titleChanged{"y"}, appEnv{})
	assert.Equal(t, before, after)
	assert.True(t, eff.IsNone())
	assert.False(t, called)
}

func TestPullbackOptional_IgnoresAbsentChild(t *testing.T) {
	app := reducer.PullbackOptional(reducer.Reducer[int, counterAction, counterEnv](counter), detailLens, detailPath, toCounterEnv)
	env := appEnv{counter: counterEnv{step: 1}}

	s, eff := app(appState{}, detailCase{increment{}}, env)
	assert.Nil(t, s.Detail)
	assert.True(t, eff.IsNone())

	five := 5
	s, eff = app(appState{Detail: &five}, detailCase{decrement{}}, env)
	assert.Equal(t, 4, *s.Detail)
	assert.Equal(t, []appAction{detailCase{reset{}}}, collect(eff))
}

func TestDebug_LogsActions(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	r := reducer.Debug(reducer.Reducer[int, counterAction, counterEnv](counter), zap.New(core), "counter")

	s, _ := r(0, increment{}, counterEnv{step: 1})
	assert.Equal(t, 1, s)
	s, _ = r(s, reset{}, counterEnv{step: 1})
	assert.Equal(t, 1, s)

	entries := recorded.AllUntimed()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "counter", entries[0].LoggerName)
		assert.Equal(t, true, entries[0].ContextMap()["stateChanged"])
		assert.Equal(t, false, entries[1].ContextMap()["stateChanged"])
	}
}
