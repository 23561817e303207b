// Package root assembles the case studies into one application store.
package root

import (
	"context"

	"github.com/on-the-ground/effect_ive_flow/casestudies/animations"
	"github.com/on-the-ground/effect_ive_flow/casestudies/authclient"
	"github.com/on-the-ground/effect_ive_flow/casestudies/cancellation"
	"github.com/on-the-ground/effect_ive_flow/casestudies/login"
	"github.com/on-the-ground/effect_ive_flow/config"
	"github.com/on-the-ground/effect_ive_flow/effects/log"
	"github.com/on-the-ground/effect_ive_flow/reducer"
	"github.com/on-the-ground/effect_ive_flow/scheduler"
	"github.com/on-the-ground/effect_ive_flow/store"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

type State struct {
	Animations   animations.State
	Cancellation cancellation.State
	Login        login.State
}

func NewState() State {
	return State{Animations: animations.NewState()}
}

type Action interface{ isRootAction() }

type (
	Animations   struct{ Action animations.Action }
	Cancellation struct{ Action cancellation.Action }
	Login        struct{ Action login.Action }
)

func (Animations) isRootAction()   {}
func (Cancellation) isRootAction() {}
func (Login) isRootAction()        {}

type Environment struct {
	Client    authclient.Client
	Language  language.Tag
	Trivia    func(ctx context.Context, n int) (string, error)
	Search    func(ctx context.Context, query string) ([]string, error)
	Scheduler scheduler.Scheduler
}

var Reduce = reducer.Combine(
	reducer.Pullback(
		animations.Reduce,
		reducer.Lens[State, animations.State]{
			Get: func(s State) animations.State { return s.Animations },
			Set: func(s State, c animations.State) State { s.Animations = c; return s },
		},
		reducer.CasePath[Action, animations.Action]{
			Extract: func(a Action) (animations.Action, bool) {
				c, ok := a.(Animations)
				return c.Action, ok
			},
			Embed: func(a animations.Action) Action { return Animations{Action: a} },
		},
		func(env Environment) animations.Environment {
			return animations.Environment{Scheduler: env.Scheduler}
		},
	),
	reducer.Pullback(
		cancellation.Reduce,
		reducer.Lens[State, cancellation.State]{
			Get: func(s State) cancellation.State { return s.Cancellation },
			Set: func(s State, c cancellation.State) State { s.Cancellation = c; return s },
		},
		reducer.CasePath[Action, cancellation.Action]{
			Extract: func(a Action) (cancellation.Action, bool) {
				c, ok := a.(Cancellation)
				return c.Action, ok
			},
			Embed: func(a cancellation.Action) Action { return Cancellation{Action: a} },
		},
		func(env Environment) cancellation.Environment {
			return cancellation.Environment{Trivia: env.Trivia, Search: env.Search, Scheduler: env.Scheduler}
		},
	),
	reducer.Pullback(
		login.Reduce,
		reducer.Lens[State, login.State]{
			Get: func(s State) login.State { return s.Login },
			Set: func(s State, c login.State) State { s.Login = c; return s },
		},
		reducer.CasePath[Action, login.Action]{
			Extract: func(a Action) (login.Action, bool) {
				c, ok := a.(Login)
				return c.Action, ok
			},
			Embed: func(a login.Action) Action { return Login{Action: a} },
		},
		func(env Environment) login.Environment {
			return login.Environment{Client: env.Client, Language: env.Language}
		},
	),
)

// NewStore installs a log handler backed by logger on ctx and starts the
// application store on it. The returned function tears down the store and then
// the log handler.
func NewStore(
	ctx context.Context,
	logger *zap.Logger,
	env Environment,
	cfg config.Config,
) (*store.Store[State, Action], func() context.Context) {
	cfg = cfg.Normalize()
	ctx, endOfLogHandler := log.WithZapEffectHandler(ctx, cfg.LogBufferSize, logger)
	s, endOfStore := store.New(ctx, NewState(), reducer.Debug(Reduce, logger, "root"), env, cfg)
	return s, func() context.Context {
		endOfStore()
		return endOfLogHandler()
	}
}

// LoginStore focuses s on the login screen.
func LoginStore(s *store.Store[State, Action]) *store.Store[login.ViewState, login.ViewAction] {
	return store.Scope(s,
		func(st State) login.ViewState { return login.NewViewState(st.Login) },
		func(a login.ViewAction) Action { return Login{Action: a} },
	)
}

// Live wires the live auth client and the wall clock.
func Live(trivia func(ctx context.Context, n int) (string, error), search func(ctx context.Context, query string) ([]string, error)) Environment {
	return Environment{
		Client:    authclient.Live(),
		Language:  authclient.Default,
		Trivia:    trivia,
		Search:    search,
		Scheduler: scheduler.Main{},
	}
}
