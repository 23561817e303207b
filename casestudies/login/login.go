// Package login is the first step of the authentication flow. When the server
// asks for a second factor, the two-factor screen is presented as optional child
// state.
package login

import (
	"context"

	"github.com/on-the-ground/effect_ive_flow/casestudies/authclient"
	"github.com/on-the-ground/effect_ive_flow/casestudies/twofactor"
	"github.com/on-the-ground/effect_ive_flow/effects"
	"github.com/on-the-ground/effect_ive_flow/reducer"
	"golang.org/x/text/language"
)

type State struct {
	Alert                  *authclient.Alert
	Email                  string
	IsFormValid            bool
	IsLoginRequestInFlight bool
	Password               string
	TwoFactor              *twofactor.State
}

type Action interface{ isLoginAction() }

type (
	AlertDismissed     struct{}
	EmailChanged       struct{ Email string }
	PasswordChanged    struct{ Password string }
	LoginButtonTapped  struct{}
	TwoFactorDismissed struct{}
	LoginResponse      struct {
		Result effects.Result[authclient.AuthenticationResponse]
	}
	TwoFactor struct{ Action twofactor.Action }
)

func (AlertDismissed) isLoginAction()     {}
func (EmailChanged) isLoginAction()       {}
func (PasswordChanged) isLoginAction()    {}
func (LoginButtonTapped) isLoginAction()  {}
func (TwoFactorDismissed) isLoginAction() {}
func (LoginResponse) isLoginAction()      {}
func (TwoFactor) isLoginAction()          {}

type Environment struct {
	Client   authclient.Client
	Language language.Tag
}

var twoFactorLens = reducer.OptionalLens[State, twofactor.State]{
	Get: func(s State) (twofactor.State, bool) {
		if s.TwoFactor == nil {
			return twofactor.State{}, false
		}
		return *s.TwoFactor, true
	},
	Set: func(s State, child twofactor.State) State {
		s.TwoFactor = &child
		return s
	},
}

var twoFactorPath = reducer.CasePath[Action, twofactor.Action]{
	Extract: func(a Action) (twofactor.Action, bool) {
		tf, ok := a.(TwoFactor)
		return tf.Action, ok
	},
	Embed: func(a twofactor.Action) Action { return TwoFactor{Action: a} },
}

func twoFactorEnvironment(env Environment) twofactor.Environment {
	return twofactor.Environment{Client: env.Client, Language: env.Language}
}

// Reduce handles the login screen and, while it is presented, the two-factor
// screen.
var Reduce = reducer.Combine(
	reducer.PullbackOptional(twofactor.Reduce, twoFactorLens, twoFactorPath, twoFactorEnvironment),
	reduceLogin,
)

func reduceLogin(s State, a Action, env Environment) (State, effects.Effect[Action]) {
	switch a := a.(type) {
	case AlertDismissed:
		s.Alert = nil
		return s, effects.None[Action]()

	case EmailChanged:
		s.Email = a.Email
		s.IsFormValid = s.Email != "" && s.Password != ""
		return s, effects.None[Action]()

	case PasswordChanged:
		s.Password = a.Password
		s.IsFormValid = s.Email != "" && s.Password != ""
		return s, effects.None[Action]()

	case LoginButtonTapped:
		s.IsLoginRequestInFlight = true
		req := authclient.LoginRequest{Email: s.Email, Password: s.Password}
		return s, effects.Catching(
			func(ctx context.Context) (authclient.AuthenticationResponse, error) {
				return env.Client.Login(ctx, req)
			},
			func(r effects.Result[authclient.AuthenticationResponse]) Action {
				return LoginResponse{Result: r}
			},
		)

	case LoginResponse:
		s.IsLoginRequestInFlight = false
		if a.Result.Err != nil {
			s.Alert = authclient.AlertFor(a.Result.Err, env.Language)
			return s, effects.None[Action]()
		}
		if a.Result.Value.TwoFactorRequired {
			tf := twofactor.NewState(a.Result.Value.Token)
			s.TwoFactor = &tf
		}
		return s, effects.None[Action]()

	case TwoFactor:
		return s, effects.None[Action]()

	case TwoFactorDismissed:
		s.TwoFactor = nil
		return s, effects.Cancel[Action](twofactor.TearDownID{})

	default:
		panic("exhaustive match")
	}
}
