// Package twofactor is the second step of the login flow: the user enters the
// code sent to them and the intermediate token is exchanged for a session.
package twofactor

import (
	"context"

	"github.com/on-the-ground/effect_ive_flow/casestudies/authclient"
	"github.com/on-the-ground/effect_ive_flow/effects"
	"golang.org/x/text/language"
)

const minCodeLength = 4

type State struct {
	Alert                      *authclient.Alert
	Code                       string
	IsFormValid                bool
	IsTwoFactorRequestInFlight bool
	Token                      string
}

func NewState(token string) State {
	return State{Token: token}
}

type Action interface{ isTwoFactorAction() }

type (
	AlertDismissed     struct{}
	CodeChanged        struct{ Code string }
	SubmitButtonTapped struct{}
	TwoFactorResponse  struct {
		Result effects.Result[authclient.AuthenticationResponse]
	}
)

func (AlertDismissed) isTwoFactorAction()     {}
func (CodeChanged) isTwoFactorAction()        {}
func (SubmitButtonTapped) isTwoFactorAction() {}
func (TwoFactorResponse) isTwoFactorAction()  {}

type Environment struct {
	Client   authclient.Client
	Language language.Tag
}

// TearDownID identifies the in-flight request; the login screen cancels it when
// the two-factor screen is dismissed.
type TearDownID struct{}

func Reduce(s State, a Action, env Environment) (State, effects.Effect[Action]) {
	switch a := a.(type) {
	case AlertDismissed:
		s.Alert = nil
		return s, effects.None[Action]()

	case CodeChanged:
		s.Code = a.Code
		s.IsFormValid = len(a.Code) >= minCodeLength
		return s, effects.None[Action]()

	case SubmitButtonTapped:
		s.IsTwoFactorRequestInFlight = true
		req := authclient.TwoFactorRequest{Code: s.Code, Token: s.Token}
		return s, effects.Cancellable(
			effects.Catching(
				func(ctx context.Context) (authclient.AuthenticationResponse, error) {
					return env.Client.TwoFactor(ctx, req)
				},
				func(r effects.Result[authclient.AuthenticationResponse]) Action {
					return TwoFactorResponse{Result: r}
				},
			),
			TearDownID{}, false,
		)

	case TwoFactorResponse:
		s.IsTwoFactorRequestInFlight = false
		if a.Result.Err != nil {
			s.Alert = authclient.AlertFor(a.Result.Err, env.Language)
		}
		return s, effects.None[Action]()

	default:
		panic("exhaustive match")
	}
}
