package login

import "github.com/on-the-ground/effect_ive_flow/casestudies/authclient"

// ViewState is what the login screen renders.
type ViewState struct {
	Alert                      *authclient.Alert
	Email                      string
	IsActivityIndicatorVisible bool
	IsFormDisabled             bool
	IsLoginButtonDisabled      bool
	Password                   string
	IsTwoFactorActive          bool
}

func NewViewState(s State) ViewState {
	return ViewState{
		Alert:                      s.Alert,
		Email:                      s.Email,
		IsActivityIndicatorVisible: s.IsLoginRequestInFlight,
		IsFormDisabled:             s.IsLoginRequestInFlight,
		IsLoginButtonDisabled:      !s.IsFormValid,
		Password:                   s.Password,
		IsTwoFactorActive:          s.TwoFactor != nil,
	}
}

// ViewAction is the subset of actions the login screen sends.
type ViewAction interface {
	Action
	isLoginViewAction()
}

func (AlertDismissed) isLoginViewAction()     {}
func (EmailChanged) isLoginViewAction()       {}
func (PasswordChanged) isLoginViewAction()    {}
func (LoginButtonTapped) isLoginViewAction()  {}
func (TwoFactorDismissed) isLoginViewAction() {}

func NewAction(a ViewAction) Action {
	return a
}
