// Package authclient is the authentication dependency of the login and
// two-factor case studies.
package authclient

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidUserPassword      = errors.New("invalid user or password")
	ErrInvalidTwoFactor         = errors.New("invalid two factor code")
	ErrInvalidIntermediateToken = errors.New("invalid intermediate token")
	ErrUnimplemented            = errors.New("authclient: endpoint not implemented")
)

type LoginRequest struct {
	Email    string
	Password string
}

type TwoFactorRequest struct {
	Code  string
	Token string
}

type AuthenticationResponse struct {
	Token             string
	TwoFactorRequired bool
}

// Client is passed to reducers through their environment.
type Client struct {
	Login     func(ctx context.Context, req LoginRequest) (AuthenticationResponse, error)
	TwoFactor func(ctx context.Context, req TwoFactorRequest) (AuthenticationResponse, error)
}

const (
	liveToken    = "deadbeefdeadbeef"
	liveCode     = "1234"
	liveDuration = time.Second
)

// Live accepts any email containing "@" with the password "password". Emails
// containing "2fa" require the second factor 1234.
func Live() Client {
	return Client{
		Login: func(ctx context.Context, req LoginRequest) (AuthenticationResponse, error) {
			if err := wait(ctx, liveDuration); err != nil {
				return AuthenticationResponse{}, err
			}
			if !strings.Contains(req.Email, "@") || req.Password != "password" {
				return AuthenticationResponse{}, ErrInvalidUserPassword
			}
			return AuthenticationResponse{
				Token:             liveToken,
				TwoFactorRequired: strings.Contains(req.Email, "2fa"),
			}, nil
		},
		TwoFactor: func(ctx context.Context, req TwoFactorRequest) (AuthenticationResponse, error) {
			if err := wait(ctx, liveDuration); err != nil {
				return AuthenticationResponse{}, err
			}
			if req.Token != liveToken {
				return AuthenticationResponse{}, ErrInvalidIntermediateToken
			}
			if req.Code != liveCode {
				return AuthenticationResponse{}, ErrInvalidTwoFactor
			}
			return AuthenticationResponse{Token: liveToken}, nil
		},
	}
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Mock builds a client from the given endpoints. Nil endpoints fail with
// ErrUnimplemented.
func Mock(
	login func(ctx context.Context, req LoginRequest) (AuthenticationResponse, error),
	twoFactor func(ctx context.Context, req TwoFactorRequest) (AuthenticationResponse, error),
) Client {
	if login == nil {
		login = func(context.Context, LoginRequest) (AuthenticationResponse, error) {
			return AuthenticationResponse{}, ErrUnimplemented
		}
	}
	if twoFactor == nil {
		twoFactor = func(context.Context, TwoFactorRequest) (AuthenticationResponse, error) {
			return AuthenticationResponse{}, ErrUnimplemented
		}
	}
	return Client{Login: login, TwoFactor: twoFactor}
}

// Respond is a mock endpoint answering every request with resp and err.
func Respond[Req any](resp AuthenticationResponse, err error) func(context.Context, Req) (AuthenticationResponse, error) {
	return func(context.Context, Req) (AuthenticationResponse, error) {
		return resp, err
	}
}
