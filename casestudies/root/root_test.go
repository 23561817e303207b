package root_test

import (
	"context"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_flow/casestudies/animations"
	"github.com/on-the-ground/effect_ive_flow/casestudies/authclient"
	"github.com/on-the-ground/effect_ive_flow/casestudies/cancellation"
	"github.com/on-the-ground/effect_ive_flow/casestudies/login"
	"github.com/on-the-ground/effect_ive_flow/casestudies/root"
	"github.com/on-the-ground/effect_ive_flow/config"
	"github.com/on-the-ground/effect_ive_flow/effects"
	"github.com/on-the-ground/effect_ive_flow/scheduler"
	"github.com/on-the-ground/effect_ive_flow/teststore"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/language"
)

func testEnv() root.Environment {
	return root.Environment{
		Client: authclient.Mock(
			authclient.Respond[authclient.LoginRequest](authclient.AuthenticationResponse{Token: "deadbeefdeadbeef"}, nil),
			nil,
		),
		Language: language.English,
		Trivia: func(ctx context.Context, n int) (string, error) {
			return "trivia", nil
		},
		Search: func(ctx context.Context, query string) ([]string, error) {
			return nil, nil
		},
		Scheduler: scheduler.Immediate{},
	}
}

func TestNewStore_RoutesActionsToScreens(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	s, teardown := root.NewStore(context.Background(), zap.New(core), testEnv(), config.Default())

	s.Send(root.Animations{Action: animations.Tapped{Point: animations.Point{X: 1, Y: 2}}})
	s.Send(root.Cancellation{Action: cancellation.StepperChanged{Value: 3}})

	loginView := root.LoginStore(s)
	loginView.Send(login.EmailChanged{Email: "blob@pointfree.co"})
	loginView.Send(login.PasswordChanged{Password: "password"})
	assert.False(t, loginView.State().IsLoginButtonDisabled)

	loginView.Send(login.LoginButtonTapped{})
	assert.Eventually(t, func() bool {
		return !loginView.State().IsActivityIndicatorVisible
	}, time.Second, time.Millisecond)

	st := s.State()
	assert.Equal(t, animations.Point{X: 1, Y: 2}, st.Animations.CircleCenter)
	assert.Equal(t, 3, st.Cancellation.Count)
	assert.Equal(t, "blob@pointfree.co", st.Login.Email)

	teardown()
	assert.NotEmpty(t, recorded.FilterMessage("received action").All())
	assert.NotEmpty(t, recorded.FilterMessage("created store").All())
	assert.NotEmpty(t, recorded.FilterMessage("store torn down").All())
}

func TestReduce_ScreensAreIsolated(t *testing.T) {
	ts := teststore.New(t, root.NewState(), root.Reduce, testEnv())

	ts.Send(root.Cancellation{Action: cancellation.TriviaButtonTapped{}}, func(s *root.State) {
		s.Cancellation.IsTriviaRequestInFlight = true
	})
	ts.Receive(root.Cancellation{Action: cancellation.TriviaResponse{Result: effects.Success("trivia")}}, func(s *root.State) {
		s.Cancellation.IsTriviaRequestInFlight = false
		s.Cancellation.CurrentTrivia = "trivia"
	})
	ts.Send(root.Animations{Action: animations.CircleScaleToggleChanged{IsScaled: true}}, func(s *root.State) {
		s.Animations.IsCircleScaled = true
	})
}
