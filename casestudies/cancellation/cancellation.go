// Package cancellation shows effects that are cancelled explicitly (a trivia
// request for the current count) and implicitly (a debounced search).
package cancellation

import (
	"context"
	"time"

	"github.com/on-the-ground/effect_ive_flow/effects"
	"github.com/on-the-ground/effect_ive_flow/scheduler"
)

// SearchDebounce is how long the query has to stay unchanged before searching.
const SearchDebounce = 300 * time.Millisecond

type State struct {
	Count                   int
	CurrentTrivia           string
	IsTriviaRequestInFlight bool
	Query                   string
	Results                 []string
}

type Action interface{ isCancellationAction() }

type (
	CancelButtonTapped struct{}
	StepperChanged     struct{ Value int }
	TriviaButtonTapped struct{}
	TriviaResponse     struct{ Result effects.Result[string] }
	QueryChanged       struct{ Query string }
	SearchResponse     struct{ Result effects.Result[[]string] }
)

func (CancelButtonTapped) isCancellationAction() {}
func (StepperChanged) isCancellationAction()     {}
func (TriviaButtonTapped) isCancellationAction() {}
func (TriviaResponse) isCancellationAction()     {}
func (QueryChanged) isCancellationAction()       {}
func (SearchResponse) isCancellationAction()     {}

type Environment struct {
	Trivia    func(ctx context.Context, n int) (string, error)
	Search    func(ctx context.Context, query string) ([]string, error)
	Scheduler scheduler.Scheduler
}

type (
	TriviaRequestID struct{}
	SearchID        struct{}
)

func Reduce(s State, a Action, env Environment) (State, effects.Effect[Action]) {
	switch a := a.(type) {
	case CancelButtonTapped:
		s.IsTriviaRequestInFlight = false
		return s, effects.Cancel[Action](TriviaRequestID{})

	case StepperChanged:
		s.Count = a.Value
		s.CurrentTrivia = ""
		s.IsTriviaRequestInFlight = false
		return s, effects.Cancel[Action](TriviaRequestID{})

	case TriviaButtonTapped:
		s.CurrentTrivia = ""
		s.IsTriviaRequestInFlight = true
		n := s.Count
		return s, effects.Cancellable(
			effects.Catching(
				func(ctx context.Context) (string, error) { return env.Trivia(ctx, n) },
				func(r effects.Result[string]) Action { return TriviaResponse{Result: r} },
			),
			TriviaRequestID{}, false,
		)

	case TriviaResponse:
		s.IsTriviaRequestInFlight = false
		if a.Result.IsSuccess() {
			s.CurrentTrivia = a.Result.Value
		}
		return s, effects.None[Action]()

	case QueryChanged:
		s.Query = a.Query
		if a.Query == "" {
			s.Results = nil
			return s, effects.Cancel[Action](SearchID{})
		}
		query := a.Query
		return s, effects.Debounce(
			effects.Catching(
				func(ctx context.Context) ([]string, error) { return env.Search(ctx, query) },
				func(r effects.Result[[]string]) Action { return SearchResponse{Result: r} },
			),
			SearchID{}, SearchDebounce, env.Scheduler,
		)

	case SearchResponse:
		if a.Result.IsSuccess() {
			s.Results = a.Result.Value
		}
		return s, effects.None[Action]()

	default:
		panic("exhaustive match")
	}
}
