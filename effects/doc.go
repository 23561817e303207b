// Package effects describes side effects as values.
//
// A reducer never performs work itself. It returns an Effect describing the work,
// and the store subscribes to it. Whatever the effect produces is fed back into the
// store as actions.
//
// Effects are built from a few constructors (None, Just, FromAsync, Catching,
// Stream, FireAndForget) and combined with Concatenate, Merge and Map. Long running
// work is tagged with Cancellable and stopped with Cancel; Delay, Debounce and
// KeyFrames defer work on a scheduler.Scheduler, which tests replace with a
// virtual clock.
//
// Example:
//
//	func reduce(s State, a Action, env Env) (State, effects.Effect[Action]) {
//	    switch a := a.(type) {
//	    case SearchChanged:
//	        s.Query = a.Query
//	        return s, effects.Debounce(
//	            effects.Catching(func(ctx context.Context) ([]Item, error) {
//	                return env.Client.Search(ctx, a.Query)
//	            }, func(r effects.Result[[]Item]) Action { return SearchResponse{r} }),
//	            searchID{}, 300*time.Millisecond, env.Scheduler,
//	        )
//	    }
//	    return s, effects.None[Action]()
//	}
package effects
