package effects

// Result carries the outcome of a fallible operation as a value, so that failures
// can travel inside actions.
type Result[T any] struct {
	Value T
	Err   error
}

// ResultFrom packs a (value, error) pair.
func ResultFrom[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Err: err}
}

func Success[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func Failure[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

func (r Result[T]) IsSuccess() bool {
	return r.Err == nil
}

// Get unpacks r back into a (value, error) pair.
func (r Result[T]) Get() (T, error) {
	return r.Value, r.Err
}
