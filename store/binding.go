package store

// Binding is a two-way accessor over a piece of store state, as used by form
// fields: Get reads from the state, Set sends an action.
type Binding[V any] struct {
	get func() V
	set func(V)
}

func NewBinding[S, A, V any](s *Store[S, A], get func(S) V, toAction func(V) A) Binding[V] {
	return Binding[V]{
		get: func() V { return get(s.State()) },
		set: func(v V) { s.Send(toAction(v)) },
	}
}

func (b Binding[V]) Get() V {
	return b.get()
}

func (b Binding[V]) Set(v V) {
	b.set(v)
}
