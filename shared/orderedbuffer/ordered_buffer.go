package orderedbuffer

import (
	"errors"
	"sort"
	"sync"
)

var ErrClosedBuffer = errors.New("buffer is closed")

type CompareFunc[T any] func(a, b T) int

// OrderedBuffer keeps values sorted by compare. Values that compare equal keep
// their insertion order. Safe for concurrent use.
type OrderedBuffer[T any] struct {
	mu      sync.Mutex
	data    []T
	compare CompareFunc[T]
	closed  bool
}

func NewOrderedBuffer[T any](cmp CompareFunc[T]) *OrderedBuffer[T] {
	return &OrderedBuffer[T]{compare: cmp}
}

func (b *OrderedBuffer[T]) Insert(val T) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosedBuffer
	}

	// binary search for the first element greater than val, then insert before it
	idx := sort.Search(len(b.data), func(i int) bool {
		return b.compare(val, b.data[i]) < 0
	})

	var zero T
	b.data = append(b.data, zero)
	copy(b.data[idx+1:], b.data[idx:])
	b.data[idx] = val
	return nil
}

// PopIf removes and returns the smallest value when ready reports true for it.
func (b *OrderedBuffer[T]) PopIf(ready func(T) bool) (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var zero T
	if len(b.data) == 0 || !ready(b.data[0]) {
		return zero, false
	}
	head := b.data[0]
	b.data[0] = zero
	b.data = b.data[1:]
	return head, true
}

// RemoveFunc drops every value matching del and reports how many were dropped.
func (b *OrderedBuffer[T]) RemoveFunc(del func(T) bool) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.data[:0]
	removed := 0
	for _, v := range b.data {
		if del(v) {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	var zero T
	for i := len(kept); i < len(b.data); i++ {
		b.data[i] = zero
	}
	b.data = kept
	return removed
}

func (b *OrderedBuffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Close rejects further inserts and returns what was still buffered, in order.
func (b *OrderedBuffer[T]) Close() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	rest := b.data
	b.data = nil
	return rest
}
