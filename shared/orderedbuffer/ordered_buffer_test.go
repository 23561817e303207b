package orderedbuffer_test

import (
	"errors"
	"testing"

	"github.com/on-the-ground/effect_ive_flow/shared/orderedbuffer"
	"github.com/stretchr/testify/assert"
)

type job struct {
	due  int
	name string
}

func byDue(a, b job) int { return a.due - b.due }

func TestOrderedBuffer_InsertKeepsOrder(t *testing.T) {
	buf := orderedbuffer.NewOrderedBuffer(func(a, b int) int {
		return a - b
	})

	for _, v := range []int{10, 5, 7, 3, 8} {
		assert.NoError(t, buf.Insert(v))
	}

	var got []int
	for {
		v, ok := buf.PopIf(func(int) bool { return true })
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{3, 5, 7, 8, 10}, got)
}

func TestOrderedBuffer_EqualKeysKeepInsertionOrder(t *testing.T) {
	buf := orderedbuffer.NewOrderedBuffer(byDue)
	_ = buf.Insert(job{due: 1, name: "a"})
	_ = buf.Insert(job{due: 0, name: "first"})
	_ = buf.Insert(job{due: 1, name: "b"})
	_ = buf.Insert(job{due: 1, name: "c"})

	assert.Equal(t, []job{
		{0, "first"}, {1, "a"}, {1, "b"}, {1, "c"},
	}, buf.Close())
}

func TestOrderedBuffer_PopIfRespectsPredicate(t *testing.T) {
	buf := orderedbuffer.NewOrderedBuffer(byDue)
	_ = buf.Insert(job{due: 5, name: "later"})

	_, ok := buf.PopIf(func(j job) bool { return j.due <= 3 })
	assert.False(t, ok)
	assert.Equal(t, 1, buf.Len())

	j, ok := buf.PopIf(func(j job) bool { return j.due <= 5 })
	assert.True(t, ok)
	assert.Equal(t, "later", j.name)
	assert.Equal(t, 0, buf.Len())
}

func TestOrderedBuffer_RemoveFunc(t *testing.T) {
	buf := orderedbuffer.NewOrderedBuffer(byDue)
	for i := 0; i < 6; i++ {
		_ = buf.Insert(job{due: i})
	}

	removed := buf.RemoveFunc(func(j job) bool { return j.due%2 == 0 })
	assert.Equal(t, 3, removed)
	assert.Equal(t, []job{{due: 1}, {due: 3}, {due: 5}}, buf.Close())
}

func TestOrderedBuffer_InsertAfterClose(t *testing.T) {
	buf := orderedbuffer.NewOrderedBuffer(func(a, b int) int { return a - b })
	_ = buf.Insert(1)

	assert.Equal(t, []int{1}, buf.Close())
	assert.Nil(t, buf.Close())

	err := buf.Insert(2)
	assert.True(t, errors.Is(err, orderedbuffer.ErrClosedBuffer))
}
