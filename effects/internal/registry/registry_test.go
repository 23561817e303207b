package registry_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/on-the-ground/effect_ive_flow/effects/internal/registry"
	"github.com/stretchr/testify/assert"
)

type timerId struct{}

func TestRegistry_CancelCancelsEveryEntryUnderId(t *testing.T) {
	reg := registry.New(4)

	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	other, cancelOther := context.WithCancel(context.Background())
	defer cancelOther()

	reg.Register("search", cancel1)
	reg.Register("search", cancel2)
	reg.Register(timerId{}, cancelOther)
	assert.Equal(t, 2, reg.Len("search"))

	reg.Cancel("search")

	assert.Error(t, ctx1.Err())
	assert.Error(t, ctx2.Err())
	assert.NoError(t, other.Err())
	assert.Equal(t, 0, reg.Len("search"))
	assert.Equal(t, 1, reg.Len(timerId{}))
}

func TestRegistry_CancelUnknownIdIsNoop(t *testing.T) {
	reg := registry.New(1)
	assert.NotPanics(t, func() {
		reg.Cancel("missing")
		reg.Cancel("missing")
	})
}

func TestRegistry_ReleaseRemovesOnlyItsEntry(t *testing.T) {
	reg := registry.New(2)

	ctx1, cancel1 := context.WithCancel(context.Background())
	defer cancel1()
	ctx2, cancel2 := context.WithCancel(context.Background())

	release1 := reg.Register(1, cancel1)
	reg.Register(1, cancel2)

	release1()
	release1()
	assert.Equal(t, 1, reg.Len(1))

	reg.Cancel(1)
	assert.NoError(t, ctx1.Err(), "released entry must not be cancelled")
	assert.Error(t, ctx2.Err())
}

func TestRegistry_SameValueDifferentTypeAreDistinct(t *testing.T) {
	reg := registry.New(8)

	intCtx, cancelInt := context.WithCancel(context.Background())
	strCtx, cancelStr := context.WithCancel(context.Background())
	defer cancelStr()

	reg.Register(1, cancelInt)
	reg.Register("1", cancelStr)

	reg.Cancel(1)
	assert.Error(t, intCtx.Err())
	assert.NoError(t, strCtx.Err())
}

func TestRegistry_CancelAll(t *testing.T) {
	reg := registry.New(3)
	ctxs := make([]context.Context, 10)
	for i := range ctxs {
		ctx, cancel := context.WithCancel(context.Background())
		ctxs[i] = ctx
		reg.Register(fmt.Sprintf("id-%d", i), cancel)
	}

	reg.CancelAll()

	for i, ctx := range ctxs {
		assert.Error(t, ctx.Err(), "ctx %d", i)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := registry.New(4)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, cancel := context.WithCancel(context.Background())
			release := reg.Register(i%5, cancel)
			if i%2 == 0 {
				release()
			} else {
				reg.Cancel(i % 5)
			}
		}(i)
	}
	wg.Wait()
}
