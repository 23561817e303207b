package handlers_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_flow/effects/internal/handlers"
)

// Test that SingleQueue calls the handler with messages sent to it.
func TestSingleQueue_DispatchesToHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu     sync.Mutex
		called []int
		wg     sync.WaitGroup
	)
	wg.Add(2)

	handleFn := func(_ context.Context, msg int) {
		defer wg.Done()
		mu.Lock()
		called = append(called, msg)
		mu.Unlock()
	}

	dispatcher := handlers.NewSingleQueue(ctx, 10, handleFn)
	ch := dispatcher.GetChannelOf(0)

	ch <- 1
	ch <- 2
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()

	if len(called) != 2 || !slices.Contains(called, 1) || !slices.Contains(called, 2) {
		t.Errorf("Handler was not called correctly: %v", called)
	}
}

// Test that the worker goroutine exits once the context is cancelled.
func TestSingleQueue_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	called := make(chan int, 1)
	dispatcher := handlers.NewSingleQueue(ctx, 1, func(_ context.Context, msg int) {
		called <- msg
	})

	dispatcher.GetChannelOf(0) <- 7

	select {
	case got := <-called:
		if got != 7 {
			t.Fatalf("expected 7, got %d", got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Handler was not called before context cancel")
	}

	cancel()

	select {
	case <-dispatcher.Stopped():
	case <-time.After(1 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

// handlerState is used to block and observe handler execution.
type handlerState struct {
	blockUntil chan struct{}
	entered    chan struct{}
}

func (h *handlerState) Handle(ctx context.Context, msg int) {
	h.entered <- struct{}{}
	<-h.blockUntil
}

// Test that SingleQueue blocks when buffer is full.
func TestSingleQueue_BlocksWhenBufferIsFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state := &handlerState{
		blockUntil: make(chan struct{}),
		entered:    make(chan struct{}, 3),
	}

	dispatcher := handlers.NewSingleQueue(ctx, 1, state.Handle)
	targetCh := dispatcher.GetChannelOf(0)

	go func() {
		targetCh <- 1 // handler consumes this and blocks
	}()

	select {
	case <-state.entered:
	case <-time.After(time.Second):
		t.Fatal("Handler did not start")
	}

	targetCh <- 2 // buffer fills

	blocked := make(chan struct{})
	go func() {
		targetCh <- 3 // should block
		blocked <- struct{}{}
	}()

	select {
	case <-blocked:
		t.Fatal("Expected third message to block, but it didn't")
	case <-time.After(200 * time.Millisecond):
	}

	close(state.blockUntil) // unblock handler

	select {
	case <-blocked:
	case <-time.After(time.Second):
		t.Fatal("Third message never unblocked")
	}
}
