package supervisor

import (
	"context"
	"sync"

	"github.com/on-the-ground/effect_ive_flow/effects/log"
)

// Supervisor tracks the goroutines that run effect work.
//   - Each routine runs with the context it was given; cancelling that context is the
//     only way to stop it early.
//   - Panics are recovered and logged per routine.
//   - Close refuses new routines and waits for the running ones.
type Supervisor struct {
	logCtx context.Context
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// New creates a supervisor that logs through the handler found in logCtx, if any.
func New(logCtx context.Context) *Supervisor {
	return &Supervisor{logCtx: logCtx}
}

// Go starts fn on its own goroutine. It reports false, without running fn,
// once the supervisor is closed.
func (s *Supervisor) Go(ctx context.Context, fn func(context.Context)) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.wg.Add(1)
	s.mu.Unlock()

	ready := make(chan struct{})
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Eff(s.logCtx, log.LogError, "panic in effect routine", map[string]interface{}{
					"error": r,
				})
			}
		}()
		close(ready)
		fn(ctx)
	}()
	<-ready
	return true
}

// Close blocks until every routine started with Go has returned.
// Callers cancel the routines' contexts first.
func (s *Supervisor) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	log.Eff(s.logCtx, log.LogDebug, "waiting for all effect routines to finish", nil)
	s.wg.Wait()
	log.Eff(s.logCtx, log.LogDebug, "all effect routines finished", nil)
}
