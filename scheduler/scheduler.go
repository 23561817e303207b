// Package scheduler decides when deferred effect work runs.
//
// Reducers receive a Scheduler through their environment, which lets production code
// use the wall clock (Main), tests run everything inline (Immediate) or step a
// virtual clock explicitly (Test).
package scheduler

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	Now() time.Time
	// Schedule runs fn exactly once: after d, or as soon as ctx is done if that
	// happens first. fn checks ctx.Err() to tell the two apart.
	Schedule(ctx context.Context, d time.Duration, fn func())
}

// Immediate runs every callback synchronously, ignoring the delay.
type Immediate struct{}

var _ Scheduler = Immediate{}

func (Immediate) Now() time.Time { return time.Now() }

func (Immediate) Schedule(_ context.Context, _ time.Duration, fn func()) {
	fn()
}

// Main runs callbacks on timer goroutines against the wall clock.
type Main struct{}

var _ Scheduler = Main{}

func (Main) Now() time.Time { return time.Now() }

func (Main) Schedule(ctx context.Context, d time.Duration, fn func()) {
	var (
		once    sync.Once
		timer   *time.Timer
		stopCtx func() bool
	)
	ready := make(chan struct{})
	fire := func() { once.Do(fn) }

	timer = time.AfterFunc(d, func() {
		<-ready
		stopCtx()
		fire()
	})
	stopCtx = context.AfterFunc(ctx, func() {
		<-ready
		timer.Stop()
		fire()
	})
	close(ready)
}
