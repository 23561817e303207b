package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/on-the-ground/effect_ive_flow/shared/orderedbuffer"
)

// Test is a scheduler driven by a virtual clock. Nothing runs until the clock is
// moved with Advance or Run, and due callbacks then run on the caller's goroutine
// in due order.
type Test struct {
	mu   sync.Mutex
	now  time.Time
	seq  uint64
	jobs *orderedbuffer.OrderedBuffer[job]
}

var _ Scheduler = (*Test)(nil)

type job struct {
	due  time.Time
	seq  uint64
	fire func()
}

func compareJobs(a, b job) int {
	if c := a.due.Compare(b.due); c != 0 {
		return c
	}
	switch {
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	default:
		return 0
	}
}

// NewTest returns a virtual-clock scheduler starting at now.
func NewTest(now time.Time) *Test {
	return &Test{
		now:  now,
		jobs: orderedbuffer.NewOrderedBuffer(compareJobs),
	}
}

func (s *Test) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *Test) Schedule(ctx context.Context, d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	due := s.now.Add(d)
	s.mu.Unlock()

	var (
		once    sync.Once
		stopCtx func() bool
	)
	ready := make(chan struct{})
	fire := func() {
		once.Do(func() {
			<-ready
			stopCtx()
			fn()
		})
	}

	// a cancelled job leaves the queue right away so the clock never reaches it
	stopCtx = context.AfterFunc(ctx, func() {
		if s.jobs.RemoveFunc(func(j job) bool { return j.seq == seq }) > 0 {
			fire()
		}
	})
	close(ready)

	if err := s.jobs.Insert(job{due: due, seq: seq, fire: fire}); err != nil {
		fire()
		return
	}
	if ctx.Err() != nil && s.jobs.RemoveFunc(func(j job) bool { return j.seq == seq }) > 0 {
		fire()
	}
}

// Advance moves the clock forward by d, running every callback that falls due,
// including callbacks scheduled by callbacks within the window.
func (s *Test) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		j, ok := s.jobs.PopIf(func(j job) bool { return !j.due.After(target) })
		if !ok {
			break
		}
		s.mu.Lock()
		if j.due.After(s.now) {
			s.now = j.due
		}
		s.mu.Unlock()
		j.fire()
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
}

// Run advances the clock until no callbacks are left.
func (s *Test) Run() {
	for {
		j, ok := s.jobs.PopIf(func(job) bool { return true })
		if !ok {
			return
		}
		s.mu.Lock()
		if j.due.After(s.now) {
			s.now = j.due
		}
		s.mu.Unlock()
		j.fire()
	}
}

// Pending reports how many callbacks are waiting for the clock.
func (s *Test) Pending() int {
	return s.jobs.Len()
}
