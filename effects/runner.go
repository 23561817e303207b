package effects

import (
	"context"
	"sync"

	"github.com/on-the-ground/effect_ive_flow/effects/internal/registry"
	"github.com/on-the-ground/effect_ive_flow/effects/internal/supervisor"
	"github.com/on-the-ground/effect_ive_flow/effects/log"
)

// Runner is the Runtime used by stores: a supervisor for effect goroutines plus a
// sharded registry of cancellation ids.
type Runner struct {
	logCtx    context.Context
	reg       *registry.Registry
	sup       *supervisor.Supervisor
	closeOnce sync.Once
}

var _ Runtime = (*Runner)(nil)

// NewRunner creates a runner that logs through the handler installed in logCtx.
// shards spreads cancellation ids over that many locks.
func NewRunner(logCtx context.Context, shards int) *Runner {
	return &Runner{
		logCtx: logCtx,
		reg:    registry.New(shards),
		sup:    supervisor.New(logCtx),
	}
}

func (r *Runner) Go(ctx context.Context, fn func(context.Context)) bool {
	return r.sup.Go(ctx, fn)
}

func (r *Runner) Register(id any, cancel context.CancelFunc) (release func()) {
	return r.reg.Register(id, cancel)
}

func (r *Runner) Cancel(id any) {
	log.Eff(r.logCtx, log.LogDebug, "cancelling effects", map[string]interface{}{
		"id": id,
	})
	r.reg.Cancel(id)
}

// Running reports how many cancellable effects are registered under id.
func (r *Runner) Running(id any) int {
	return r.reg.Len(id)
}

// Close cancels every registered effect and waits for all effect goroutines.
// It is safe to call more than once.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		r.reg.CancelAll()
		r.sup.Close()
	})
}
