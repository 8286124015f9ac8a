// Package task offloads slow work (image decode, hashing, transcoding,
// segmentation inference) to worker goroutines. Workers never touch
// shared canvas state: each job produces an action that the owner's
// interactive loop drains and dispatches through the normal reducer
// path.
package task

import (
	"context"
	"sync"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/state"
)

// Job runs on a worker and returns the completion action to dispatch,
// or nil for jobs with no state effect.
type Job func(ctx context.Context) (state.Action, error)

// Guard decides at drain time whether a completed job still applies.
// Asset loads that finished after their layer was deleted or the
// project was cleared return false here instead of writing stale state.
type Guard func(c *state.Canvas) bool

// Result is one finished job awaiting dispatch.
type Result struct {
	Action state.Action
	Err    error
	guard  Guard
}

type job struct {
	run   Job
	guard Guard
}

// Runner executes jobs on a fixed pool of workers and queues their
// completion actions for the interactive loop.
type Runner struct {
	ctx     context.Context
	cancel  context.CancelFunc
	jobs    chan job
	results chan Result
	wg      sync.WaitGroup
}

// NewRunner starts a pool. workers <= 0 selects a single worker.
func NewRunner(workers int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(chan job, workers*4),
		results: make(chan Result, workers*4),
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.work()
	}
	return r
}

func (r *Runner) work() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case j := <-r.jobs:
			a, err := j.run(r.ctx)
			select {
			case r.results <- Result{Action: a, Err: err, guard: j.guard}:
			case <-r.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. guard may be nil when the result is always
// applicable. Returns false if the runner is closed or the queue is
// full.
func (r *Runner) Submit(run Job, guard Guard) bool {
	if r.ctx.Err() != nil {
		return false
	}
	select {
	case r.jobs <- job{run: run, guard: guard}:
		return true
	case <-r.ctx.Done():
		return false
	default:
		easel.Logger().Warn("task queue full, job rejected")
		return false
	}
}

// Results exposes the completion queue for select-based loops.
func (r *Runner) Results() <-chan Result { return r.results }

// Drain applies all queued completions through the dispatcher without
// blocking and returns how many actions were dispatched. Stale results
// (guard returns false against the current canvas) and failed jobs are
// dropped with a log line.
func (r *Runner) Drain(d *state.Dispatcher) int {
	applied := 0
	for {
		select {
		case res := <-r.results:
			if res.Err != nil {
				easel.Logger().Warn("task failed", "err", res.Err)
				continue
			}
			if res.Action == nil {
				continue
			}
			if res.guard != nil && !res.guard(d.Canvas()) {
				easel.Logger().Debug("dropping stale task result")
				continue
			}
			if err := d.Dispatch(res.Action); err != nil {
				easel.Logger().Warn("task action rejected", "err", err)
				continue
			}
			applied++
		default:
			return applied
		}
	}
}

// Close stops the workers. Queued jobs that have not started are
// discarded.
func (r *Runner) Close() {
	r.cancel()
	r.wg.Wait()
}
