// Package pool implements the fixed-size worker pool that the coordinator
// dispatches analysis tasks through: N isolated engine workers, a FIFO job
// queue, and a per-task future delivered as a channel.
package pool

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/chessanalyze/internal/engine"
)

// ErrTerminated is returned to Dispatch callers racing a Terminate call.
var ErrTerminated = errors.New("pool: terminated")

type job struct {
	task   engine.Task
	result chan<- engine.TaskResult
}

// Pool is a fixed set of workers, each running at most one task at a time,
// fed from a single FIFO channel. Workers share no mutable state: each owns
// its own Worker (and therefore its own transposition table and
// countermove table), satisfying the single-writer-per-TT-slot contract.
type Pool struct {
	jobs   chan job
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
}

// New starts size workers, each pulling jobs off the internal queue until
// Terminate is called.
func New(size int) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	p := &Pool{
		jobs:   make(chan job),
		ctx:    ctx,
		cancel: cancel,
		group:  group,
	}

	for i := 0; i < size; i++ {
		worker := engine.NewWorker()
		group.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case j := <-p.jobs:
					j.result <- worker.Run(j.task)
				}
			}
		})
	}

	return p
}

// Dispatch enqueues t and returns a channel that receives exactly one
// TaskResult once an idle worker has run it. Submission order equals
// dispatch order: the jobs channel is a single FIFO queue shared by every
// worker, so the task that was sent first is the task the first idle
// worker receives first. The jobs channel is never closed, so a Dispatch
// racing Terminate cannot panic on a send to a closed channel; instead it
// observes the cancelled context and returns ErrTerminated.
func (p *Pool) Dispatch(t engine.Task) <-chan engine.TaskResult {
	result := make(chan engine.TaskResult, 1)
	select {
	case <-p.ctx.Done():
		result <- engine.TaskResult{TaskID: t.TaskID, Err: ErrTerminated}
		return result
	default:
	}
	select {
	case p.jobs <- job{task: t, result: result}:
	case <-p.ctx.Done():
		result <- engine.TaskResult{TaskID: t.TaskID, Err: ErrTerminated}
	}
	return result
}

// Terminate cancels every worker and waits for them to exit. A task a worker
// is already running completes first, and its result is still sent to that
// task's channel; the pool itself does not drop it.
func (p *Pool) Terminate() {
	p.cancel()
	p.group.Wait()
}
