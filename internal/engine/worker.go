package engine

import "github.com/hailam/chessanalyze/internal/position"

// Task is one unit of work submitted to a Worker: analyze FEN to depth,
// returning up to multiPV ranked root lines, tagged with taskId so the
// caller can match it back to the request that produced it.
type Task struct {
	FEN     string
	Depth   int
	MultiPV int
	TaskID  string
}

// TaskResult is what a Worker reports back for a Task. Err is a Go error
// rather than a panic, so a single bad task cannot take down the pool's
// goroutine group.
type TaskResult struct {
	TaskID string
	Lines  []RootLine
	Nodes  int
	Err    error
}

// Worker runs one task at a time. It owns a single transposition table and
// countermove table, both of which persist across tasks it runs; per-task
// killer/history/move-stack state is reset at the start of every root
// search inside RunRootDriver. Workers are never shared between goroutines
// concurrently — the pool hands one task at a time to each worker.
type Worker struct {
	tt       *TranspositionTable
	counters *countermoveTable
}

// NewWorker allocates a worker with its own table state.
func NewWorker() *Worker {
	return &Worker{
		tt:       NewTranspositionTable(),
		counters: newCountermoveTable(),
	}
}

// Run executes t to completion and reports the result. A malformed FEN is
// reported as a task error, never as a panic.
func (w *Worker) Run(t Task) TaskResult {
	pos, err := position.Load(t.FEN)
	if err != nil {
		return TaskResult{TaskID: t.TaskID, Err: err}
	}
	lines, nodes := RunRootDriver(pos, w.tt, w.counters, t.Depth, t.MultiPV)
	return TaskResult{TaskID: t.TaskID, Lines: lines, Nodes: nodes}
}
