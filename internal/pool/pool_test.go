package pool

import (
	"testing"
	"time"

	"github.com/hailam/chessanalyze/internal/engine"
)

const startingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestPoolDispatchRunsAndReturnsResult(t *testing.T) {
	p := New(2)
	defer p.Terminate()

	future := p.Dispatch(engine.Task{FEN: startingFEN, Depth: 1, MultiPV: 1, TaskID: "t1"})
	select {
	case result := <-future:
		if result.Err != nil {
			t.Fatalf("task error: %v", result.Err)
		}
		if result.TaskID != "t1" {
			t.Fatalf("TaskID = %q, want t1", result.TaskID)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for task result")
	}
}

func TestPoolRunsMultipleTasksConcurrently(t *testing.T) {
	p := New(3)
	defer p.Terminate()

	futures := make([]<-chan engine.TaskResult, 5)
	for i := range futures {
		futures[i] = p.Dispatch(engine.Task{FEN: startingFEN, Depth: 1, MultiPV: 1, TaskID: "t"})
	}
	for i, f := range futures {
		select {
		case result := <-f:
			if result.Err != nil {
				t.Fatalf("task %d error: %v", i, result.Err)
			}
		case <-time.After(10 * time.Second):
			t.Fatalf("task %d timed out", i)
		}
	}
}

func TestPoolReportsErrorForBadFEN(t *testing.T) {
	p := New(1)
	defer p.Terminate()

	future := p.Dispatch(engine.Task{FEN: "not a fen", Depth: 1, MultiPV: 1, TaskID: "bad"})
	select {
	case result := <-future:
		if result.Err == nil {
			t.Fatal("expected an error for a malformed FEN")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for task result")
	}
}
