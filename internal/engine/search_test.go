package engine

import "testing"

func TestRootDriverFindsMateInOne(t *testing.T) {
	a := mustLoad(t, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	tt := NewTranspositionTable()
	counters := newCountermoveTable()

	lines, _ := RunRootDriver(a, tt, counters, 2, 1)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	best := lines[0]
	if best.Move.From != "a1" || best.Move.To != "a8" {
		t.Fatalf("best move = %s%s, want a1a8 (Ra8#)", best.Move.From, best.Move.To)
	}
	if best.Score < 29000 {
		t.Fatalf("mate score = %d, want >= 29000", best.Score)
	}
}

func TestRootDriverStartingPositionReturnsMultiPV(t *testing.T) {
	a := mustLoad(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	tt := NewTranspositionTable()
	counters := newCountermoveTable()

	lines, nodes := RunRootDriver(a, tt, counters, 1, 3)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if nodes <= 0 {
		t.Fatal("expected a positive node count")
	}
	top := lines[0]
	if abs(top.Score) >= 100 {
		t.Fatalf("depth-1 starting position score magnitude = %d, want < 100", top.Score)
	}
	candidates := map[string]bool{"e2e4": true, "d2d4": true, "g1f3": true, "c2c4": true}
	key := top.Move.From + top.Move.To
	if !candidates[key] {
		t.Fatalf("top move %s not among the usual depth-1 candidates", key)
	}
}

func TestRootDriverNoLegalMovesReturnsEmpty(t *testing.T) {
	a := mustLoad(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	tt := NewTranspositionTable()
	counters := newCountermoveTable()

	lines, _ := RunRootDriver(a, tt, counters, 4, 3)
	if len(lines) != 0 {
		t.Fatalf("got %d lines at a stalemated root, want 0", len(lines))
	}
}

func TestWorkerRunReportsErrorOnBadFEN(t *testing.T) {
	w := NewWorker()
	result := w.Run(Task{FEN: "not a fen", Depth: 2, MultiPV: 1, TaskID: "t1"})
	if result.Err == nil {
		t.Fatal("expected an error for a malformed FEN")
	}
	if result.TaskID != "t1" {
		t.Fatalf("TaskID = %q, want t1", result.TaskID)
	}
}

func TestWorkerRunSucceedsOnStartingPosition(t *testing.T) {
	w := NewWorker()
	result := w.Run(Task{
		FEN:     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		Depth:   2,
		MultiPV: 5,
		TaskID:  "root",
	})
	if result.Err != nil {
		t.Fatalf("Run: %v", result.Err)
	}
	if len(result.Lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(result.Lines))
	}
}
