package plan

import (
	"testing"

	"github.com/hailam/chessanalyze/internal/position"
)

func TestGenerateRootPlanIsFirstAndWellFormed(t *testing.T) {
	pos, err := position.Load("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	plans := Generate(pos, 32, 6)
	if len(plans) != 32 {
		t.Fatalf("got %d plans, want 32", len(plans))
	}
	root := plans[0]
	if root.TaskID != "root" {
		t.Fatalf("first task id = %q, want root", root.TaskID)
	}
	if root.MultiPV != 8 {
		t.Fatalf("root multiPV = %d, want 8 (min(8, 20 legal moves))", root.MultiPV)
	}
	if root.Depth != 6 {
		t.Fatalf("root depth = %d, want 6", root.Depth)
	}
}

func TestGenerateStopsAtMaxPlans(t *testing.T) {
	pos, err := position.Load("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, n := range []int{1, 5, 10, 100} {
		plans := Generate(pos, n, 6)
		if len(plans) > n {
			t.Fatalf("Generate(maxPlans=%d) produced %d plans, want <= %d", n, len(plans), n)
		}
	}
}

func TestGenerateLevel1PlansCarryRootMove(t *testing.T) {
	pos, err := position.Load("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	plans := Generate(pos, 8, 6)
	found := false
	for _, p := range plans {
		if p.TaskID == "l1-1" {
			found = true
			if p.RootMove == "" {
				t.Fatal("level-1 plan should carry a non-empty root move SAN")
			}
			if len(p.Moves) != 1 || p.Moves[0] != p.RootMove {
				t.Fatalf("level-1 plan moves = %v, want [%s]", p.Moves, p.RootMove)
			}
		}
	}
	if !found {
		t.Fatal("expected an l1-1 plan among the first 8")
	}
}

func TestGenerateDoesNotMutatePositionAfterReturn(t *testing.T) {
	pos, err := position.Load("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	start := pos.FEN()
	_ = Generate(pos, 32, 6)
	if got := pos.FEN(); got != start {
		t.Fatalf("Generate left the position mutated: got %q, want %q", got, start)
	}
}
