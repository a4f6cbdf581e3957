package position

import "testing"

func TestLoadRejectsBadFEN(t *testing.T) {
	if _, err := Load("not a fen"); err == nil {
		t.Fatal("expected an error for a malformed FEN")
	}
}

func TestLoadRoundTripsFEN(t *testing.T) {
	fen := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	a, err := Load(fen)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := a.FEN(); got != fen {
		t.Fatalf("FEN() = %q, want %q", got, fen)
	}
	if a.Turn() != 'w' {
		t.Fatalf("Turn() = %c, want w", a.Turn())
	}
}

func TestMakeUnmakeRestoresFEN(t *testing.T) {
	fen := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	a, err := Load(fen)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	moves := a.LegalMoves()
	if len(moves) != 20 {
		t.Fatalf("LegalMoves() returned %d moves, want 20", len(moves))
	}
	for _, m := range moves {
		if err := a.Make(m); err != nil {
			t.Fatalf("Make(%v): %v", m, err)
		}
		a.Unmake()
		if got := a.FEN(); got != fen {
			t.Fatalf("after Make/Unmake(%v): FEN() = %q, want %q", m, got, fen)
		}
	}
}

func TestUnmakeIsLIFO(t *testing.T) {
	a, err := Load("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	start := a.FEN()
	for i := 0; i < 4; i++ {
		moves := a.LegalMoves()
		if len(moves) == 0 {
			t.Fatalf("no legal moves at ply %d", i)
		}
		if err := a.Make(moves[0]); err != nil {
			t.Fatalf("Make: %v", err)
		}
	}
	for i := 0; i < 4; i++ {
		a.Unmake()
	}
	if got := a.FEN(); got != start {
		t.Fatalf("after 4 Make + 4 Unmake: FEN() = %q, want %q", got, start)
	}
}

func TestCheckmateDetection(t *testing.T) {
	a, err := Load("6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	moves := a.LegalMoves()
	var mate bool
	for _, m := range moves {
		if m.From == "a1" && m.To == "a8" {
			if err := a.Make(m); err != nil {
				t.Fatalf("Make: %v", err)
			}
			mate = a.InCheckmate()
			a.Unmake()
			break
		}
	}
	if !mate {
		t.Fatal("Ra8 was expected to be checkmate")
	}
}

func TestStalemateDetection(t *testing.T) {
	a, err := Load("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !a.InStalemate() {
		t.Fatal("position was expected to be stalemate")
	}
	if !a.GameOver() {
		t.Fatal("stalemate must be reported as game over")
	}
}

func TestThreefoldRepetition(t *testing.T) {
	a, err := Load("7k/8/8/8/8/8/R7/6K1 w - - 0 1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	shuttle := func(from, to string) {
		for _, m := range a.LegalMoves() {
			if m.From == from && m.To == to {
				if err := a.Make(m); err != nil {
					t.Fatalf("Make %s%s: %v", from, to, err)
				}
				return
			}
		}
		t.Fatalf("move %s%s not found among legal moves", from, to)
	}
	// shuffle the rook and king back and forth to repeat the starting
	// position's hash three times without ever capturing or pushing a pawn.
	shuttle("a2", "a3")
	shuttle("h8", "h7")
	shuttle("a3", "a2")
	shuttle("h7", "h8")
	shuttle("a2", "a3")
	shuttle("h8", "h7")
	shuttle("a3", "a2")
	shuttle("h7", "h8")
	if !a.InThreefoldRepetition() {
		t.Fatal("expected threefold repetition after shuttling back to the start three times")
	}
}

func TestOpponentLegalMoveCountSkipsWhenInCheck(t *testing.T) {
	a, err := Load("rnb1kbnr/pppp1ppp/8/4p3/6Pq/8/PPPPP1PP/RNBQKBNR w KQkq - 1 3")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !a.InCheck() {
		t.Fatal("position was expected to be in check")
	}
	if _, ok := a.OpponentLegalMoveCount(); ok {
		t.Fatal("OpponentLegalMoveCount should report ok=false when the side to move is in check")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a, err := Load("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	clone := a.Clone()
	moves := a.LegalMoves()
	if err := clone.Make(moves[0]); err != nil {
		t.Fatalf("Make on clone: %v", err)
	}
	if a.FEN() == clone.FEN() {
		t.Fatal("mutating the clone should not affect the original")
	}
}
