package engine

import "testing"

func TestTranspositionStoreThenProbeExact(t *testing.T) {
	tt := NewTranspositionTable()
	tt.Store(12345, 4, 100, TTExact, "e2", "e4")

	score, from, to, ok := tt.Probe(12345, 4, -1000, 1000)
	if !ok {
		t.Fatal("expected a probe hit")
	}
	if score != 100 || from != "e2" || to != "e4" {
		t.Fatalf("Probe = %d %s %s, want 100 e2 e4", score, from, to)
	}
}

func TestTranspositionProbeMissesOnKeyMismatch(t *testing.T) {
	tt := NewTranspositionTable()
	tt.Store(1, 4, 100, TTExact, "e2", "e4")
	if _, _, _, ok := tt.Probe(1+ttSize, 4, -1000, 1000); ok {
		t.Fatal("expected a miss when the stored key differs (aliased into the same slot)")
	}
}

func TestTranspositionProbeRequiresSufficientDepth(t *testing.T) {
	tt := NewTranspositionTable()
	tt.Store(1, 2, 100, TTExact, "e2", "e4")
	if _, _, _, ok := tt.Probe(1, 5, -1000, 1000); ok {
		t.Fatal("a shallower stored depth should not satisfy a deeper probe")
	}
}

func TestTranspositionLowerBoundRequiresBetaCutoff(t *testing.T) {
	tt := NewTranspositionTable()
	tt.Store(1, 4, 50, TTLowerBound, "", "")
	if _, _, _, ok := tt.Probe(1, 4, -1000, 60); ok {
		t.Fatal("a lower bound below beta should not produce a cutoff")
	}
	if _, _, _, ok := tt.Probe(1, 4, -1000, 40); !ok {
		t.Fatal("a lower bound at or above beta should produce a cutoff")
	}
}

func TestTranspositionDoesNotReplaceDeeperWithShallower(t *testing.T) {
	tt := NewTranspositionTable()
	tt.Store(1, 8, 100, TTExact, "e2", "e4")
	tt.Store(1, 2, 200, TTExact, "d2", "d4")
	score, from, _, ok := tt.Probe(1, 8, -1000, 1000)
	if !ok || score != 100 || from != "e2" {
		t.Fatalf("shallower store should not have replaced the deeper entry: score=%d from=%s ok=%v", score, from, ok)
	}
}

func TestTranspositionHashFullAndHitRate(t *testing.T) {
	tt := NewTranspositionTable()
	if tt.HashFull() != 0 {
		t.Fatalf("HashFull on an empty table = %d, want 0", tt.HashFull())
	}
	if tt.HitRate() != 0 {
		t.Fatalf("HitRate with no probes = %f, want 0", tt.HitRate())
	}
	tt.Store(7, 3, 10, TTExact, "a2", "a4")
	tt.Probe(7, 3, -1000, 1000)
	if tt.HitRate() != 100 {
		t.Fatalf("HitRate after one hit = %f, want 100", tt.HitRate())
	}
}

func TestAdjustScoreRoundTripsNonMateScores(t *testing.T) {
	if got := AdjustScoreFromTT(AdjustScoreToTT(37, 5), 5); got != 37 {
		t.Fatalf("round trip of a non-mate score = %d, want 37", got)
	}
}

func TestAdjustScoreShiftsMateScoresByPly(t *testing.T) {
	stored := AdjustScoreToTT(MateScore-10, 3)
	if got := AdjustScoreFromTT(stored, 7); got != MateScore-10-7+3 {
		t.Fatalf("mate score probed at a different ply = %d, want %d", got, MateScore-10-7+3)
	}
}
