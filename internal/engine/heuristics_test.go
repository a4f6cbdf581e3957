package engine

import "testing"

func TestKillerTableTwoSlotLRU(t *testing.T) {
	var k killerTable
	k.add(3, "e2e4")
	k.add(3, "d2d4")
	if !k.isKiller(3, "e2e4") || !k.isKiller(3, "d2d4") {
		t.Fatal("both inserted killers should be present")
	}
	k.add(3, "g1f3")
	if k.isKiller(3, "e2e4") {
		t.Fatal("oldest killer should have been displaced")
	}
	if !k.isKiller(3, "d2d4") || !k.isKiller(3, "g1f3") {
		t.Fatal("the two most recent killers should remain")
	}
}

func TestHistoryTableAddAndDecay(t *testing.T) {
	h := newHistoryTable()
	h.add("pe2e4", 16)
	if got := h.get("pe2e4"); got != 16 {
		t.Fatalf("get after add = %d, want 16", got)
	}
	h.decay()
	if got := h.get("pe2e4"); got != 8 {
		t.Fatalf("get after one decay = %d, want 8", got)
	}
	h.decay()
	h.decay()
	h.decay()
	h.decay()
	if got := h.get("pe2e4"); got != 0 {
		t.Fatalf("get after repeated decay = %d, want 0 (dropped)", got)
	}
}

func TestCountermoveTableSetAndGet(t *testing.T) {
	c := newCountermoveTable()
	if _, ok := c.get("pe7e5"); ok {
		t.Fatal("empty table should report no countermove")
	}
	c.set("pe7e5", "ng1f3")
	got, ok := c.get("pe7e5")
	if !ok || got != "ng1f3" {
		t.Fatalf("get = %q, %v; want ng1f3, true", got, ok)
	}
}

func TestMoveStackLIFOStyleAccess(t *testing.T) {
	var s moveStack
	s.set(0, "pe2e4")
	s.set(1, "pe7e5")
	if s.get(0) != "pe2e4" || s.get(1) != "pe7e5" {
		t.Fatal("move stack did not retain keys at their plies")
	}
	if s.get(-1) != "" || s.get(MaxPly) != "" {
		t.Fatal("out-of-range ply access should return empty string, not panic")
	}
}

func TestLMRReductionIsZeroForShallowOrEarlyMoves(t *testing.T) {
	if r := lmrReduction(0, 10); r != 0 {
		t.Fatalf("lmrReduction(0, 10) = %d, want 0", r)
	}
	if r := lmrReduction(10, 0); r != 0 {
		t.Fatalf("lmrReduction(10, 0) = %d, want 0", r)
	}
}

func TestLMRReductionGrowsWithDepthAndMoveIndex(t *testing.T) {
	shallow := lmrReduction(3, 5)
	deep := lmrReduction(20, 40)
	if deep < shallow {
		t.Fatalf("lmrReduction should grow with depth and move index: shallow=%d deep=%d", shallow, deep)
	}
}

func TestLMRReductionClampsOutOfRangeInputs(t *testing.T) {
	if r := lmrReduction(1000, 1000); r != lmrTable[31][63] {
		t.Fatalf("out-of-range inputs should clamp to the table's last cell")
	}
}
