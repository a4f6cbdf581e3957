package engine

// TTFlag classifies the bound a transposition table entry represents.
type TTFlag uint8

const (
	TTExact TTFlag = iota
	TTLowerBound
	TTUpperBound
)

// ttIndexBits sizes the table at 2^20 = 1,048,576 slots, per the fixed slot
// count the table contract requires.
const ttIndexBits = 20
const ttSize = 1 << ttIndexBits
const ttMask = ttSize - 1

// TTEntry is one transposition table slot. The full FEN-comparison contract
// is preserved behaviorally by storing the 64-bit Zobrist key as the
// verification hash instead of the literal FEN string: two positions that
// hash identically and have the same key are treated as the same signature,
// which is what the FEN comparison was really testing for.
type TTEntry struct {
	key      uint64
	score    int
	depth    int
	flag     TTFlag
	bestFrom string
	bestTo   string
	occupied bool
}

// TranspositionTable is a fixed-size, single-writer cache of search results
// keyed by position signature. A worker owns exactly one.
type TranspositionTable struct {
	entries []TTEntry
	probes  uint64
	hits    uint64
}

// NewTranspositionTable allocates a table with the fixed 2^20 slot count.
func NewTranspositionTable() *TranspositionTable {
	return &TranspositionTable{entries: make([]TTEntry, ttSize)}
}

func ttIndex(hash uint64) uint64 {
	return hash & ttMask
}

// Probe returns the stored score if it satisfies the requested bound at a
// depth at least as deep as requested, along with the stored best-move key
// (possibly empty) and whether a usable entry was found.
func (tt *TranspositionTable) Probe(hash uint64, depth, alpha, beta int) (score int, bestFrom, bestTo string, ok bool) {
	tt.probes++
	e := &tt.entries[ttIndex(hash)]
	if !e.occupied || e.key != hash {
		return 0, "", "", false
	}
	bestFrom, bestTo = e.bestFrom, e.bestTo
	if e.depth < depth {
		return 0, bestFrom, bestTo, false
	}
	switch e.flag {
	case TTExact:
		tt.hits++
		return e.score, bestFrom, bestTo, true
	case TTLowerBound:
		if e.score >= beta {
			tt.hits++
			return e.score, bestFrom, bestTo, true
		}
	case TTUpperBound:
		if e.score <= alpha {
			tt.hits++
			return e.score, bestFrom, bestTo, true
		}
	}
	return 0, bestFrom, bestTo, false
}

// ProbeMove returns the best-move key stored for hash, if any, regardless
// of whether the stored score would satisfy a bound — used for move
// ordering even when the score itself can't be trusted at this depth.
func (tt *TranspositionTable) ProbeMove(hash uint64) (from, to string, ok bool) {
	e := &tt.entries[ttIndex(hash)]
	if !e.occupied || e.key != hash {
		return "", "", false
	}
	return e.bestFrom, e.bestTo, e.bestFrom != ""
}

// Store saves a result iff the slot is empty or the new depth is at least
// as deep as what's stored.
func (tt *TranspositionTable) Store(hash uint64, depth, score int, flag TTFlag, bestFrom, bestTo string) {
	e := &tt.entries[ttIndex(hash)]
	if e.occupied && e.depth > depth {
		return
	}
	e.key = hash
	e.score = score
	e.depth = depth
	e.flag = flag
	e.bestFrom = bestFrom
	e.bestTo = bestTo
	e.occupied = true
}

// Clear empties every slot, dropping all cached results.
func (tt *TranspositionTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	tt.probes, tt.hits = 0, 0
}

// HitRate reports the probe hit rate as a percentage, for diagnostics.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// HashFull samples the first 1000 slots and reports how many are occupied,
// in parts per thousand, for diagnostics.
func (tt *TranspositionTable) HashFull() int {
	sample := 1000
	if sample > len(tt.entries) {
		sample = len(tt.entries)
	}
	used := 0
	for i := 0; i < sample; i++ {
		if tt.entries[i].occupied {
			used++
		}
	}
	return used * 1000 / sample
}

// AdjustScoreFromTT converts a mate score stored relative to the TT-local
// ply back to one relative to the root, given the current ply.
func AdjustScoreFromTT(score, ply int) int {
	if score > MateScore-1000 {
		return score - ply
	}
	if score < -MateScore+1000 {
		return score + ply
	}
	return score
}

// AdjustScoreToTT converts a root-relative mate score into one relative to
// the position being stored, so it remains meaningful when probed from a
// different ply later.
func AdjustScoreToTT(score, ply int) int {
	if score > MateScore-1000 {
		return score + ply
	}
	if score < -MateScore+1000 {
		return score - ply
	}
	return score
}
