package engine

import (
	"sort"

	"github.com/hailam/chessanalyze/internal/position"
)

const nullMoveReduction = 3

var razorMargin = [3]int{0, 200, 350}
var futilityMargin = [4]int{0, 150, 300, 500}
var lateMovePruningThreshold = [3]int{0, 5, 12}

const (
	ttMoveBonus       = 300
	killerBonus       = 90
	countermoveBonus  = 75
	historyOrderCap   = 80
	historyOrderScale = 100
)

// SearchContext owns everything the alpha-beta search mutates while solving
// a single task: the position, the transposition table, and the per-worker
// heuristic tables. It is passed by reference through recursion so that no
// search state lives in package-level variables.
type SearchContext struct {
	pos      *position.Adapter
	tt       *TranspositionTable
	killers  *killerTable
	history  *historyTable
	counters *countermoveTable
	stack    moveStack

	Nodes int
	ply   int
}

// NewSearchContext builds a fresh search context over pos, sharing tt and
// counters with the rest of the worker's root searches.
func NewSearchContext(pos *position.Adapter, tt *TranspositionTable, counters *countermoveTable) *SearchContext {
	return &SearchContext{
		pos:      pos,
		tt:       tt,
		killers:  &killerTable{},
		history:  newHistoryTable(),
		counters: counters,
	}
}

// resetForRootSearch clears killers and the move stack and decays history,
// per the root driver's per-search reset contract. The TT and countermove
// table are left untouched, since both persist across a worker's searches.
func (sc *SearchContext) resetForRootSearch() {
	sc.killers.clear()
	sc.stack.clear()
	sc.history.decay()
	sc.ply = 0
}

// search runs the recursive alpha-beta minimax. maximizing is true when
// White is to move at this node; scores are always White-positive,
// consistent with the evaluator.
func (sc *SearchContext) search(depth, alpha, beta int, maximizing bool) int {
	sc.Nodes++

	if a := -(MateScore - sc.ply); a > alpha {
		alpha = a
	}
	if b := MateScore - sc.ply; b < beta {
		beta = b
	}
	if alpha >= beta {
		return alpha
	}

	hash := sc.pos.Hash()
	if score, _, _, ok := sc.tt.Probe(hash, depth, alpha, beta); ok {
		return AdjustScoreFromTT(score, sc.ply)
	}

	if depth == 0 {
		return sc.quiescence(alpha, beta, maximizing)
	}

	if sc.pos.GameOver() || !sc.pos.HasLegalMoves() {
		return Evaluate(sc.pos, true)
	}

	inCheck := sc.pos.InCheck()

	if !inCheck && depth >= nullMoveReduction+1 && sc.pos.HasNonPawnMaterial() {
		if undo, ok := sc.pos.MakeNull(); ok {
			sc.ply++
			score := sc.search(depth-1-nullMoveReduction, alpha, beta, !maximizing)
			sc.ply--
			sc.pos.UnmakeNull(undo)
			if maximizing && score >= beta {
				return beta
			}
			if !maximizing && score <= alpha {
				return alpha
			}
		}
	}

	var staticEval int
	haveStaticEval := false
	if depth <= 3 {
		staticEval = Evaluate(sc.pos, true)
		haveStaticEval = true
	}

	// Razoring applies only on the maximizing branch.
	if !inCheck && maximizing && depth >= 1 && depth <= 2 {
		if staticEval+razorMargin[depth] < alpha {
			q := sc.quiescence(alpha-1, alpha, true)
			if q < alpha {
				return q
			}
		}
	}

	parentMoveKey := sc.stack.get(sc.ply - 1)
	moves := sc.orderedMoves(hash, parentMoveKey)

	originalAlpha := alpha
	var best int
	if maximizing {
		best = -2 * MateScore
	} else {
		best = 2 * MateScore
	}
	var bestFrom, bestTo string

	movesSearched := 0
	quietsSkipped := 0

	for mi, m := range moves {
		quiet := !m.IsCapture() && !m.IsPromotion()

		if quiet && haveStaticEval {
			if maximizing && staticEval+futilityMargin[depth] <= alpha {
				continue
			}
			if !maximizing && staticEval-futilityMargin[depth] >= beta {
				continue
			}
		}

		if !inCheck && depth <= 2 && quiet && movesSearched >= 1 {
			quietsSkipped++
			if quietsSkipped > lateMovePruningThreshold[depth] {
				continue
			}
		}

		sc.stack.set(sc.ply, m.PieceKey())
		if err := sc.pos.Make(m); err != nil {
			continue
		}
		sc.ply++

		givesCheck := sc.pos.GivesCheck()
		newDepth := depth - 1

		var score int
		switch {
		case movesSearched == 0:
			score = sc.search(newDepth, alpha, beta, !maximizing)
		case mi >= 2 && depth >= 3 && quiet && !givesCheck && !inCheck:
			r := lmrReduction(depth, mi)
			if r > newDepth {
				r = newDepth
			}
			lo, hi := narrowWindow(alpha, beta, maximizing)
			score = sc.search(newDepth-r, lo, hi, !maximizing)
			if score > alpha && score < beta {
				score = sc.search(newDepth, alpha, beta, !maximizing)
			}
		default:
			lo, hi := narrowWindow(alpha, beta, maximizing)
			score = sc.search(newDepth, lo, hi, !maximizing)
			if score > alpha && score < beta {
				score = sc.search(newDepth, alpha, beta, !maximizing)
			}
		}

		sc.ply--
		sc.pos.Unmake()
		movesSearched++

		raised := false
		if maximizing {
			if score > best {
				best = score
				bestFrom, bestTo = m.From, m.To
			}
			if best > alpha {
				alpha = best
				raised = true
			}
		} else {
			if score < best {
				best = score
				bestFrom, bestTo = m.From, m.To
			}
			if best < beta {
				beta = best
				raised = true
			}
		}
		if raised && quiet {
			sc.history.add(m.PieceKey(), depth)
		}

		if alpha >= beta {
			if quiet {
				sc.killers.add(sc.ply, m.Key())
				sc.history.add(m.PieceKey(), depth*depth)
				if parentMoveKey != "" {
					sc.counters.set(parentMoveKey, m.PieceKey())
				}
			}
			break
		}
	}

	flag := TTExact
	if best >= beta {
		flag = TTLowerBound
	} else if best <= originalAlpha {
		flag = TTUpperBound
	}
	sc.tt.Store(hash, depth, AdjustScoreToTT(best, sc.ply), flag, bestFrom, bestTo)

	return best
}

// narrowWindow returns the zero-width probe window used by the PVS
// re-search test: (alpha, alpha+1) on the maximizing branch, (beta-1, beta)
// on the minimizing branch.
func narrowWindow(alpha, beta int, maximizing bool) (int, int) {
	if maximizing {
		return alpha, alpha + 1
	}
	return beta - 1, beta
}

// orderedMoves returns the legal moves at the current node sorted
// descending by the composite ordering score: TT move, then MVV/LVA
// captures and promotions, then killers, countermove, and history for
// quiet moves.
func (sc *SearchContext) orderedMoves(hash uint64, parentMoveKey string) []position.VerboseMove {
	moves := sc.pos.LegalMoves()
	ttFrom, ttTo, haveTT := sc.tt.ProbeMove(hash)
	ply := sc.ply

	var countermoveKey string
	if parentMoveKey != "" {
		countermoveKey, _ = sc.counters.get(parentMoveKey)
	}

	type scoredMove struct {
		m position.VerboseMove
		s int
	}
	scored := make([]scoredMove, len(moves))
	for i, m := range moves {
		s := 0
		if haveTT && m.From == ttFrom && m.To == ttTo {
			s += ttMoveBonus
		}
		if m.IsCapture() {
			s += 10*capturedPieceValue(m) - moverPieceValue(m)
		}
		if m.IsPromotion() {
			s += 8 * pieceValueForChar(m.Promotion)
		}
		if !m.IsCapture() && !m.IsPromotion() {
			if sc.killers.isKiller(ply, m.Key()) {
				s += killerBonus
			}
			if countermoveKey != "" && m.PieceKey() == countermoveKey {
				s += countermoveBonus
			}
			h := sc.history.get(m.PieceKey()) / historyOrderScale
			if h > historyOrderCap {
				h = historyOrderCap
			}
			s += h
		}
		scored[i] = scoredMove{m: m, s: s}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].s > scored[j].s })

	out := make([]position.VerboseMove, len(scored))
	for i, sm := range scored {
		out[i] = sm.m
	}
	return out
}
