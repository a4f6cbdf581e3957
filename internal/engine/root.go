package engine

import (
	"sort"

	"github.com/hailam/chessanalyze/internal/position"
)

const (
	aspirationWindow       = 50
	aspirationWindowWide   = 150
	forcedMateScoreAbsMin  = 29000
	fullWindowAlpha        = -2 * MateScore
	fullWindowBeta         = 2 * MateScore
)

// RootLine is one root move and its evaluated score, from the root side's
// perspective (positive = good for whoever was to move at the position the
// root driver was handed).
type RootLine struct {
	Move  position.VerboseMove
	Score int
}

// RunRootDriver enumerates the legal moves of pos, runs iterative deepening
// with aspiration windows from each resulting child position up to
// maxDepth, and returns the top multiPV root moves sorted descending by
// score. tt and counters are shared across every root move searched by this
// call and belong to the worker, which keeps them across tasks; killers, the move
// stack, and history are reset once, before the root-move loop, so ordering
// state accumulated while searching one root move keeps informing the next.
func RunRootDriver(pos *position.Adapter, tt *TranspositionTable, counters *countermoveTable, maxDepth, multiPV int) ([]RootLine, int) {
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return nil, 0
	}

	rootIsWhite := pos.Turn() == 'w'
	sc := NewSearchContext(pos, tt, counters)
	sc.resetForRootSearch()
	lines := make([]RootLine, 0, len(moves))

	for _, m := range moves {
		if err := pos.Make(m); err != nil {
			continue
		}
		maximizing := pos.Turn() == 'w'

		score := 0
		prev := 0
		for d := 1; d <= maxDepth; d++ {
			alpha, beta := fullWindowAlpha, fullWindowBeta
			if d >= 2 {
				alpha, beta = prev-aspirationWindow, prev+aspirationWindow
			}
			s := sc.search(d, alpha, beta, maximizing)
			if d >= 2 && (s <= alpha || s >= beta) {
				alpha, beta = prev-aspirationWindowWide, prev+aspirationWindowWide
				s = sc.search(d, alpha, beta, maximizing)
				if s <= alpha || s >= beta {
					s = sc.search(d, fullWindowAlpha, fullWindowBeta, maximizing)
				}
			}
			score = s
			prev = s
			if abs(score) >= forcedMateScoreAbsMin {
				break
			}
		}

		pos.Unmake()

		rootScore := score
		if !rootIsWhite {
			rootScore = -rootScore
		}
		lines = append(lines, RootLine{Move: m, Score: rootScore})
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Score > lines[j].Score })

	if multiPV < len(lines) {
		lines = lines[:multiPV]
	}
	return lines, sc.Nodes
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
