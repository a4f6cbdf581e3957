package engine

import (
	"sort"

	"github.com/hailam/chessanalyze/internal/position"
)

const deltaPruningMargin = 200

// quiescence is the tactical-only horizon extension: it searches captures,
// promotions, and (while in check) every legal evasion, until the position
// is quiet enough for the static evaluator's verdict to be trusted. The
// evaluator's mobility term is never computed here.
func (sc *SearchContext) quiescence(alpha, beta int, maximizing bool) int {
	sc.Nodes++

	inCheck := sc.pos.InCheck()

	var standPat int
	if !inCheck {
		standPat = Evaluate(sc.pos, false)
		if maximizing {
			if standPat >= beta {
				return beta
			}
			if standPat > alpha {
				alpha = standPat
			}
		} else {
			if standPat <= alpha {
				return alpha
			}
			if standPat < beta {
				beta = standPat
			}
		}
	}

	candidates := sc.quiescenceMoves(inCheck)
	if inCheck && len(candidates) == 0 {
		if maximizing {
			return -CheckmateScore
		}
		return CheckmateScore
	}

	best := standPat
	if inCheck {
		if maximizing {
			best = -CheckmateScore
		} else {
			best = CheckmateScore
		}
	}

	for _, m := range candidates {
		if !inCheck && m.IsCapture() {
			capturedValue := capturedPieceValue(m)
			if maximizing && standPat+capturedValue+deltaPruningMargin < alpha {
				continue
			}
			if !maximizing && standPat-capturedValue-deltaPruningMargin > beta {
				continue
			}
		}

		if err := sc.pos.Make(m); err != nil {
			continue
		}
		sc.ply++
		score := sc.quiescence(alpha, beta, !maximizing)
		sc.ply--
		sc.pos.Unmake()

		if maximizing {
			if score > best {
				best = score
			}
			if best > alpha {
				alpha = best
			}
		} else {
			if score < best {
				best = score
			}
			if best < beta {
				beta = best
			}
		}
		if alpha >= beta {
			break
		}
	}

	return best
}

// quiescenceMoves returns every legal move when in check (evasions),
// otherwise only captures and promotions, sorted descending by MVV/LVA plus
// promotion value.
func (sc *SearchContext) quiescenceMoves(inCheck bool) []position.VerboseMove {
	all := sc.pos.LegalMoves()
	if inCheck {
		return all
	}
	out := make([]position.VerboseMove, 0, len(all))
	for _, m := range all {
		if m.IsCapture() || m.IsPromotion() {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return quiescenceOrderScore(out[i]) > quiescenceOrderScore(out[j])
	})
	return out
}

func quiescenceOrderScore(m position.VerboseMove) int {
	score := 0
	if m.IsCapture() {
		score += 10*capturedPieceValue(m) - moverPieceValue(m)
	}
	if m.IsPromotion() {
		score += 8 * pieceValueForChar(m.Promotion)
	}
	return score
}

func capturedPieceValue(m position.VerboseMove) int {
	if !m.IsCapture() {
		return 0
	}
	return pieceValueForChar(m.Captured)
}

func moverPieceValue(m position.VerboseMove) int {
	return pieceValueForChar(m.Piece)
}

func pieceValueForChar(c byte) int {
	switch c {
	case 'p':
		return PawnValue
	case 'n':
		return KnightValue
	case 'b':
		return BishopValue
	case 'r':
		return RookValue
	case 'q':
		return QueenValue
	case 'k':
		return KingValue
	default:
		return 0
	}
}
