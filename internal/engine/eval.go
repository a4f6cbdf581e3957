// Package engine implements the chess analysis search core: static
// evaluation, transposition table, quiescence and alpha-beta search, the
// iterative-deepening root driver, and the isolated per-task worker.
package engine

import (
	"github.com/hailam/chessanalyze/internal/board"
	"github.com/hailam/chessanalyze/internal/position"
)

// Piece values in centipawns, indexed by board.PieceType.
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
	KingValue   = 20000
)

var pieceValues = [6]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue}

// MateScore is the magnitude returned for a forced mate; individual search
// plies subtract distance from it. CheckmateScore is the flat terminal
// value the evaluator itself returns.
const (
	MateScore      = 30000
	CheckmateScore = 30000
)

var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingMidgamePST = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

var kingEndgamePST = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

var psts = [5][64]int{pawnPST, knightPST, bishopPST, rookPST, queenPST}

// passedBonus is indexed by rank from the pawn's own perspective (0=rank1).
var passedBonus = [8]int{0, 0, 10, 20, 35, 55, 80, 120}

var candidatePassedBonus = [8]int{0, 0, 5, 10, 20, 35, 0, 0}

var kingAttackerWeight = [6]int{1, 2, 2, 3, 5, 0} // Pawn, Knight, Bishop, Rook, Queen, King

var tropismWeight = [6]int{0, 3, 2, 2, 4, 0} // only Knight/Bishop/Rook/Queen are used

const (
	bishopPairBase      = 30
	doubledPawnPenalty  = -25
	isolatedPawnPenalty = -20
	backwardPawnPenalty = -15
	pawnChainBonus      = 10
	connectedPawnBonus  = 8
	rookOpenFile        = 25
	rookSemiOpenFile    = 12
	rookSeventhRank     = 25
	rookBattery         = 15
	knightOutpostBonus  = 20
	hangingPiecePenalty = 20
)

// pstIndex converts a board square into the white-perspective PST index
// idx = (7-rank)*8+file, mirroring vertically for black.
func pstIndex(sq board.Square, c board.Color) int {
	file := sq.File()
	rank := sq.Rank()
	if c == board.Black {
		rank = 7 - rank
	}
	return (7-rank)*8 + file
}

func round(x float64) int {
	if x >= 0 {
		return int(x + 0.5)
	}
	return -int(-x + 0.5)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func chebyshev(a, b board.Square) int {
	df := a.File() - b.File()
	if df < 0 {
		df = -df
	}
	dr := a.Rank() - b.Rank()
	if dr < 0 {
		dr = -dr
	}
	if df > dr {
		return df
	}
	return dr
}

// Evaluate returns the static evaluation of pos from White's perspective.
// Terminal states short-circuit before any term is computed. mobility is
// suppressed by callers inside quiescence, per 4.4/4.1.
func Evaluate(a *position.Adapter, includeMobility bool) int {
	if a.InCheckmate() {
		if a.Turn() == 'w' {
			return -CheckmateScore
		}
		return CheckmateScore
	}
	if a.InStalemate() || a.InsufficientMaterial() || a.InThreefoldRepetition() {
		return 0
	}

	pos := a.Raw()

	whiteMat, blackMat := materialWithKing(pos)
	endgameWeight := clamp01(1 - float64(whiteMat+blackMat-2*KingValue)/3200)

	score := 0
	score += materialAndPST(pos)
	score += kingSquareValue(pos, endgameWeight)
	score += bishopPairTerm(pos)
	score += pawnStructure(pos, endgameWeight)
	score += rookTerms(pos, endgameWeight)
	score += knightOutposts(pos)
	score += kingAttackZone(pos, endgameWeight)
	score += kingTropism(pos)
	score += space(pos, endgameWeight)
	score += hangingPieces(pos)
	score += tempo(pos, endgameWeight)

	if includeMobility {
		score += mobility(a, endgameWeight)
	}

	return score
}

func materialWithKing(pos *board.Position) (white, black int) {
	for pt := board.Pawn; pt <= board.King; pt++ {
		white += pos.Pieces[board.White][pt].PopCount() * pieceValues[pt]
		black += pos.Pieces[board.Black][pt].PopCount() * pieceValues[pt]
	}
	return white, black
}

func materialAndPST(pos *board.Position) int {
	score := 0
	for pt := board.Pawn; pt <= board.Queen; pt++ {
		wbb := pos.Pieces[board.White][pt]
		for wbb != 0 {
			sq := wbb.PopLSB()
			score += pieceValues[pt] + psts[pt][pstIndex(sq, board.White)]
		}
		bbb := pos.Pieces[board.Black][pt]
		for bbb != 0 {
			sq := bbb.PopLSB()
			score -= pieceValues[pt] + psts[pt][pstIndex(sq, board.Black)]
		}
	}
	return score
}

func kingSquareValue(pos *board.Position, endgameWeight float64) int {
	wsq := pos.KingSquare[board.White]
	bsq := pos.KingSquare[board.Black]
	wMid := kingMidgamePST[pstIndex(wsq, board.White)]
	wEnd := kingEndgamePST[pstIndex(wsq, board.White)]
	bMid := kingMidgamePST[pstIndex(bsq, board.Black)]
	bEnd := kingEndgamePST[pstIndex(bsq, board.Black)]
	w := round(float64(wMid)*(1-endgameWeight) + float64(wEnd)*endgameWeight)
	b := round(float64(bMid)*(1-endgameWeight) + float64(bEnd)*endgameWeight)
	return w - b
}

func bishopPairTerm(pos *board.Position) int {
	wPawns := pos.Pieces[board.White][board.Pawn].PopCount()
	bPawns := pos.Pieces[board.Black][board.Pawn].PopCount()
	scale := 1 - float64(wPawns+bPawns)/16
	if scale < 0.3 {
		scale = 0.3
	}
	bonus := round(bishopPairBase * scale)
	score := 0
	if pos.Pieces[board.White][board.Bishop].PopCount() >= 2 {
		score += bonus
	}
	if pos.Pieces[board.Black][board.Bishop].PopCount() >= 2 {
		score -= bonus
	}
	return score
}

// pawnRanksOnFile returns, for a color's pawns, the set of ranks (0-indexed)
// occupied on the given file.
func pawnRanksOnFile(pos *board.Position, c board.Color, file int) []int {
	bb := pos.Pieces[c][board.Pawn] & board.FileMask[file]
	var ranks []int
	for bb != 0 {
		sq := bb.PopLSB()
		ranks = append(ranks, sq.Rank())
	}
	return ranks
}

func pawnStructure(pos *board.Position, endgameWeight float64) int {
	score := 0
	for color := board.White; color <= board.Black; color++ {
		sign := 1
		forward := 1
		if color == board.Black {
			sign = -1
			forward = -1
		}
		pawns := pos.Pieces[color][board.Pawn]
		enemy := pos.Pieces[color.Other()][board.Pawn]
		bb := pawns
		for bb != 0 {
			sq := bb.PopLSB()
			file := sq.File()
			rank := sq.Rank()
			relRank := rank
			if color == board.Black {
				relRank = 7 - rank
			}

			// passed pawn: no enemy pawn on same/adjacent file ahead of it.
			passed := true
			candidate := true
			supporters, stoppers := 0, 0
			for f := file - 1; f <= file+1; f++ {
				if f < 0 || f > 7 {
					continue
				}
				for _, er := range pawnRanksOnFile(pos, color.Other(), f) {
					ahead := (color == board.White && er > rank) || (color == board.Black && er < rank)
					if f == file && ahead {
						passed = false
					}
					if f != file && ahead {
						passed = false
					}
				}
				if f == file {
					for _, or := range pawnRanksOnFile(pos, color, f) {
						ahead := (color == board.White && or > rank) || (color == board.Black && or < rank)
						if ahead {
							candidate = false
						}
					}
					continue
				}
				for _, or := range pawnRanksOnFile(pos, color, f) {
					if or >= rank-1 && or <= rank+2 {
						supporters++
					}
				}
				for _, er := range pawnRanksOnFile(pos, color.Other(), f) {
					ahead := (color == board.White && er > rank) || (color == board.Black && er < rank)
					if ahead {
						stoppers++
					}
				}
			}
			if passed {
				score += sign * round(float64(passedBonus[relRank])*(0.5+0.5*endgameWeight))
			} else if candidate && supporters > stoppers {
				score += sign * candidatePassedBonus[relRank]
			}

			// doubled
			same := pawnRanksOnFile(pos, color, file)
			if len(same) > 1 {
				score += sign * doubledPawnPenalty
			}

			// isolated
			isolated := true
			for _, f := range []int{file - 1, file + 1} {
				if f < 0 || f > 7 {
					continue
				}
				if len(pawnRanksOnFile(pos, color, f)) > 0 {
					isolated = false
				}
			}
			if isolated {
				score += sign * isolatedPawnPenalty
			} else {
				// backward: no supporter on adjacent files, stop square
				// controlled by an enemy pawn and blocked.
				hasSupporter := false
				for _, f := range []int{file - 1, file + 1} {
					if f < 0 || f > 7 {
						continue
					}
					for _, or := range pawnRanksOnFile(pos, color, f) {
						atOrBehind := (color == board.White && or <= rank) || (color == board.Black && or >= rank)
						if atOrBehind {
							hasSupporter = true
						}
					}
				}
				stopSquare := board.NewSquare(file, rank+forward)
				stopControlled := board.PawnAttacks(stopSquare, color.Other())&enemy != 0
				blocked := !pos.IsEmpty(stopSquare)
				if !hasSupporter && stopControlled && blocked {
					score += sign * backwardPawnPenalty
				}

				// pawn chain: defends another pawn one rank ahead on an
				// adjacent file.
				defendSq := board.Bitboard(0)
				for _, f := range []int{file - 1, file + 1} {
					if f < 0 || f > 7 {
						continue
					}
					defendSq |= board.FileMask[f] & board.RankMask[rank+forward]
				}
				if defendSq&pawns != 0 {
					score += sign * pawnChainBonus
				}

				// connected: friendly pawn on adjacent file within +-1 rank.
				connected := 0
				for _, f := range []int{file - 1, file + 1} {
					if f < 0 || f > 7 {
						continue
					}
					for _, or := range pawnRanksOnFile(pos, color, f) {
						if or >= rank-1 && or <= rank+1 {
							connected++
						}
					}
				}
				score += sign * connectedPawnBonus * connected
			}

			if passed && endgameWeight > 0.3 {
				ownKing := pos.KingSquare[color]
				enemyKing := pos.KingSquare[color.Other()]
				score += sign * round(float64(chebyshev(enemyKing, sq)-chebyshev(ownKing, sq)) * 5 * endgameWeight)
			}
		}

		if endgameWeight < 0.6 {
			ksq := pos.KingSquare[color]
			kfile := ksq.File()
			krank := ksq.Rank()
			for f := kfile - 1; f <= kfile+1; f++ {
				if f < 0 || f > 7 {
					continue
				}
				for _, or := range pawnRanksOnFile(pos, color, f) {
					d := or - krank
					if color == board.Black {
						d = krank - or
					}
					if d == 1 || d == 2 {
						score += sign * round(8*(1-endgameWeight))
						break
					}
				}
			}
		}
	}
	return score
}

func rookTerms(pos *board.Position, endgameWeight float64) int {
	score := 0
	for color := board.White; color <= board.Black; color++ {
		sign := 1
		if color == board.Black {
			sign = -1
		}
		rooks := pos.Pieces[color][board.Rook]
		bb := rooks
		for bb != 0 {
			sq := bb.PopLSB()
			file := sq.File()
			ownPawns := pos.Pieces[color][board.Pawn] & board.FileMask[file]
			enemyPawns := pos.Pieces[color.Other()][board.Pawn] & board.FileMask[file]
			if ownPawns == 0 && enemyPawns == 0 {
				score += sign * rookOpenFile
			} else if ownPawns == 0 {
				score += sign * rookSemiOpenFile
			}

			// rook behind a friendly passed pawn on the same file.
			for _, pr := range pawnRanksOnFile(pos, color, file) {
				psq := board.NewSquare(file, pr)
				if isPassed(pos, psq, color) {
					behind := (color == board.White && sq.Rank() < pr) || (color == board.Black && sq.Rank() > pr)
					if behind {
						score += sign * round(15*endgameWeight)
					}
				}
			}

			seventh := board.Rank7
			if color == board.Black {
				seventh = board.Rank2
			}
			enemyKingBackRank := pos.KingSquare[color.Other()].Rank() == 0
			if color == board.White {
				enemyKingBackRank = pos.KingSquare[color.Other()].Rank() == 7
			}
			if sq.Rank() == enemyPawnRankOf(color) && (pos.Pieces[color.Other()][board.Pawn]&seventh != 0 || enemyKingBackRank) {
				score += sign * rookSeventhRank
			}
		}
		// rook battery: same-color rooks sharing a file or rank.
		rs := pos.Pieces[color][board.Rook]
		var squares []board.Square
		tmp := rs
		for tmp != 0 {
			squares = append(squares, tmp.PopLSB())
		}
		for i := 0; i < len(squares); i++ {
			for j := i + 1; j < len(squares); j++ {
				if squares[i].File() == squares[j].File() || squares[i].Rank() == squares[j].Rank() {
					score += sign * rookBattery
				}
			}
		}
	}
	return score
}

func enemyPawnRankOf(color board.Color) int {
	if color == board.White {
		return 6
	}
	return 1
}

func isPassed(pos *board.Position, sq board.Square, color board.Color) bool {
	file := sq.File()
	rank := sq.Rank()
	for f := file - 1; f <= file+1; f++ {
		if f < 0 || f > 7 {
			continue
		}
		for _, er := range pawnRanksOnFile(pos, color.Other(), f) {
			ahead := (color == board.White && er > rank) || (color == board.Black && er < rank)
			if ahead {
				return false
			}
		}
	}
	return true
}

func knightOutposts(pos *board.Position) int {
	score := 0
	for color := board.White; color <= board.Black; color++ {
		sign := 1
		if color == board.Black {
			sign = -1
		}
		bb := pos.Pieces[color][board.Knight]
		for bb != 0 {
			sq := bb.PopLSB()
			rank := sq.Rank()
			onOutpostRank := (color == board.White && rank >= 4) || (color == board.Black && rank <= 3)
			if !onOutpostRank {
				continue
			}
			protected := board.PawnAttacks(sq, color.Other())&pos.Pieces[color][board.Pawn] != 0
			if !protected {
				continue
			}
			challengeable := false
			file := sq.File()
			for f := file - 1; f <= file+1; f += 2 {
				if f < 0 || f > 7 {
					continue
				}
				for _, er := range pawnRanksOnFile(pos, color.Other(), f) {
					ahead := (color == board.White && er > rank) || (color == board.Black && er < rank)
					if ahead {
						challengeable = true
					}
				}
			}
			if !challengeable {
				score += sign * knightOutpostBonus
			}
		}
	}
	return score
}

func kingAttackZone(pos *board.Position, endgameWeight float64) int {
	if endgameWeight > 0.7 {
		return 0
	}
	attacksOn := func(kingColor board.Color) int {
		zone := board.KingAttacks(pos.KingSquare[kingColor]) | board.SquareBB(pos.KingSquare[kingColor])
		attacker := kingColor.Other()
		count := 0
		for pt := board.Pawn; pt < board.King; pt++ {
			bb := pos.Pieces[attacker][pt] & zone
			count += bb.PopCount() * kingAttackerWeight[pt]
		}
		return count
	}
	penalty := func(a int) int {
		switch {
		case a <= 0:
			return 0
		case a == 1:
			return 10
		case a == 2:
			return 25
		case a == 3:
			return 45
		default:
			return 70 + (a-3)*15
		}
	}
	onBlack := penalty(attacksOn(board.Black))
	onWhite := penalty(attacksOn(board.White))
	return round(float64(onBlack-onWhite) * (1 - endgameWeight))
}

func kingTropism(pos *board.Position) int {
	tropismFor := func(side board.Color) int {
		enemyKing := pos.KingSquare[side.Other()]
		total := 0
		for pt := board.Knight; pt <= board.Queen; pt++ {
			bb := pos.Pieces[side][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				v := (7 - chebyshev(sq, enemyKing)) * tropismWeight[pt]
				if v < 0 {
					v = 0
				}
				total += v
			}
		}
		return total
	}
	diff := tropismFor(board.White) - tropismFor(board.Black)
	return diff / 2
}

func space(pos *board.Position, endgameWeight float64) int {
	wSpace, bSpace := 0, 0
	for _, file := range []int{2, 3, 4, 5} { // c..f
		bb := pos.Pieces[board.White][board.Pawn] & board.FileMask[file]
		for bb != 0 {
			sq := bb.PopLSB()
			wSpace += sq.Rank() + 1 - 2 // ranks counted 1..8
		}
		bb = pos.Pieces[board.Black][board.Pawn] & board.FileMask[file]
		for bb != 0 {
			sq := bb.PopLSB()
			bSpace += 7 - (sq.Rank() + 1)
		}
	}
	return round(float64(wSpace-bSpace) * 0.5 * (1 - endgameWeight))
}

func hangingPieces(pos *board.Position) int {
	score := 0
	for color := board.White; color <= board.Black; color++ {
		sign := -1
		if color == board.Black {
			sign = 1
		}
		for pt := board.Knight; pt <= board.Queen; pt++ {
			if pieceValues[pt] < 300 {
				continue
			}
			bb := pos.Pieces[color][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				attacked := board.PawnAttacks(sq, color.Other())&pos.Pieces[color.Other()][board.Pawn] != 0
				defended := board.PawnAttacks(sq, color)&pos.Pieces[color][board.Pawn] != 0
				if attacked && !defended {
					score += sign * hangingPiecePenalty
				}
			}
		}
	}
	return score
}

func tempo(pos *board.Position, endgameWeight float64) int {
	t := round(15 - 10*endgameWeight)
	if pos.SideToMove == board.White {
		return t
	}
	return -t
}

func mobility(a *position.Adapter, endgameWeight float64) int {
	own := a.LegalMoveCount()
	opp, ok := a.OpponentLegalMoveCount()
	if !ok {
		opp = 0
	}
	white, black := own, opp
	if a.Turn() == 'b' {
		white, black = opp, own
	}
	return round(float64(white-black) * 2 * (1 - endgameWeight))
}
