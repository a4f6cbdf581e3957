// Package position adapts the bitboard move generator in internal/board to
// the narrow contract the search core depends on: load/export FEN, list
// legal moves in verbose form, make/unmake in LIFO order, and answer
// terminal-state questions. The search core lists and plays moves only
// through this package; the evaluator reads the bitboard position through
// Adapter.Raw.
package position

import (
	"errors"
	"fmt"

	"github.com/hailam/chessanalyze/internal/board"
)

// ErrInvalidFEN is returned when a FEN string cannot be parsed into a
// well-formed position.
var ErrInvalidFEN = errors.New("position: invalid FEN")

// ErrIllegalMove is returned by Make when given a VerboseMove that carries no
// underlying board move (the zero value). Make does not check a move against
// the current legal move list.
var ErrIllegalMove = errors.New("position: illegal move")

// VerboseMove mirrors the verbose move record the search core requires:
// enough to replay the move and to form ordering keys without reaching back
// into the underlying move-gen types.
type VerboseMove struct {
	From      string
	To        string
	Piece     byte // lowercase piece letter: p n b r q k
	Color     byte // 'w' or 'b'
	Captured  byte // 0 if no capture
	Promotion byte // 0 if no promotion
	SAN       string

	raw board.Move
}

// Key returns the "from+to" ordering key used by killer/TT-move matching.
func (m VerboseMove) Key() string { return m.From + m.To }

// PieceKey returns the "piece+from+to" key used by history/countermove tables.
func (m VerboseMove) PieceKey() string { return string(m.Piece) + m.From + m.To }

// Raw exposes the underlying board.Move.
func (m VerboseMove) Raw() board.Move { return m.raw }

// IsCapture reports whether the move captures a piece (including en passant).
func (m VerboseMove) IsCapture() bool { return m.Captured != 0 }

// IsPromotion reports whether the move is a pawn promotion.
func (m VerboseMove) IsPromotion() bool { return m.Promotion != 0 }

// Adapter wraps a single mutable board.Position and the undo stack needed to
// make Make/Unmake LIFO-reversible. It is not safe for concurrent use; each
// search worker owns its own Adapter.
type Adapter struct {
	pos     *board.Position
	undo    []board.UndoInfo
	applied []board.Move
	hashLog []uint64 // position hashes seen so far, for threefold detection
	sanLog  []string // SAN of each applied move, parallel to applied
}

// Load parses fen and returns a fresh Adapter positioned there.
func Load(fen string) (*Adapter, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	pos.UpdateCheckers()
	a := &Adapter{pos: pos}
	a.hashLog = append(a.hashLog, pos.Hash)
	return a, nil
}

// FEN exports the current position.
func (a *Adapter) FEN() string { return a.pos.ToFEN() }

// Turn returns 'w' or 'b'.
func (a *Adapter) Turn() byte {
	if a.pos.SideToMove == board.White {
		return 'w'
	}
	return 'b'
}

// InCheck reports whether the side to move is in check.
func (a *Adapter) InCheck() bool { return a.pos.InCheck() }

// InCheckmate reports checkmate for the side to move.
func (a *Adapter) InCheckmate() bool { return a.pos.IsCheckmate() }

// InStalemate reports stalemate for the side to move.
func (a *Adapter) InStalemate() bool { return a.pos.IsStalemate() }

// InsufficientMaterial reports a dead material draw.
func (a *Adapter) InsufficientMaterial() bool { return a.pos.IsInsufficientMaterial() }

// InThreefoldRepetition reports whether the current position's hash has
// occurred three or more times along the path reached via Make.
func (a *Adapter) InThreefoldRepetition() bool {
	count := 0
	cur := a.pos.Hash
	for _, h := range a.hashLog {
		if h == cur {
			count++
			if count >= 3 {
				return true
			}
		}
	}
	return false
}

// InDraw reports any drawn outcome: stalemate, fifty-move, insufficient
// material, or threefold repetition.
func (a *Adapter) InDraw() bool {
	return a.pos.IsDraw() || a.InThreefoldRepetition()
}

// GameOver reports any terminal outcome (checkmate or a draw).
func (a *Adapter) GameOver() bool {
	return a.pos.IsCheckmate() || a.InDraw()
}

// HasLegalMoves reports whether the side to move has at least one legal move.
func (a *Adapter) HasLegalMoves() bool { return a.pos.HasLegalMoves() }

// PieceAt returns the piece letter at sq ('P'..'K' white, 'p'..'k' black) or
// 0 if the square is empty or invalid.
func (a *Adapter) PieceAt(square string) byte {
	sq, err := board.ParseSquare(square)
	if err != nil {
		return 0
	}
	p := a.pos.PieceAt(sq)
	if p == board.NoPiece {
		return 0
	}
	return p.String()[0]
}

// Board returns an 8x8 grid of piece letters (0 for empty squares) with
// row 0 = rank 8, matching the external board() contract.
func (a *Adapter) Board() [8][8]byte {
	var grid [8][8]byte
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			sq := board.NewSquare(file, rank)
			p := a.pos.PieceAt(sq)
			row := 7 - rank
			if p != board.NoPiece {
				grid[row][file] = p.String()[0]
			}
		}
	}
	return grid
}

// LegalMoves returns every legal move from the current position in verbose
// form, in move-generator order.
func (a *Adapter) LegalMoves() []VerboseMove {
	ml := a.pos.GenerateLegalMoves()
	out := make([]VerboseMove, 0, ml.Len())
	for i := 0; i < ml.Len(); i++ {
		out = append(out, a.verbose(ml.Get(i)))
	}
	return out
}

// LegalMovesFrom returns every legal move originating at square.
func (a *Adapter) LegalMovesFrom(square string) []VerboseMove {
	from, err := board.ParseSquare(square)
	if err != nil {
		return nil
	}
	ml := a.pos.GenerateLegalMoves()
	out := make([]VerboseMove, 0, 8)
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if m.From() == from {
			out = append(out, a.verbose(m))
		}
	}
	return out
}

func (a *Adapter) verbose(m board.Move) VerboseMove {
	piece := a.pos.PieceAt(m.From())
	vm := VerboseMove{
		From:  m.From().String(),
		To:    m.To().String(),
		Piece: lowerPieceChar(piece),
		Color: colorChar(piece.Color()),
		SAN:   m.ToSAN(a.pos),
		raw:   m,
	}
	if m.IsCapture(a.pos) {
		if m.IsEnPassant() {
			vm.Captured = 'p'
		} else {
			vm.Captured = lowerPieceChar(a.pos.PieceAt(m.To()))
		}
	}
	if m.IsPromotion() {
		vm.Promotion = lowerPieceChar(board.NewPiece(m.Promotion(), piece.Color()))
	}
	return vm
}

func lowerPieceChar(p board.Piece) byte {
	s := p.String()
	if s == " " {
		return 0
	}
	c := s[0]
	if c >= 'A' && c <= 'Z' {
		c += 'a' - 'A'
	}
	return c
}

func colorChar(c board.Color) byte {
	if c == board.White {
		return 'w'
	}
	return 'b'
}

// Make plays a verbose move previously returned by LegalMoves/LegalMovesFrom
// and pushes undo state onto the adapter's LIFO stack.
func (a *Adapter) Make(m VerboseMove) error {
	if m.raw == board.NoMove {
		return ErrIllegalMove
	}
	undo := a.pos.MakeMove(m.raw)
	a.undo = append(a.undo, undo)
	a.applied = append(a.applied, m.raw)
	a.hashLog = append(a.hashLog, a.pos.Hash)
	a.sanLog = append(a.sanLog, m.SAN)
	return nil
}

// Unmake reverses the most recent Make call.
func (a *Adapter) Unmake() {
	n := len(a.applied)
	if n == 0 {
		return
	}
	m := a.applied[n-1]
	undo := a.undo[n-1]
	a.applied = a.applied[:n-1]
	a.undo = a.undo[:n-1]
	a.hashLog = a.hashLog[:len(a.hashLog)-1]
	a.sanLog = a.sanLog[:len(a.sanLog)-1]
	a.pos.UnmakeMove(m, undo)
}

// LegalMoveCount returns the number of legal moves for the side to move.
func (a *Adapter) LegalMoveCount() int {
	return a.pos.GenerateLegalMoves().Len()
}

// OpponentLegalMoveCount reports the legal move count for the side NOT to
// move, by flipping the side to move on a scratch copy and clearing the en
// passant square, matching the evaluator's mobility synthesis. Reports
// ok=false (treat as 0) when the side to move is currently in check, since
// flipping the turn in that state does not correspond to a reachable
// position.
func (a *Adapter) OpponentLegalMoveCount() (count int, ok bool) {
	if a.pos.InCheck() {
		return 0, false
	}
	undo := a.pos.MakeNullMove()
	defer a.pos.UnmakeNullMove(undo)
	if a.pos.InCheck() {
		return 0, false
	}
	return a.pos.GenerateLegalMoves().Len(), true
}

// MakeNull flips the side to move in place for null-move pruning and
// returns undo state for UnmakeNull. Returns ok=false without mutating the
// position when the side to move is in check.
func (a *Adapter) MakeNull() (undo board.NullMoveUndo, ok bool) {
	if a.pos.InCheck() {
		return board.NullMoveUndo{}, false
	}
	return a.pos.MakeNullMove(), true
}

// UnmakeNull restores the position saved by MakeNull.
func (a *Adapter) UnmakeNull(undo board.NullMoveUndo) {
	a.pos.UnmakeNullMove(undo)
}

// GivesCheck reports whether the side to move is currently in check —
// called immediately after Make to test whether the move just played gives
// check to the opponent.
func (a *Adapter) GivesCheck() bool { return a.pos.InCheck() }

// HasNonPawnMaterial reports whether the side to move holds any piece other
// than pawns and the king, used to avoid null-move pruning in pure pawn
// endgames.
func (a *Adapter) HasNonPawnMaterial() bool { return a.pos.HasNonPawnMaterial() }

// Hash returns the Zobrist hash of the current position.
func (a *Adapter) Hash() uint64 { return a.pos.Hash }

// Raw exposes the underlying bitboard position. The evaluator reads it
// directly to score a node from the piece bitboards; move enumeration and
// make/unmake, in the search as everywhere else, go through the Adapter
// methods above.
func (a *Adapter) Raw() *board.Position { return a.pos }

// History returns the SAN of every move applied so far, oldest first.
func (a *Adapter) History() []string {
	out := make([]string, len(a.sanLog))
	copy(out, a.sanLog)
	return out
}

// Clone returns an independent copy of the adapter positioned identically,
// including undo history, so a caller can explore from this point without
// disturbing the original.
func (a *Adapter) Clone() *Adapter {
	clone := &Adapter{
		pos:     a.pos.Copy(),
		undo:    append([]board.UndoInfo(nil), a.undo...),
		applied: append([]board.Move(nil), a.applied...),
		hashLog: append([]uint64(nil), a.hashLog...),
		sanLog:  append([]string(nil), a.sanLog...),
	}
	return clone
}
