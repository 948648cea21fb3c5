package board

import "strings"

// MaxGamePly bounds the undo stack: game plies plus search plies combined.
// The UCI layer refuses longer game histories before they reach the core.
const MaxGamePly = 1024

// CastlingRights is a bitmask of the four castling permissions.
type CastlingRights uint8

const (
	WhiteKingside CastlingRights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside
	AllCastling = WhiteKingside | WhiteQueenside | BlackKingside | BlackQueenside
)

// Has reports whether all rights in r are present.
func (c CastlingRights) Has(r CastlingRights) bool { return c&r == r }

// String renders FEN-style rights ("KQkq", "-" when empty).
func (c CastlingRights) String() string {
	if c == 0 {
		return "-"
	}
	var sb strings.Builder
	for i, ch := range [4]byte{'K', 'Q', 'k', 'q'} {
		if c&(1<<i) != 0 {
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}

// castlingRightsClear[sq] holds the rights removed when a move touches sq
// (king or rook leaving home, or a rook being captured there).
var castlingRightsClear [64]CastlingRights

func init() {
	castlingRightsClear[SquareE1] = WhiteKingside | WhiteQueenside
	castlingRightsClear[SquareH1] = WhiteKingside
	castlingRightsClear[SquareA1] = WhiteQueenside
	castlingRightsClear[SquareE8] = BlackKingside | BlackQueenside
	castlingRightsClear[SquareH8] = BlackKingside
	castlingRightsClear[SquareA8] = BlackQueenside
}

// Undo captures everything MakeMove cannot recompute when reversing.
type Undo struct {
	move         Move
	captured     Piece
	castling     CastlingRights
	epSquare     Square
	halfmove     uint16
	key          uint64
	hashedEPFile int8
}

// Position is a full chess position with incremental state: piece bitboards,
// mailbox, zobrist key, and the undo stack that makes reversal exact.
// The search owns one Position and mutates it in place.
type Position struct {
	byPiece  [12]Bitboard
	byColor  [2]Bitboard
	occupied Bitboard
	board    [64]Piece

	side     Color
	castling CastlingRights
	epSquare Square
	halfmove uint16
	fullmove uint16

	key          uint64
	hashedEPFile int8

	undo    [MaxGamePly]Undo
	undoLen int
}

// SideToMove returns the color to move.
func (p *Position) SideToMove() Color { return p.side }

// Castling returns the current castling rights.
func (p *Position) Castling() CastlingRights { return p.castling }

// EPSquare returns the en-passant target square, or NoSquare.
func (p *Position) EPSquare() Square { return p.epSquare }

// HalfmoveClock returns plies since the last capture or pawn move.
func (p *Position) HalfmoveClock() int { return int(p.halfmove) }

// FullmoveNumber returns the game's fullmove counter (starts at 1).
func (p *Position) FullmoveNumber() int { return int(p.fullmove) }

// Key returns the incrementally maintained zobrist key.
func (p *Position) Key() uint64 { return p.key }

// Ply returns how many moves have been applied to this Position.
func (p *Position) Ply() int { return p.undoLen }

// Pieces returns the bitboard for one piece kind.
func (p *Position) Pieces(pc Piece) Bitboard { return p.byPiece[pc] }

// Color returns the occupancy of one side.
func (p *Position) Color(c Color) Bitboard { return p.byColor[c] }

// Occupied returns the combined occupancy.
func (p *Position) Occupied() Bitboard { return p.occupied }

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece { return p.board[sq] }

// KingSquare returns c's king square.
func (p *Position) KingSquare(c Color) Square {
	return p.byPiece[NewPiece(c, King)].First()
}

// Copy returns an independent copy; the undo history comes along, so the
// copy can unwind exactly like the original. Used by parallel perft and
// cross-check workers.
func (p *Position) Copy() *Position {
	c := *p
	return &c
}

// attackersTo returns all pieces of color by attacking sq under the given
// occupancy. Passing an occupancy with the defending king removed answers
// "is this square safe for the king to step to".
func (p *Position) attackersTo(sq Square, by Color, occ Bitboard) Bitboard {
	return PawnAttacks(by.Other(), sq)&p.byPiece[NewPiece(by, Pawn)] |
		KnightAttacks(sq)&p.byPiece[NewPiece(by, Knight)] |
		KingAttacks(sq)&p.byPiece[NewPiece(by, King)] |
		BishopAttacks(sq, occ)&(p.byPiece[NewPiece(by, Bishop)]|p.byPiece[NewPiece(by, Queen)]) |
		RookAttacks(sq, occ)&(p.byPiece[NewPiece(by, Rook)]|p.byPiece[NewPiece(by, Queen)])
}

// IsAttacked reports whether sq is attacked by the given color.
func (p *Position) IsAttacked(sq Square, by Color) bool {
	return p.attackersTo(sq, by, p.occupied) != 0
}

// InCheck reports whether c's king is attacked.
func (p *Position) InCheck(c Color) bool {
	return p.IsAttacked(p.KingSquare(c), c.Other())
}

// Checkers returns the pieces giving check to the side to move.
func (p *Position) Checkers() Bitboard {
	return p.attackersTo(p.KingSquare(p.side), p.side.Other(), p.occupied)
}

// HasNonPawnMaterial reports whether c has any piece besides king and
// pawns. Gates null-move pruning away from zugzwang-prone endings.
func (p *Position) HasNonPawnMaterial(c Color) bool {
	return p.byColor[c]&^(p.byPiece[NewPiece(c, Pawn)]|p.byPiece[NewPiece(c, King)]) != 0
}

// IsRepetition reports whether the current position occurred earlier within
// the reversible-move window of the applied history.
func (p *Position) IsRepetition() bool {
	limit := p.undoLen - int(p.halfmove)
	if limit < 0 {
		limit = 0
	}
	for i := p.undoLen - 2; i >= limit; i -= 2 {
		if p.undo[i].key == p.key {
			return true
		}
	}
	return false
}

// IsDraw reports a draw by the fifty-move rule or repetition.
func (p *Position) IsDraw() bool {
	return p.halfmove >= 100 || p.IsRepetition()
}

func (p *Position) addPiece(pc Piece, sq Square) {
	bb := sq.Bitboard()
	p.byPiece[pc] |= bb
	p.byColor[pc.Color()] |= bb
	p.occupied |= bb
	p.board[sq] = pc
	p.key ^= pieceKeys[pc][sq]
}

func (p *Position) removePiece(pc Piece, sq Square) {
	bb := sq.Bitboard()
	p.byPiece[pc] &^= bb
	p.byColor[pc.Color()] &^= bb
	p.occupied &^= bb
	p.board[sq] = NoPiece
	p.key ^= pieceKeys[pc][sq]
}

func (p *Position) movePiece(pc Piece, from, to Square) {
	bb := from.Bitboard() | to.Bitboard()
	p.byPiece[pc] ^= bb
	p.byColor[pc.Color()] ^= bb
	p.occupied ^= bb
	p.board[from] = NoPiece
	p.board[to] = pc
	p.key ^= pieceKeys[pc][from] ^ pieceKeys[pc][to]
}

// String renders the board rank 8 first with FEN piece letters. Debug aid
// and the "print" UCI extension.
func (p *Position) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			pc := p.board[NewSquare(file, rank)]
			if pc == NoPiece {
				sb.WriteByte('.')
			} else {
				sb.WriteByte(pc.FENChar())
			}
			if file < 7 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(p.side.String())
	sb.WriteString(" to move\n")
	return sb.String()
}
